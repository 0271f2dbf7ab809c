package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtdb-labs/xtdb/internal/objectstore"
)

func newSegmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Inspect a table's registered segments",
	}
	cmd.AddCommand(newSegmentsListCmd())
	cmd.AddCommand(newSegmentsCurrentCmd())
	return cmd
}

func newSegmentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table>",
		Short: "List every segment registered for a table, by level and next_row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			store, err := objectstore.NewLocal(dir)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			for _, m := range reg.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  level=%d  first_row=%d  next_row=%d\n",
					m.Name.Format(), m.Name.Level, m.Name.FirstRow, m.Name.NextRow)
			}
			return nil
		},
	}
}

func newSegmentsCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current <table>",
		Short: "Print the table's current segment set (§6: newest per level, not covered by a higher level)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			store, err := objectstore.NewLocal(dir)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			for _, m := range reg.Current() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  level=%d  next_row=%d\n", m.Name.Format(), m.Name.Level, m.Name.NextRow)
			}
			return nil
		},
	}
}
