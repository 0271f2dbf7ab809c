package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtdb-labs/xtdb/internal/compact"
	"github.com/xtdb-labs/xtdb/internal/config"
	"github.com/xtdb-labs/xtdb/internal/objectstore"
)

func newCompactCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "compact <table>",
		Short: "Print the fan-in groups compactAll would run next for a table",
		Long: "compact plans a table's next compaction round without running it: segment\n" +
			"meta/data files are built and read in-memory only by this repository's\n" +
			"merge machinery (see DESIGN.md), so the CLI has no standalone loader to\n" +
			"open a Source from disk and actually execute CompactGroup.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath, _ = cmd.Flags().GetString("config")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			store, err := objectstore.NewLocal(dir)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			c := compact.New(compact.Config{FanIn: cfg.CompactorFanIn, PageSize: cfg.PageSize})
			groups := c.SelectGroups(reg)
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no fan-in group ready")
				return nil
			}
			for level, levelGroups := range groups {
				for i, g := range levelGroups {
					fmt.Fprintf(cmd.OutOrStdout(), "level=%d group=%d:", level, i)
					for _, m := range g {
						fmt.Fprintf(cmd.OutOrStdout(), " %s", m.Name.Format())
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config-file", "", "path to a YAML config file (optional)")
	return cmd
}
