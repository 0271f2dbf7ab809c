package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtdb-labs/xtdb/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Resolve and print the node's §6 configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration (defaults, file, XTDB_* env overrides)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s = %d\n", config.KeyPageSize, cfg.PageSize)
			fmt.Fprintf(out, "%s = %d\n", config.KeyCompactorFanIn, cfg.CompactorFanIn)
			fmt.Fprintf(out, "%s = %d\n", config.KeyBufferPoolCapacityBytes, cfg.BufferPoolCapacityBytes)
			fmt.Fprintf(out, "%s = %s\n", config.KeyDefaultTimeZone, cfg.DefaultTimeZone)
			fmt.Fprintf(out, "%s = %t\n", config.KeySuppressTimeLiteralPrinters, cfg.SuppressTimeLiteralPrinters)
			return nil
		},
	}
}
