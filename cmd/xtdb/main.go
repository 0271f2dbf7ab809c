// Command xtdb is the storage core's operational surface: segment
// inspection, compaction planning, and resolved-config printing. It is not
// the query/SQL front-end — that surface lives outside this repository.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xtdb",
		Short:         "Operational CLI for the XTDB storage core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file (optional)")
	root.PersistentFlags().String("dir", ".", "object-store root directory")

	root.AddCommand(newSegmentsCmd())
	root.AddCommand(newCompactCmd())
	root.AddCommand(newConfigCmd())
	return root
}
