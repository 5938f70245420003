// Command trending generates the trending snapshot files. It is invoked
// by cron (or with --schedule to run its own in-process scheduler) and is
// not expected to run concurrently with itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "trending",
		Short:         "GSoC trending snapshot generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
