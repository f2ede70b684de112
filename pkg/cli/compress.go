package cli

import (
	"fmt"

	"tz/pkg/core"

	"github.com/spf13/cobra"
)

func newCompressCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compress <path>",
		Short: "Compress a file or directory",
		Long: `Compress a file or directory into a .tz file.

A file is written next to the input as <input>.tz. A directory is written to
the current directory as <name>.tz.

Example:
  tz compress notes.txt
  tz compress ./photos -o backup.tz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			fmt.Fprintf(cmd.OutOrStdout(), "Using %d threads for compression\n", a.sched.Workers())

			res, err := core.Compress(cmd.Context(), args[0], output, a.coreOptions())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully compressed to %s\n", res.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	return cmd
}
