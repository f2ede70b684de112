package cli

import (
	"fmt"

	"tz/pkg/core"

	"github.com/spf13/cobra"
)

func newDecompressCmd() *cobra.Command {
	var (
		output string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "decompress <file.tz>",
		Short: "Decompress a .tz file",
		Long: `Decompress a .tz file. Directory archives are rebuilt as a directory,
anything else is written as a file. The default output is the input path
without the .tz extension.

Example:
  tz decompress notes.txt.tz
  tz decompress backup.tz -o ./restored
  tz decompress notes.txt.tz --stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			opts := a.coreOptions()

			if stdout {
				opts.Progress = nil
				text, err := core.DecompressText(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Using %d threads for decompression\n", a.sched.Workers())
			res, err := core.Decompress(cmd.Context(), args[0], output, opts)
			if err != nil {
				return err
			}
			if res.IsDir {
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully decompressed directory to %s\n", res.Output)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully decompressed to %s\n", res.Output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the decompressed text instead of writing a file")
	return cmd
}
