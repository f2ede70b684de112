package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tz/pkg/archive"
	"tz/pkg/baseline"
	"tz/pkg/progress"
	"tz/pkg/rle"

	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <path>",
		Short: "Compare tz against general-purpose codecs",
		Long: `Encode a file or directory with tz and with each built-in baseline codec
(` + strings.Join(baseline.Names(), ", ") + `) and print the resulting sizes, followed by the
run statistics of the input. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("stat input: %w", err)
			}
			var data []byte
			if info.IsDir() {
				data, err = archive.Serialize(ctx, args[0])
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			start := time.Now()
			enc, err := a.sched.Encode(ctx, data)
			if err != nil {
				return err
			}
			rows := []baseline.Measurement{{
				Name:           "tz",
				OriginalSize:   len(data),
				CompressedSize: len(enc),
				Duration:       time.Since(start),
			}}

			measured, err := baseline.MeasureAll(data)
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), append(rows, measured...))
			printRuns(cmd.OutOrStdout(), rle.EncodeRuns(data))
			return nil
		},
	}
}

func printComparison(w io.Writer, rows []baseline.Measurement) {
	fmt.Fprintf(w, "%-8s %12s %12s %8s %12s\n", "CODEC", "ORIGINAL", "COMPRESSED", "RATIO", "TIME")
	for _, m := range rows {
		fmt.Fprintf(w, "%-8s %12s %12s %7.2fx %12s\n",
			m.Name,
			progress.FormatSize(uint64(m.OriginalSize)),
			progress.FormatSize(uint64(m.CompressedSize)),
			m.Ratio(),
			m.Duration.Round(time.Microsecond),
		)
	}
}

// printRuns prints how many runs the input holds and how long they are on average.
func printRuns(w io.Writer, runs []rle.Run) {
	longest, total := 0, 0
	for _, r := range runs {
		longest = max(longest, r.Length)
		total += r.Length
	}
	mean := 0.0
	if len(runs) > 0 {
		mean = float64(total) / float64(len(runs))
	}
	fmt.Fprintf(w, "\nRuns: %d, mean length %.2f, longest %d\n", len(runs), mean, longest)
}
