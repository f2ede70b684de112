package core

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"tz/pkg/archive"
	"tz/pkg/metrics"

	"github.com/gostdlib/base/context"
)

// Decompress decodes input, which must end in .tz, into output. If the decoded
// data is a directory archive the tree is rebuilt under output, otherwise it is
// written to output as a file. An empty output picks DefaultDecompressOutput.
func Decompress(ctx context.Context, input, output string, opts Options) (Result, error) {
	res, err := decompress(ctx, input, output, opts)
	if err != nil {
		opts.Metrics.ObserveError(metrics.OpDecompress)
		opts.logger().Error("decompress failed", "input", input, "error", err)
		return res, wrap(ctx, err)
	}
	return res, nil
}

func decompress(ctx context.Context, input, output string, opts Options) (Result, error) {
	start := time.Now()
	log := opts.logger()

	if !strings.HasSuffix(input, Extension) {
		return Result{}, fmt.Errorf("%s: %w", input, ErrNotTZ)
	}
	if output == "" {
		output = DefaultDecompressOutput(input)
	}
	res := Result{Input: input, Output: output}

	dec, enc, err := decodeFile(ctx, input, opts)
	if err != nil {
		return res, err
	}
	res.InputBytes = int64(len(enc))
	res.OutputBytes = int64(len(dec))
	res.Parallel = opts.Scheduler.Parallel(len(enc))
	res.Chunks = opts.Scheduler.DecodeChunks(len(enc))

	if archive.IsArchive(dec) {
		res.IsDir = true
		recs, err := archive.Parse(dec, archive.ParseOptions{Strict: opts.Strict})
		if err != nil {
			return res, fmt.Errorf("parse archive: %w", err)
		}
		dirs := 0
		for _, r := range recs {
			if r.IsDir {
				dirs++
			}
		}
		if err := archive.Extract(ctx, recs, output); err != nil {
			return res, err
		}
		opts.Metrics.ObserveEntries("dir", dirs)
		opts.Metrics.ObserveEntries("file", len(recs)-dirs)
		log.Debug("extracted directory archive", "output", output, "entries", len(recs))
	} else {
		if err := writeFileAtomic(output, dec); err != nil {
			return res, err
		}
	}
	res.Duration = time.Since(start)

	opts.Metrics.ObserveChunks(metrics.OpDecompress, execPath(opts.Scheduler, len(enc)), res.Chunks)
	opts.Metrics.ObserveOperation(metrics.OpDecompress, len(enc), len(dec), res.Duration)
	log.Info("decompressed",
		"input", input,
		"output", output,
		"dir", res.IsDir,
		"in_bytes", res.InputBytes,
		"out_bytes", res.OutputBytes,
		"duration", res.Duration,
	)
	return res, nil
}

// DecompressText decodes input and returns it as a string. It fails if the
// decoded bytes are not valid UTF-8.
func DecompressText(ctx context.Context, input string, opts Options) (string, error) {
	if !strings.HasSuffix(input, Extension) {
		return "", wrap(ctx, fmt.Errorf("%s: %w", input, ErrNotTZ))
	}
	enc, err := os.ReadFile(input)
	if err != nil {
		return "", wrap(ctx, fmt.Errorf("read input: %w", err))
	}
	s, err := opts.Scheduler.DecodeString(ctx, enc)
	if err != nil {
		return "", wrap(ctx, fmt.Errorf("decode: %w", err))
	}
	return s, nil
}

// decodeFile reads and decodes input, reporting progress over the encoded bytes.
func decodeFile(ctx context.Context, input string, opts Options) (dec, enc []byte, err error) {
	enc, err = os.ReadFile(input)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	opts.logger().Debug("decoding",
		slog.Int("bytes", len(enc)),
		slog.String("path", execPath(opts.Scheduler, len(enc))),
		slog.Int("chunks", opts.Scheduler.DecodeChunks(len(enc))),
	)

	if opts.Progress != nil {
		opts.Progress.Start("Decompressing", uint64(len(enc)))
	}
	dec, err = opts.Scheduler.Decode(ctx, enc)
	if opts.Progress != nil {
		opts.Progress.Stop()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}
	return dec, enc, nil
}
