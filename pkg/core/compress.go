package core

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"tz/pkg/archive"
	"tz/pkg/metrics"

	"github.com/gostdlib/base/context"
)

// Compress pair-encodes input, a file or a directory, into output. An empty
// output picks DefaultCompressOutput. An existing output is replaced.
func Compress(ctx context.Context, input, output string, opts Options) (Result, error) {
	res, err := compress(ctx, input, output, opts)
	if err != nil {
		opts.Metrics.ObserveError(metrics.OpCompress)
		opts.logger().Error("compress failed", "input", input, "error", err)
		return res, wrap(ctx, err)
	}
	return res, nil
}

func compress(ctx context.Context, input, output string, opts Options) (Result, error) {
	start := time.Now()
	log := opts.logger()

	info, err := os.Stat(input)
	if err != nil {
		return Result{}, fmt.Errorf("stat input: %w", err)
	}
	if output == "" {
		output = DefaultCompressOutput(input, info.IsDir())
	}
	res := Result{Input: input, Output: output, IsDir: info.IsDir()}

	var data []byte
	if info.IsDir() {
		data, err = packDir(ctx, input, opts)
		if err != nil {
			return res, err
		}
		log.Debug("packed directory", "input", input, "archive_bytes", len(data))
	} else {
		data, err = os.ReadFile(input)
		if err != nil {
			return res, fmt.Errorf("read input: %w", err)
		}
	}
	res.InputBytes = int64(len(data))

	s := opts.Scheduler
	res.Parallel = s.Parallel(len(data))
	res.Chunks = s.EncodeChunks(len(data))
	log.Debug("encoding",
		slog.Int("bytes", len(data)),
		slog.String("path", execPath(s, len(data))),
		slog.Int("chunks", res.Chunks),
		slog.Int("workers", s.Workers()),
	)

	if opts.Progress != nil {
		opts.Progress.Start("Compressing", uint64(len(data)))
	}
	enc, err := s.Encode(ctx, data)
	if opts.Progress != nil {
		opts.Progress.Stop()
	}
	if err != nil {
		return res, fmt.Errorf("encode: %w", err)
	}

	if err := writeFileAtomic(output, enc); err != nil {
		return res, err
	}
	res.OutputBytes = int64(len(enc))
	res.Duration = time.Since(start)

	opts.Metrics.ObserveChunks(metrics.OpCompress, execPath(s, len(data)), res.Chunks)
	opts.Metrics.ObserveOperation(metrics.OpCompress, len(data), len(enc), res.Duration)
	log.Info("compressed",
		"input", input,
		"output", output,
		"in_bytes", res.InputBytes,
		"out_bytes", res.OutputBytes,
		"duration", res.Duration,
	)
	return res, nil
}

// packDir serializes a directory tree into an archive buffer.
func packDir(ctx context.Context, root string, opts Options) ([]byte, error) {
	entries, err := archive.Collect(root)
	if err != nil {
		return nil, err
	}
	dirs, files := 0, 0
	for _, e := range entries {
		if e.IsDir {
			dirs++
		} else {
			files++
		}
	}
	data, err := archive.Build(ctx, entries)
	if err != nil {
		return nil, err
	}
	opts.Metrics.ObserveEntries("dir", dirs)
	opts.Metrics.ObserveEntries("file", files)
	return data, nil
}
