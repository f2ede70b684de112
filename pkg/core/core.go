// Package core compresses files and directories into .tz archives and back.
//
// A file is pair-encoded as is. A directory is first flattened into a
// TZ_DIR_ARCHIVE buffer and the buffer is pair-encoded. Decompression decodes
// the stream and looks at the header to tell the two apart.
package core

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"tz/pkg/archive"
	"tz/pkg/errors"
	"tz/pkg/metrics"
	"tz/pkg/progress"
	"tz/pkg/rle"

	"github.com/gostdlib/base/context"
)

// Extension is the suffix of compressed files.
const Extension = ".tz"

// ErrNotTZ is returned when decompressing a file without the .tz extension.
var ErrNotTZ = errors.New("input file must have " + Extension + " extension")

// Options holds everything Compress and Decompress need besides paths.
// Only Scheduler is required.
type Options struct {
	Scheduler *rle.Scheduler
	// Strict makes directory archive parsing reject malformed entries.
	Strict   bool
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Progress *progress.Tracker
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Result describes a finished operation.
type Result struct {
	Input       string
	Output      string
	InputBytes  int64
	OutputBytes int64
	// IsDir is true when the operation packed or unpacked a directory.
	IsDir    bool
	Chunks   int
	Parallel bool
	Duration time.Duration
}

// DefaultCompressOutput returns where Compress writes when no output is given:
// next to a file input, or in the working directory for a directory input.
func DefaultCompressOutput(input string, isDir bool) string {
	if !isDir {
		return input + Extension
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	return filepath.Base(abs) + Extension
}

// DefaultDecompressOutput strips the extension from input. An input named
// just ".tz" decompresses to ".tz.decompressed".
func DefaultDecompressOutput(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, Extension)
	if stem == "" {
		stem = base + ".decompressed"
	}
	return filepath.Join(filepath.Dir(input), stem)
}

// wrap turns err into an errors.Error with a category and type picked from
// what failed.
func wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.E(ctx, errors.CatUser, errors.TypeTimeout, err, errors.WithCallNum(3))
	case errors.Is(err, ErrNotTZ):
		return errors.E(ctx, errors.CatUser, errors.TypeParameter, err, errors.WithCallNum(3))
	case errors.Is(err, rle.ErrNotText):
		return errors.E(ctx, errors.CatUser, errors.TypeCodec, err, errors.WithCallNum(3))
	case isArchiveErr(err):
		return errors.E(ctx, errors.CatUser, errors.TypeArchive, err, errors.WithCallNum(3))
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrExist):
		return errors.E(ctx, errors.CatUser, errors.TypeFS, err, errors.WithCallNum(3))
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return errors.E(ctx, errors.CatInternal, errors.TypeFS, err, errors.WithCallNum(3))
	}
	return errors.E(ctx, errors.CatInternal, errors.TypeUnknown, err, errors.WithCallNum(3))
}

func isArchiveErr(err error) bool {
	for _, target := range []error{
		archive.ErrNotArchive,
		archive.ErrUnrepresentablePath,
		archive.ErrMalformedEntry,
		archive.ErrBadSize,
		archive.ErrMissingSeparator,
		archive.ErrTruncated,
		archive.ErrUnsafePath,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func execPath(s *rle.Scheduler, n int) string {
	if s.Parallel(n) {
		return "parallel"
	}
	return "sequential"
}
