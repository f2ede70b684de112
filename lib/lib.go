// Package lib provides compression and decompression functions for the tz format.
// It wraps the core, rle and archive packages behind a single import and a
// process-wide Scheduler.
package lib

import (
	"io"
	"sync"

	"tz/pkg/archive"
	"tz/pkg/core"
	"tz/pkg/progress"
	"tz/pkg/rle"

	"github.com/gostdlib/base/context"
)

// Constants for the tz format re-exported from the packages that own them.
const (
	Header    = archive.Header // First line of a directory archive
	Extension = core.Extension // Suffix of compressed files
	MaxRun    = rle.MaxRun     // Longest run a single pair can hold
)

// Result re-exported from core
type Result = core.Result

// Options re-exported from core
type Options = core.Options

var defaultScheduler = sync.OnceValue(func() *rle.Scheduler {
	return rle.New(context.Background(), rle.Options{
		OnChunk: func(n int) { progress.AddBytes(uint64(n)) },
	})
})

// Scheduler returns the Scheduler shared by every function in this package.
// It is created on first use with default settings and reports to the
// default progress tracker.
func Scheduler() *rle.Scheduler {
	return defaultScheduler()
}

// SetProgressOutput redirects progress lines, which go to stdout by default.
// A nil w silences them.
func SetProgressOutput(w io.Writer) {
	progress.SetOutput(w)
}

func options() Options {
	return Options{Scheduler: Scheduler(), Progress: progress.Default()}
}

// Compress is a wrapper around core.Compress using the shared Scheduler.
func Compress(ctx context.Context, input, output string) (Result, error) {
	return core.Compress(ctx, input, output, options())
}

// Decompress is a wrapper around core.Decompress using the shared Scheduler.
func Decompress(ctx context.Context, input, output string) (Result, error) {
	return core.Decompress(ctx, input, output, options())
}

// Encode pair-encodes b in memory.
func Encode(ctx context.Context, b []byte) ([]byte, error) {
	return Scheduler().Encode(ctx, b)
}

// Decode expands a pair stream in memory.
func Decode(ctx context.Context, enc []byte) ([]byte, error) {
	return Scheduler().Decode(ctx, enc)
}

// PackDir flattens the tree at root into a directory archive.
func PackDir(ctx context.Context, root string) ([]byte, error) {
	return archive.Serialize(ctx, root)
}

// UnpackDir rebuilds a directory archive under outRoot, skipping malformed entries.
func UnpackDir(ctx context.Context, b []byte, outRoot string) error {
	return archive.Deserialize(ctx, b, outRoot, archive.ParseOptions{})
}
