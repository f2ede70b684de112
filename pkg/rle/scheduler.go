package rle

import (
	"errors"
	"fmt"
	"runtime"
	stdsync "sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/gostdlib/base/concurrency/worker"
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/values/sizes"
)

const (
	// DefaultThreshold is the input size at which work moves to the worker pool.
	DefaultThreshold = 10000
	// DefaultMinChunk is the smallest chunk handed to a worker.
	DefaultMinChunk = 1 * sizes.KiB
)

// ErrNotText is returned by DecodeString when the decoded bytes are not valid UTF-8.
var ErrNotText = errors.New("decoded data is not valid UTF-8 text")

// DefaultWorkers returns half the CPUs on the machine, but at least 1.
func DefaultWorkers() int {
	return max(runtime.NumCPU()/2, 1)
}

// Options configures a Scheduler.
type Options struct {
	// Workers is the number of chunks processed at once. Defaults to DefaultWorkers().
	Workers int
	// Threshold is the input length below which work stays on the calling
	// goroutine. Defaults to DefaultThreshold.
	Threshold int
	// MinChunk is the smallest chunk size used on the parallel path. Defaults to DefaultMinChunk.
	MinChunk int
	// OnChunk, if set, is called with the number of input bytes consumed each time
	// a chunk (or a whole sequential input) finishes. It may be called concurrently.
	OnChunk func(n int)
}

func (o *Options) defaults() {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MinChunk <= 0 {
		o.MinChunk = DefaultMinChunk
	}
}

var poolID atomic.Uint64

// Scheduler runs the pair codec over fixed-size chunks of its input on a bounded
// worker pool. The degree of parallelism is fixed when the Scheduler is created.
// A Scheduler holds no per-call state and is safe for concurrent use.
type Scheduler struct {
	opts Options
	pool *worker.Pool
}

// New creates a Scheduler. The worker pool is carved out of the pool attached to ctx.
func New(ctx context.Context, opts Options) *Scheduler {
	opts.defaults()
	name := fmt.Sprintf("rle-scheduler-%d", poolID.Add(1))
	return &Scheduler{
		opts: opts,
		pool: context.Pool(ctx).Limited(ctx, name, opts.Workers),
	}
}

// Workers returns the degree of parallelism.
func (s *Scheduler) Workers() int {
	return s.opts.Workers
}

// Threshold returns the sequential/parallel cut-over length.
func (s *Scheduler) Threshold() int {
	return s.opts.Threshold
}

// Parallel reports whether an input of length n would use the worker pool.
func (s *Scheduler) Parallel(n int) bool {
	return n >= s.opts.Threshold
}

// ChunkSize returns the chunk size used for an input of length n on the parallel path.
func (s *Scheduler) ChunkSize(n int) int {
	return max(n/s.opts.Workers, s.opts.MinChunk)
}

// Split partitions b into contiguous chunks of size ChunkSize(len(b)). The last
// chunk may be shorter. Boundaries are placed by offset only, so a run that
// crosses one is encoded as separate pairs.
func (s *Scheduler) Split(b []byte) [][]byte {
	return split(b, s.ChunkSize(len(b)))
}

// decodeStep is ChunkSize rounded down to a whole number of pairs.
func (s *Scheduler) decodeStep(n int) int {
	return max(s.ChunkSize(n)&^1, 2)
}

// EncodeChunks returns how many chunks Encode splits an input of length n into.
func (s *Scheduler) EncodeChunks(n int) int {
	if !s.Parallel(n) {
		return 1
	}
	size := s.ChunkSize(n)
	return (n + size - 1) / size
}

// DecodeChunks returns how many groups Decode splits a stream of length n into.
func (s *Scheduler) DecodeChunks(n int) int {
	if !s.Parallel(n) {
		return 1
	}
	per := s.decodeStep(n) / 2
	return (n/2 + per - 1) / per
}

func split[T any](b []T, size int) [][]T {
	chunks := make([][]T, 0, (len(b)+size-1)/size)
	for i := 0; i < len(b); i += size {
		chunks = append(chunks, b[i:min(i+size, len(b))])
	}
	return chunks
}

// Encode pair-encodes b. The output equals the ordered concatenation of the
// encodings of each chunk.
func (s *Scheduler) Encode(ctx context.Context, b []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.Parallel(len(b)) {
		out := Encode(b)
		s.report(len(b))
		return out, nil
	}

	chunks := s.Split(b)
	bufs := make([]*chunkBuf, len(chunks))
	s.run(len(chunks), func(i int) {
		buf := chunkPool.Get(ctx)
		buf.data = AppendEncode(buf.data, chunks[i])
		bufs[i] = buf
		s.report(len(chunks[i]))
	})

	total := 0
	for _, buf := range bufs {
		total += len(buf.data)
	}
	out := make([]byte, 0, total)
	for _, buf := range bufs {
		out = append(out, buf.data...)
	}
	releaseAll(ctx, bufs)
	return out, nil
}

// Decode expands a pair stream. A dangling trailing byte is dropped.
//
// On the parallel path the stream is first split into its pairs, and the pairs
// are cut into groups. Because every pair's output length is its count, each
// group's output offset is known up front and groups expand straight into
// disjoint regions of the result.
func (s *Scheduler) Decode(ctx context.Context, enc []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.Parallel(len(enc)) {
		out := Decode(enc)
		s.report(len(enc))
		return out, nil
	}

	groups := split(Pairs(enc), s.decodeStep(len(enc))/2)
	offsets := make([]int, len(groups)+1)
	for i, g := range groups {
		offsets[i+1] = offsets[i] + pairsLen(g)
	}

	out := make([]byte, offsets[len(groups)])
	s.run(len(groups), func(i int) {
		expandPairs(out[offsets[i]:offsets[i+1]], groups[i])
		s.report(2 * len(groups[i]))
	})
	// Dangling byte.
	s.report(len(enc) % 2)
	return out, nil
}

// DecodeString expands a pair stream that is expected to hold UTF-8 text.
func (s *Scheduler) DecodeString(ctx context.Context, enc []byte) (string, error) {
	b, err := s.Decode(ctx, enc)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrNotText
	}
	return string(b), nil
}

// run calls fn(0..n-1) on the worker pool and blocks until all calls return.
// fn must only touch state owned by its index.
func (s *Scheduler) run(n int, fn func(i int)) {
	var wg stdsync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		s.pool.Submit(context.Background(), func() {
			defer wg.Done()
			fn(i)
		})
	}
	wg.Wait()
}

func (s *Scheduler) report(n int) {
	if s.opts.OnChunk != nil && n > 0 {
		s.opts.OnChunk(n)
	}
}
