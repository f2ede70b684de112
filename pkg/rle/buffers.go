package rle

import (
	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/values/sizes"
)

// chunkBuf holds the encoded output of one chunk until it is merged.
type chunkBuf struct {
	data []byte
}

// maxPooledCap is the largest buffer a chunkBuf keeps once it is back in the pool.
const maxPooledCap = 64 * sizes.KiB

// Reset implements the Resetter interface for sync.Pool.
func (c *chunkBuf) Reset() {
	if cap(c.data) > maxPooledCap {
		c.data = nil
		return
	}
	c.data = c.data[:0]
}

var chunkPool = sync.NewPool[*chunkBuf](
	context.Background(),
	"rle.chunkPool",
	func() *chunkBuf {
		return &chunkBuf{data: make([]byte, 0, 16*sizes.KiB)}
	},
)

// releaseAll returns every buffer in bufs to the pool.
func releaseAll(ctx context.Context, bufs []*chunkBuf) {
	for _, b := range bufs {
		if b != nil {
			chunkPool.Put(ctx, b)
		}
	}
}
