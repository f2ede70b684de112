// Package baseline holds general-purpose reference codecs that tz output is
// measured against. They never produce .tz data; the compare command runs them
// over the same input as the RLE codec and reports the sizes side by side.
package baseline

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/gostdlib/base/concurrency/sync"
)

// Compressor defines the interface for a reference compression algorithm.
type Compressor interface {
	// Name is the registry key, such as "zstd".
	Name() string
	// Compress compresses data. Returns compressed data or error.
	Compress(data []byte) ([]byte, error)
	// Decompress decompresses data. Returns original data or error.
	Decompress(data []byte) ([]byte, error)
}

var (
	registry   = map[string]Compressor{}
	registryMu sync.RWMutex
)

// Register adds a compressor to the registry, replacing any with the same name. Thread-safe.
func Register(c Compressor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name()] = c
}

// Get returns the compressor registered under name, or nil if not found.
func Get(name string) Compressor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// Names returns the registered names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Measurement is the outcome of running one codec over an input.
type Measurement struct {
	Name           string
	OriginalSize   int
	CompressedSize int
	Duration       time.Duration
}

// Ratio returns original/compressed, or 0 for empty output.
func (m Measurement) Ratio() float64 {
	if m.CompressedSize == 0 {
		return 0
	}
	return float64(m.OriginalSize) / float64(m.CompressedSize)
}

// Measure compresses data with the named codec and verifies the round trip.
func Measure(name string, data []byte) (Measurement, error) {
	c := Get(name)
	if c == nil {
		return Measurement{}, fmt.Errorf("compressor not registered: %q", name)
	}

	start := time.Now()
	enc, err := c.Compress(data)
	if err != nil {
		return Measurement{}, fmt.Errorf("%s compress: %w", name, err)
	}
	elapsed := time.Since(start)

	dec, err := c.Decompress(enc)
	if err != nil {
		return Measurement{}, fmt.Errorf("%s decompress: %w", name, err)
	}
	if !bytes.Equal(dec, data) {
		return Measurement{}, fmt.Errorf("%s: round trip mismatch", name)
	}

	return Measurement{
		Name:           name,
		OriginalSize:   len(data),
		CompressedSize: len(enc),
		Duration:       elapsed,
	}, nil
}

// MeasureAll runs every registered codec over data.
func MeasureAll(data []byte) ([]Measurement, error) {
	var out []Measurement
	for _, name := range Names() {
		m, err := Measure(name, data)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func init() {
	Register(&LZ4{})
	Register(&Zstd{})
	Register(&Snappy{})
	Register(&Gzip{})
}
