package baseline

import (
	"github.com/golang/snappy"
)

// Snappy implements Compressor using the Snappy block format.
type Snappy struct{}

// Name returns "snappy".
func (s *Snappy) Name() string {
	return "snappy"
}

// Compress compresses data using Snappy.
func (s *Snappy) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress decompresses Snappy data.
func (s *Snappy) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}
