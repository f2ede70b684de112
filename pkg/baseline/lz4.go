package baseline

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 implements Compressor using the LZ4 frame format.
type LZ4 struct{}

// Name returns "lz4".
func (l *LZ4) Name() string {
	return "lz4"
}

// Compress compresses data into a single LZ4 frame.
func (l *LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decompresses an LZ4 frame.
func (l *LZ4) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
