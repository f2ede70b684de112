package rle

import "testing"

func TestChunkBufReset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cap     int
		wantCap int
	}{
		{name: "Success: small buffer is kept", cap: 16 * 1024, wantCap: 16 * 1024},
		{name: "Success: buffer at the bound is kept", cap: maxPooledCap, wantCap: maxPooledCap},
		{name: "Success: oversized buffer is dropped", cap: 4 << 20, wantCap: 0},
	}

	for _, test := range tests {
		b := &chunkBuf{data: make([]byte, 10, test.cap)}
		b.Reset()
		if len(b.data) != 0 {
			t.Errorf("TestChunkBufReset(%s): len = %d, want 0", test.name, len(b.data))
		}
		if cap(b.data) != test.wantCap {
			t.Errorf("TestChunkBufReset(%s): cap = %d, want %d", test.name, cap(b.data), test.wantCap)
		}
	}
}
