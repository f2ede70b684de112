package lib

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"tz/pkg/progress"

	"github.com/gostdlib/base/context"
)

func TestMain(m *testing.M) {
	SetProgressOutput(nil)
	os.Exit(m.Run())
}

func TestSharedScheduler(t *testing.T) {
	if Scheduler() != Scheduler() {
		t.Fatalf("Scheduler() returned different instances")
	}
}

func TestEncodeDecode(t *testing.T) {
	ctx := context.Background()
	in := append(bytes.Repeat([]byte{'x'}, 600), "tail"...)

	enc, err := Encode(ctx, in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// 600 x's need three pairs: 255 + 255 + 90.
	if enc[0] != MaxRun || enc[2] != MaxRun || enc[4] != 90 {
		t.Errorf("Unexpected run split: %v", enc[:6])
	}
	got, err := Decode(ctx, enc)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(in, got) {
		t.Errorf("Round trip mismatch")
	}
}

func TestCompressDecompress(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("aaa\nbbb"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	res, err := Compress(ctx, src, filepath.Join(dir, "src"+Extension))
	if err != nil {
		t.Fatalf("Compression failed: %v", err)
	}
	out := filepath.Join(dir, "out")
	if _, err := Decompress(ctx, res.Output, out); err != nil {
		t.Fatalf("Decompression failed: %v", err)
	}
	if progress.Default().Processed() == 0 {
		t.Errorf("Shared scheduler did not report progress")
	}
	got, err := os.ReadFile(filepath.Join(out, "a.txt"))
	if err != nil {
		t.Fatalf("Failed to read restored file: %v", err)
	}
	if string(got) != "aaa\nbbb" {
		t.Errorf("Restored content = %q", got)
	}
}

func TestPackUnpackDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(filepath.Join(src, "empty"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	b, err := PackDir(ctx, src)
	if err != nil {
		t.Fatalf("PackDir failed: %v", err)
	}
	if !bytes.HasPrefix(b, []byte(Header)) {
		t.Fatalf("Archive does not start with the header")
	}
	out := filepath.Join(dir, "out")
	if err := UnpackDir(ctx, b, out); err != nil {
		t.Fatalf("UnpackDir failed: %v", err)
	}
	if info, err := os.Stat(filepath.Join(out, "empty")); err != nil || !info.IsDir() {
		t.Errorf("Empty directory was not restored: %v", err)
	}
}
