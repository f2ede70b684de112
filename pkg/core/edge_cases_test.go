package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tz/pkg/progress"
	"tz/pkg/rle"

	"github.com/gostdlib/base/context"
)

// TestEmptyFile tests handling of empty files
func TestEmptyFile(t *testing.T) {
	// ─── SETUP ──────────────────────────────────────────────────────
	startTime := time.Now()
	ReportStart("Empty File Handling")
	ctx := context.Background()

	StartSection("Preparing Test Environment")
	Action("Creating empty test file (0 bytes)")
	testDir := t.TempDir()
	emptyFile := filepath.Join(testDir, "empty.txt")
	if err := os.WriteFile(emptyFile, []byte{}, 0644); err != nil {
		Error(fmt.Sprintf("Failed to create empty file: %v", err))
		t.Fatalf("Failed to create empty file: %v", err)
	}
	Success("Empty file created successfully")
	EndSection()

	// ─── COMPRESS ───────────────────────────────────────────────────
	StartSection("Compressing Empty File")
	compressedFile := filepath.Join(testDir, "empty.txt.tz")
	if _, err := Compress(ctx, emptyFile, compressedFile, testOptions()); err != nil {
		Error(fmt.Sprintf("Failed to compress empty file: %v", err))
		t.Fatalf("Failed to compress empty file: %v", err)
	}
	info, err := os.Stat(compressedFile)
	if err != nil {
		t.Fatalf("Compressed file does not exist: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("Compressed empty file has %d bytes, want 0", info.Size())
	}
	Success("Empty file compressed to an empty stream")
	EndSection()

	// ─── DECOMPRESS ─────────────────────────────────────────────────
	StartSection("Decompressing Empty File Archive")
	decompressedFile := filepath.Join(testDir, "decompressed", "empty.txt")
	if _, err := Decompress(ctx, compressedFile, decompressedFile, testOptions()); err != nil {
		Error(fmt.Sprintf("Decompression failed: %v", err))
		t.Fatalf("Failed to decompress empty file: %v", err)
	}
	info, err = os.Stat(decompressedFile)
	if err != nil {
		t.Fatalf("Decompressed file does not exist: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("Decompressed file has %d bytes, want 0", info.Size())
	}
	Success("Empty file decompressed successfully")
	EndSection()

	ReportEnd(true, time.Since(startTime))
}

// TestLargeNumberOfFiles tests handling of directories with many files
func TestLargeNumberOfFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping test in short mode")
	}

	startTime := time.Now()
	ReportStart("Multiple Files Handling")
	ctx := context.Background()

	StartSection("Preparing Test Environment")
	srcDir := filepath.Join(t.TempDir(), "many")
	numDirs, filesPerDir := 10, 50
	Action(fmt.Sprintf("Creating %d directories with %d files each", numDirs, filesPerDir))
	for d := 0; d < numDirs; d++ {
		dir := filepath.Join(srcDir, fmt.Sprintf("dir-%02d", d))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
		for f := 0; f < filesPerDir; f++ {
			content := bytes.Repeat([]byte{byte('a' + f%26)}, f*7)
			content = append(content, fmt.Sprintf("\nfile %d in dir %d\n", f, d)...)
			if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("file-%03d.txt", f)), content, 0644); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}
		}
	}
	Success("Test tree created")
	EndSection()

	StartSection("Round Trip")
	compressedFile := filepath.Join(t.TempDir(), "many.tz")
	res, err := Compress(ctx, srcDir, compressedFile, testOptions())
	if err != nil {
		Error(fmt.Sprintf("Compression failed: %v", err))
		t.Fatalf("Compression failed: %v", err)
	}
	Info(fmt.Sprintf("Archive of %s encoded to %s in %d chunks",
		progress.FormatSize(uint64(res.InputBytes)), progress.FormatSize(uint64(res.OutputBytes)), res.Chunks))

	decompressedDir := filepath.Join(t.TempDir(), "restored")
	if _, err := Decompress(ctx, compressedFile, decompressedDir, testOptions()); err != nil {
		Error(fmt.Sprintf("Decompression failed: %v", err))
		t.Fatalf("Decompression failed: %v", err)
	}

	want, got := treeSnapshot(t, srcDir), treeSnapshot(t, decompressedDir)
	if len(got) != numDirs+numDirs*filesPerDir {
		t.Errorf("Restored %d entries, want %d", len(got), numDirs+numDirs*filesPerDir)
	}
	for p, content := range want {
		if got[p] != content {
			t.Errorf("Entry %s differs after round trip", p)
		}
	}
	Success("All files restored")
	EndSection()

	ReportEnd(!t.Failed(), time.Since(startTime))
}

// TestConcurrentProcessing runs several operations at once on one Scheduler.
func TestConcurrentProcessing(t *testing.T) {
	startTime := time.Now()
	ReportStart("Concurrent Processing")
	ctx := context.Background()
	opts := testOptions()

	StartSection("Preparing Test Environment")
	testDir := t.TempDir()
	numFiles := 5
	filePaths := make([]string, numFiles)
	contents := make([][]byte, numFiles)
	var totalSize int64
	for i := 0; i < numFiles; i++ {
		size := 100 * 1024 * (i + 1)
		content := make([]byte, size)
		for j := 0; j < size; j++ {
			content[j] = byte((j/(i+3) + i) % 256)
		}
		filePaths[i] = filepath.Join(testDir, fmt.Sprintf("test-file-%d.dat", i))
		contents[i] = content
		if err := os.WriteFile(filePaths[i], content, 0644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", filePaths[i], err)
		}
		totalSize += int64(size)
	}
	Info(fmt.Sprintf("Total data size: %s", progress.FormatSize(uint64(totalSize))))
	EndSection()

	StartSection("Compressing and Decompressing in Parallel")
	var wg sync.WaitGroup
	errs := make([]error, numFiles)
	for i := 0; i < numFiles; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			compressed := filePaths[i] + Extension
			if _, err := Compress(ctx, filePaths[i], compressed, opts); err != nil {
				errs[i] = fmt.Errorf("compress %d: %w", i, err)
				return
			}
			restored := filepath.Join(testDir, fmt.Sprintf("restored-%d.dat", i))
			if _, err := Decompress(ctx, compressed, restored, opts); err != nil {
				errs[i] = fmt.Errorf("decompress %d: %w", i, err)
				return
			}
			got, err := os.ReadFile(restored)
			if err != nil {
				errs[i] = err
				return
			}
			if !bytes.Equal(got, contents[i]) {
				errs[i] = fmt.Errorf("file %d: content mismatch", i)
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			Error(err.Error())
			t.Error(err)
		}
	}
	EndSection()

	ReportEnd(!t.Failed(), time.Since(startTime))
}

// TestUnicodePaths tests unicode names and contents in a directory archive.
func TestUnicodePaths(t *testing.T) {
	startTime := time.Now()
	ReportStart("Unicode Path Handling")
	ctx := context.Background()

	StartSection("Preparing Test Environment")
	srcDir := filepath.Join(t.TempDir(), "unicode")
	unicodeFiles := map[string]string{
		"😀-emoji-dir/emoji-file-😎.txt": "This is an emoji file.",
		"中文目录/文件.txt":                  "这是一个中文文件名。",
		"Русская-папка/файл.txt":        "Это русское имя файла.",
	}
	for rel, content := range unicodeFiles {
		p := filepath.Join(srcDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("Failed to create Unicode directory: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create Unicode file %s: %v", p, err)
		}
		Info(fmt.Sprintf("Created file: %s", rel))
	}
	EndSection()

	StartSection("Round Trip")
	compressedFile := filepath.Join(t.TempDir(), "unicode.tz")
	if _, err := Compress(ctx, srcDir, compressedFile, testOptions()); err != nil {
		t.Fatalf("Failed to compress directory with Unicode paths: %v", err)
	}
	decompressedDir := filepath.Join(t.TempDir(), "decompressed")
	if _, err := Decompress(ctx, compressedFile, decompressedDir, testOptions()); err != nil {
		t.Fatalf("Failed to decompress directory with Unicode paths: %v", err)
	}
	got := treeSnapshot(t, decompressedDir)
	for rel, content := range unicodeFiles {
		if got[rel] != content {
			Error(fmt.Sprintf("Mismatch for %s", rel))
			t.Errorf("File %s = %q, want %q", rel, got[rel], content)
		}
	}
	EndSection()

	ReportEnd(!t.Failed(), time.Since(startTime))
}

// TestContentWithSeparators stores file content made of newlines and header text.
func TestContentWithSeparators(t *testing.T) {
	ctx := context.Background()
	srcDir := filepath.Join(t.TempDir(), "lines")
	files := map[string]string{
		"newlines.txt": "\n\n\n",
		"fake.txt":     "other.txt:3\nabc\n",
		"header.txt":   "TZ_DIR_ARCHIVE:\n",
		"long.txt":     string(bytes.Repeat([]byte("x\n"), 6000)),
	}
	for name, content := range files {
		if err := os.MkdirAll(srcDir, 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	compressedFile := filepath.Join(t.TempDir(), "lines.tz")
	if _, err := Compress(ctx, srcDir, compressedFile, testOptions()); err != nil {
		t.Fatalf("Compression failed: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out")
	opts := testOptions()
	opts.Strict = true
	if _, err := Decompress(ctx, compressedFile, out, opts); err != nil {
		t.Fatalf("Decompression failed: %v", err)
	}
	got := treeSnapshot(t, out)
	for name, content := range files {
		if got[name] != content {
			t.Errorf("File %s did not survive the round trip", name)
		}
	}
	if len(got) != len(files) {
		t.Errorf("Restored %d entries, want %d: %v", len(got), len(files), got)
	}
}

// TestCancelledContext checks that nothing is written once the context is done.
func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := Options{Scheduler: rle.New(ctx, rle.Options{Workers: 2})}
	cancel()

	testDir := t.TempDir()
	in := filepath.Join(testDir, "in.txt")
	if err := os.WriteFile(in, []byte("aaaa"), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	if _, err := Compress(ctx, in, "", opts); err == nil {
		t.Fatalf("Compress with a cancelled context succeeded")
	}
	if _, err := os.Stat(in + Extension); !os.IsNotExist(err) {
		t.Errorf("Output was written despite cancellation")
	}
}
