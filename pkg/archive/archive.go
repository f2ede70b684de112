// Package archive flattens a directory tree into a single byte buffer and
// rebuilds the tree from it.
//
// Layout:
//
//	TZ_DIR_ARCHIVE:\n
//	<dir>:0\n                    one line per directory, all directories first
//	<file>:<size>\n<content>\n   one block per file
//
// File content is located by its declared size, so it may contain any byte,
// including the line separator.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gostdlib/base/context"
)

const (
	// Header starts every archive buffer.
	Header = "TZ_DIR_ARCHIVE:\n"
	// Separator ends entry lines and follows file content.
	Separator = '\n'
)

var (
	// ErrUnrepresentablePath means a path holds a byte the line format reserves.
	ErrUnrepresentablePath = errors.New("path contains ':' or newline")
	// ErrNotArchive means the buffer does not start with Header.
	ErrNotArchive = errors.New("buffer is not a directory archive")
)

// Entry is one filesystem object of a directory tree.
type Entry struct {
	// RelPath is the slash-separated path relative to the archive root. The root is ".".
	RelPath string
	// Path is the path on disk.
	Path  string
	IsDir bool
	// Size is the file size at listing time. Always 0 for directories.
	Size int64
}

// IsArchive reports whether b holds a directory archive.
func IsArchive(b []byte) bool {
	return len(b) >= len(Header) && string(b[:len(Header)]) == Header
}

// Collect lists root and everything under it. A directory is always listed
// before its children. Sibling order is whatever the walk yields and must not
// be relied upon.
//
// Symbolic links are followed, including when root is one. A link to a
// directory is listed as a directory and descended into unless it points back
// at a directory being walked. Dangling links are skipped.
func Collect(root string) ([]Entry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	w := walker{root: root, active: map[string]bool{}}
	if err := w.walk(root, info); err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return w.entries, nil
}

type walker struct {
	root    string
	entries []Entry
	// active holds the resolved paths of the directories on the current walk path.
	active map[string]bool
}

// walk adds path, whose resolved info is info, and everything under it.
func (w *walker) walk(path string, info fs.FileInfo) error {
	relPath, err := filepath.Rel(w.root, path)
	if err != nil {
		return fmt.Errorf("relative path for %s: %w", path, err)
	}
	e := Entry{RelPath: filepath.ToSlash(relPath), Path: path, IsDir: info.IsDir()}

	if !e.IsDir {
		// Pipes, sockets and devices have no content to archive.
		if !info.Mode().IsRegular() {
			return nil
		}
		e.Size = info.Size()
		w.entries = append(w.entries, e)
		return nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if w.active[resolved] {
		return nil
	}
	w.active[resolved] = true
	defer delete(w.active, resolved)
	w.entries = append(w.entries, e)

	children, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", path, err)
	}
	for _, d := range children {
		child := filepath.Join(path, d.Name())
		info, err := os.Stat(child)
		if err != nil {
			if d.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", child, err)
		}
		if err := w.walk(child, info); err != nil {
			return err
		}
	}
	return nil
}

// Serialize lists root and builds its archive buffer.
func Serialize(ctx context.Context, root string) ([]byte, error) {
	entries, err := Collect(root)
	if err != nil {
		return nil, err
	}
	return Build(ctx, entries)
}

// Build writes the archive buffer for entries, reading file content from disk.
// Directory lines are written before any file block regardless of entry order.
// The root entry (".") is not written; it is the output root on extraction.
func Build(ctx context.Context, entries []Entry) ([]byte, error) {
	var total int64 = int64(len(Header))
	for _, e := range entries {
		if err := checkPath(e.RelPath); err != nil {
			return nil, err
		}
		total += int64(len(e.RelPath)) + 24 + e.Size
	}

	buf := make([]byte, 0, total)
	buf = append(buf, Header...)

	for _, e := range entries {
		if !e.IsDir || isRoot(e.RelPath) {
			continue
		}
		buf = appendLine(buf, e.RelPath, 0)
	}

	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(e.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Path, err)
		}
		buf = appendLine(buf, e.RelPath, len(content))
		buf = append(buf, content...)
		buf = append(buf, Separator)
	}
	return buf, nil
}

func appendLine(buf []byte, relPath string, size int) []byte {
	buf = append(buf, relPath...)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(size), 10)
	return append(buf, Separator)
}

func checkPath(relPath string) error {
	if strings.ContainsAny(relPath, ":\n") {
		return fmt.Errorf("%q: %w", relPath, ErrUnrepresentablePath)
	}
	return nil
}

func isRoot(relPath string) bool {
	return relPath == "" || relPath == "."
}
