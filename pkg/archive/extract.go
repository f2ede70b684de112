package archive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gostdlib/base/context"
)

var (
	// ErrMalformedEntry is returned in strict mode for an entry line without exactly one ':'.
	ErrMalformedEntry = errors.New("malformed entry line")
	// ErrBadSize is returned in strict mode for a size that is not a non-negative integer.
	ErrBadSize = errors.New("invalid entry size")
	// ErrMissingSeparator is returned in strict mode when file content is not followed by a newline.
	ErrMissingSeparator = errors.New("missing separator after file content")
	// ErrTruncated means a file declares more content than the buffer holds.
	ErrTruncated = errors.New("archive truncated")
	// ErrUnsafePath means an entry would land outside the output root.
	ErrUnsafePath = errors.New("entry path escapes the output root")
)

// ParseOptions controls how tolerant parsing is.
type ParseOptions struct {
	// Strict turns malformed lines, bad sizes and missing separators into errors.
	// Otherwise malformed lines are skipped and bad sizes read as 0 (a directory).
	Strict bool
}

// Record is one parsed archive entry.
type Record struct {
	// RelPath is cleaned and slash-separated. "." is the output root.
	RelPath string
	IsDir   bool
	Content []byte
}

// Parse decodes an archive buffer without touching the filesystem. Content
// slices alias b.
func Parse(b []byte, opts ParseOptions) ([]Record, error) {
	if !IsArchive(b) {
		return nil, ErrNotArchive
	}
	p := parser{buf: b, pos: len(Header), opts: opts}
	return p.records()
}

type parser struct {
	buf  []byte
	pos  int
	opts ParseOptions
}

func (p *parser) records() ([]Record, error) {
	var recs []Record
	for p.pos < len(p.buf) {
		line := p.line()
		if strings.TrimSpace(line) == "" {
			continue
		}

		relPath, sizeField, ok := splitEntry(line)
		if !ok {
			if p.opts.Strict {
				return nil, fmt.Errorf("%q: %w", line, ErrMalformedEntry)
			}
			continue
		}

		size, err := strconv.ParseUint(strings.TrimSpace(sizeField), 10, 63)
		if err != nil {
			if p.opts.Strict {
				return nil, fmt.Errorf("%q: %w", line, ErrBadSize)
			}
			size = 0
		}

		clean, err := cleanPath(relPath)
		if err != nil {
			return nil, err
		}

		if size == 0 {
			// The writer always follows file content with a separator, so an
			// empty file is "path:0\n\n" while a directory is "path:0\n".
			if p.pos < len(p.buf) && p.buf[p.pos] == Separator {
				p.pos++
				recs = append(recs, Record{RelPath: clean, Content: []byte{}})
				continue
			}
			recs = append(recs, Record{RelPath: clean, IsDir: true})
			continue
		}

		if uint64(len(p.buf)-p.pos) < size {
			return nil, fmt.Errorf("%s declares %d bytes, %d remain: %w", clean, size, len(p.buf)-p.pos, ErrTruncated)
		}
		end := p.pos + int(size)
		content := p.buf[p.pos:end:end]
		p.pos = end

		switch {
		case p.pos < len(p.buf) && p.buf[p.pos] == Separator:
			p.pos++
		case p.opts.Strict:
			return nil, fmt.Errorf("%s: %w", clean, ErrMissingSeparator)
		}
		recs = append(recs, Record{RelPath: clean, Content: content})
	}
	return recs, nil
}

// line returns the bytes up to the next separator, minus a trailing '\r',
// and moves past it.
func (p *parser) line() string {
	rest := p.buf[p.pos:]
	i := bytes.IndexByte(rest, Separator)
	if i < 0 {
		p.pos = len(p.buf)
	} else {
		p.pos += i + 1
		rest = rest[:i]
	}
	return strings.TrimSuffix(string(rest), "\r")
}

// splitEntry splits "path:size". It fails unless there is exactly one ':'.
func splitEntry(line string) (relPath, size string, ok bool) {
	relPath, size, ok = strings.Cut(line, ":")
	if !ok || strings.Contains(size, ":") {
		return "", "", false
	}
	return relPath, size, true
}

// cleanPath normalises an entry path and rejects anything that would escape
// the output root.
func cleanPath(relPath string) (string, error) {
	slashed := strings.ReplaceAll(relPath, "\\", "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%q: %w", relPath, ErrUnsafePath)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%q: %w", relPath, ErrUnsafePath)
	}
	return clean, nil
}

// Deserialize rebuilds the tree held in b under outRoot, which is created if needed.
// Filesystem errors are returned as-is, wrapped with the failing path.
func Deserialize(ctx context.Context, b []byte, outRoot string, opts ParseOptions) error {
	recs, err := Parse(b, opts)
	if err != nil {
		return err
	}
	return Extract(ctx, recs, outRoot)
}

// Extract writes recs under outRoot.
func Extract(ctx context.Context, recs []Record, outRoot string) error {
	if err := os.MkdirAll(outRoot, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", outRoot, err)
	}
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(outRoot, filepath.FromSlash(r.RelPath))
		if r.IsDir {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create parent directory for %s: %w", target, err)
		}
		if err := os.WriteFile(target, r.Content, 0644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	return nil
}
