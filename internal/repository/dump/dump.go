// Package dump writes the corpus and raw graph results to JSON files.
package dump

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kailas-cloud/cellindex/internal/domain/document"
)

// DatePlaceholder is replaced with the run date (YYYYMMDD) in file paths.
const DatePlaceholder = "{date}"

// ResolvePath substitutes the run date into a path pattern.
func ResolvePath(pattern string, now time.Time) string {
	return strings.ReplaceAll(pattern, DatePlaceholder, now.Format("20060102"))
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the date source used for path substitution.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// Writer writes JSON documents to a dated file path.
type Writer struct {
	pattern string
	now     func() time.Time
}

// New creates a file writer for the given path pattern.
func New(pattern string, opts ...Option) *Writer {
	w := &Writer{pattern: pattern, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the file path for the current date.
func (w *Writer) Path() string {
	return ResolvePath(w.pattern, w.now())
}

// Write stores the corpus as a JSON array.
func (w *Writer) Write(ctx context.Context, docs []*document.Document) error {
	if docs == nil {
		docs = []*document.Document{}
	}
	return w.Encode(ctx, docs)
}

// Encode writes v as indented JSON. The file is replaced atomically.
func (w *Writer) Encode(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := w.Path()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close() //nolint:errcheck,gosec // encode error takes precedence
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
