package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var _ Sink = (*DiskSink)(nil)

// DiskSink stores images in a local directory. Returned paths are the file
// name under a fixed prefix, e.g. "images/<uuid>-a.png", wherever the
// directory lives on the host.
type DiskSink struct {
	dir    string
	prefix string
}

// NewDiskSink creates the directory if needed. Stored images are addressed
// as prefix/<name>.
func NewDiskSink(dir, prefix string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	return &DiskSink{dir: filepath.Clean(dir), prefix: strings.Trim(prefix, "/")}, nil
}

func (s *DiskSink) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	base := filepath.Base(NormalizePath(name))
	dst := filepath.Join(s.dir, base)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	return path.Join(s.prefix, base), nil
}

// Remove deletes a file previously returned by Save. Paths outside the
// prefix, or nested below it, are rejected.
func (s *DiskSink) Remove(_ context.Context, p string) error {
	key, ok := keyUnder(s.prefix, p)
	if !ok {
		return fmt.Errorf("image path %q is outside %q", p, s.prefix)
	}

	name := key
	if s.prefix != "" {
		name = strings.TrimPrefix(key, s.prefix+"/")
	}
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("image path %q is not a stored image", p)
	}

	target := filepath.Join(s.dir, name)
	if info, err := os.Lstat(target); err == nil && !info.Mode().IsRegular() {
		return fmt.Errorf("image path %q is not a regular file", p)
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

// Handler serves the stored files under /<prefix>/.
func (s *DiskSink) Handler() http.Handler {
	return http.StripPrefix("/"+s.prefix+"/", http.FileServer(http.Dir(s.dir)))
}
