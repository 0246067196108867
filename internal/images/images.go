// Package images stores uploaded post images and removes them again when
// a post drops its image. Stored images are addressed by a forward-slash
// path relative to the sink, which is what posts keep as their imageUrl.
package images

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Sink persists image files.
type Sink interface {
	// Save stores the image under name and returns its path.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Remove deletes the image stored at path.
	Remove(ctx context.Context, path string) error
}

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// IsAllowedType reports whether images of this MIME type are accepted.
func IsAllowedType(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	return allowedTypes[strings.ToLower(strings.TrimSpace(ct))]
}

// ObjectName returns a unique file name that keeps the client's base name.
func ObjectName(filename string) string {
	base := path.Base(NormalizePath(filename))
	if base == "." || base == "/" {
		base = "image"
	}
	base = strings.ReplaceAll(base, " ", "-")
	return fmt.Sprintf("%s-%s", uuid.NewString(), base)
}

// NormalizePath converts host path separators to forward slashes.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// keyUnder joins prefix and name into an object key and reports whether an
// existing key lies inside prefix.
func keyUnder(prefix, key string) (string, bool) {
	clean := path.Clean("/" + NormalizePath(key))[1:]
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return clean, clean != ""
	}
	return clean, strings.HasPrefix(clean, prefix+"/")
}
