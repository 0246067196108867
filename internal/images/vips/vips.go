// Package vips checks and shrinks uploaded images with libvips (via bimg).
// It needs cgo and libvips at build time, so only the binary imports it.
package vips

import (
	"errors"
	"fmt"

	"github.com/h2non/bimg"
)

// ErrUnsupported is returned for payloads that are not PNG or JPEG images.
var ErrUnsupported = errors.New("unsupported image type")

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
}

// Inspector validates image payloads and downsizes wide images.
type Inspector struct {
	maxWidth int
}

// New creates an Inspector. A maxWidth of zero disables resizing.
func New(maxWidth int) *Inspector {
	return &Inspector{maxWidth: maxWidth}
}

// Prepare returns the bytes to store and their detected MIME type.
func (i *Inspector) Prepare(data []byte) ([]byte, string, error) {
	img := bimg.NewImage(data)

	mime, ok := mimeTypes[img.Type()]
	if !ok {
		return nil, "", ErrUnsupported
	}

	if i.maxWidth <= 0 {
		return data, mime, nil
	}

	size, err := img.Size()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image size: %w", err)
	}
	if size.Width <= i.maxWidth {
		return data, mime, nil
	}

	resized, err := img.Process(bimg.Options{Width: i.maxWidth})
	if err != nil {
		return nil, "", fmt.Errorf("failed to resize image: %w", err)
	}
	return resized, mime, nil
}
