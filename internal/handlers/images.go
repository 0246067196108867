package handlers

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/petermazzocco/go-feed-api/internal/apperr"
	"github.com/petermazzocco/go-feed-api/internal/images"
)

const multipartMemory = 8 << 20

var errMalformedForm = apperr.New(apperr.InvalidInput, "Malformed request body.")

// postForm is the text and file content of a post submission.
type postForm struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image"`
	upload   *images.Upload
	file     multipart.File
}

// Close releases the uploaded file, if any.
func (f *postForm) Close() {
	if f.file != nil {
		f.file.Close()
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// readPostForm parses a multipart post submission. The "image" part is either
// a file upload or, when editing, the url of the image to keep.
func (h *Handler) readPostForm(w http.ResponseWriter, r *http.Request) (*postForm, error) {
	if r.ContentLength > h.maxUploadBytes {
		return nil, &http.MaxBytesError{Limit: h.maxUploadBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.InvalidInput, errMalformedForm.Message, err)
	}

	form := &postForm{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		ImageURL: r.FormValue("image"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read image part: %w", err)
	}

	form.file = file
	form.upload = &images.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return form, nil
}
