package feed

import "github.com/petermazzocco/go-feed-api/internal/apperr"

var (
	ErrUserNotFound = apperr.New(apperr.NotFound, "Could not find the user!")
	ErrPostNotFound = apperr.New(apperr.NotFound, "Could not find the post!")
	ErrNotCreator   = apperr.New(apperr.Forbidden, "Not authorized!")
	ErrNoImage      = apperr.New(apperr.InvalidInput, "No image provided")
	ErrNoFilePicked = apperr.New(apperr.InvalidInput, "No file picked!")
)

const invalidInputMessage = "Validation failed, entered data is incorrect."
