package testutil

import (
	"io"

	"github.com/petermazzocco/go-feed-api/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0)
}
