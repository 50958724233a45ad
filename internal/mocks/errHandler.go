package mocks

import (
	"io"
	"log/slog"

	"github.com/cradoe/nationalid/internal/errHandler"
)

// NewErrorHandler returns an error handler that logs nowhere and mails nobody.
func NewErrorHandler() *errHandler.ErrorRepository {
	return errHandler.New("", "", nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
