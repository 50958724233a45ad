package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/cradoe/nationalid/internal/errHandler"
)

// UploadResolver maps a stored document name to a file on disk.
type UploadResolver interface {
	Path(name string) (string, error)
}

type UploadHandler struct {
	Uploads    UploadResolver
	ErrHandler *errHandler.ErrorRepository
}

func NewUploadHandler(handler *UploadHandler) *UploadHandler {
	return &UploadHandler{
		Uploads:    handler.Uploads,
		ErrHandler: handler.ErrHandler,
	}
}

// HandleServeUpload serves documents kept on local disk. Remote drivers
// store full URLs, so clients never hit this route for them.
func (h *UploadHandler) HandleServeUpload(w http.ResponseWriter, r *http.Request) {
	path, err := h.Uploads.Path(r.PathValue("filename"))
	if err != nil {
		h.ErrHandler.NotFoundMessage(w, r, "File not found")
		return
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()):
		h.ErrHandler.NotFoundMessage(w, r, "File not found")
		return
	case err != nil:
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	http.ServeFile(w, r, path)
}
