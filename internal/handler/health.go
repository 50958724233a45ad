package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/response"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthCheckHandler struct {
	DB         pinger
	ErrHandler *errHandler.ErrorRepository
}

func NewHealthCheckHandler(handler *HealthCheckHandler) *HealthCheckHandler {
	return &HealthCheckHandler{
		DB:         handler.DB,
		ErrHandler: handler.ErrHandler,
	}
}

func (h *HealthCheckHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			response.JSONErrorResponse(w, nil, "Database unavailable", http.StatusServiceUnavailable, nil)
			return
		}
	}

	err := response.JSONOkResponse(w, nil, "Up and grateful", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
