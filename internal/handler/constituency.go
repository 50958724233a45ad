package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/request"
	"github.com/cradoe/nationalid/internal/response"
)

var (
	errConstituencyNameRequired = errors.New("constituency name is required")
	errConstituencyExists       = errors.New("constituency already exists")
)

type ConstituencyHandler struct {
	ConstituencyRepo repository.ConstituencyRepository
	ErrHandler       *errHandler.ErrorRepository
}

func NewConstituencyHandler(handler *ConstituencyHandler) *ConstituencyHandler {
	return &ConstituencyHandler{
		ConstituencyRepo: handler.ConstituencyRepo,
		ErrHandler:       handler.ErrHandler,
	}
}

func (h *ConstituencyHandler) HandleListConstituencies(w http.ResponseWriter, r *http.Request) {
	constituencies, err := h.ConstituencyRepo.List(r.Context())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if constituencies == nil {
		constituencies = []models.Constituency{}
	}

	err = response.JSONOkResponse(w, map[string]any{"constituencies": constituencies}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *ConstituencyHandler) HandleCreateConstituency(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		h.ErrHandler.BadRequest(w, r, errConstituencyNameRequired)
		return
	}

	constituency, err := h.ConstituencyRepo.Insert(r.Context(), name)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		h.ErrHandler.BadRequest(w, r, errConstituencyExists)
		return
	case err != nil:
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONCreatedResponse(w, constituency, "Constituency added successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *ConstituencyHandler) HandleDeleteConstituency(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	found, err := h.ConstituencyRepo.Delete(r.Context(), id)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "Constituency not found")
		return
	}

	err = response.JSONOkResponse(w, nil, "Constituency deleted successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
