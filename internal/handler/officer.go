package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/helper"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/response"
	"github.com/cradoe/nationalid/internal/stream"
)

type OfficerHandler struct {
	OfficerRepo  repository.OfficerRepository
	ActivityRepo repository.ActivityRepository
	Publisher    stream.Publisher
	Helper       helper.BackgroundRunner
	ErrHandler   *errHandler.ErrorRepository
}

func NewOfficerHandler(handler *OfficerHandler) *OfficerHandler {
	return &OfficerHandler{
		OfficerRepo:  handler.OfficerRepo,
		ActivityRepo: handler.ActivityRepo,
		Publisher:    handler.Publisher,
		Helper:       handler.Helper,
		ErrHandler:   handler.ErrHandler,
	}
}

func (h *OfficerHandler) HandlePendingOfficers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, repository.OfficerPendingStatus)
}

// HandleApprovedOfficers lists suspended officers too, so they can be reinstated.
func (h *OfficerHandler) HandleApprovedOfficers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, repository.OfficerApprovedStatus, repository.OfficerSuspendedStatus)
}

func (h *OfficerHandler) list(w http.ResponseWriter, r *http.Request, statuses ...string) {
	officers, err := h.OfficerRepo.ListByStatus(r.Context(), statuses...)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if officers == nil {
		officers = []models.Officer{}
	}

	err = response.JSONOkResponse(w, map[string]any{"officers": officers}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *OfficerHandler) HandleApproveOfficer(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, repository.OfficerApprovedStatus, "Officer approved successfully")
}

func (h *OfficerHandler) HandleRejectOfficer(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, repository.OfficerRejectedStatus, "Officer rejected")
}

func (h *OfficerHandler) HandleSuspendOfficer(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, repository.OfficerSuspendedStatus, "Officer suspended successfully")
}

func (h *OfficerHandler) HandleUnsuspendOfficer(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, repository.OfficerApprovedStatus, "Officer unsuspended successfully")
}

func (h *OfficerHandler) setStatus(w http.ResponseWriter, r *http.Request, status, message string) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	found, err := h.OfficerRepo.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "Officer not found")
		return
	}

	activityLogger{repo: h.ActivityRepo, helper: h.Helper}.
		record(r, repository.ActivityLogOfficerEntity, id, "Officer status set to "+status)

	publish(h.Helper, h.Publisher, r, stream.OfficerStatusTopic, strconv.FormatInt(id, 10), stream.OfficerEvent{
		OfficerID:  id,
		Status:     status,
		OccurredAt: time.Now(),
	})

	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *OfficerHandler) HandleDeleteOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	found, err := h.OfficerRepo.Delete(r.Context(), id)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "Officer not found")
		return
	}

	activityLogger{repo: h.ActivityRepo, helper: h.Helper}.
		record(r, repository.ActivityLogOfficerEntity, id, "Officer deleted")

	err = response.JSONOkResponse(w, nil, "Officer deleted successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
