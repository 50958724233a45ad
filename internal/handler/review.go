package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	appcontext "github.com/cradoe/nationalid/internal/context"
	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/helper"
	"github.com/cradoe/nationalid/internal/metrics"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/response"
	"github.com/cradoe/nationalid/internal/stream"
	"github.com/cradoe/nationalid/internal/workflow"
)

const wrongStateMessage = "Application not found or not in the required state"

var (
	errNoOfficerLocation = errors.New("officer has no constituency or station set")
	errIDNumberTaken     = errors.New("the allocated ID number is already in use, retry the approval")
)

// WorkflowHandler moves applications through review, printing, dispatch and collection.
type WorkflowHandler struct {
	ApplicationRepo repository.ApplicationRepository
	DocumentRepo    repository.DocumentRepository
	ActivityRepo    repository.ActivityRepository
	Publisher       stream.Publisher
	Metrics         *metrics.Metrics
	Helper          helper.BackgroundRunner
	ErrHandler      *errHandler.ErrorRepository
}

func NewWorkflowHandler(handler *WorkflowHandler) *WorkflowHandler {
	return &WorkflowHandler{
		ApplicationRepo: handler.ApplicationRepo,
		DocumentRepo:    handler.DocumentRepo,
		ActivityRepo:    handler.ActivityRepo,
		Publisher:       handler.Publisher,
		Metrics:         handler.Metrics,
		Helper:          handler.Helper,
		ErrHandler:      handler.ErrHandler,
	}
}

func (h *WorkflowHandler) HandlePendingApplications(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r, workflow.Submitted)
}

func (h *WorkflowHandler) HandleApplicationHistory(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r)
}

func (h *WorkflowHandler) HandlePreviewQueue(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r, workflow.Approved)
}

func (h *WorkflowHandler) HandleDispatchQueue(w http.ResponseWriter, r *http.Request) {
	h.queue(w, r, workflow.ReadyForDispatch)
}

func (h *WorkflowHandler) queue(w http.ResponseWriter, r *http.Request, statuses ...workflow.Status) {
	applications, err := h.ApplicationRepo.ListByStatus(r.Context(), statuses...)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if applications == nil {
		applications = []models.ApplicationListItem{}
	}

	err = response.JSONOkResponse(w, map[string]any{"applications": applications}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *WorkflowHandler) HandleApplicationDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	app, found, err := h.ApplicationRepo.GetOne(r.Context(), id)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "Application not found")
		return
	}

	app.Documents, err = h.DocumentRepo.ListByApplication(r.Context(), app.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, map[string]any{"application": app}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *WorkflowHandler) HandleApplicationActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	logs, err := h.ActivityRepo.ListForEntity(r.Context(), repository.ActivityLogApplicationEntity, id)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if logs == nil {
		logs = []models.ActivityLog{}
	}

	err = response.JSONOkResponse(w, map[string]any{"activity": logs}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleApproveApplication approves a submitted application and issues its ID
// number. Approving twice returns the number issued the first time.
func (h *WorkflowHandler) HandleApproveApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	approval, err := h.ApplicationRepo.Approve(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.Metrics.IncTransition(string(workflow.ActionApprove), false)
		h.ErrHandler.NotFoundMessage(w, r, "Application not found")
		return
	case errors.Is(err, repository.ErrNotFoundOrWrongState):
		h.Metrics.IncTransition(string(workflow.ActionApprove), false)
		h.ErrHandler.NotFoundMessage(w, r, wrongStateMessage)
		return
	case errors.Is(err, repository.ErrDuplicate):
		h.Metrics.IncTransition(string(workflow.ActionApprove), false)
		h.ErrHandler.Conflict(w, r, errIDNumberTaken)
		return
	case err != nil:
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Metrics.IncTransition(string(workflow.ActionApprove), true)
	if approval.Allocated {
		h.Metrics.IncIDAllocated()
	}

	h.transitioned(r, id, workflow.ActionApprove, approval.IDNumber)

	err = response.JSONOkResponse(w, map[string]any{"id_number": approval.IDNumber}, "Application approved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *WorkflowHandler) HandleRejectApplication(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionReject, "Application rejected")
}

func (h *WorkflowHandler) HandlePrintApplication(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionPrint, "Application marked as ready for dispatch")
}

func (h *WorkflowHandler) HandleDispatchApplication(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionDispatch, "Application dispatched")
}

func (h *WorkflowHandler) HandleCardArrived(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionCardArrived, "Card marked as ready for collection")
}

func (h *WorkflowHandler) HandleCardCollected(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionCardCollected, "Card marked as collected")
}

// HandleSubmitForApproval puts a cash-paid application back in the review queue.
func (h *WorkflowHandler) HandleSubmitForApproval(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionResubmit, "Application submitted for approval")
}

func (h *WorkflowHandler) transition(w http.ResponseWriter, r *http.Request, action workflow.Action, message string) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	err = h.ApplicationRepo.Transition(r.Context(), id, action)
	switch {
	case errors.Is(err, repository.ErrNotFoundOrWrongState):
		h.Metrics.IncTransition(string(action), false)
		h.ErrHandler.NotFoundMessage(w, r, wrongStateMessage)
		return
	case err != nil:
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Metrics.IncTransition(string(action), true)
	h.transitioned(r, id, action, "")

	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// transitioned records the audit row and publishes the status event.
func (h *WorkflowHandler) transitioned(r *http.Request, id int64, action workflow.Action, idNumber string) {
	to := workflow.MustLookup(action).To

	activityLogger{repo: h.ActivityRepo, helper: h.Helper}.
		record(r, repository.ActivityLogApplicationEntity, id, "Application "+string(action)+": now "+string(to))

	if h.Publisher == nil || h.Helper == nil {
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		app, found, err := h.ApplicationRepo.GetOne(context.Background(), id)
		if err != nil || !found {
			return err
		}

		event := applicationEvent(app, string(action), string(to), idNumber)
		return h.Publisher.Publish(stream.ApplicationStatusTopic, app.ApplicationNumber, event)
	})
}

// HandleOfficerApplications lists applications in the officer's constituency,
// or at their station when no constituency is set, plus any they submitted.
func (h *WorkflowHandler) HandleOfficerApplications(w http.ResponseWriter, r *http.Request) {
	principal := appcontext.ContextGetPrincipal(r)

	location := strings.TrimSpace(principal.Constituency)
	if location == "" {
		location = strings.TrimSpace(principal.Station)
	}
	if location == "" {
		h.ErrHandler.BadRequest(w, r, errNoOfficerLocation)
		return
	}

	applications, err := h.ApplicationRepo.ListForOfficer(r.Context(), principal.ID, location)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if applications == nil {
		applications = []models.ApplicationListItem{}
	}

	err = response.JSONOkResponse(w, map[string]any{"applications": applications}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
