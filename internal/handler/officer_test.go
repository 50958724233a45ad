package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/nationalid/internal/mocks"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOfficerHandler() (*OfficerHandler, *mocks.MockDatabase, *mocks.MockPublisher) {
	db := mocks.NewMockDatabase()
	publisher := &mocks.MockPublisher{}

	h := NewOfficerHandler(&OfficerHandler{
		OfficerRepo: db.OfficerRepo,
		Publisher:   publisher,
		Helper:      &mocks.MockHelper{},
		ErrHandler:  mocks.NewErrorHandler(),
	})

	return h, db, publisher
}

func TestHandleOfficerLists(t *testing.T) {
	h, db, _ := newTestOfficerHandler()
	db.OfficerRepo.On("ListByStatus", []string{repository.OfficerPendingStatus}).Return(nil, nil)
	db.OfficerRepo.On("ListByStatus", []string{repository.OfficerApprovedStatus, repository.OfficerSuspendedStatus}).
		Return([]models.Officer{{ID: 1, Status: "approved"}, {ID: 2, Status: "suspended"}}, nil)

	rr := httptest.NewRecorder()
	h.HandlePendingOfficers(rr, httptest.NewRequest(http.MethodGet, "/api/admin/officers/pending", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{}, decodeData(t, rr)["officers"])

	rr = httptest.NewRecorder()
	h.HandleApprovedOfficers(rr, httptest.NewRequest(http.MethodGet, "/api/admin/officers/approved", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeData(t, rr)["officers"], 2)
}

func TestHandleApproveOfficerPublishesEvent(t *testing.T) {
	h, db, publisher := newTestOfficerHandler()
	db.OfficerRepo.On("UpdateStatus", int64(4), repository.OfficerApprovedStatus).Return(true, nil)
	publisher.On("Publish", stream.OfficerStatusTopic, "4", mock.MatchedBy(func(e stream.OfficerEvent) bool {
		return e.OfficerID == 4 && e.Status == repository.OfficerApprovedStatus
	})).Return(nil)

	rr := httptest.NewRecorder()
	h.HandleApproveOfficer(rr, withID(httptest.NewRequest(http.MethodPut, "/api/admin/officers/4/approve", nil), "4"))

	require.Equal(t, http.StatusOK, rr.Code)
	publisher.AssertExpectations(t)
}

func TestHandleOfficerStatusChanges(t *testing.T) {
	tests := []struct {
		name   string
		handle func(h *OfficerHandler) http.HandlerFunc
		status string
	}{
		{name: "reject", handle: func(h *OfficerHandler) http.HandlerFunc { return h.HandleRejectOfficer }, status: repository.OfficerRejectedStatus},
		{name: "suspend", handle: func(h *OfficerHandler) http.HandlerFunc { return h.HandleSuspendOfficer }, status: repository.OfficerSuspendedStatus},
		{name: "unsuspend", handle: func(h *OfficerHandler) http.HandlerFunc { return h.HandleUnsuspendOfficer }, status: repository.OfficerApprovedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, db, publisher := newTestOfficerHandler()
			db.OfficerRepo.On("UpdateStatus", int64(5), tt.status).Return(true, nil)
			publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

			rr := httptest.NewRecorder()
			tt.handle(h)(rr, withID(httptest.NewRequest(http.MethodPut, "/", nil), "5"))

			assert.Equal(t, http.StatusOK, rr.Code)
			db.OfficerRepo.AssertExpectations(t)
		})
	}

	t.Run("unknown officer", func(t *testing.T) {
		h, db, publisher := newTestOfficerHandler()
		db.OfficerRepo.On("UpdateStatus", int64(99), repository.OfficerSuspendedStatus).Return(false, nil)

		rr := httptest.NewRecorder()
		h.HandleSuspendOfficer(rr, withID(httptest.NewRequest(http.MethodPut, "/", nil), "99"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleDeleteOfficer(t *testing.T) {
	h, db, _ := newTestOfficerHandler()
	db.OfficerRepo.On("Delete", int64(6)).Return(true, nil)
	db.OfficerRepo.On("Delete", int64(7)).Return(false, nil)

	rr := httptest.NewRecorder()
	h.HandleDeleteOfficer(rr, withID(httptest.NewRequest(http.MethodDelete, "/", nil), "6"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleDeleteOfficer(rr, withID(httptest.NewRequest(http.MethodDelete, "/", nil), "7"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleDeleteOfficer(rr, withID(httptest.NewRequest(http.MethodDelete, "/", nil), "x"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
