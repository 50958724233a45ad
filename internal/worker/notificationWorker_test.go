package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cradoe/nationalid/internal/mocks"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestWorker() (*Worker, *mocks.MockDatabase, *mocks.MockMailer) {
	db := mocks.NewMockDatabase()
	mailer := &mocks.MockMailer{}

	wk := New(&Worker{
		DB:      db,
		Mailer:  mailer,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		BaseURL: "http://localhost",
	})

	return wk, db, mailer
}

func encode(t *testing.T, v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleApplicationEvent(t *testing.T) {
	officerID := int64(7)

	t.Run("emails the submitting officer", func(t *testing.T) {
		wk, db, mailer := newTestWorker()
		db.OfficerRepo.On("GetOne", officerID).Return(&models.Officer{ID: officerID, FullName: "Jane Wanjiru", Email: "jane@example.com"}, true, nil)
		mailer.On("Send", "jane@example.com", mock.MatchedBy(func(data map[string]any) bool {
			return data["ApplicationNumber"] == "APP2026000001" && data["IDNumber"] == "ID2026000001" && data["Name"] == "Jane Wanjiru"
		}), []string{"application-status.tmpl"}).Return(nil)

		err := wk.handleApplicationEvent(context.Background(), encode(t, stream.ApplicationEvent{
			ApplicationID:     1,
			ApplicationNumber: "APP2026000001",
			FullNames:         "John Kamau",
			Action:            "approve",
			Status:            "approved",
			IDNumber:          "ID2026000001",
			OfficerID:         &officerID,
			OccurredAt:        time.Now(),
		}))

		require.NoError(t, err)
		mailer.AssertExpectations(t)
	})

	t.Run("skips applications without an officer", func(t *testing.T) {
		wk, db, mailer := newTestWorker()

		err := wk.handleApplicationEvent(context.Background(), encode(t, stream.ApplicationEvent{
			ApplicationNumber: "REP2026000001",
			Status:            "submitted",
		}))

		require.NoError(t, err)
		db.OfficerRepo.AssertNotCalled(t, "GetOne", mock.Anything)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips officers that no longer exist", func(t *testing.T) {
		wk, db, mailer := newTestWorker()
		db.OfficerRepo.On("GetOne", officerID).Return(nil, false, nil)

		err := wk.handleApplicationEvent(context.Background(), encode(t, stream.ApplicationEvent{
			ApplicationNumber: "APP2026000002",
			OfficerID:         &officerID,
		}))

		require.NoError(t, err)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		wk, _, _ := newTestWorker()

		err := wk.handleApplicationEvent(context.Background(), []byte("{not json"))
		assert.ErrorContains(t, err, "decode application event")
	})
}

func TestHandleOfficerEvent(t *testing.T) {
	wk, db, mailer := newTestWorker()
	db.OfficerRepo.On("GetOne", int64(3)).Return(&models.Officer{ID: 3, FullName: "Peter Otieno", Email: "peter@example.com"}, true, nil)
	mailer.On("Send", "peter@example.com", mock.MatchedBy(func(data map[string]any) bool {
		return data["Status"] == "approved"
	}), []string{"officer-status.tmpl"}).Return(nil)

	err := wk.handleOfficerEvent(context.Background(), encode(t, stream.OfficerEvent{OfficerID: 3, Status: "approved"}))

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}
