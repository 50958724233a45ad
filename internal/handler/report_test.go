package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cradoe/nationalid/internal/mocks"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestReportHandler() (*ReportHandler, *mocks.MockDatabase) {
	db := mocks.NewMockDatabase()

	h := NewReportHandler(&ReportHandler{
		ReportRepo: db.ReportRepo,
		ErrHandler: mocks.NewErrorHandler(),
	})

	return h, db
}

func reportRows() []models.ReportRow {
	officer := "Jane Otieno"
	idNumber := "ID202600000001"

	return []models.ReportRow{
		{ID: 1, ApplicationNumber: "APP2026000001", FullNames: "John Kamau", Status: "approved", ApplicationType: "new",
			CreatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), OfficerName: &officer, GeneratedIDNumber: &idNumber},
		{ID: 2, ApplicationNumber: "REP2026000001", FullNames: "Amina Hassan", Status: "submitted", ApplicationType: "renewal",
			CreatedAt: time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)},
	}
}

func TestReportFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{name: "missing end date", query: "start_date=2026-01-01", wantErr: errReportDatesRequired},
		{name: "bad date", query: "start_date=01/01/2026&end_date=2026-01-31", wantErr: errInvalidReportDate},
		{name: "reversed range", query: "start_date=2026-02-01&end_date=2026-01-31", wantErr: errInvalidReportRange},
		{name: "unknown status", query: "start_date=2026-01-01&end_date=2026-01-31&status=lost", wantErr: errInvalidReportStatus},
		{name: "unknown type", query: "start_date=2026-01-01&end_date=2026-01-31&report_type=officers", wantErr: errInvalidReportType},
		{name: "same day", query: "start_date=2026-01-31&end_date=2026-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reportFilter(httptest.NewRequest(http.MethodGet, "/api/reports?"+tt.query, nil))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	filter, err := reportFilter(httptest.NewRequest(http.MethodGet, "/api/reports?start_date=2026-01-01&end_date=2026-01-31", nil))
	require.NoError(t, err)
	assert.Equal(t, repository.ReportFilterAll, filter.Status)
	assert.Equal(t, repository.ReportFilterAll, filter.Constituency)
	assert.Equal(t, repository.ReportTypeApplications, filter.ReportType)

	filter, err = reportFilter(httptest.NewRequest(http.MethodGet, "/api/reports?start_date=2026-01-01&end_date=2026-01-31&status=card_arrived", nil))
	require.NoError(t, err)
	assert.Equal(t, string(workflow.ReadyForCollection), filter.Status)
}

func TestHandleReport(t *testing.T) {
	h, db := newTestReportHandler()

	filter := repository.ReportFilter{StartDate: "2026-03-01", EndDate: "2026-03-31", Status: "all", Constituency: "Westlands", ReportType: "applications"}
	db.ReportRepo.On("Rows", filter).Return(reportRows(), nil)
	db.ReportRepo.On("Stats", filter).Return(&models.ReportStats{Total: 2, Pending: 1, Approved: 1}, nil)

	rr := httptest.NewRecorder()
	h.HandleReport(rr, httptest.NewRequest(http.MethodGet, "/api/reports?start_date=2026-03-01&end_date=2026-03-31&constituency=Westlands", nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	data := decodeData(t, rr)

	rows := data["applications"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "N/A", rows[1].(map[string]any)["officer_name"])
	assert.Equal(t, float64(2), data["stats"].(map[string]any)["total"])
	assert.Equal(t, "Westlands", data["filters"].(map[string]any)["constituency"])
}

func TestHandleReportStorageError(t *testing.T) {
	h, db := newTestReportHandler()
	db.ReportRepo.On("Rows", mockAnyFilter()).Return(nil, errors.New("boom"))

	rr := httptest.NewRecorder()
	h.HandleReport(rr, httptest.NewRequest(http.MethodGet, "/api/reports?start_date=2026-03-01&end_date=2026-03-31", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandleExportReport(t *testing.T) {
	t.Run("csv download", func(t *testing.T) {
		h, db := newTestReportHandler()
		db.ReportRepo.On("Rows", mockAnyFilter()).Return(reportRows(), nil)
		db.ReportRepo.On("Stats", mockAnyFilter()).Return(&models.ReportStats{Total: 2}, nil)

		rr := httptest.NewRecorder()
		h.HandleExportReport(rr, httptest.NewRequest(http.MethodGet, "/api/reports/export?start_date=2026-03-01&end_date=2026-03-31&report_type=renewals", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="renewals_report_2026-03-01_to_2026-03-31.csv"`, rr.Header().Get("Content-Disposition"))

		lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "Application Number,Applicant Name,Status,Application Type,Created Date,Officer Name,ID Number", lines[0])
		assert.Equal(t, "REP2026000001,Amina Hassan,submitted,renewal,2026-03-05 14:00:00,N/A,N/A", lines[2])
	})

	t.Run("pdf download", func(t *testing.T) {
		h, db := newTestReportHandler()
		db.ReportRepo.On("Rows", mockAnyFilter()).Return(reportRows(), nil)
		db.ReportRepo.On("Stats", mockAnyFilter()).Return(&models.ReportStats{Total: 2}, nil)

		rr := httptest.NewRecorder()
		h.HandleExportReport(rr, httptest.NewRequest(http.MethodGet, "/api/reports/export?start_date=2026-03-01&end_date=2026-03-31&format=PDF", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))
	})

	t.Run("unknown format", func(t *testing.T) {
		h, db := newTestReportHandler()

		rr := httptest.NewRecorder()
		h.HandleExportReport(rr, httptest.NewRequest(http.MethodGet, "/api/reports/export?start_date=2026-03-01&end_date=2026-03-31&format=xlsx", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		db.ReportRepo.AssertNotCalled(t, "Rows", mockAnyFilter())
	})
}

func mockAnyFilter() any {
	return mock.AnythingOfType("repository.ReportFilter")
}
