package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/report"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/response"
	"github.com/cradoe/nationalid/internal/validator"
	"github.com/cradoe/nationalid/internal/workflow"
)

var (
	errReportDatesRequired = errors.New("start date and end date are required")
	errInvalidReportDate   = errors.New("dates must be in YYYY-MM-DD format")
	errInvalidReportRange  = errors.New("start date must not be after end date")
	errInvalidReportType   = errors.New("report type must be applications, renewals or new_applications")
	errInvalidReportStatus = errors.New("unknown application status")
	errInvalidReportFormat = errors.New("format must be csv or pdf")
)

type ReportHandler struct {
	ReportRepo repository.ReportRepository
	ErrHandler *errHandler.ErrorRepository
}

func NewReportHandler(handler *ReportHandler) *ReportHandler {
	return &ReportHandler{
		ReportRepo: handler.ReportRepo,
		ErrHandler: handler.ErrHandler,
	}
}

// reportFilter reads the report query string. Status and constituency
// default to "all" and the report type to "applications".
func reportFilter(r *http.Request) (repository.ReportFilter, error) {
	q := r.URL.Query()

	filter := repository.ReportFilter{
		StartDate:    strings.TrimSpace(q.Get("start_date")),
		EndDate:      strings.TrimSpace(q.Get("end_date")),
		Status:       strings.TrimSpace(q.Get("status")),
		Constituency: strings.TrimSpace(q.Get("constituency")),
		ReportType:   strings.TrimSpace(q.Get("report_type")),
	}

	if filter.StartDate == "" || filter.EndDate == "" {
		return filter, errReportDatesRequired
	}

	start, err := time.Parse(dateLayout, filter.StartDate)
	if err != nil {
		return filter, errInvalidReportDate
	}
	end, err := time.Parse(dateLayout, filter.EndDate)
	if err != nil {
		return filter, errInvalidReportDate
	}
	if start.After(end) {
		return filter, errInvalidReportRange
	}

	if filter.Status == "" {
		filter.Status = repository.ReportFilterAll
	}
	if filter.Constituency == "" {
		filter.Constituency = repository.ReportFilterAll
	}
	if filter.ReportType == "" {
		filter.ReportType = repository.ReportTypeApplications
	}

	// card_arrived is the admin UI's name for ready_for_collection.
	if filter.Status == string(workflow.ActionCardArrived) {
		filter.Status = string(workflow.ReadyForCollection)
	}
	if filter.Status != repository.ReportFilterAll && !workflow.Valid(filter.Status) {
		return filter, errInvalidReportStatus
	}

	if !validator.PermittedValue(filter.ReportType,
		repository.ReportTypeApplications,
		repository.ReportTypeRenewals,
		repository.ReportTypeNewApplications,
	) {
		return filter, errInvalidReportType
	}

	return filter, nil
}

func (h *ReportHandler) load(r *http.Request, filter repository.ReportFilter) (*report.Report, error) {
	rows, err := h.ReportRepo.Rows(r.Context(), filter)
	if err != nil {
		return nil, err
	}

	stats, err := h.ReportRepo.Stats(r.Context(), filter)
	if err != nil {
		return nil, err
	}

	rep := &report.Report{
		Type:         filter.ReportType,
		StartDate:    filter.StartDate,
		EndDate:      filter.EndDate,
		Status:       filter.Status,
		Constituency: filter.Constituency,
		Rows:         rows,
		GeneratedAt:  time.Now(),
	}
	if stats != nil {
		rep.Stats = *stats
	}

	return rep, nil
}

func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	filter, err := reportFilter(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	rep, err := h.load(r, filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	notAvailable := "N/A"
	for i := range rep.Rows {
		if rep.Rows[i].OfficerName == nil {
			rep.Rows[i].OfficerName = &notAvailable
		}
	}

	data := map[string]any{
		"applications": rep.Rows,
		"stats":        rep.Stats,
		"filters": map[string]any{
			"start_date":   filter.StartDate,
			"end_date":     filter.EndDate,
			"status":       filter.Status,
			"constituency": filter.Constituency,
			"report_type":  filter.ReportType,
		},
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *ReportHandler) HandleExportReport(w http.ResponseWriter, r *http.Request) {
	filter, err := reportFilter(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = report.FormatCSV
	}

	var write func(*bytes.Buffer, *report.Report) error
	switch format {
	case report.FormatCSV:
		write = func(buf *bytes.Buffer, rep *report.Report) error { return report.WriteCSV(buf, rep) }
	case report.FormatPDF:
		write = func(buf *bytes.Buffer, rep *report.Report) error { return report.WritePDF(buf, rep) }
	default:
		h.ErrHandler.BadRequest(w, r, errInvalidReportFormat)
		return
	}

	rep, err := h.load(r, filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// render fully before writing so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := write(&buf, rep); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.Attachment(w, report.ContentType(format), rep.Filename(format), &buf)
	if err != nil {
		h.ErrHandler.ReportServerError(r, err)
	}
}
