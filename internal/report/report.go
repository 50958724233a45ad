// Package report renders application reports as CSV and PDF downloads.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"

	notAvailable = "N/A"
)

// Report is one export: the filter that produced it, its rows and totals.
type Report struct {
	Type         string
	StartDate    string
	EndDate      string
	Status       string
	Constituency string

	Rows        []models.ReportRow
	Stats       models.ReportStats
	GeneratedAt time.Time
}

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// Title reads like "Renewals Report - Approved Status - Westlands".
func (r *Report) Title() string {
	title := titleCase(r.Type) + " Report"

	if r.Status != "" && r.Status != "all" {
		title += " - " + titleCase(r.Status) + " Status"
	}
	if r.Constituency != "" && r.Constituency != "all" {
		title += " - " + r.Constituency
	}

	return title
}

func (r *Report) Period() string {
	return fmt.Sprintf("Period: %s to %s", r.StartDate, r.EndDate)
}

// Filename is <type>_report_<start>_to_<end>.<format>.
func (r *Report) Filename(format string) string {
	return fmt.Sprintf("%s_report_%s_to_%s.%s", r.Type, r.StartDate, r.EndDate, format)
}

func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

func valueOr(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}
