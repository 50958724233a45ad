package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

type column struct {
	header string
	width  float64
}

// widths in millimetres; they add up to fit an A4 page with 10mm margins
var tableColumns = []column{
	{"Application #", 25.4},
	{"Applicant Name", 38.1},
	{"Status", 20.3},
	{"Type", 25.4},
	{"Date", 20.3},
	{"Officer", 30.5},
	{"ID Number", 25.4},
}

const rowHeight = 7.0

func WritePDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(r.Title()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, r.Period(), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		for _, col := range tableColumns {
			pdf.CellFormat(col.width, rowHeight+2, col.header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	writeHeader()
	pdf.SetFont("Helvetica", "", 8)

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	for i, row := range r.Rows {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			writeHeader()
			pdf.SetFont("Helvetica", "", 8)
		}

		cells := []string{
			row.ApplicationNumber,
			row.FullNames,
			strings.ToUpper(row.Status),
			titleCase(row.ApplicationType),
			row.CreatedAt.Format("2006-01-02"),
			valueOr(row.OfficerName),
			valueOr(row.GeneratedIDNumber),
		}

		fill := i%2 == 1
		pdf.SetFillColor(211, 211, 211)
		for j, col := range tableColumns {
			text := fit(pdf, tr(cells[j]), col.width-2)
			if text == "" {
				text = notAvailable
			}
			pdf.CellFormat(col.width, rowHeight, text, "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, "Report Summary:", "", 1, "L", false, 0, "")

	summary := [][2]string{
		{"Metric", "Count"},
		{"Total Applications", strconv.Itoa(r.Stats.Total)},
		{"Pending", strconv.Itoa(r.Stats.Pending)},
		{"Approved", strconv.Itoa(r.Stats.Approved)},
		{"Rejected", strconv.Itoa(r.Stats.Rejected)},
		{"Dispatched", strconv.Itoa(r.Stats.Dispatched)},
		{"Collected", strconv.Itoa(r.Stats.Collected)},
	}

	for i, line := range summary {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetFillColor(173, 216, 230)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(50.8, rowHeight, line[0], "1", 0, "L", i == 0, 0, "")
		pdf.CellFormat(25.4, rowHeight, line[1], "1", 1, "L", i == 0, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 7, "Report generated on: "+r.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}

	return pdf.Output(w)
}

// fit shortens s with an ellipsis until it is no wider than width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
