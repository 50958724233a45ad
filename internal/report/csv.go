package report

import (
	"encoding/csv"
	"io"
)

var csvHeader = []string{
	"Application Number", "Applicant Name", "Status",
	"Application Type", "Created Date", "Officer Name", "ID Number",
}

func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, row := range r.Rows {
		err := cw.Write([]string{
			row.ApplicationNumber,
			row.FullNames,
			row.Status,
			row.ApplicationType,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			valueOr(row.OfficerName),
			valueOr(row.GeneratedIDNumber),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
