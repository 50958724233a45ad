package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/jmoiron/sqlx"
)

type ReportRepository interface {
	Rows(ctx context.Context, filter ReportFilter) ([]models.ReportRow, error)
	Stats(ctx context.Context, filter ReportFilter) (*models.ReportStats, error)
}

const (
	ReportTypeApplications    = "applications"
	ReportTypeRenewals        = "renewals"
	ReportTypeNewApplications = "new_applications"

	// ReportFilterAll disables the status or constituency filter.
	ReportFilterAll = "all"
)

// ReportFilter selects applications created between StartDate and EndDate
// (YYYY-MM-DD, both inclusive).
type ReportFilter struct {
	StartDate    string
	EndDate      string
	Status       string
	Constituency string
	ReportType   string
}

// where renders the filter as a WHERE clause over alias.
func (f ReportFilter) where(alias string) (string, []any) {
	conds := []string{fmt.Sprintf("DATE(%[1]s.created_at) BETWEEN $1::date AND $2::date", alias)}
	args := []any{f.StartDate, f.EndDate}

	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s.%s = $%d", alias, column, len(args)))
	}

	if f.Status != "" && f.Status != ReportFilterAll {
		add("status", f.Status)
	}
	if f.Constituency != "" && f.Constituency != ReportFilterAll {
		add("constituency", f.Constituency)
	}

	switch f.ReportType {
	case ReportTypeRenewals:
		add("application_type", ApplicationTypeRenewal)
	case ReportTypeNewApplications:
		add("application_type", ApplicationTypeNew)
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

type ReportRepositoryImpl struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

func (repo *ReportRepositoryImpl) Rows(ctx context.Context, filter ReportFilter) ([]models.ReportRow, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows := []models.ReportRow{}
	where, args := filter.where("a")

	query := `
		SELECT a.id, a.application_number, a.full_names, a.status, a.application_type,
			a.created_at, a.updated_at, o.full_name AS officer_name, a.generated_id_number
		FROM applications a
		LEFT JOIN officers o ON o.id = a.officer_id
		` + where + `
		ORDER BY a.created_at DESC`

	err := repo.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report rows: %w", err)
	}

	return rows, nil
}

func (repo *ReportRepositoryImpl) Stats(ctx context.Context, filter ReportFilter) (*models.ReportStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats models.ReportStats
	where, args := filter.where("a")

	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE a.status = 'submitted') AS pending,
			COUNT(*) FILTER (WHERE a.status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE a.status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE a.status = 'dispatched') AS dispatched,
			COUNT(*) FILTER (WHERE a.status = 'collected') AS collected
		FROM applications a
		` + where

	err := repo.db.GetContext(ctx, &stats, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report stats: %w", err)
	}

	return &stats, nil
}
