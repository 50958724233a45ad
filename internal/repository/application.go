package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/numbering"
	"github.com/cradoe/nationalid/internal/workflow"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type ApplicationRepository interface {
	// Submit allocates an application number for prefix, runs attach outside
	// any transaction, then inserts the application and the returned documents
	// together. Files attach stored are not removed on failure.
	Submit(ctx context.Context, app *models.Application, prefix string, attach AttachFunc) (*models.Application, error)
	GetOne(ctx context.Context, id int64) (*models.Application, bool, error)
	Track(ctx context.Context, applicationNumber string) (*models.ApplicationTracking, bool, error)
	FindIssuedByIDNumber(ctx context.Context, idNumber string) (*models.Application, bool, error)
	ListByStatus(ctx context.Context, statuses ...workflow.Status) ([]models.ApplicationListItem, error)
	ListForOfficer(ctx context.Context, officerID int64, constituency string) ([]models.ApplicationListItem, error)
	Approve(ctx context.Context, id int64) (*models.Approval, error)
	Transition(ctx context.Context, id int64, action workflow.Action) error
}

// AttachFunc stores the uploaded files of an application once its number is
// known and returns the document rows to record. It is not bounded by the
// repository's query timeout.
type AttachFunc func(applicationNumber string) ([]models.Document, error)

const (
	ApplicationTypeNew     = "new"
	ApplicationTypeRenewal = "renewal"

	RenewalReasonLost = "lost"
)

const applicationColumns = `
	a.id, a.application_number, a.officer_id, a.application_type, a.full_names,
	to_char(a.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
	a.gender, a.father_name, a.mother_name, a.marital_status, a.husband_name, a.husband_id_no,
	a.district_of_birth, a.tribe, a.clan, a.family, a.home_district, a.division, a.constituency,
	a.location, a.sub_location, a.village_estate, a.home_address, a.occupation,
	a.supporting_documents, a.status, a.generated_id_number, a.existing_id_number,
	a.renewal_reason, a.ob_number, a.created_at, a.updated_at,
	o.full_name AS officer_name`

const applicationListColumns = `
	a.id, a.application_number, a.full_names, a.status, a.application_type,
	a.generated_id_number, o.full_name AS officer_name, a.created_at, a.updated_at`

type ApplicationRepositoryImpl struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (repo *ApplicationRepositoryImpl) Submit(ctx context.Context, app *models.Application, prefix string, attach AttachFunc) (*models.Application, error) {
	number, err := repo.allocateNumber(ctx, prefix)
	if err != nil {
		return nil, err
	}
	app.ApplicationNumber = number

	var docs []models.Document
	if attach != nil {
		docs, err = attach(number)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	supporting := "{}"
	if len(app.SupportingDocuments) > 0 {
		supporting = string(app.SupportingDocuments)
	}

	err = withTx(ctx, repo.db, nil, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO applications (
				application_number, officer_id, application_type, full_names, date_of_birth,
				gender, father_name, mother_name, marital_status, husband_name, husband_id_no,
				district_of_birth, tribe, clan, family, home_district, division, constituency,
				location, sub_location, village_estate, home_address, occupation,
				supporting_documents, status, existing_id_number, renewal_reason, ob_number
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
				$19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
			RETURNING id, created_at`

		err := tx.QueryRowxContext(ctx, query,
			app.ApplicationNumber,
			app.OfficerID,
			app.ApplicationType,
			app.FullNames,
			app.DateOfBirth,
			app.Gender,
			app.FatherName,
			app.MotherName,
			app.MaritalStatus,
			app.HusbandName,
			app.HusbandIDNo,
			app.DistrictOfBirth,
			app.Tribe,
			app.Clan,
			app.Family,
			app.HomeDistrict,
			app.Division,
			app.Constituency,
			app.Location,
			app.SubLocation,
			app.VillageEstate,
			app.HomeAddress,
			app.Occupation,
			supporting,
			string(workflow.Submitted),
			app.ExistingIDNumber,
			app.RenewalReason,
			app.OBNumber,
		).Scan(&app.ID, &app.CreatedAt)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("insert application: %w", err)
		}

		for i := range docs {
			docs[i].ApplicationID = app.ID
			if err := insertDocument(ctx, tx, &docs[i]); err != nil {
				return err
			}
		}
		app.Documents = docs

		return nil
	})
	if err != nil {
		return nil, err
	}

	app.Status = string(workflow.Submitted)
	return app, nil
}

// allocateNumber takes the next application number for prefix in a
// transaction of its own, so the sequence row is locked only briefly. A number
// whose submission later fails is not reused.
func (repo *ApplicationRepositoryImpl) allocateNumber(ctx context.Context, prefix string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	year := time.Now().Year()

	var seq int64
	err := withTx(ctx, repo.db, nil, func(tx *sqlx.Tx) error {
		var err error
		seq, err = nextSequence(ctx, tx, numbering.SequenceKey(prefix, year), applicationNumberColumn)
		return err
	})
	if err != nil {
		return "", err
	}

	return numbering.ApplicationNumber(prefix, year, seq), nil
}

func (repo *ApplicationRepositoryImpl) GetOne(ctx context.Context, id int64) (*models.Application, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var app models.Application

	query := `SELECT ` + applicationColumns + `
		FROM applications a
		LEFT JOIN officers o ON o.id = a.officer_id
		WHERE a.id = $1`

	err := repo.db.GetContext(ctx, &app, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &app, true, nil
}

func (repo *ApplicationRepositoryImpl) Track(ctx context.Context, applicationNumber string) (*models.ApplicationTracking, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var tracking models.ApplicationTracking

	query := `
		SELECT application_number, full_names, status, created_at, updated_at
		FROM applications
		WHERE application_number = $1`

	err := repo.db.GetContext(ctx, &tracking, query, applicationNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &tracking, true, err
}

func (repo *ApplicationRepositoryImpl) FindIssuedByIDNumber(ctx context.Context, idNumber string) (*models.Application, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var app models.Application

	query := `SELECT ` + applicationColumns + `
		FROM applications a
		LEFT JOIN officers o ON o.id = a.officer_id
		WHERE a.generated_id_number = $1 AND a.status = ANY($2)
		ORDER BY a.created_at DESC
		LIMIT 1`

	err := repo.db.GetContext(ctx, &app, query, idNumber, pq.Array(workflow.Strings(workflow.Issued)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &app, true, err
}

// ListByStatus returns applications in any of statuses, newest first.
// No statuses means every application.
func (repo *ApplicationRepositoryImpl) ListByStatus(ctx context.Context, statuses ...workflow.Status) ([]models.ApplicationListItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items := []models.ApplicationListItem{}

	query := `SELECT ` + applicationListColumns + `
		FROM applications a
		LEFT JOIN officers o ON o.id = a.officer_id`

	var args []any
	if len(statuses) > 0 {
		query += ` WHERE a.status = ANY($1)`
		args = append(args, pq.Array(workflow.Strings(statuses)))
	}
	query += ` ORDER BY a.created_at DESC`

	err := repo.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	return items, nil
}

// ListForOfficer returns applications submitted by the officer or lodged in
// their constituency.
func (repo *ApplicationRepositoryImpl) ListForOfficer(ctx context.Context, officerID int64, constituency string) ([]models.ApplicationListItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items := []models.ApplicationListItem{}

	query := `SELECT ` + applicationListColumns + `
		FROM applications a
		LEFT JOIN officers o ON o.id = a.officer_id
		WHERE TRIM(a.constituency) = $1 OR a.officer_id = $2
		ORDER BY a.created_at DESC`

	err := repo.db.SelectContext(ctx, &items, query, strings.TrimSpace(constituency), officerID)
	if err != nil {
		return nil, fmt.Errorf("list officer applications: %w", err)
	}

	return items, nil
}

// Approve moves a submitted application to approved and settles its ID number.
// The row is locked for the whole transaction, so a second approval waits and
// then sees the number the first one assigned.
func (repo *ApplicationRepositoryImpl) Approve(ctx context.Context, id int64) (*models.Approval, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	approve := workflow.MustLookup(workflow.ActionApprove)
	approval := &models.Approval{ApplicationID: id}

	err := withTx(ctx, repo.db, nil, func(tx *sqlx.Tx) error {
		var current struct {
			Status            string  `db:"status"`
			ApplicationType   string  `db:"application_type"`
			GeneratedIDNumber *string `db:"generated_id_number"`
			ExistingIDNumber  *string `db:"existing_id_number"`
		}

		query := `
			SELECT status, application_type, generated_id_number, existing_id_number
			FROM applications
			WHERE id = $1
			FOR UPDATE`

		err := tx.GetContext(ctx, &current, query, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		reuse := ""
		if current.ApplicationType == ApplicationTypeRenewal && current.ExistingIDNumber != nil && *current.ExistingIDNumber != "" {
			reuse = *current.ExistingIDNumber
		} else if current.GeneratedIDNumber != nil {
			reuse = *current.GeneratedIDNumber
		}

		status := workflow.Status(current.Status)
		if status == workflow.Approved && reuse != "" {
			approval.IDNumber = reuse
			return nil
		}
		if status != workflow.Approved && !approve.Allows(status, current.GeneratedIDNumber != nil) {
			return ErrNotFoundOrWrongState
		}

		if reuse != "" {
			approval.IDNumber = reuse
			_, err := tx.ExecContext(ctx, `UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2`, string(approve.To), id)
			return err
		}

		year := time.Now().Year()
		seq, err := nextSequence(ctx, tx, numbering.SequenceKey(numbering.IDNumberPrefix, year), generatedIDNumberColumn)
		if err != nil {
			return err
		}

		approval.IDNumber = numbering.IDNumber(year, seq)
		approval.Allocated = true

		_, err = tx.ExecContext(ctx,
			`UPDATE applications SET status = $1, generated_id_number = $2, updated_at = NOW() WHERE id = $3`,
			string(approve.To), approval.IDNumber, id,
		)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return approval, nil
}

func (repo *ApplicationRepositoryImpl) Transition(ctx context.Context, id int64, action workflow.Action) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return transition(ctx, repo.db, id, action)
}

// transition applies action as one guarded UPDATE. No matching row means the
// application is missing or not in a predecessor status.
func transition(ctx context.Context, db sqlx.ExecerContext, id int64, action workflow.Action) error {
	t, err := workflow.Lookup(action)
	if err != nil {
		return err
	}

	clause, predicateArgs := t.Predicate(3)
	query := fmt.Sprintf(`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2 AND %s`, clause)

	args := []any{string(t.To), id}
	for _, arg := range predicateArgs {
		args = append(args, pq.Array(arg))
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s application %d: %w", action, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFoundOrWrongState
	}

	return nil
}
