package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type OfficerRepository interface {
	CheckIfExists(ctx context.Context, idNumber, email string) (bool, error)
	Insert(ctx context.Context, officer *models.Officer) (int64, error)
	GetOne(ctx context.Context, id int64) (*models.Officer, bool, error)
	GetByEmail(ctx context.Context, email string) (*models.Officer, bool, error)
	ListByStatus(ctx context.Context, statuses ...string) ([]models.Officer, error)
	UpdateStatus(ctx context.Context, id int64, status string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

const (
	// OfficerPendingStatus is given to every officer at signup.
	// A pending officer cannot log in until an admin approves the account.
	OfficerPendingStatus = "pending"

	// OfficerApprovedStatus marks an account that may log in and submit applications.
	OfficerApprovedStatus = "approved"

	OfficerRejectedStatus = "rejected"

	// OfficerSuspendedStatus blocks login without deleting the account.
	OfficerSuspendedStatus = "suspended"
)

const officerColumns = `id, id_number, email, phone_number, full_name, station, constituency, status, password_hash, created_at`

type OfficerRepositoryImpl struct {
	db *sqlx.DB
}

func NewOfficerRepository(db *sqlx.DB) OfficerRepository {
	return &OfficerRepositoryImpl{db: db}
}

func (repo *OfficerRepositoryImpl) CheckIfExists(ctx context.Context, idNumber, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM officers WHERE id_number = $1 OR email = $2)`

	err := repo.db.GetContext(ctx, &exists, query, idNumber, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *OfficerRepositoryImpl) Insert(ctx context.Context, officer *models.Officer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	query := `
		INSERT INTO officers (id_number, email, phone_number, full_name, station, constituency, password_hash, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		officer.IDNumber,
		officer.Email,
		officer.PhoneNumber,
		officer.FullName,
		officer.Station,
		officer.Constituency,
		officer.HashedPassword,
		OfficerPendingStatus,
	)
	if isUniqueViolation(err) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("insert officer: %w", err)
	}

	return id, nil
}

func (repo *OfficerRepositoryImpl) GetOne(ctx context.Context, id int64) (*models.Officer, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var officer models.Officer

	query := `SELECT ` + officerColumns + ` FROM officers WHERE id = $1`

	err := repo.db.GetContext(ctx, &officer, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &officer, true, err
}

func (repo *OfficerRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.Officer, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var officer models.Officer

	query := `SELECT ` + officerColumns + ` FROM officers WHERE email = $1`

	err := repo.db.GetContext(ctx, &officer, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &officer, true, err
}

func (repo *OfficerRepositoryImpl) ListByStatus(ctx context.Context, statuses ...string) ([]models.Officer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	officers := []models.Officer{}

	query := `SELECT ` + officerColumns + ` FROM officers WHERE status = ANY($1) ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &officers, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("list officers: %w", err)
	}

	return officers, nil
}

func (repo *OfficerRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `UPDATE officers SET status = $1 WHERE id = $2`

	res, err := repo.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("update officer status: %w", err)
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

func (repo *OfficerRepositoryImpl) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := repo.db.ExecContext(ctx, `DELETE FROM officers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete officer: %w", err)
	}

	n, err := res.RowsAffected()
	return n > 0, err
}
