package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/jmoiron/sqlx"
)

type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, bool, error)
	// InsertIfMissing creates the admin unless the username is taken.
	// It reports whether a row was created.
	InsertIfMissing(ctx context.Context, admin *models.Admin) (bool, error)
}

type AdminRepositoryImpl struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &AdminRepositoryImpl{db: db}
}

func (repo *AdminRepositoryImpl) GetByUsername(ctx context.Context, username string) (*models.Admin, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var admin models.Admin

	query := `SELECT id, username, full_name, password_hash, created_at FROM admins WHERE username = $1`

	err := repo.db.GetContext(ctx, &admin, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &admin, true, err
}

func (repo *AdminRepositoryImpl) InsertIfMissing(ctx context.Context, admin *models.Admin) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO admins (username, full_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING`

	res, err := repo.db.ExecContext(ctx, query, admin.Username, admin.FullName, admin.HashedPassword)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}
