package repository

import (
	"context"
	"fmt"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/jmoiron/sqlx"
)

type ConstituencyRepository interface {
	List(ctx context.Context) ([]models.Constituency, error)
	Insert(ctx context.Context, name string) (*models.Constituency, error)
	InsertIfMissing(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ConstituencyRepositoryImpl struct {
	db *sqlx.DB
}

func NewConstituencyRepository(db *sqlx.DB) ConstituencyRepository {
	return &ConstituencyRepositoryImpl{db: db}
}

func (repo *ConstituencyRepositoryImpl) List(ctx context.Context) ([]models.Constituency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	constituencies := []models.Constituency{}

	err := repo.db.SelectContext(ctx, &constituencies, `SELECT id, name, created_at FROM constituencies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list constituencies: %w", err)
	}

	return constituencies, nil
}

func (repo *ConstituencyRepositoryImpl) Insert(ctx context.Context, name string) (*models.Constituency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var constituency models.Constituency

	query := `INSERT INTO constituencies (name) VALUES ($1) RETURNING id, name, created_at`

	err := repo.db.GetContext(ctx, &constituency, query, name)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert constituency: %w", err)
	}

	return &constituency, nil
}

func (repo *ConstituencyRepositoryImpl) InsertIfMissing(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := repo.db.ExecContext(ctx, `INSERT INTO constituencies (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

func (repo *ConstituencyRepositoryImpl) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := repo.db.ExecContext(ctx, `DELETE FROM constituencies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete constituency: %w", err)
	}

	n, err := res.RowsAffected()
	return n > 0, err
}
