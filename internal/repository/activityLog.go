// Every login and every status change leaves a row in activity_logs.
// entity and entity_id are polymorphic, so one table covers officers,
// admins and applications alike.
package repository

import (
	"context"
	"fmt"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/jmoiron/sqlx"
)

type ActivityRepository interface {
	Insert(ctx context.Context, log *models.ActivityLog) (int64, error)
	ListForEntity(ctx context.Context, entity string, entityID int64) ([]models.ActivityLog, error)
}

const (
	// ActivityLogApplicationEntity is used for intake and workflow actions on applications.
	ActivityLogApplicationEntity = "application"

	// ActivityLogOfficerEntity is used for officer signups, logins and account changes.
	ActivityLogOfficerEntity = "officer"

	ActivityLogAdminEntity = "admin"

	ActivityLogPaymentEntity = "payment"
)

type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (repo *ActivityRepositoryImpl) Insert(ctx context.Context, log *models.ActivityLog) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64

	query := `
		INSERT INTO activity_logs (actor_role, actor_id, entity, entity_id, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		log.ActorRole,
		log.ActorID,
		log.Entity,
		log.EntityID,
		log.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("insert activity log: %w", err)
	}

	return id, nil
}

func (repo *ActivityRepositoryImpl) ListForEntity(ctx context.Context, entity string, entityID int64) ([]models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	logs := []models.ActivityLog{}

	query := `
		SELECT id, actor_role, actor_id, entity, entity_id, description, created_at
		FROM activity_logs
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &logs, query, entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}

	return logs, nil
}
