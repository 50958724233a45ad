package repository

import (
	"context"
	"fmt"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/jmoiron/sqlx"
)

type DocumentRepository interface {
	ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error)
}

type DocumentRepositoryImpl struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (repo *DocumentRepositoryImpl) ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := []models.Document{}

	query := `
		SELECT id, application_id, document_type, file_path, created_at
		FROM documents
		WHERE application_id = $1
		ORDER BY id`

	err := repo.db.SelectContext(ctx, &docs, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func insertDocument(ctx context.Context, tx *sqlx.Tx, doc *models.Document) error {
	query := `
		INSERT INTO documents (application_id, document_type, file_path)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := tx.QueryRowxContext(ctx, query, doc.ApplicationID, doc.DocumentType, doc.FilePath).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}
