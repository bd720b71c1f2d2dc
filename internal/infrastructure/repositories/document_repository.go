package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/infrastructure/db"
)

// DocumentRepository stores documents with their rendered files in PostgreSQL.
type DocumentRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewDocumentRepository(database *db.Database, logger *logrus.Logger) ports.DocumentRepository {
	return &DocumentRepository{db: database, logger: logger}
}

func (r *DocumentRepository) Create(ctx context.Context, d *document.Document) error {
	query := `
		INSERT INTO documents (id, user_id, original_name, text, pdf, word, created_at)
		VALUES (:id, :user_id, :original_name, :text, :pdf, :word, :created_at)`

	if _, err := r.db.DB.NamedExecContext(ctx, query, d); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"document_id": d.ID, "user_id": d.UserID}).WithError(err).Error("db: failed to create document")
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var d document.Document
	query := `
		SELECT id, user_id, original_name, text, pdf, word, created_at
		FROM documents
		WHERE id = $1`

	if err := r.db.DB.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, document.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithField("document_id", id).WithError(err).Error("db: failed to get document")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &d, nil
}

// ListByUser returns the newest documents first, without file payloads.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]document.Summary, error) {
	out := []document.Summary{}
	query := `
		SELECT id, original_name, text, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.DB.SelectContext(ctx, &out, query, userID, limit); err != nil {
		if r.logger != nil {
			r.logger.WithField("user_id", userID).WithError(err).Error("db: failed to list documents")
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return out, nil
}
