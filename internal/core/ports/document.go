package ports

import (
	"context"

	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/core/layout"
	"github.com/google/uuid"
)

// DocumentRepository persists processed documents.
type DocumentRepository interface {
	Create(ctx context.Context, d *document.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]document.Summary, error)
}

// TextExtractor reads text out of an image.
type TextExtractor interface {
	Name() string
	Extract(ctx context.Context, img document.Upload) (string, error)
}

// DocumentRenderer writes laid out blocks into a file format.
type DocumentRenderer interface {
	Format() document.Format
	Render(blocks []layout.Block) ([]byte, error)
}

// DocumentService defines the interface for document processing
type DocumentService interface {
	Process(ctx context.Context, userID uuid.UUID, up document.Upload) (*document.ProcessResult, error)
	List(ctx context.Context, userID uuid.UUID) ([]document.Summary, error)
	// Download returns the document when it exists and belongs to userID.
	Download(ctx context.Context, userID, id uuid.UUID) (*document.Document, error)
}
