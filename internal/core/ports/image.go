package ports

import (
	"context"

	"github.com/avatarctic/docflow/internal/core/domain/image"
	"github.com/google/uuid"
)

// ImageGenerator wraps the model provider used for text-to-image.
type ImageGenerator interface {
	// EnhancePrompt rewrites prompt into a more detailed one. previous, when not
	// empty, is the enhanced prompt of the image being refined.
	EnhancePrompt(ctx context.Context, prompt, previous string) (string, error)
	// Generate returns the base64 encoded PNG for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageService defines the interface for image generation
type ImageService interface {
	Generate(ctx context.Context, userID uuid.UUID, req *image.GenerateRequest) (*image.GenerateResult, error)
}
