package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/image"
	"github.com/avatarctic/docflow/internal/core/ports"
)

const imageHistoryTTL = time.Hour

// ImageService generates images from prompts and remembers the enhanced prompt
// so that a follow-up can refine it.
type ImageService struct {
	generator ports.ImageGenerator
	cache     ports.Cache
	logger    *logrus.Logger
}

func NewImageService(generator ports.ImageGenerator, cache ports.Cache, logger *logrus.Logger) *ImageService {
	return &ImageService{generator: generator, cache: cache, logger: logger}
}

func historyKey(responseID string) string { return "image:history:" + responseID }

func (s *ImageService) Generate(ctx context.Context, userID uuid.UUID, req *image.GenerateRequest) (*image.GenerateResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, image.ErrPromptRequired
	}

	previous := s.previousPrompt(ctx, userID, strings.TrimSpace(req.ResponseID))
	enhanced, err := s.generator.EnhancePrompt(ctx, prompt, previous)
	if err != nil || enhanced == "" {
		if err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("prompt enhancement failed, using original prompt")
		}
		enhanced = prompt
	}

	b64, err := s.generator.Generate(ctx, enhanced)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if b64 == "" {
		return nil, image.ErrNoImage
	}

	responseID := uuid.NewString()
	s.remember(ctx, responseID, image.History{UserID: userID.String(), Prompt: enhanced})

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id":     userID,
			"response_id": responseID,
			"follow_up":   previous != "",
		}).Info("image generated")
	}
	return &image.GenerateResult{
		ImageBase64: b64,
		DataURL:     "data:image/png;base64," + b64,
		ResponseID:  responseID,
	}, nil
}

// previousPrompt loads the history of responseID. Unknown, expired or foreign
// ids are treated as a fresh request.
func (s *ImageService) previousPrompt(ctx context.Context, userID uuid.UUID, responseID string) string {
	if responseID == "" || s.cache == nil {
		return ""
	}
	raw, ok, err := s.cache.Get(ctx, historyKey(responseID))
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("response_id", responseID).Warn("image history lookup failed")
		}
		return ""
	}
	if !ok {
		return ""
	}
	var h image.History
	if err := json.Unmarshal(raw, &h); err != nil || h.UserID != userID.String() {
		return ""
	}
	return h.Prompt
}

func (s *ImageService) remember(ctx context.Context, responseID string, h image.History) {
	if s.cache == nil {
		return
	}
	raw, _ := json.Marshal(h)
	if err := s.cache.Set(ctx, historyKey(responseID), raw, imageHistoryTTL); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("failed to store image history")
	}
}

// IsImageClientError reports whether err is caused by the request itself.
func IsImageClientError(err error) bool {
	return errors.Is(err, image.ErrPromptRequired)
}
