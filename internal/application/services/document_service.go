package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/core/layout"
	"github.com/avatarctic/docflow/internal/core/ports"
)

// DocumentServiceConfig tunes upload handling.
type DocumentServiceConfig struct {
	MaxUploadBytes int64
	PageBreak      string
	// URLPrefix is prepended to download links, e.g. "/api/v1/documents".
	URLPrefix string
	ListLimit int
}

// DocumentService turns uploaded images into stored PDF and Word documents.
type DocumentService struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	renderers map[document.Format]ports.DocumentRenderer
	cfg       DocumentServiceConfig
	logger    *logrus.Logger
}

func NewDocumentService(repo ports.DocumentRepository, extractor ports.TextExtractor, renderers []ports.DocumentRenderer, cfg DocumentServiceConfig, logger *logrus.Logger) *DocumentService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.PageBreak == "" {
		cfg.PageBreak = layout.DefaultPageBreak
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/api/v1/documents"
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	rs := make(map[document.Format]ports.DocumentRenderer, len(renderers))
	for _, r := range renderers {
		rs[r.Format()] = r
	}
	return &DocumentService{repo: repo, extractor: extractor, renderers: rs, cfg: cfg, logger: logger}
}

func (s *DocumentService) Process(ctx context.Context, userID uuid.UUID, up document.Upload) (*document.ProcessResult, error) {
	if len(up.Data) == 0 {
		return nil, document.ErrEmptyUpload
	}
	if int64(len(up.Data)) > s.cfg.MaxUploadBytes {
		return nil, document.ErrTooLarge
	}
	if up.ContentType == "" || up.ContentType == "application/octet-stream" {
		up.ContentType = http.DetectContentType(up.Data)
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return nil, document.ErrUnsupportedMedia
	}

	start := time.Now()
	text, err := s.extractor.Extract(ctx, up)
	if err != nil {
		return nil, fmt.Errorf("extract text with %s: %w", s.extractor.Name(), err)
	}
	if layout.IsBlank(text) {
		return nil, document.ErrNoText
	}

	blocks := layout.BlocksFromText(text, s.cfg.PageBreak)
	doc := &document.Document{
		ID:           uuid.New(),
		UserID:       userID,
		OriginalName: up.Filename,
		Text:         text,
		CreatedAt:    time.Now().UTC(),
	}
	if doc.PDF, err = s.render(document.FormatPDF, blocks); err != nil {
		return nil, err
	}
	if doc.Word, err = s.render(document.FormatWord, blocks); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"document_id": doc.ID,
			"user_id":     userID,
			"extractor":   s.extractor.Name(),
			"chars":       len(text),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("document processed")
	}

	base := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.URLPrefix, "/"), doc.ID)
	return &document.ProcessResult{
		ID:      doc.ID,
		Text:    text,
		WordURL: base + "/word",
		PDFURL:  base + "/pdf",
	}, nil
}

func (s *DocumentService) render(f document.Format, blocks []layout.Block) ([]byte, error) {
	r, ok := s.renderers[f]
	if !ok {
		return nil, fmt.Errorf("no renderer registered for %s", f)
	}
	out, err := r.Render(blocks)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	return out, nil
}

func (s *DocumentService) List(ctx context.Context, userID uuid.UUID) ([]document.Summary, error) {
	return s.repo.ListByUser(ctx, userID, s.cfg.ListLimit)
}

func (s *DocumentService) Download(ctx context.Context, userID, id uuid.UUID) (*document.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"document_id": id, "user_id": userID}).Warn("document access denied")
		}
		return nil, document.ErrForbidden
	}
	return doc, nil
}

// IsClientError reports whether err stems from a bad upload rather than a backend failure.
func IsClientError(err error) bool {
	return errors.Is(err, document.ErrEmptyUpload) ||
		errors.Is(err, document.ErrTooLarge) ||
		errors.Is(err, document.ErrUnsupportedMedia)
}
