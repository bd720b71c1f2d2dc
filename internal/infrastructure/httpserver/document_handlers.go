package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/infrastructure/httpserver/helpers"
)

// multipartOverhead leaves room for the form framing around the image part.
const multipartOverhead = 1 << 20

func bodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dB", maxUpload+multipartOverhead)
}

func (s *Server) processDocument(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "No image file provided")
	}
	if fh.Size > s.config.MaxUploadBytes {
		return errorJSON(c, http.StatusRequestEntityTooLarge, document.ErrTooLarge.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "No image file provided")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.config.MaxUploadBytes+1))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "failed to read upload")
	}

	up := document.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}
	res, err := s.documentSvc.Process(c.Request().Context(), userID, up)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, res)
	case errors.Is(err, document.ErrEmptyUpload):
		return errorJSON(c, http.StatusBadRequest, "No image file provided")
	case errors.Is(err, document.ErrTooLarge):
		return errorJSON(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, document.ErrUnsupportedMedia):
		return errorJSON(c, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, document.ErrNoText):
		return errorJSON(c, http.StatusInternalServerError, "Failed to extract text from image")
	default:
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": userID, "filename": fh.Filename}).WithError(err).Error("document processing failed")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to process image")
	}
}

func (s *Server) listDocuments(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	docs, err := s.documentSvc.List(c.Request().Context(), userID)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("listing documents failed")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch documents")
	}
	if docs == nil {
		docs = []document.Summary{}
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) downloadPDF(c echo.Context) error  { return s.download(c, document.FormatPDF) }
func (s *Server) downloadWord(c echo.Context) error { return s.download(c, document.FormatWord) }

func (s *Server) download(c echo.Context, f document.Format) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Document not found")
	}

	doc, err := s.documentSvc.Download(c.Request().Context(), userID, id)
	switch {
	case errors.Is(err, document.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "Document not found")
	case errors.Is(err, document.ErrForbidden):
		return errorJSON(c, http.StatusForbidden, "Forbidden")
	case err != nil:
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"document_id": id}).WithError(err).Error("document download failed")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to download document")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="document.%s"`, f.Extension()))
	return c.Blob(http.StatusOK, f.ContentType(), doc.File(f))
}
