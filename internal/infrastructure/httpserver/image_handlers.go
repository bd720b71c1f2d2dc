package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/image"
	"github.com/avatarctic/docflow/internal/infrastructure/httpserver/helpers"
)

func (s *Server) generateImage(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return errorJSON(c, http.StatusBadRequest, "Content-Type must be application/json")
	}
	var req image.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	res, err := s.imageSvc.Generate(c.Request().Context(), userID, &req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, res)
	case errors.Is(err, image.ErrPromptRequired):
		return errorJSON(c, http.StatusBadRequest, "Prompt is required")
	case errors.Is(err, image.ErrNoImage):
		return errorJSON(c, http.StatusBadGateway, "Failed to generate image")
	default:
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("image generation failed")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate image")
	}
}
