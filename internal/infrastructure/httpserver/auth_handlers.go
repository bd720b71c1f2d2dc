package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/application/services"
	"github.com/avatarctic/docflow/internal/core/domain/auth"
	"github.com/avatarctic/docflow/internal/core/domain/user"
	"github.com/avatarctic/docflow/internal/utils"
)

// errorJSON writes the {"error": msg} body the API uses for failures.
func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) signup(c echo.Context) error {
	var req user.SignupRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	_, err := s.authSvc.Signup(c.Request().Context(), &req)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, map[string]string{"message": "User created successfully"})
	case errors.Is(err, services.ErrMissingSignupFields):
		return errorJSON(c, http.StatusBadRequest, "Email, password, and name are required")
	case errors.Is(err, utils.ErrPasswordTooShort):
		return errorJSON(c, http.StatusBadRequest, "Password must be at least 6 characters long")
	case errors.Is(err, services.ErrEmailNotAllowed):
		return errorJSON(c, http.StatusForbidden, "This email address is not authorized for signup")
	case errors.Is(err, user.ErrAlreadyExists):
		return errorJSON(c, http.StatusBadRequest, "User with this email already exists")
	default:
		if s.logger != nil {
			s.logger.WithError(err).Error("signup failed")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to create user")
	}
}

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	tokens, err := s.authSvc.Login(c.Request().Context(), &req)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": c.RealIP()}).Debug("login rejected")
		}
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, tokens)
}

func (s *Server) allowedEmails(c echo.Context) error {
	list := s.authSvc.AllowedEmails()
	return c.JSON(http.StatusOK, map[string]any{
		"allowedEmails": list,
		"totalCount":    len(list),
	})
}
