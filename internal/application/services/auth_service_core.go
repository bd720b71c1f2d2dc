package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/core/domain/auth"
	"github.com/avatarctic/docflow/internal/core/domain/user"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/utils"
)

var (
	ErrMissingSignupFields = errors.New("email, password, and name are required")
	ErrEmailNotAllowed     = errors.New("this email address is not authorized for signup")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

type AuthService struct {
	userRepo   ports.UserRepository
	jwtConfig  *config.JWTConfig
	allowed    map[string]struct{}
	allowList  []string
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService builds the account service. An empty allow-list admits every address.
func NewAuthService(userRepo ports.UserRepository, jwtConfig *config.JWTConfig, authConfig *config.AuthConfig, logger *logrus.Logger) *AuthService {
	s := &AuthService{
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		allowed:   map[string]struct{}{},
		logger:    logger,
	}
	if authConfig != nil {
		s.bcryptCost = authConfig.BcryptCost
		for _, e := range authConfig.AllowedEmails {
			e = utils.NormalizeEmail(e)
			if e == "" {
				continue
			}
			if _, dup := s.allowed[e]; !dup {
				s.allowed[e] = struct{}{}
				s.allowList = append(s.allowList, e)
			}
		}
	}
	return s
}

func (s *AuthService) IsEmailAllowed(email string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	_, ok := s.allowed[utils.NormalizeEmail(email)]
	return ok
}

func (s *AuthService) AllowedEmails() []string {
	out := make([]string, len(s.allowList))
	copy(out, s.allowList)
	return out
}

func (s *AuthService) Signup(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, ErrMissingSignupFields
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(req.Email)
	if !s.IsEmailAllowed(email) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": email}).Warn("signup blocked for address outside allow-list")
		}
		return nil, ErrEmailNotAllowed
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, user.ErrAlreadyExists
	}
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user signed up")
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	email := utils.NormalizeEmail(req.Email)
	if !s.IsEmailAllowed(email) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": email}).Warn("login blocked for address outside allow-list")
		}
		return nil, ErrInvalidCredentials
	}

	found, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Error("login lookup failed")
		}
		return nil, ErrInvalidCredentials
	}
	if err := utils.CheckPassword(found.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.GenerateTokens(found)
}
