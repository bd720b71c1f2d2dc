package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avatarctic/docflow/internal/core/domain/auth"
	"github.com/avatarctic/docflow/internal/core/domain/user"
)

func (s *AuthService) GenerateTokens(u *user.User) (*auth.AuthTokens, error) {
	now := time.Now()
	ttl := s.jwtConfig.AccessTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claims := &auth.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &auth.AuthTokens{
		AccessToken: signed,
		TokenType:   auth.TokenTypeBearer,
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	// Tokens for addresses removed from the allow-list stop working.
	if !s.IsEmailAllowed(claims.Email) {
		return nil, ErrEmailNotAllowed
	}
	return claims, nil
}
