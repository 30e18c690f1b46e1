package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/platform/ctxutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// TokenClaims is the JWT payload minted by the companion backend. Subject
// carries the user id. This service only verifies; minting stays with the
// auth provider.
type TokenClaims struct {
	jwt.RegisteredClaims
}

type TokenService interface {
	// SetContextFromToken validates the signed token and returns a context
	// carrying the caller's identity.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type tokenService struct {
	log    *logger.Logger
	secret string
}

func NewTokenService(log *logger.Logger, secret string) (TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &tokenService{
		log:    log.With("service", "TokenService"),
		secret: secret,
	}, nil
}

func (ts *tokenService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(ts.secret), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:      userID,
		TokenString: tokenString,
	}), nil
}
