package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"flighttest/ftias/internal/apperrors"
)

// TokenPair is issued at login and on refresh.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

type tokenClaims struct {
	Superuser bool      `json:"su,omitempty"`
	Type      TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens. Every token carries a
// jti so it can be revoked before it expires.
type TokenService struct {
	secretKey   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	revocations RevocationStore
	now         func() time.Time
}

func NewTokenService(secretKey string, accessTTL, refreshTTL time.Duration, revocations RevocationStore) *TokenService {
	return &TokenService{
		secretKey:   []byte(secretKey),
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		revocations: revocations,
		now:         time.Now,
	}
}

func (s *TokenService) IssuePair(userID string, superuser bool) (*TokenPair, error) {
	access, accessExp, err := s.issue(userID, superuser, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.issue(userID, superuser, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, AccessExpiresAt: accessExp}, nil
}

func (s *TokenService) issue(userID string, superuser bool, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := tokenClaims{
		Superuser: superuser,
		Type:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, expiry, token type and revocation. Any failure is
// an Unauthorized error.
func (s *TokenService) Verify(ctx context.Context, tokenString string, expected TokenType) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("Token has expired")
		}
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}
	if claims.Type != expected {
		return nil, apperrors.Unauthorized("Invalid token type")
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("Token has been revoked")
	}

	return &JWTClaims{
		UserUUID:  claims.Subject,
		Superuser: claims.Superuser,
		JTI:       claims.ID,
		Expiry:    claims.ExpiresAt.Time,
		Type:      claims.Type,
	}, nil
}

// Revoke blocks the token until it would have expired anyway.
func (s *TokenService) Revoke(ctx context.Context, claims UserClaims) error {
	ttl := claims.ExpiresAt().Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID(), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// AccessTTL is the lifetime of access tokens.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }
