package services

import (
	"context"
	"math"
	"strings"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/logging"
	"flighttest/ftias/internal/models/dtos"
)

type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.TokenService
}

func NewAuthService(users *repositories.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login accepts a username or an email address.
func (s *AuthService) Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.TokenResponse, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized("Incorrect username or password")
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Unauthorized("Incorrect username or password")
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("Inactive user")
	}

	logging.Info("User logged in", "user_id", user.ID)
	return s.issue(user.ID, user.IsSuperuser)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dtos.TokenResponse, error) {
	claims, err := s.tokens.Verify(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}

	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(user.ID, user.IsSuperuser)
}

// Logout revokes the access token behind caller and, when given, a refresh
// token belonging to the same user.
func (s *AuthService) Logout(ctx context.Context, caller auth.UserClaims, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, caller); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}

	refresh, err := s.tokens.Verify(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return err
	}
	if refresh.UserID() != caller.UserID() {
		return apperrors.Forbidden("Refresh token belongs to another user")
	}
	return s.tokens.Revoke(ctx, refresh)
}

func (s *AuthService) issue(userID string, superuser bool) (*dtos.TokenResponse, error) {
	pair, err := s.tokens.IssuePair(userID, superuser)
	if err != nil {
		return nil, err
	}
	return &dtos.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(math.Round(s.tokens.AccessTTL().Seconds())),
	}, nil
}
