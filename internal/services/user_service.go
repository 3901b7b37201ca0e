package services

import (
	"context"
	"strings"
	"time"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/constants"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/models/dtos"
	gormModels "flighttest/ftias/internal/models/gorm"
)

const userCacheTTL = 30 * time.Second

type UserService struct {
	repo  *repositories.UserRepository
	cache common.CacheInterface
}

func NewUserService(repo *repositories.UserRepository, cache common.CacheInterface) *UserService {
	return &UserService{repo: repo, cache: cache}
}

func userCacheKey(id string) string { return string(constants.CachePrefixUser) + id }

func (s *UserService) Create(ctx context.Context, req *dtos.UserCreateRequest) (*gormModels.User, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)

	existing, err := s.repo.FindConflicting(ctx, email, username, "")
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("Email or username already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &gormModels.User{
		Email:        email,
		Username:     username,
		FullName:     req.FullName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetActive loads the caller behind a token. Results are cached briefly and
// dropped on update or delete.
func (s *UserService) GetActive(ctx context.Context, id string) (*gormModels.User, error) {
	if cached, ok := s.cache.Get(userCacheKey(id)); ok {
		if user, ok := cached.(*gormModels.User); ok {
			return user, nil
		}
	}

	if !validID(id) {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("Inactive user")
	}

	s.cache.Set(userCacheKey(id), user, userCacheTTL)
	return user, nil
}

// Get returns the user when the caller is that user or a superuser.
func (s *UserService) Get(ctx context.Context, caller auth.UserClaims, id string) (*gormModels.User, error) {
	if err := requireSelfOrSuperuser(caller, id); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperrors.NotFound("User")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, skip, limit int) ([]gormModels.User, error) {
	return s.repo.List(ctx, skip, limit)
}

func (s *UserService) Update(ctx context.Context, caller auth.UserClaims, id string, req *dtos.UserUpdateRequest) (*gormModels.User, error) {
	user, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if (req.IsActive != nil || req.IsSuperuser != nil) && !caller.IsSuperuser() {
		return nil, apperrors.Forbidden("Not enough permissions")
	}

	if req.Email != nil || req.Username != nil {
		email, username := user.Email, user.Username
		if req.Email != nil {
			email = strings.TrimSpace(*req.Email)
		}
		if req.Username != nil {
			username = strings.TrimSpace(*req.Username)
		}
		conflict, err := s.repo.FindConflicting(ctx, email, username, user.ID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, apperrors.Conflict("Email or username already registered")
		}
		user.Email, user.Username = email, username
	}

	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Delete(userCacheKey(user.ID))
	return user, nil
}

// Delete removes the user together with their flight tests and data.
func (s *UserService) Delete(ctx context.Context, caller auth.UserClaims, id string) error {
	user, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.cache.Delete(userCacheKey(user.ID))
	return nil
}

func requireSelfOrSuperuser(caller auth.UserClaims, id string) error {
	if caller == nil {
		return apperrors.Unauthorized("Not authenticated")
	}
	if caller.UserID() != id && !caller.IsSuperuser() {
		return apperrors.Forbidden("Not enough permissions")
	}
	return nil
}
