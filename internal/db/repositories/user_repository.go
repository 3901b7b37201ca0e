package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "flighttest/ftias/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gormlib.DB
}

func NewUserRepository(db *gormlib.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *gormModels.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the user does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*gormModels.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByLogin matches either the username or the email address.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*gormModels.User, error) {
	return r.findOne(ctx, "username = ? OR email = ?", login, login)
}

// FindConflicting returns a user other than excludeID holding the email or
// username, or nil.
func (r *UserRepository) FindConflicting(ctx context.Context, email, username, excludeID string) (*gormModels.User, error) {
	query := r.db.WithContext(ctx).Where("(email = ? OR username = ?)", email, username)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var user gormModels.User
	err := query.First(&user).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]gormModels.User, error) {
	var users []gormModels.User

	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Offset(skip).
		Limit(limit).
		Find(&users).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *gormModels.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes the user with every flight test they own and the data
// points of those tests.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		owned := tx.Model(&gormModels.FlightTest{}).Select("id").Where("created_by_id = ?", id)

		if err := tx.Where("flight_test_id IN (?)", owned).Delete(&gormModels.DataPoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete data points: %w", err)
		}
		if err := tx.Where("created_by_id = ?", id).Delete(&gormModels.FlightTest{}).Error; err != nil {
			return fmt.Errorf("failed to delete flight tests: %w", err)
		}
		if err := tx.Delete(&gormModels.User{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}
