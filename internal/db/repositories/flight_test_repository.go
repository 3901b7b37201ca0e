package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "flighttest/ftias/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FlightTestRepository struct {
	db *gormlib.DB
}

func NewFlightTestRepository(db *gormlib.DB) *FlightTestRepository {
	return &FlightTestRepository{db: db}
}

func (r *FlightTestRepository) Create(ctx context.Context, test *gormModels.FlightTest) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create flight test: %w", err)
	}
	return nil
}

// FindOwned returns the flight test only when ownerID created it, else nil, nil.
func (r *FlightTestRepository) FindOwned(ctx context.Context, id, ownerID string) (*gormModels.FlightTest, error) {
	var test gormModels.FlightTest

	err := r.db.WithContext(ctx).
		Where("id = ? AND created_by_id = ?", id, ownerID).
		First(&test).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch flight test: %w", err)
	}
	return &test, nil
}

// FindByOwnerAndName returns nil, nil when the owner has no test with that name.
func (r *FlightTestRepository) FindByOwnerAndName(ctx context.Context, ownerID, name string) (*gormModels.FlightTest, error) {
	var test gormModels.FlightTest

	err := r.db.WithContext(ctx).
		Where("created_by_id = ? AND test_name = ?", ownerID, name).
		First(&test).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch flight test: %w", err)
	}
	return &test, nil
}

func (r *FlightTestRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]gormModels.FlightTest, error) {
	var tests []gormModels.FlightTest

	err := r.db.WithContext(ctx).
		Where("created_by_id = ?", ownerID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&tests).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list flight tests: %w", err)
	}
	return tests, nil
}

func (r *FlightTestRepository) Update(ctx context.Context, test *gormModels.FlightTest) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(test).Error; err != nil {
		return fmt.Errorf("failed to update flight test: %w", err)
	}
	return nil
}

// Delete removes the flight test and all of its data points in one transaction.
func (r *FlightTestRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("flight_test_id = ?", id).Delete(&gormModels.DataPoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete data points: %w", err)
		}
		if err := tx.Delete(&gormModels.FlightTest{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete flight test: %w", err)
		}
		return nil
	})
}
