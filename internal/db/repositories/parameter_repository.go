package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gormModels "flighttest/ftias/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// ParameterFilter narrows List. Empty fields do not filter.
type ParameterFilter struct {
	Search   string
	System   string
	Category string
	Skip     int
	Limit    int
}

type ParameterRepository struct {
	db *gormlib.DB
}

func NewParameterRepository(db *gormlib.DB) *ParameterRepository {
	return &ParameterRepository{db: db}
}

func (r *ParameterRepository) Create(ctx context.Context, param *gormModels.Parameter) error {
	if err := r.db.WithContext(ctx).Create(param).Error; err != nil {
		return fmt.Errorf("failed to create parameter: %w", err)
	}
	return nil
}

// CreateMany inserts every parameter or none.
func (r *ParameterRepository) CreateMany(ctx context.Context, params []gormModels.Parameter) error {
	if len(params) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(params, 100).Error; err != nil {
		return fmt.Errorf("failed to create parameters: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the parameter does not exist.
func (r *ParameterRepository) FindByID(ctx context.Context, id string) (*gormModels.Parameter, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByName is an exact, case-sensitive match. Returns nil, nil when absent.
func (r *ParameterRepository) FindByName(ctx context.Context, name string) (*gormModels.Parameter, error) {
	return r.findOne(ctx, "name = ?", name)
}

// FindExistingNames returns the subset of names already registered.
func (r *ParameterRepository) FindExistingNames(ctx context.Context, names []string) ([]string, error) {
	var existing []string
	if len(names) == 0 {
		return existing, nil
	}

	err := r.db.WithContext(ctx).
		Model(&gormModels.Parameter{}).
		Where("name IN ?", names).
		Pluck("name", &existing).Error

	if err != nil {
		return nil, fmt.Errorf("failed to check parameter names: %w", err)
	}
	return existing, nil
}

func (r *ParameterRepository) FindByIDs(ctx context.Context, ids []string) ([]gormModels.Parameter, error) {
	var params []gormModels.Parameter
	if len(ids) == 0 {
		return params, nil
	}

	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&params).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch parameters: %w", err)
	}
	return params, nil
}

// List orders by name. Search matches name or description, case-insensitively.
func (r *ParameterRepository) List(ctx context.Context, filter ParameterFilter) ([]gormModels.Parameter, error) {
	query := r.db.WithContext(ctx).Model(&gormModels.Parameter{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", pattern, pattern)
	}
	if filter.System != "" {
		query = query.Where("system = ?", filter.System)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var params []gormModels.Parameter
	err := query.
		Order("name ASC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&params).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	return params, nil
}

func (r *ParameterRepository) Update(ctx context.Context, param *gormModels.Parameter) error {
	if err := r.db.WithContext(ctx).Save(param).Error; err != nil {
		return fmt.Errorf("failed to update parameter: %w", err)
	}
	return nil
}

// UpdateMany saves every parameter or none.
func (r *ParameterRepository) UpdateMany(ctx context.Context, params []gormModels.Parameter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		for i := range params {
			if err := tx.Save(&params[i]).Error; err != nil {
				return fmt.Errorf("failed to update parameter %s: %w", params[i].Name, err)
			}
		}
		return nil
	})
}

// CountDataPoints counts data points referencing any of ids.
func (r *ParameterRepository) CountDataPoints(ctx context.Context, ids ...string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.DataPoint{}).
		Where("parameter_id IN ?", ids).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count data points: %w", err)
	}
	return count, nil
}

// DeleteMany removes the parameters with the given ids and reports how many
// rows went.
func (r *ParameterRepository) DeleteMany(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&gormModels.Parameter{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete parameters: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ParameterRepository) findOne(ctx context.Context, query string, args ...interface{}) (*gormModels.Parameter, error) {
	var param gormModels.Parameter

	err := r.db.WithContext(ctx).Where(query, args...).First(&param).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch parameter: %w", err)
	}
	return &param, nil
}
