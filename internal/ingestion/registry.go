package ingestion

import (
	"context"
	"fmt"

	"flighttest/ftias/internal/apperrors"
	gormModels "flighttest/ftias/internal/models/gorm"
)

// UnitOfWork is the transaction-scoped persistence the pipeline writes
// through. Nothing is visible to other requests until the owner commits.
type UnitOfWork interface {
	// FindParameterByName returns nil, nil when no parameter has that exact name.
	FindParameterByName(ctx context.Context, name string) (*gormModels.Parameter, error)
	CreateParameter(ctx context.Context, param *gormModels.Parameter) error
	SaveParameter(ctx context.Context, param *gormModels.Parameter) error
	InsertDataPoints(ctx context.Context, points []gormModels.DataPoint) error
}

// ParameterFields is one row of a parameter-definition sheet. Blank strings
// and nil bounds mean the row does not set that field.
type ParameterFields struct {
	Row         int
	Name        string
	Description string
	Unit        string
	System      string
	Category    string
	MinValue    *float64
	MaxValue    *float64
}

// Registry resolves parameter names for a single upload, memoizing lookups.
type Registry struct {
	uow     UnitOfWork
	byName  map[string]*gormModels.Parameter
	created int
	updated int
}

func NewRegistry(uow UnitOfWork) *Registry {
	return &Registry{
		uow:    uow,
		byName: make(map[string]*gormModels.Parameter),
	}
}

// Created is the number of parameters this registry inserted.
func (r *Registry) Created() int { return r.created }

// Updated is the number of existing parameters this registry changed.
func (r *Registry) Updated() int { return r.updated }

func (r *Registry) lookup(ctx context.Context, name string) (*gormModels.Parameter, error) {
	if p, ok := r.byName[name]; ok {
		return p, nil
	}
	p, err := r.uow.FindParameterByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up parameter %q: %w", name, err)
	}
	if p != nil {
		r.byName[name] = p
	}
	return p, nil
}

// ResolveOrCreate returns the parameter called name, creating it with
// defaultUnit and an empty description when it does not exist. An existing
// parameter is returned unchanged.
func (r *Registry) ResolveOrCreate(ctx context.Context, name, defaultUnit string) (*gormModels.Parameter, error) {
	p, err := r.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	unit := defaultUnit
	description := ""
	p = &gormModels.Parameter{
		Name:        name,
		Unit:        &unit,
		Description: &description,
	}
	if err := r.uow.CreateParameter(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create parameter %q: %w", name, err)
	}

	r.byName[name] = p
	r.created++
	return p, nil
}

// Upsert applies a parameter-definition row. New names are inserted; for an
// existing parameter every field the row sets overwrites the stored value.
// The resulting range must satisfy min <= max.
func (r *Registry) Upsert(ctx context.Context, fields ParameterFields) (*gormModels.Parameter, bool, error) {
	existing, err := r.lookup(ctx, fields.Name)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		if err := checkRange(fields.Row, fields.MinValue, fields.MaxValue); err != nil {
			return nil, false, err
		}
		unit := fields.Unit
		p := &gormModels.Parameter{
			Name:        fields.Name,
			Unit:        &unit,
			Description: optional(fields.Description),
			System:      optional(fields.System),
			Category:    optional(fields.Category),
			MinValue:    fields.MinValue,
			MaxValue:    fields.MaxValue,
		}
		if err := r.uow.CreateParameter(ctx, p); err != nil {
			return nil, false, fmt.Errorf("failed to create parameter %q: %w", fields.Name, err)
		}
		r.byName[p.Name] = p
		r.created++
		return p, true, nil
	}

	minValue, maxValue := existing.MinValue, existing.MaxValue
	if fields.MinValue != nil {
		minValue = fields.MinValue
	}
	if fields.MaxValue != nil {
		maxValue = fields.MaxValue
	}
	if err := checkRange(fields.Row, minValue, maxValue); err != nil {
		return nil, false, err
	}

	updated := *existing
	overwrite(&updated.Description, fields.Description)
	overwrite(&updated.Unit, fields.Unit)
	overwrite(&updated.System, fields.System)
	overwrite(&updated.Category, fields.Category)
	updated.MinValue, updated.MaxValue = minValue, maxValue

	if err := r.uow.SaveParameter(ctx, &updated); err != nil {
		return nil, false, fmt.Errorf("failed to update parameter %q: %w", fields.Name, err)
	}
	*existing = updated
	r.updated++
	return existing, false, nil
}

func checkRange(row int, minValue, maxValue *float64) error {
	if minValue != nil && maxValue != nil && *minValue > *maxValue {
		return apperrors.InvalidRange(row, *minValue, *maxValue)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func overwrite(dst **string, value string) {
	if value != "" {
		v := value
		*dst = &v
	}
}
