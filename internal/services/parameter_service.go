package services

import (
	"context"
	"sort"
	"strings"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/models/dtos"
	gormModels "flighttest/ftias/internal/models/gorm"
)

type ParameterService struct {
	repo *repositories.ParameterRepository
}

func NewParameterService(repo *repositories.ParameterRepository) *ParameterService {
	return &ParameterService{repo: repo}
}

func (s *ParameterService) Create(ctx context.Context, req *dtos.ParameterCreateRequest) (*gormModels.Parameter, error) {
	param, err := newParameter(req, 0)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, param.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("Parameter " + param.Name + " already exists")
	}

	if err := s.repo.Create(ctx, param); err != nil {
		return nil, err
	}
	return param, nil
}

func (s *ParameterService) Get(ctx context.Context, id string) (*gormModels.Parameter, error) {
	if !validID(id) {
		return nil, apperrors.NotFound("Parameter")
	}
	param, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if param == nil {
		return nil, apperrors.NotFound("Parameter")
	}
	return param, nil
}

func (s *ParameterService) List(ctx context.Context, filter repositories.ParameterFilter) ([]gormModels.Parameter, error) {
	return s.repo.List(ctx, filter)
}

func (s *ParameterService) Update(ctx context.Context, id string, req *dtos.ParameterUpdateRequest) (*gormModels.Parameter, error) {
	param, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != param.Name {
			existing, err := s.repo.FindByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, apperrors.Conflict("Parameter " + name + " already exists")
			}
		}
	}

	if err := applyParameterUpdate(param, req, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, param); err != nil {
		return nil, err
	}
	return param, nil
}

// Delete refuses parameters that still have data points.
func (s *ParameterService) Delete(ctx context.Context, id string) error {
	param, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.deleteUnreferenced(ctx, param.ID)
	return err
}

// BulkCreate inserts all parameters or none. Rows in errors are 1-based
// positions in the request.
func (s *ParameterService) BulkCreate(ctx context.Context, reqs []dtos.ParameterCreateRequest) (int, error) {
	params := make([]gormModels.Parameter, 0, len(reqs))
	names := make([]string, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))

	for i := range reqs {
		param, err := newParameter(&reqs[i], i+1)
		if err != nil {
			return 0, err
		}
		if seen[param.Name] {
			return 0, apperrors.Conflict("Duplicate parameter name in request: " + param.Name)
		}
		seen[param.Name] = true
		names = append(names, param.Name)
		params = append(params, *param)
	}

	existing, err := s.repo.FindExistingNames(ctx, names)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		sort.Strings(existing)
		return 0, apperrors.Conflict("Parameters already exist: " + strings.Join(existing, ", "))
	}

	if err := s.repo.CreateMany(ctx, params); err != nil {
		return 0, err
	}
	return len(params), nil
}

// BulkUpdate applies every item or none. Unknown ids are NotFound.
func (s *ParameterService) BulkUpdate(ctx context.Context, items []dtos.ParameterBulkUpdateItem) (int, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	params, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[string]*gormModels.Parameter, len(params))
	byName := make(map[string]string, len(params))
	for i := range params {
		byID[params[i].ID] = &params[i]
		byName[params[i].Name] = params[i].ID
	}

	var check []string
	for i, item := range items {
		param, ok := byID[item.ID]
		if !ok {
			return 0, apperrors.NotFound("Parameter " + item.ID)
		}
		before := param.Name
		if err := applyParameterUpdate(param, &item.ParameterUpdateRequest, i+1); err != nil {
			return 0, err
		}
		if param.Name != before {
			check = append(check, param.Name)
		}
	}

	final := make(map[string]bool, len(params))
	for _, param := range params {
		if final[param.Name] {
			return 0, apperrors.Conflict("Duplicate parameter name in request: " + param.Name)
		}
		final[param.Name] = true
	}

	// Names held before the update by parameters in this batch are free
	// once the duplicate check above passes.
	if len(check) > 0 {
		taken, err := s.repo.FindExistingNames(ctx, check)
		if err != nil {
			return 0, err
		}
		var conflicts []string
		for _, name := range taken {
			if _, inBatch := byName[name]; !inBatch {
				conflicts = append(conflicts, name)
			}
		}
		if len(conflicts) > 0 {
			sort.Strings(conflicts)
			return 0, apperrors.Conflict("Parameters already exist: " + strings.Join(conflicts, ", "))
		}
	}

	if err := s.repo.UpdateMany(ctx, params); err != nil {
		return 0, err
	}
	return len(items), nil
}

// BulkDelete removes the given parameters. Unknown ids are ignored; any
// referenced parameter aborts the whole request.
func (s *ParameterService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	return s.deleteUnreferenced(ctx, ids...)
}

func (s *ParameterService) deleteUnreferenced(ctx context.Context, ids ...string) (int64, error) {
	count, err := s.repo.CountDataPoints(ctx, ids...)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, apperrors.Conflict("Parameter is referenced by recorded data points")
	}
	return s.repo.DeleteMany(ctx, ids...)
}

func newParameter(req *dtos.ParameterCreateRequest, row int) (*gormModels.Parameter, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if err := checkRange(row, req.MinValue, req.MaxValue); err != nil {
		return nil, err
	}
	return &gormModels.Parameter{
		Name:        name,
		Description: req.Description,
		Unit:        req.Unit,
		System:      req.System,
		Category:    req.Category,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
	}, nil
}

// applyParameterUpdate copies the fields present in req and re-checks the
// resulting range.
func applyParameterUpdate(param *gormModels.Parameter, req *dtos.ParameterUpdateRequest, row int) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return apperrors.Validation("name must not be blank")
		}
		param.Name = name
	}
	if req.Description != nil {
		param.Description = req.Description
	}
	if req.Unit != nil {
		param.Unit = req.Unit
	}
	if req.System != nil {
		param.System = req.System
	}
	if req.Category != nil {
		param.Category = req.Category
	}
	if req.MinValue != nil {
		param.MinValue = req.MinValue
	}
	if req.MaxValue != nil {
		param.MaxValue = req.MaxValue
	}
	return checkRange(row, param.MinValue, param.MaxValue)
}
