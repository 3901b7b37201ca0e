package services

import (
	"context"
	"strings"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/models/dtos"
	gormModels "flighttest/ftias/internal/models/gorm"
)

// FlightTestService owns flight-test metadata and the ownership rule: a
// flight test is visible only to the user who created it.
type FlightTestService struct {
	repo   *repositories.FlightTestRepository
	points *repositories.DataPointQueryRepository
}

func NewFlightTestService(repo *repositories.FlightTestRepository, points *repositories.DataPointQueryRepository) *FlightTestService {
	return &FlightTestService{repo: repo, points: points}
}

// GetOwned returns NotFound both when the test does not exist and when
// ownerID did not create it.
func (s *FlightTestService) GetOwned(ctx context.Context, id, ownerID string) (*gormModels.FlightTest, error) {
	if !validID(id) {
		return nil, apperrors.NotFound("Flight test")
	}
	test, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, apperrors.NotFound("Flight test")
	}
	return test, nil
}

func (s *FlightTestService) Create(ctx context.Context, ownerID string, req *dtos.FlightTestCreateRequest) (*gormModels.FlightTest, error) {
	name := strings.TrimSpace(req.TestName)
	if name == "" {
		return nil, apperrors.Validation("test_name is required")
	}
	if err := s.ensureNameFree(ctx, ownerID, name, ""); err != nil {
		return nil, err
	}

	test := &gormModels.FlightTest{
		TestName:        name,
		AircraftType:    req.AircraftType,
		TestDate:        req.TestDate,
		DurationSeconds: req.DurationSeconds,
		Description:     req.Description,
		CreatedByID:     ownerID,
	}
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *FlightTestService) List(ctx context.Context, ownerID string, skip, limit int) ([]gormModels.FlightTest, error) {
	return s.repo.ListByOwner(ctx, ownerID, skip, limit)
}

func (s *FlightTestService) Update(ctx context.Context, id, ownerID string, req *dtos.FlightTestUpdateRequest) (*gormModels.FlightTest, error) {
	test, err := s.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.TestName != nil {
		name := strings.TrimSpace(*req.TestName)
		if name == "" {
			return nil, apperrors.Validation("test_name must not be blank")
		}
		if name != test.TestName {
			if err := s.ensureNameFree(ctx, ownerID, name, test.ID); err != nil {
				return nil, err
			}
			test.TestName = name
		}
	}
	if req.AircraftType != nil {
		test.AircraftType = req.AircraftType
	}
	if req.TestDate != nil {
		test.TestDate = req.TestDate
	}
	if req.DurationSeconds != nil {
		test.DurationSeconds = req.DurationSeconds
	}
	if req.Description != nil {
		test.Description = req.Description
	}

	if err := s.repo.Update(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

// Delete removes the flight test and every data point recorded for it.
func (s *FlightTestService) Delete(ctx context.Context, id, ownerID string) error {
	test, err := s.GetOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, test.ID)
}

// ListData pages through the test's samples. An empty parameterID returns
// every parameter.
func (s *FlightTestService) ListData(ctx context.Context, id, ownerID, parameterID string, skip, limit int) ([]repositories.DataPointRow, error) {
	test, err := s.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if parameterID != "" && !validID(parameterID) {
		return nil, apperrors.Validation("parameter_id must be a valid UUID")
	}
	return s.points.ListByFlightTest(ctx, test.ID, parameterID, skip, limit)
}

func (s *FlightTestService) ParameterStats(ctx context.Context, id, ownerID string) ([]repositories.ParameterStatsRow, error) {
	test, err := s.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return s.points.ParameterStats(ctx, test.ID)
}

func (s *FlightTestService) ensureNameFree(ctx context.Context, ownerID, name, excludeID string) error {
	existing, err := s.repo.FindByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return apperrors.Conflict("Flight test with this name already exists")
	}
	return nil
}
