package dtos

import (
	"time"

	gormModels "flighttest/ftias/internal/models/gorm"
)

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// ErrorDetail is the data of an error response. Row is set for upload errors
// tied to one row of the file.
type ErrorDetail struct {
	Kind string `json:"kind"`
	Row  *int   `json:"row,omitempty"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FullName    *string   `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewUserResponse(u *gormModels.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type FlightTestResponse struct {
	ID              string     `json:"id"`
	TestName        string     `json:"test_name"`
	AircraftType    *string    `json:"aircraft_type"`
	TestDate        *time.Time `json:"test_date"`
	DurationSeconds *float64   `json:"duration_seconds"`
	Description     *string    `json:"description"`
	CreatedByID     string     `json:"created_by_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewFlightTestResponse(f *gormModels.FlightTest) FlightTestResponse {
	return FlightTestResponse{
		ID:              f.ID,
		TestName:        f.TestName,
		AircraftType:    f.AircraftType,
		TestDate:        f.TestDate,
		DurationSeconds: f.DurationSeconds,
		Description:     f.Description,
		CreatedByID:     f.CreatedByID,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

type ParameterResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Unit        *string   `json:"unit"`
	System      *string   `json:"system"`
	Category    *string   `json:"category"`
	MinValue    *float64  `json:"min_value"`
	MaxValue    *float64  `json:"max_value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewParameterResponse(p *gormModels.Parameter) ParameterResponse {
	return ParameterResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		System:      p.System,
		Category:    p.Category,
		MinValue:    p.MinValue,
		MaxValue:    p.MaxValue,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewParameterResponses(params []gormModels.Parameter) []ParameterResponse {
	out := make([]ParameterResponse, len(params))
	for i := range params {
		out[i] = NewParameterResponse(&params[i])
	}
	return out
}

type CSVUploadResponse struct {
	RowsProcessed     int `json:"rows_processed"`
	DataPointsCreated int `json:"data_points_created"`
	ParametersCreated int `json:"parameters_created"`
}

type ExcelUploadResponse struct {
	RowsProcessed     int `json:"rows_processed"`
	ParametersCreated int `json:"parameters_created"`
	ParametersUpdated int `json:"parameters_updated"`
}

type BulkCreateResponse struct {
	Created int `json:"created"`
}

type BulkUpdateResponse struct {
	Updated int `json:"updated"`
}
