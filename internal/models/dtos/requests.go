package dtos

import "time"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type UserCreateRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Username string  `json:"username" validate:"required,min=3,max=50"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
}

// UserUpdateRequest changes only the fields present. IsActive and
// IsSuperuser are honored for superusers only.
type UserUpdateRequest struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	FullName    *string `json:"full_name,omitempty" validate:"omitempty,max=255"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

type FlightTestCreateRequest struct {
	TestName        string     `json:"test_name" validate:"required,max=255"`
	AircraftType    *string    `json:"aircraft_type,omitempty" validate:"omitempty,max=100"`
	TestDate        *time.Time `json:"test_date,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty" validate:"omitempty,gte=0"`
	Description     *string    `json:"description,omitempty"`
}

type FlightTestUpdateRequest struct {
	TestName        *string    `json:"test_name,omitempty" validate:"omitempty,min=1,max=255"`
	AircraftType    *string    `json:"aircraft_type,omitempty" validate:"omitempty,max=100"`
	TestDate        *time.Time `json:"test_date,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty" validate:"omitempty,gte=0"`
	Description     *string    `json:"description,omitempty"`
}

type ParameterCreateRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description,omitempty"`
	Unit        *string  `json:"unit,omitempty" validate:"omitempty,max=50"`
	System      *string  `json:"system,omitempty" validate:"omitempty,max=100"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	MinValue    *float64 `json:"min_value,omitempty"`
	MaxValue    *float64 `json:"max_value,omitempty"`
}

type ParameterUpdateRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty"`
	Unit        *string  `json:"unit,omitempty" validate:"omitempty,max=50"`
	System      *string  `json:"system,omitempty" validate:"omitempty,max=100"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	MinValue    *float64 `json:"min_value,omitempty"`
	MaxValue    *float64 `json:"max_value,omitempty"`
}

type ParameterBulkUpdateItem struct {
	ID string `json:"id" validate:"required,uuid"`
	ParameterUpdateRequest
}

type ParameterBulkCreateRequest struct {
	Parameters []ParameterCreateRequest `json:"parameters" validate:"required,min=1,max=1000,dive"`
}

type ParameterBulkUpdateRequest struct {
	Parameters []ParameterBulkUpdateItem `json:"parameters" validate:"required,min=1,max=1000,dive"`
}

type ParameterBulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=1000,dive,uuid"`
}
