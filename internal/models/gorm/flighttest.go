package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// FlightTest is one recorded test session. (created_by_id, test_name) is unique.
type FlightTest struct {
	ID              string     `gorm:"column:id;primaryKey;type:uuid"`
	TestName        string     `gorm:"column:test_name;type:varchar(255);not null;uniqueIndex:idx_flight_tests_owner_name"`
	AircraftType    *string    `gorm:"column:aircraft_type;type:varchar(100)"`
	TestDate        *time.Time `gorm:"column:test_date"`
	DurationSeconds *float64   `gorm:"column:duration_seconds"`
	Description     *string    `gorm:"column:description;type:text"`
	CreatedByID     string     `gorm:"column:created_by_id;type:uuid;not null;index;uniqueIndex:idx_flight_tests_owner_name"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	DataPoints []DataPoint `gorm:"foreignKey:FlightTestID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (FlightTest) TableName() string {
	return "flight_tests"
}

func (f *FlightTest) BeforeCreate(*gormlib.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
