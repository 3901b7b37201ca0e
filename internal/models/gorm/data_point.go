package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// DataPoint is one sample of a parameter at one instant within a flight test.
type DataPoint struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	FlightTestID string    `gorm:"column:flight_test_id;type:uuid;not null;index"`
	ParameterID  string    `gorm:"column:parameter_id;type:uuid;not null;index"`
	Timestamp    time.Time `gorm:"column:timestamp;not null;index"`
	Value        float64   `gorm:"column:value;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`

	// Relationships
	Parameter Parameter `gorm:"foreignKey:ParameterID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for GORM
func (DataPoint) TableName() string {
	return "data_points"
}

func (d *DataPoint) BeforeCreate(*gormlib.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// AllModels lists every model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&FlightTest{},
		&Parameter{},
		&DataPoint{},
	}
}
