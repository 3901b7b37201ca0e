package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Parameter is a named measured quantity shared by all flight tests.
type Parameter struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid"`
	Name        string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
	Description *string   `gorm:"column:description;type:text"`
	Unit        *string   `gorm:"column:unit;type:varchar(50)"`
	System      *string   `gorm:"column:system;type:varchar(100);index"`
	Category    *string   `gorm:"column:category;type:varchar(100);index"`
	MinValue    *float64  `gorm:"column:min_value"`
	MaxValue    *float64  `gorm:"column:max_value"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Parameter) TableName() string {
	return "test_parameters"
}

func (p *Parameter) BeforeCreate(*gormlib.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
