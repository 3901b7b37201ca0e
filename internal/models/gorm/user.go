package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	Username     string    `gorm:"column:username;not null;uniqueIndex"`
	FullName     *string   `gorm:"column:full_name"`
	PasswordHash string    `gorm:"column:hashed_password;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	IsSuperuser  bool      `gorm:"column:is_superuser;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	FlightTests []FlightTest `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gormlib.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
