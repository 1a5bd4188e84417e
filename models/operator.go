package models

import (
	"time"
)

// Operator is an account allowed to use the HTTP API.
type Operator struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`
	Username       string     `gorm:"size:255;not null;unique"`
	HashedPassword []byte     `gorm:"not null"`
	Role           string     `gorm:"size:32;not null;default:reviewer"`
}
