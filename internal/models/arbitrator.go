// internal/models/arbitrator.go
package models

import (
	"time"
)

type Arbitrator struct {
	Address         string    `json:"address" gorm:"primaryKey;size:42"`
	Stake           int64     `json:"stake" gorm:"not null;default:0"`
	Reputation      int64     `json:"reputation" gorm:"not null;default:0"`
	TotalCases      int64     `json:"total_cases" gorm:"not null;default:0"`
	SuccessfulCases int64     `json:"successful_cases" gorm:"not null;default:0"`
	IsActive        bool      `json:"is_active" gorm:"default:false;index"`
	ActiveDisputes  int64     `json:"active_disputes" gorm:"not null;default:0"`
	RegisteredAt    time.Time `json:"registered_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
