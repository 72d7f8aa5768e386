// internal/models/license.go
package models

import (
	"math"
	"time"
)

// MaxLicenseDurationSeconds is the longest license term whose expiry can be
// computed as a time.Duration.
const MaxLicenseDurationSeconds = math.MaxInt64 / int64(time.Second)

type License struct {
	BaseModel
	IPAssetID            uint64    `json:"ip_asset_id" gorm:"not null;index"`
	Licensee             string    `json:"licensee" gorm:"size:42;not null;index"`
	RoyaltyShareBp       int64     `json:"royalty_share_bp" gorm:"not null"`
	DurationSeconds      int64     `json:"duration_seconds" gorm:"not null"`
	StartedAt            time.Time `json:"started_at" gorm:"not null"`
	IsActive             bool      `json:"is_active" gorm:"default:true;index"`
	CommercialUseAllowed bool      `json:"commercial_use_allowed" gorm:"default:false"`
	TermsRef             string    `json:"terms_ref" gorm:"type:text"`
}

// ExpiresAt is the first instant at which the license no longer earns royalties.
func (l *License) ExpiresAt() time.Time {
	seconds := l.DurationSeconds
	if seconds > MaxLicenseDurationSeconds {
		seconds = MaxLicenseDurationSeconds
	}
	return l.StartedAt.Add(time.Duration(seconds) * time.Second)
}

// ActiveAt reports whether the license takes part in a distribution at now.
func (l *License) ActiveAt(now time.Time) bool {
	return l.IsActive && now.Before(l.ExpiresAt())
}
