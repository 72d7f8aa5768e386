// internal/models/ip_asset.go
package models

import (
	"time"
)

type IPAsset struct {
	BaseModel
	Owner               string    `json:"owner" gorm:"size:42;not null;index"`
	ContentHash         string    `json:"content_hash" gorm:"size:255;not null"`
	MetadataRef         string    `json:"metadata_ref" gorm:"size:255"`
	IsEncrypted         bool      `json:"is_encrypted" gorm:"default:false"`
	IsDisputed          bool      `json:"is_disputed" gorm:"default:false;index"`
	RegisteredAt        time.Time `json:"registered_at" gorm:"not null"`
	TotalRevenue        int64     `json:"total_revenue" gorm:"not null;default:0"`
	OwnerRoyaltyShareBp int64     `json:"owner_royalty_share_bp" gorm:"not null"`

	// Relationships
	Licenses []License `json:"licenses,omitempty" gorm:"foreignKey:IPAssetID"`
}

type OwnershipTransfer struct {
	BaseModel
	IPAssetID     uint64    `json:"ip_asset_id" gorm:"not null;index"`
	FromOwner     string    `json:"from_owner" gorm:"size:42;not null"`
	ToOwner       string    `json:"to_owner" gorm:"size:42;not null;index"`
	TransferredAt time.Time `json:"transferred_at" gorm:"not null"`
	LedgerVersion uint64    `json:"ledger_version"`
}
