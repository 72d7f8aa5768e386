// internal/models/royalty.go
package models

import (
	"time"
)

// ClaimableBalance is the accrued, unwithdrawn royalty owed to one account
// for one asset.
type ClaimableBalance struct {
	BaseModel
	IPAssetID     uint64     `json:"ip_asset_id" gorm:"not null;uniqueIndex:idx_claimable_asset_account"`
	Account       string     `json:"account" gorm:"size:42;not null;uniqueIndex:idx_claimable_asset_account"`
	Amount        int64      `json:"amount" gorm:"not null;default:0"`
	TotalAccrued  int64      `json:"total_accrued" gorm:"not null;default:0"`
	LastClaimedAt *time.Time `json:"last_claimed_at"`
}

// RevenuePayment is the audit record of one applied revenue payment.
type RevenuePayment struct {
	BaseModel
	IPAssetID        uint64        `json:"ip_asset_id" gorm:"not null;index"`
	Payer            string        `json:"payer" gorm:"size:42;index"`
	Amount           int64         `json:"amount" gorm:"not null"`
	PlatformFee      int64         `json:"platform_fee" gorm:"not null"`
	PlatformFeeBp    int64         `json:"platform_fee_bp" gorm:"not null"`
	FeeCollector     string        `json:"fee_collector" gorm:"size:42"`
	Remainder        int64         `json:"remainder" gorm:"not null"`
	LicenseTotal     int64         `json:"license_total" gorm:"not null"`
	OwnerPaid        string        `json:"owner_paid" gorm:"size:42;not null"`
	OwnerAmount      int64         `json:"owner_amount" gorm:"not null"`
	Breakdown        JSONB         `json:"breakdown" gorm:"type:jsonb"`
	Source           PaymentSource `json:"source" gorm:"type:varchar(20);default:'direct'"`
	PaymentReference *string       `json:"payment_reference,omitempty" gorm:"size:255;uniqueIndex"`
	PaidAt           time.Time     `json:"paid_at" gorm:"not null;index"`
	LedgerVersion    uint64        `json:"ledger_version"`
}

// LedgerState is the single settings/version row of the ledger.
type LedgerState struct {
	ID                 uint64    `json:"id" gorm:"primaryKey"`
	Version            uint64    `json:"version" gorm:"not null;default:0"`
	PlatformFeeBp      int64     `json:"platform_fee_bp" gorm:"not null"`
	FeeCollector       string    `json:"fee_collector" gorm:"size:42"`
	TotalFeesCollected int64     `json:"total_fees_collected" gorm:"not null;default:0"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const LedgerStateID uint64 = 1
