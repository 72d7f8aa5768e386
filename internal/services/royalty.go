// internal/services/royalty.go
package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Afoxcute/sear/internal/models"
)

type LicenseShare struct {
	LicenseID uint64 `json:"license_id"`
	Licensee  string `json:"licensee"`
	ShareBp   int64  `json:"share_bp"`
	Amount    int64  `json:"amount"`
}

// RoyaltyBreakdown is the deterministic split of one revenue payment.
type RoyaltyBreakdown struct {
	IPAssetID     uint64         `json:"ip_asset_id"`
	Total         int64          `json:"total"`
	PlatformFeeBp int64          `json:"platform_fee_bp"`
	PlatformFee   int64          `json:"platform_fee"`
	Remainder     int64          `json:"remainder"`
	Licenses      []LicenseShare `json:"licenses"`
	LicenseTotal  int64          `json:"license_total"`
	Owner         string         `json:"owner"`
	OwnerAmount   int64          `json:"owner_amount"`
	ComputedAt    time.Time      `json:"computed_at"`
}

var bpDenominator = decimal.NewFromInt(models.BasisPointsDenominator)

// bpShare is floor(amount * bp / 10000) for non-negative inputs, computed
// without int64 overflow on the product.
func bpShare(amount, bp int64) int64 {
	q, _ := decimal.NewFromInt(amount).Mul(decimal.NewFromInt(bp)).QuoRem(bpDenominator, 0)
	return q.IntPart()
}

// ComputeBreakdown splits amount between the platform fee, the licenses
// active at now (ascending id) and the owner. The owner takes whatever the
// floored license amounts leave, so no unit is lost.
func ComputeBreakdown(asset *models.IPAsset, licenses []models.License, amount, feeBp int64, now time.Time) *RoyaltyBreakdown {
	b := &RoyaltyBreakdown{
		IPAssetID:     asset.ID,
		Total:         amount,
		PlatformFeeBp: feeBp,
		Owner:         asset.Owner,
		Licenses:      []LicenseShare{},
		ComputedAt:    now,
	}

	b.PlatformFee = bpShare(amount, feeBp)
	b.Remainder = amount - b.PlatformFee

	ordered := make([]models.License, len(licenses))
	copy(ordered, licenses)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for i := range ordered {
		lic := &ordered[i]
		if lic.IPAssetID != asset.ID || !lic.ActiveAt(now) {
			continue
		}
		share := bpShare(b.Remainder, lic.RoyaltyShareBp)
		b.Licenses = append(b.Licenses, LicenseShare{
			LicenseID: lic.ID,
			Licensee:  lic.Licensee,
			ShareBp:   lic.RoyaltyShareBp,
			Amount:    share,
		})
		b.LicenseTotal += share
	}

	b.OwnerAmount = b.Remainder - b.LicenseTotal
	return b
}

// JSON form stored on the payment record.
func (b *RoyaltyBreakdown) toJSONB() models.JSONB {
	shares := make([]interface{}, 0, len(b.Licenses))
	for _, s := range b.Licenses {
		shares = append(shares, map[string]interface{}{
			"license_id": s.LicenseID,
			"licensee":   s.Licensee,
			"share_bp":   s.ShareBp,
			"amount":     s.Amount,
		})
	}
	return models.JSONB{
		"total":        b.Total,
		"platform_fee": b.PlatformFee,
		"remainder":    b.Remainder,
		"licenses":     shares,
		"owner":        b.Owner,
		"owner_amount": b.OwnerAmount,
	}
}

// PercentOf renders basis points as a percentage string, e.g. 250 -> "2.5".
func PercentOf(bp int64) string {
	return decimal.New(bp, -2).String()
}
