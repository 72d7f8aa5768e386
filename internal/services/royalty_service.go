// internal/services/royalty_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/utils"
)

type RoyaltyService struct {
	ledger *database.Ledger
}

// PaymentReceipt is the applied payment together with its full split.
type PaymentReceipt struct {
	Payment   *models.RevenuePayment `json:"payment"`
	Breakdown *RoyaltyBreakdown      `json:"breakdown"`
}

type ClaimResult struct {
	IPAssetID uint64    `json:"ip_asset_id"`
	Licensee  string    `json:"licensee"`
	Amount    int64     `json:"amount"`
	ClaimedAt time.Time `json:"claimed_at"`
}

type RoyaltyInfo struct {
	IPAssetID     uint64     `json:"ip_asset_id"`
	Account       string     `json:"account"`
	TotalRevenue  int64      `json:"total_revenue"`
	Claimable     int64      `json:"claimable"`
	TotalAccrued  int64      `json:"total_accrued"`
	LastClaimedAt *time.Time `json:"last_claimed_at"`
}

type paymentSource struct {
	kind      models.PaymentSource
	reference *string
}

func NewRoyaltyService(ledger *database.Ledger) *RoyaltyService {
	return &RoyaltyService{ledger: ledger}
}

// ComputeBreakdown previews how amount would be split right now. It never
// mutates state.
func (s *RoyaltyService) ComputeBreakdown(ctx context.Context, ipAssetID uint64, amount int64) (*RoyaltyBreakdown, error) {
	if amount <= 0 {
		return nil, invalidInput(CodeInvalidAmount, "payment amount must be positive")
	}

	var breakdown *RoyaltyBreakdown
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		var err error
		breakdown, err = breakdownAt(txn, ipAssetID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}

func breakdownAt(txn *database.Txn, ipAssetID uint64, amount int64) (*RoyaltyBreakdown, error) {
	asset, err := loadAsset(txn.DB, ipAssetID)
	if err != nil {
		return nil, err
	}
	state, err := loadLedgerState(txn.DB)
	if err != nil {
		return nil, err
	}
	licenses, err := assetLicenses(txn.DB, asset.ID)
	if err != nil {
		return nil, err
	}
	return ComputeBreakdown(asset, licenses, amount, state.PlatformFeeBp, txn.Now), nil
}

// PayRevenue applies a direct revenue payment from the caller.
func (s *RoyaltyService) PayRevenue(ctx context.Context, caller Caller, ipAssetID uint64, amount int64) (*PaymentReceipt, error) {
	receipt, err := s.applyPayment(ctx, caller.Address, ipAssetID, amount, paymentSource{kind: models.PaymentSourceDirect})
	metrics.Operation("pay_revenue", err)
	return receipt, err
}

func (s *RoyaltyService) applyPayment(ctx context.Context, payer string, ipAssetID uint64, amount int64, src paymentSource) (*PaymentReceipt, error) {
	if amount <= 0 {
		return nil, invalidInput(CodeInvalidAmount, "payment amount must be positive")
	}

	var receipt *PaymentReceipt
	err := s.ledger.Update(ctx, func(txn *database.Txn) error {
		var err error
		receipt, err = applyPaymentTx(txn, payer, ipAssetID, amount, src)
		return err
	})
	if err != nil {
		return nil, err
	}

	b := receipt.Breakdown
	metrics.RevenueDistributed(b.PlatformFee, b.LicenseTotal, b.OwnerAmount)
	logrus.WithFields(logrus.Fields{
		"ip_asset_id":  ipAssetID,
		"payment_id":   receipt.Payment.ID,
		"amount":       amount,
		"platform_fee": b.PlatformFee,
		"licensees":    len(b.Licenses),
		"owner_amount": b.OwnerAmount,
		"source":       src.kind,
	}).Info("Revenue payment applied")
	return receipt, nil
}

// applyPaymentTx credits every party of the breakdown inside txn.
func applyPaymentTx(txn *database.Txn, payer string, ipAssetID uint64, amount int64, src paymentSource) (*PaymentReceipt, error) {
	breakdown, err := breakdownAt(txn, ipAssetID, amount)
	if err != nil {
		return nil, err
	}
	state, err := loadLedgerState(txn.DB)
	if err != nil {
		return nil, err
	}

	for _, share := range breakdown.Licenses {
		if err := creditBalance(txn.DB, ipAssetID, share.Licensee, share.Amount); err != nil {
			return nil, err
		}
	}

	if err := txn.DB.Model(&models.IPAsset{}).Where("id = ?", ipAssetID).
		Update("total_revenue", gorm.Expr("total_revenue + ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("failed to update asset revenue: %w", err)
	}
	if err := txn.DB.Model(&models.LedgerState{}).Where("id = ?", models.LedgerStateID).
		Update("total_fees_collected", gorm.Expr("total_fees_collected + ?", breakdown.PlatformFee)).Error; err != nil {
		return nil, fmt.Errorf("failed to update collected fees: %w", err)
	}

	payment := &models.RevenuePayment{
		IPAssetID:        ipAssetID,
		Payer:            payer,
		Amount:           amount,
		PlatformFee:      breakdown.PlatformFee,
		PlatformFeeBp:    breakdown.PlatformFeeBp,
		FeeCollector:     state.FeeCollector,
		Remainder:        breakdown.Remainder,
		LicenseTotal:     breakdown.LicenseTotal,
		OwnerPaid:        breakdown.Owner,
		OwnerAmount:      breakdown.OwnerAmount,
		Breakdown:        breakdown.toJSONB(),
		Source:           src.kind,
		PaymentReference: src.reference,
		PaidAt:           txn.Now,
		LedgerVersion:    txn.Version,
	}
	if err := txn.DB.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record revenue payment: %w", err)
	}

	txn.Emit(events.New(events.RevenuePaid, map[string]interface{}{
		"payment_id":   payment.ID,
		"ip_asset_id":  ipAssetID,
		"amount":       amount,
		"platform_fee": breakdown.PlatformFee,
		"owner":        breakdown.Owner,
		"owner_amount": breakdown.OwnerAmount,
		"source":       src.kind,
	}))
	return &PaymentReceipt{Payment: payment, Breakdown: breakdown}, nil
}

func creditBalance(tx *gorm.DB, ipAssetID uint64, account string, amount int64) error {
	if amount == 0 {
		return nil
	}

	var balance models.ClaimableBalance
	err := tx.Where("ip_asset_id = ? AND account = ?", ipAssetID, account).First(&balance).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		balance = models.ClaimableBalance{IPAssetID: ipAssetID, Account: account}
	case err != nil:
		return fmt.Errorf("failed to load claimable balance: %w", err)
	}

	balance.Amount += amount
	balance.TotalAccrued += amount
	if err := tx.Save(&balance).Error; err != nil {
		return fmt.Errorf("failed to credit claimable balance: %w", err)
	}
	return nil
}

// ClaimRoyalties pays out and zeroes the licensee's balance for the asset.
// A zero balance is reported as NOTHING_TO_CLAIM.
func (s *RoyaltyService) ClaimRoyalties(ctx context.Context, ipAssetID uint64, licensee string) (*ClaimResult, error) {
	account, err := normalizeAccount("licensee", licensee)
	if err != nil {
		return nil, err
	}

	var result *ClaimResult
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		if _, err := loadAsset(txn.DB, ipAssetID); err != nil {
			return err
		}

		var balance models.ClaimableBalance
		err := txn.DB.Where("ip_asset_id = ? AND account = ?", ipAssetID, account).First(&balance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && balance.Amount == 0) {
			return preconditionFailed(CodeNothingToClaim, "no royalties to claim for %s on IP asset %d", account, ipAssetID)
		}
		if err != nil {
			return fmt.Errorf("failed to load claimable balance: %w", err)
		}

		result = &ClaimResult{
			IPAssetID: ipAssetID,
			Licensee:  account,
			Amount:    balance.Amount,
			ClaimedAt: txn.Now,
		}
		now := txn.Now
		if err := txn.DB.Model(&balance).Updates(map[string]interface{}{
			"amount":          0,
			"last_claimed_at": &now,
		}).Error; err != nil {
			return fmt.Errorf("failed to clear claimable balance: %w", err)
		}

		txn.Emit(events.New(events.RoyaltiesClaimed, map[string]interface{}{
			"ip_asset_id": ipAssetID,
			"licensee":    account,
			"amount":      result.Amount,
		}))
		return nil
	})
	metrics.Operation("claim_royalties", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"ip_asset_id": ipAssetID,
		"licensee":    account,
		"amount":      result.Amount,
	}).Info("Royalties claimed")
	return result, nil
}

func (s *RoyaltyService) GetRoyaltyInfo(ctx context.Context, ipAssetID uint64, account string) (*RoyaltyInfo, error) {
	addr, err := normalizeAccount("account", account)
	if err != nil {
		return nil, err
	}

	var info *RoyaltyInfo
	err = s.ledger.View(ctx, func(txn *database.Txn) error {
		asset, err := loadAsset(txn.DB, ipAssetID)
		if err != nil {
			return err
		}
		info = &RoyaltyInfo{IPAssetID: asset.ID, Account: addr, TotalRevenue: asset.TotalRevenue}

		var balance models.ClaimableBalance
		err = txn.DB.Where("ip_asset_id = ? AND account = ?", ipAssetID, addr).First(&balance).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("failed to load claimable balance: %w", err)
		}
		info.Claimable = balance.Amount
		info.TotalAccrued = balance.TotalAccrued
		info.LastClaimedAt = balance.LastClaimedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *RoyaltyService) ListPayments(ctx context.Context, ipAssetID uint64, params utils.PaginationParams) ([]models.RevenuePayment, int64, error) {
	var payments []models.RevenuePayment
	var total int64

	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		if _, err := loadAsset(txn.DB, ipAssetID); err != nil {
			return err
		}
		query := txn.DB.Model(&models.RevenuePayment{}).Where("ip_asset_id = ?", ipAssetID)
		if err := query.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		query = utils.ApplySort(query, params, []string{"id", "paid_at", "amount"})
		query = utils.ApplyPagination(query, params)
		if err := query.Find(&payments).Error; err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
