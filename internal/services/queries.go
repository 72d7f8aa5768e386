// internal/services/queries.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/models"
)

// Lookups shared by the services. All take the transaction handle so they
// see the same snapshot as the operation calling them.

func loadAsset(tx *gorm.DB, id uint64) (*models.IPAsset, error) {
	var asset models.IPAsset
	if err := tx.First(&asset, id).Error; err != nil {
		return nil, lookupErr(err, notFound(CodeAssetNotFound, "IP asset %d not found", id), "IP asset")
	}
	return &asset, nil
}

func loadLicense(tx *gorm.DB, id uint64) (*models.License, error) {
	var license models.License
	if err := tx.First(&license, id).Error; err != nil {
		return nil, lookupErr(err, notFound(CodeLicenseNotFound, "license %d not found", id), "license")
	}
	return &license, nil
}

func loadDispute(tx *gorm.DB, id uint64) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := tx.First(&dispute, id).Error; err != nil {
		return nil, lookupErr(err, notFound(CodeDisputeNotFound, "dispute %d not found", id), "dispute")
	}
	return &dispute, nil
}

func loadArbitration(tx *gorm.DB, id uint64) (*models.Arbitration, error) {
	var arbitration models.Arbitration
	if err := tx.Preload("Votes").First(&arbitration, id).Error; err != nil {
		return nil, lookupErr(err, notFound(CodeArbitrationNotFound, "arbitration %d not found", id), "arbitration")
	}
	return &arbitration, nil
}

func loadArbitrator(tx *gorm.DB, address string) (*models.Arbitrator, error) {
	var arbitrator models.Arbitrator
	if err := tx.First(&arbitrator, "address = ?", address).Error; err != nil {
		return nil, lookupErr(err, notFound(CodeNotRegistered, "arbitrator %s is not registered", address), "arbitrator")
	}
	return &arbitrator, nil
}

func loadLedgerState(tx *gorm.DB) (*models.LedgerState, error) {
	var state models.LedgerState
	if err := tx.First(&state, models.LedgerStateID).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	return &state, nil
}

func assetLicenses(tx *gorm.DB, assetID uint64) ([]models.License, error) {
	var licenses []models.License
	if err := tx.Where("ip_asset_id = ?", assetID).Order("id ASC").Find(&licenses).Error; err != nil {
		return nil, fmt.Errorf("failed to load licenses: %w", err)
	}
	return licenses, nil
}

func unresolvedDisputeIDs(tx *gorm.DB, assetID uint64) ([]uint64, error) {
	ids := []uint64{}
	if err := tx.Model(&models.Dispute{}).
		Where("ip_asset_id = ? AND is_resolved = ?", assetID, false).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load unresolved disputes: %w", err)
	}
	return ids, nil
}
