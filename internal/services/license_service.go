// internal/services/license_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/utils"
)

type LicenseService struct {
	ledger *database.Ledger
}

type MintLicenseRequest struct {
	Licensee             string `json:"licensee" validate:"required,account"`
	RoyaltyShareBp       int64  `json:"royalty_share_bp"`
	DurationSeconds      int64  `json:"duration_seconds" validate:"gt=0"`
	CommercialUseAllowed bool   `json:"commercial_use_allowed"`
	TermsRef             string `json:"terms_ref,omitempty" validate:"max=2048"`
}

type LicenseSearchParams struct {
	utils.PaginationParams
	IPAssetID  uint64 `json:"ip_asset_id,omitempty"`
	Licensee   string `json:"licensee,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
}

func NewLicenseService(ledger *database.Ledger) *LicenseService {
	return &LicenseService{ledger: ledger}
}

// MintLicense carves royaltyShareBp out of the owner's remaining share.
// Only the asset owner may mint; the sum of license shares and the owner's
// share stays at 10,000bp.
func (s *LicenseService) MintLicense(ctx context.Context, caller Caller, ipAssetID uint64, req *MintLicenseRequest) (*models.License, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	licensee, err := normalizeAccount("licensee", req.Licensee)
	if err != nil {
		return nil, err
	}
	if req.RoyaltyShareBp < 1 || req.RoyaltyShareBp > models.BasisPointsDenominator {
		return nil, invalidInput(CodeInvalidArgument, "royalty share must be between 1 and %d basis points", models.BasisPointsDenominator)
	}
	if req.DurationSeconds > models.MaxLicenseDurationSeconds {
		return nil, invalidInput(CodeInvalidArgument, "license duration must be at most %d seconds", models.MaxLicenseDurationSeconds).
			With("max_duration_seconds", models.MaxLicenseDurationSeconds)
	}

	var license *models.License
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		asset, err := loadAsset(txn.DB, ipAssetID)
		if err != nil {
			return err
		}
		if asset.Owner != caller.Address {
			return unauthorized(CodeNotOwner, "only the owner of IP asset %d may mint licenses", asset.ID)
		}
		if req.RoyaltyShareBp > asset.OwnerRoyaltyShareBp {
			return invalidInput(CodeRoyaltyShareExceeded,
				"royalty share %d bp exceeds the owner's remaining %d bp", req.RoyaltyShareBp, asset.OwnerRoyaltyShareBp).
				With("remaining_bp", asset.OwnerRoyaltyShareBp)
		}

		license = &models.License{
			IPAssetID:            asset.ID,
			Licensee:             licensee,
			RoyaltyShareBp:       req.RoyaltyShareBp,
			DurationSeconds:      req.DurationSeconds,
			StartedAt:            txn.Now,
			IsActive:             true,
			CommercialUseAllowed: req.CommercialUseAllowed,
			TermsRef:             req.TermsRef,
		}
		if err := txn.DB.Create(license).Error; err != nil {
			return fmt.Errorf("failed to create license: %w", err)
		}

		remaining := asset.OwnerRoyaltyShareBp - req.RoyaltyShareBp
		if err := txn.DB.Model(asset).Update("owner_royalty_share_bp", remaining).Error; err != nil {
			return fmt.Errorf("failed to update owner royalty share: %w", err)
		}

		txn.Emit(events.New(events.LicenseMinted, map[string]interface{}{
			"license_id":       license.ID,
			"ip_asset_id":      asset.ID,
			"licensee":         licensee,
			"royalty_share_bp": license.RoyaltyShareBp,
			"owner_share_bp":   remaining,
		}))
		return nil
	})
	metrics.Operation("mint_license", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"license_id":  license.ID,
		"ip_asset_id": ipAssetID,
		"licensee":    license.Licensee,
		"share_bp":    license.RoyaltyShareBp,
	}).Info("License minted")
	return license, nil
}

// RevokeLicense stops a license from earning further royalties. Its share
// stays allocated; already accrued balances remain claimable.
func (s *LicenseService) RevokeLicense(ctx context.Context, caller Caller, licenseID uint64) (*models.License, error) {
	var license *models.License
	err := s.ledger.Update(ctx, func(txn *database.Txn) error {
		var err error
		license, err = loadLicense(txn.DB, licenseID)
		if err != nil {
			return err
		}
		asset, err := loadAsset(txn.DB, license.IPAssetID)
		if err != nil {
			return err
		}
		if asset.Owner != caller.Address {
			return unauthorized(CodeNotOwner, "only the owner of IP asset %d may revoke its licenses", asset.ID)
		}
		if !license.IsActive {
			return preconditionFailed(CodeLicenseInactive, "license %d is already inactive", license.ID)
		}

		if err := txn.DB.Model(license).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to revoke license: %w", err)
		}
		license.IsActive = false

		txn.Emit(events.New(events.LicenseRevoked, map[string]interface{}{
			"license_id":  license.ID,
			"ip_asset_id": license.IPAssetID,
		}))
		return nil
	})
	metrics.Operation("revoke_license", err)
	if err != nil {
		return nil, err
	}
	return license, nil
}

// ExpireLicenses marks active licenses whose term has ended as inactive.
// Distribution already ignores expired licenses, so this only tidies state.
func (s *LicenseService) ExpireLicenses(ctx context.Context) (int, error) {
	var pending int
	if err := s.ledger.View(ctx, func(txn *database.Txn) error {
		expired, err := expiredLicenseIDs(txn)
		pending = len(expired)
		return err
	}); err != nil {
		return 0, err
	}
	if pending == 0 {
		return 0, nil
	}

	var expired []uint64
	err := s.ledger.Update(ctx, func(txn *database.Txn) error {
		var err error
		expired, err = expiredLicenseIDs(txn)
		if err != nil || len(expired) == 0 {
			return err
		}
		if err := txn.DB.Model(&models.License{}).Where("id IN ?", expired).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to expire licenses: %w", err)
		}
		for _, id := range expired {
			txn.Emit(events.New(events.LicenseExpired, map[string]interface{}{"license_id": id}))
		}
		return nil
	})
	metrics.Operation("expire_licenses", err)
	if err != nil {
		return 0, err
	}

	if len(expired) > 0 {
		logrus.WithField("count", len(expired)).Info("Expired licenses deactivated")
	}
	return len(expired), nil
}

func expiredLicenseIDs(txn *database.Txn) ([]uint64, error) {
	var active []models.License
	if err := txn.DB.Where("is_active = ?", true).Order("id ASC").Find(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to load active licenses: %w", err)
	}
	var ids []uint64
	for i := range active {
		if !txn.Now.Before(active[i].ExpiresAt()) {
			ids = append(ids, active[i].ID)
		}
	}
	return ids, nil
}

func (s *LicenseService) GetLicense(ctx context.Context, id uint64) (*models.License, error) {
	var license *models.License
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		var err error
		license, err = loadLicense(txn.DB, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return license, nil
}

func (s *LicenseService) SearchLicenses(ctx context.Context, params LicenseSearchParams) ([]models.License, int64, error) {
	var licenses []models.License
	var total int64

	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		query := txn.DB.Model(&models.License{})

		if params.IPAssetID != 0 {
			if _, err := loadAsset(txn.DB, params.IPAssetID); err != nil {
				return err
			}
			query = query.Where("ip_asset_id = ?", params.IPAssetID)
		}
		if params.Licensee != "" {
			licensee, err := normalizeAccount("licensee", params.Licensee)
			if err != nil {
				return err
			}
			query = query.Where("licensee = ?", licensee)
		}
		if params.ActiveOnly {
			query = query.Where("is_active = ?", true)
		}

		if err := query.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count licenses: %w", err)
		}

		query = utils.ApplySort(query, params.PaginationParams, []string{"id", "started_at", "royalty_share_bp"})
		query = utils.ApplyPagination(query, params.PaginationParams)
		if err := query.Find(&licenses).Error; err != nil {
			return fmt.Errorf("failed to search licenses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return licenses, total, nil
}
