// internal/services/ip_service.go
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

type IPService struct {
	ledger *database.Ledger
}

type RegisterIPRequest struct {
	ContentHash string `json:"content_hash" validate:"required,max=255"`
	MetadataRef string `json:"metadata_ref,omitempty" validate:"max=255"`
	IsEncrypted bool   `json:"is_encrypted"`
}

type IPSearchParams struct {
	utils.PaginationParams
	Owner    string `json:"owner,omitempty"`
	Disputed *bool  `json:"disputed,omitempty"`
}

func NewIPService(ledger *database.Ledger) *IPService {
	return &IPService{ledger: ledger}
}

// RegisterIP records a new asset owned by the caller, who keeps the full
// 10,000bp royalty share until licenses are minted.
func (s *IPService) RegisterIP(ctx context.Context, caller Caller, req *RegisterIPRequest) (*models.IPAsset, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	owner, err := normalizeAccount("owner", caller.Address)
	if err != nil {
		return nil, err
	}

	var asset *models.IPAsset
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		asset = &models.IPAsset{
			Owner:               owner,
			ContentHash:         req.ContentHash,
			MetadataRef:         req.MetadataRef,
			IsEncrypted:         req.IsEncrypted,
			RegisteredAt:        txn.Now,
			OwnerRoyaltyShareBp: models.BasisPointsDenominator,
		}
		if err := txn.DB.Create(asset).Error; err != nil {
			return fmt.Errorf("failed to create IP asset: %w", err)
		}
		txn.Emit(events.New(events.IPRegistered, map[string]interface{}{
			"ip_asset_id":  asset.ID,
			"owner":        asset.Owner,
			"content_hash": asset.ContentHash,
		}))
		return nil
	})
	metrics.Operation("register_ip", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"ip_asset_id": asset.ID,
		"owner":       asset.Owner,
	}).Info("IP asset registered")
	return asset, nil
}

func (s *IPService) GetIPAsset(ctx context.Context, id uint64) (*models.IPAsset, error) {
	var asset *models.IPAsset
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		var err error
		asset, err = loadAsset(txn.DB.Preload("Licenses"), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *IPService) SearchIPAssets(ctx context.Context, params IPSearchParams) ([]models.IPAsset, int64, error) {
	var assets []models.IPAsset
	var total int64

	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		query := txn.DB.Model(&models.IPAsset{})

		// Apply filters
		if params.Owner != "" {
			owner, err := normalizeAccount("owner", params.Owner)
			if err != nil {
				return err
			}
			query = query.Where("owner = ?", owner)
		}
		if params.Disputed != nil {
			query = query.Where("is_disputed = ?", *params.Disputed)
		}
		if params.Search != "" {
			query = query.Where("content_hash = ? OR metadata_ref = ?", params.Search, params.Search)
		}

		if err := query.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count IP assets: %w", err)
		}

		query = utils.ApplySort(query, params.PaginationParams, []string{"id", "created_at", "registered_at", "total_revenue"})
		query = utils.ApplyPagination(query, params.PaginationParams)
		if err := query.Find(&assets).Error; err != nil {
			return fmt.Errorf("failed to search IP assets: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}
