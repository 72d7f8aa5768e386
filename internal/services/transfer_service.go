// internal/services/transfer_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/models"
)

// TransferService changes asset ownership behind the dispute guard: an asset
// with an unresolved dispute cannot change owner.
type TransferService struct {
	ledger *database.Ledger
}

type TransferIPRequest struct {
	NewOwner string `json:"new_owner" validate:"required,account"`
}

type TransferCheck struct {
	IPAssetID          uint64   `json:"ip_asset_id"`
	Transferable       bool     `json:"transferable"`
	BlockingDisputeIDs []uint64 `json:"blocking_dispute_ids"`
}

func NewTransferService(ledger *database.Ledger) *TransferService {
	return &TransferService{ledger: ledger}
}

func (s *TransferService) CanTransfer(ctx context.Context, ipAssetID uint64) (*TransferCheck, error) {
	var check *TransferCheck
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		if _, err := loadAsset(txn.DB, ipAssetID); err != nil {
			return err
		}
		blocking, err := unresolvedDisputeIDs(txn.DB, ipAssetID)
		if err != nil {
			return err
		}
		check = &TransferCheck{IPAssetID: ipAssetID, Transferable: len(blocking) == 0, BlockingDisputeIDs: blocking}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

// guardTransfer fails with the ids of every dispute blocking the transfer.
func guardTransfer(txn *database.Txn, ipAssetID uint64) error {
	blocking, err := unresolvedDisputeIDs(txn.DB, ipAssetID)
	if err != nil {
		return err
	}
	if len(blocking) > 0 {
		return preconditionFailed(CodeActiveDisputes, "IP asset %d has %d unresolved disputes", ipAssetID, len(blocking)).
			With("dispute_ids", blocking)
	}
	return nil
}

func (s *TransferService) TransferIP(ctx context.Context, caller Caller, ipAssetID uint64, req *TransferIPRequest) (*models.OwnershipTransfer, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	newOwner, err := normalizeAccount("new_owner", req.NewOwner)
	if err != nil {
		return nil, err
	}

	var transfer *models.OwnershipTransfer
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		asset, err := loadAsset(txn.DB, ipAssetID)
		if err != nil {
			return err
		}
		if asset.Owner != caller.Address {
			return unauthorized(CodeNotOwner, "only the owner of IP asset %d may transfer it", asset.ID)
		}
		if newOwner == asset.Owner {
			return invalidInput(CodeInvalidArgument, "IP asset %d is already owned by %s", asset.ID, newOwner)
		}
		if err := guardTransfer(txn, asset.ID); err != nil {
			return err
		}

		previous := asset.Owner
		if err := txn.DB.Model(asset).Update("owner", newOwner).Error; err != nil {
			return fmt.Errorf("failed to transfer IP asset: %w", err)
		}
		transfer = &models.OwnershipTransfer{
			IPAssetID:     asset.ID,
			FromOwner:     previous,
			ToOwner:       newOwner,
			TransferredAt: txn.Now,
			LedgerVersion: txn.Version,
		}
		if err := txn.DB.Create(transfer).Error; err != nil {
			return fmt.Errorf("failed to record ownership transfer: %w", err)
		}

		txn.Emit(events.New(events.IPTransferred, map[string]interface{}{
			"ip_asset_id": asset.ID,
			"from":        transfer.FromOwner,
			"to":          newOwner,
		}))
		return nil
	})
	metrics.Operation("transfer_ip", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"ip_asset_id": ipAssetID,
		"from":        transfer.FromOwner,
		"to":          transfer.ToOwner,
	}).Info("IP asset transferred")
	return transfer, nil
}

func (s *TransferService) TransferHistory(ctx context.Context, ipAssetID uint64) ([]models.OwnershipTransfer, error) {
	var transfers []models.OwnershipTransfer
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		if _, err := loadAsset(txn.DB, ipAssetID); err != nil {
			return err
		}
		if err := txn.DB.Where("ip_asset_id = ?", ipAssetID).Order("id ASC").Find(&transfers).Error; err != nil {
			return fmt.Errorf("failed to load transfer history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfers, nil
}
