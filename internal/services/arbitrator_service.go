// internal/services/arbitrator_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/utils"
)

type ArbitratorService struct {
	ledger *database.Ledger
	cfg    config.LedgerConfig
}

type RegisterArbitratorRequest struct {
	Stake int64 `json:"stake"`
}

type UnstakeResult struct {
	Address string `json:"address"`
	Refund  int64  `json:"refund"`
}

// ActiveDisputeCounts reports the cached counter next to the value
// recomputed from open arbitrations. They must always agree.
type ActiveDisputeCounts struct {
	Address    string `json:"address"`
	Cached     int64  `json:"cached"`
	Recomputed int64  `json:"recomputed"`
}

type ArbitratorSearchParams struct {
	utils.PaginationParams
	ActiveOnly bool `json:"active_only,omitempty"`
}

func NewArbitratorService(ledger *database.Ledger, cfg config.LedgerConfig) *ArbitratorService {
	return &ArbitratorService{ledger: ledger, cfg: cfg}
}

// RegisterArbitrator locks stake for the caller. Re-registering after an
// unstake keeps reputation and case history.
func (s *ArbitratorService) RegisterArbitrator(ctx context.Context, caller Caller, stake int64) (*models.Arbitrator, error) {
	address, err := normalizeAccount("address", caller.Address)
	if err != nil {
		return nil, err
	}
	if stake < s.cfg.MinArbitratorStake {
		return nil, invalidInput(CodeBelowMinimumStake, "stake %d is below the minimum of %d", stake, s.cfg.MinArbitratorStake).
			With("minimum_stake", s.cfg.MinArbitratorStake)
	}

	var arbitrator models.Arbitrator
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		err := txn.DB.First(&arbitrator, "address = ?", address).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			arbitrator = models.Arbitrator{Address: address}
		case err != nil:
			return fmt.Errorf("failed to load arbitrator: %w", err)
		case arbitrator.IsActive:
			return preconditionFailed(CodeAlreadyRegistered, "arbitrator %s is already registered", address)
		}

		arbitrator.Stake = stake
		arbitrator.IsActive = true
		arbitrator.RegisteredAt = txn.Now
		// Save writes zero-valued bools, unlike Create with a column default
		if err := txn.DB.Save(&arbitrator).Error; err != nil {
			return fmt.Errorf("failed to register arbitrator: %w", err)
		}

		txn.Emit(events.New(events.ArbitratorRegistered, map[string]interface{}{
			"address":    address,
			"stake":      stake,
			"reputation": arbitrator.Reputation,
		}))
		return nil
	})
	metrics.Operation("register_arbitrator", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"address": address,
		"stake":   stake,
	}).Info("Arbitrator registered")
	return &arbitrator, nil
}

// Unstake returns the full stake once the caller sits on no open dispute.
func (s *ArbitratorService) Unstake(ctx context.Context, caller Caller) (*UnstakeResult, error) {
	address, err := normalizeAccount("address", caller.Address)
	if err != nil {
		return nil, err
	}

	var result *UnstakeResult
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		arbitrator, err := loadArbitrator(txn.DB, address)
		if err != nil {
			return err
		}
		if !arbitrator.IsActive {
			return notFound(CodeNotRegistered, "arbitrator %s is not registered", address)
		}

		count, err := recomputeActiveDisputes(txn.DB, address)
		if err != nil {
			return err
		}
		if count > 0 {
			return preconditionFailed(CodeActiveDisputes, "arbitrator %s still sits on %d open disputes", address, count).
				With("active_disputes", count)
		}

		result = &UnstakeResult{Address: address, Refund: arbitrator.Stake}
		if err := txn.DB.Model(arbitrator).Updates(map[string]interface{}{
			"stake":     0,
			"is_active": false,
		}).Error; err != nil {
			return fmt.Errorf("failed to unstake arbitrator: %w", err)
		}

		txn.Emit(events.New(events.ArbitratorUnstaked, map[string]interface{}{
			"address": address,
			"refund":  result.Refund,
		}))
		return nil
	})
	metrics.Operation("unstake_arbitrator", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"address": address,
		"refund":  result.Refund,
	}).Info("Arbitrator unstaked")
	return result, nil
}

// recomputeActiveDisputes counts open arbitrations listing address whose
// dispute is also open. Panels are stored as array literals, so membership
// is checked in Go rather than in SQL.
func recomputeActiveDisputes(tx *gorm.DB, address string) (int64, error) {
	var open []models.Arbitration
	openDisputes := tx.Model(&models.Dispute{}).Select("id").Where("is_resolved = ?", false)
	if err := tx.Where("is_resolved = ? AND dispute_id IN (?)", false, openDisputes).
		Find(&open).Error; err != nil {
		return 0, fmt.Errorf("failed to scan open arbitrations: %w", err)
	}

	var count int64
	for i := range open {
		if open[i].HasArbitrator(address) {
			count++
		}
	}
	return count, nil
}

func (s *ArbitratorService) ActiveDisputeCount(ctx context.Context, address string) (*ActiveDisputeCounts, error) {
	addr, err := normalizeAccount("address", address)
	if err != nil {
		return nil, err
	}

	var counts *ActiveDisputeCounts
	err = s.ledger.View(ctx, func(txn *database.Txn) error {
		arbitrator, err := loadArbitrator(txn.DB, addr)
		if err != nil {
			return err
		}
		recomputed, err := recomputeActiveDisputes(txn.DB, addr)
		if err != nil {
			return err
		}
		counts = &ActiveDisputeCounts{Address: addr, Cached: arbitrator.ActiveDisputes, Recomputed: recomputed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// ReconcileActiveDisputes compares every cached counter with its recomputed
// value and rewrites the ones that drifted. It returns the divergences found.
func (s *ArbitratorService) ReconcileActiveDisputes(ctx context.Context) ([]ActiveDisputeCounts, error) {
	var diverged []ActiveDisputeCounts
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		var err error
		diverged, err = divergentCounts(txn.DB)
		return err
	})
	if err != nil || len(diverged) == 0 {
		return nil, err
	}

	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		var err error
		diverged, err = divergentCounts(txn.DB)
		if err != nil {
			return err
		}
		for _, d := range diverged {
			logrus.WithFields(logrus.Fields{
				"address":    d.Address,
				"cached":     d.Cached,
				"recomputed": d.Recomputed,
			}).Warn("Arbitrator active dispute count diverged")
			if err := txn.DB.Model(&models.Arbitrator{}).Where("address = ?", d.Address).
				Update("active_disputes", d.Recomputed).Error; err != nil {
				return fmt.Errorf("failed to repair active dispute count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return diverged, nil
}

func divergentCounts(tx *gorm.DB) ([]ActiveDisputeCounts, error) {
	var arbitrators []models.Arbitrator
	if err := tx.Order("address ASC").Find(&arbitrators).Error; err != nil {
		return nil, fmt.Errorf("failed to load arbitrators: %w", err)
	}
	var diverged []ActiveDisputeCounts
	for _, a := range arbitrators {
		recomputed, err := recomputeActiveDisputes(tx, a.Address)
		if err != nil {
			return nil, err
		}
		if recomputed != a.ActiveDisputes {
			diverged = append(diverged, ActiveDisputeCounts{Address: a.Address, Cached: a.ActiveDisputes, Recomputed: recomputed})
		}
	}
	return diverged, nil
}

func (s *ArbitratorService) GetArbitrator(ctx context.Context, address string) (*models.Arbitrator, error) {
	addr, err := normalizeAccount("address", address)
	if err != nil {
		return nil, err
	}

	var arbitrator *models.Arbitrator
	err = s.ledger.View(ctx, func(txn *database.Txn) error {
		var err error
		arbitrator, err = loadArbitrator(txn.DB, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return arbitrator, nil
}

func (s *ArbitratorService) SearchArbitrators(ctx context.Context, params ArbitratorSearchParams) ([]models.Arbitrator, int64, error) {
	var arbitrators []models.Arbitrator
	var total int64

	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		query := txn.DB.Model(&models.Arbitrator{})
		if params.ActiveOnly {
			query = query.Where("is_active = ?", true)
		}
		if err := query.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count arbitrators: %w", err)
		}

		query = utils.ApplySort(query, params.PaginationParams, []string{"registered_at", "reputation", "stake", "total_cases"})
		query = utils.ApplyPagination(query, params.PaginationParams)
		if err := query.Find(&arbitrators).Error; err != nil {
			return fmt.Errorf("failed to search arbitrators: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return arbitrators, total, nil
}

func (s *ArbitratorService) ActiveArbitratorCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		return txn.DB.Model(&models.Arbitrator{}).Where("is_active = ?", true).Count(&count).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active arbitrators: %w", err)
	}
	return count, nil
}
