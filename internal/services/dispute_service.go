// internal/services/dispute_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/utils"
)

// MaxArbitratorsPerDispute bounds the panel assigned to one dispute.
const MaxArbitratorsPerDispute = 3

// RequiredUpholdVotes is the uphold quorum of a full panel.
const RequiredUpholdVotes = 3

type DisputeService struct {
	ledger *database.Ledger
	cfg    config.LedgerConfig
}

type RaiseDisputeRequest struct {
	IPAssetID uint64 `json:"ip_asset_id" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=4096"`
}

type AssignArbitratorsRequest struct {
	Arbitrators []string `json:"arbitrators" validate:"required,min=1,max=3,dive,account"`
}

type SubmitDecisionRequest struct {
	Uphold    bool   `json:"uphold"`
	Rationale string `json:"rationale" validate:"max=4096"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution,omitempty" validate:"max=4096"`
}

// DisputeView is a dispute with its derived status and arbitration.
type DisputeView struct {
	*models.Dispute
	Status      models.DisputeStatus `json:"status"`
	Arbitration *models.Arbitration  `json:"arbitration,omitempty"`
}

type DisputeSearchParams struct {
	utils.PaginationParams
	IPAssetID uint64                `json:"ip_asset_id,omitempty"`
	Disputer  string                `json:"disputer,omitempty"`
	Status    *models.DisputeStatus `json:"status,omitempty"`
}

func NewDisputeService(ledger *database.Ledger, cfg config.LedgerConfig) *DisputeService {
	return &DisputeService{ledger: ledger, cfg: cfg}
}

// UpholdQuorum is the number of uphold votes that starts the resolution
// cooldown for a panel of n arbitrators. A full panel needs
// RequiredUpholdVotes; a smaller panel needs a strict majority. The result
// never exceeds the configured maximum.
func UpholdQuorum(n int, max int64) int64 {
	q := int64(RequiredUpholdVotes)
	if n < RequiredUpholdVotes {
		q = int64(n/2 + 1)
	}
	if max > 0 && q > max {
		q = max
	}
	return q
}

func (s *DisputeService) RaiseDispute(ctx context.Context, caller Caller, req *RaiseDisputeRequest) (*models.Dispute, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, invalidInput(CodeInvalidArgument, "dispute reason must not be blank")
	}
	disputer, err := normalizeAccount("disputer", caller.Address)
	if err != nil {
		return nil, err
	}

	var dispute *models.Dispute
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		asset, err := loadAsset(txn.DB, req.IPAssetID)
		if err != nil {
			return err
		}

		dispute = &models.Dispute{
			IPAssetID: asset.ID,
			Disputer:  disputer,
			Reason:    req.Reason,
			RaisedAt:  txn.Now,
			Outcome:   models.DisputeOutcomePending,
		}
		if err := txn.DB.Create(dispute).Error; err != nil {
			return fmt.Errorf("failed to create dispute: %w", err)
		}
		if err := refreshDisputedFlag(txn.DB, asset.ID); err != nil {
			return err
		}

		txn.Emit(events.New(events.DisputeRaised, map[string]interface{}{
			"dispute_id":  dispute.ID,
			"ip_asset_id": asset.ID,
			"disputer":    disputer,
		}))
		return nil
	})
	metrics.Operation("raise_dispute", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dispute_id":  dispute.ID,
		"ip_asset_id": dispute.IPAssetID,
		"disputer":    disputer,
	}).Info("Dispute raised")
	return dispute, nil
}

// AssignArbitrators seats a panel of one to three active arbitrators on an
// open dispute. All or nothing: one inactive address rejects the panel.
func (s *DisputeService) AssignArbitrators(ctx context.Context, caller Caller, disputeID uint64, req *AssignArbitratorsRequest) (*models.Arbitration, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	panel, err := normalizePanel(req.Arbitrators)
	if err != nil {
		return nil, err
	}

	var arbitration *models.Arbitration
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		dispute, err := loadDispute(txn.DB, disputeID)
		if err != nil {
			return err
		}
		if dispute.IsResolved {
			return alreadyResolved(dispute)
		}
		if dispute.ArbitrationID != 0 {
			return preconditionFailed(CodeAlreadyAssigned, "dispute %d already has arbitrators assigned", dispute.ID).
				With("arbitration_id", dispute.ArbitrationID)
		}

		for _, addr := range panel {
			var arb models.Arbitrator
			err := txn.DB.First(&arb, "address = ?", addr).Error
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !arb.IsActive) {
				return preconditionFailed(CodeArbitratorNotActive, "arbitrator %s is not active", addr).With("address", addr)
			}
			if err != nil {
				return fmt.Errorf("failed to load arbitrator: %w", err)
			}
		}

		arbitration = &models.Arbitration{
			DisputeID:           dispute.ID,
			Arbitrators:         panel,
			RequiredUpholdVotes: UpholdQuorum(len(panel), s.cfg.MaxUpholdQuorum),
			Deadline:            txn.Now.Add(s.cfg.DecisionWindow),
		}
		if err := txn.DB.Create(arbitration).Error; err != nil {
			return fmt.Errorf("failed to create arbitration: %w", err)
		}
		if err := txn.DB.Model(dispute).Update("arbitration_id", arbitration.ID).Error; err != nil {
			return fmt.Errorf("failed to link arbitration: %w", err)
		}
		if err := adjustActiveDisputes(txn.DB, panel, 1); err != nil {
			return err
		}

		txn.Emit(events.New(events.ArbitratorsAssigned, map[string]interface{}{
			"dispute_id":            dispute.ID,
			"arbitration_id":        arbitration.ID,
			"arbitrators":           panel,
			"required_uphold_votes": arbitration.RequiredUpholdVotes,
			"deadline":              arbitration.Deadline,
			"assigned_by":           caller.Address,
		}))
		return nil
	})
	metrics.Operation("assign_arbitrators", err)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dispute_id":     disputeID,
		"arbitration_id": arbitration.ID,
		"arbitrators":    len(panel),
		"quorum":         arbitration.RequiredUpholdVotes,
	}).Info("Arbitrators assigned")
	return arbitration, nil
}

func normalizePanel(addresses []string) ([]string, error) {
	if len(addresses) < 1 || len(addresses) > MaxArbitratorsPerDispute {
		return nil, invalidInput(CodeInvalidArgument, "between 1 and %d arbitrators must be assigned", MaxArbitratorsPerDispute)
	}
	seen := map[string]bool{}
	panel := make([]string, 0, len(addresses))
	for _, a := range addresses {
		addr, err := normalizeAccount("arbitrators", a)
		if err != nil {
			return nil, err
		}
		if seen[addr] {
			return nil, invalidInput(CodeInvalidArgument, "arbitrator %s listed twice", addr)
		}
		seen[addr] = true
		panel = append(panel, addr)
	}
	return panel, nil
}

// SubmitDecision records one arbitrator's vote. Reaching the uphold quorum
// starts the cooldown; it does not resolve the dispute.
func (s *DisputeService) SubmitDecision(ctx context.Context, caller Caller, disputeID uint64, req *SubmitDecisionRequest) (*models.Arbitration, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	arbitrator, err := normalizeAccount("arbitrator", caller.Address)
	if err != nil {
		return nil, err
	}
	caller.Address = arbitrator

	var arbitration *models.Arbitration
	var quorumReached bool
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		dispute, err := loadDispute(txn.DB, disputeID)
		if err != nil {
			return err
		}
		if dispute.IsResolved {
			return alreadyResolved(dispute)
		}
		if dispute.ArbitrationID == 0 {
			return preconditionFailed(CodeNotAssigned, "dispute %d has no arbitrators assigned", dispute.ID)
		}
		arbitration, err = loadArbitration(txn.DB, dispute.ArbitrationID)
		if err != nil {
			return err
		}
		if !arbitration.HasArbitrator(caller.Address) {
			return unauthorized(CodeNotAssigned, "%s is not an arbitrator on dispute %d", caller.Address, dispute.ID)
		}
		if !txn.Now.Before(arbitration.Deadline) {
			return preconditionFailed(CodeDeadlinePassed, "the decision deadline for dispute %d has passed", dispute.ID).
				With("deadline", arbitration.Deadline)
		}
		for _, v := range arbitration.Votes {
			if v.Arbitrator == caller.Address {
				return preconditionFailed(CodeAlreadyVoted, "%s already voted on dispute %d", caller.Address, dispute.ID)
			}
		}

		vote := models.ArbitrationVote{
			ArbitrationID: arbitration.ID,
			Arbitrator:    caller.Address,
			Uphold:        req.Uphold,
			Rationale:     req.Rationale,
			CastAt:        txn.Now,
		}
		if err := txn.DB.Create(&vote).Error; err != nil {
			return fmt.Errorf("failed to record vote: %w", err)
		}
		arbitration.Votes = append(arbitration.Votes, vote)

		updates := map[string]interface{}{}
		if req.Uphold {
			arbitration.VotesFor++
			updates["votes_for"] = arbitration.VotesFor
		} else {
			arbitration.VotesAgainst++
			updates["votes_against"] = arbitration.VotesAgainst
		}
		if arbitration.VotesFor >= arbitration.RequiredUpholdVotes && arbitration.UpholdQuorumReachedAt == nil {
			now := txn.Now
			arbitration.UpholdQuorumReachedAt = &now
			updates["uphold_quorum_reached_at"] = &now
			quorumReached = true
		}
		if err := txn.DB.Model(&models.Arbitration{}).Where("id = ?", arbitration.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to tally vote: %w", err)
		}

		txn.Emit(events.New(events.DecisionSubmitted, map[string]interface{}{
			"dispute_id":    dispute.ID,
			"arbitrator":    caller.Address,
			"uphold":        req.Uphold,
			"votes_for":     arbitration.VotesFor,
			"votes_against": arbitration.VotesAgainst,
		}))
		if quorumReached {
			txn.Emit(events.New(events.UpholdQuorumReached, map[string]interface{}{
				"dispute_id":    dispute.ID,
				"reached_at":    txn.Now,
				"resolvable_at": txn.Now.Add(s.cfg.ResolutionCooldown),
			}))
		}
		return nil
	})
	metrics.Operation("submit_decision", err)
	if err != nil {
		return nil, err
	}

	entry := logrus.WithFields(logrus.Fields{
		"dispute_id": disputeID,
		"arbitrator": caller.Address,
		"uphold":     req.Uphold,
	})
	if quorumReached {
		entry.Info("Decision submitted, uphold quorum reached")
	} else {
		entry.Info("Decision submitted")
	}
	return arbitration, nil
}

// CheckAndResolveAfterCooldown upholds a dispute whose uphold quorum was
// reached at least one cooldown ago. Operator only.
func (s *DisputeService) CheckAndResolveAfterCooldown(ctx context.Context, caller Caller, disputeID uint64, req *ResolveRequest) (*DisputeView, error) {
	if err := caller.requireOperator("resolve disputes after the cooldown"); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	view, err := s.resolve(ctx, disputeID, func(txn *database.Txn, dispute *models.Dispute) (*models.Arbitration, models.DisputeOutcome, string, error) {
		if dispute.ArbitrationID == 0 {
			return nil, "", "", preconditionFailed(CodeQuorumNotReached, "dispute %d has no arbitrators assigned", dispute.ID)
		}
		arbitration, err := loadArbitration(txn.DB, dispute.ArbitrationID)
		if err != nil {
			return nil, "", "", err
		}
		if arbitration.UpholdQuorumReachedAt == nil {
			return nil, "", "", preconditionFailed(CodeQuorumNotReached,
				"dispute %d has %d of %d uphold votes", dispute.ID, arbitration.VotesFor, arbitration.RequiredUpholdVotes).
				With("votes_for", arbitration.VotesFor).
				With("required_uphold_votes", arbitration.RequiredUpholdVotes)
		}
		readyAt := arbitration.UpholdQuorumReachedAt.Add(s.cfg.ResolutionCooldown)
		if txn.Now.Before(readyAt) {
			return nil, "", "", preconditionFailed(CodeCooldownNotElapsed, "dispute %d can be resolved from %s", dispute.ID, readyAt.Format(time.RFC3339)).
				With("resolvable_at", readyAt)
		}
		resolution := req.Resolution
		if resolution == "" {
			resolution = fmt.Sprintf("upheld after cooldown with %d votes for and %d against", arbitration.VotesFor, arbitration.VotesAgainst)
		}
		return arbitration, models.DisputeOutcomeUpheld, resolution, nil
	})
	metrics.Operation("resolve_after_cooldown", err)
	return view, err
}

// ResolveAfterDeadline closes an arbitration whose decision window ended.
// The dispute is upheld only if uphold votes outnumber rejections and meet
// the quorum; otherwise the status quo stands. Anyone may call it.
func (s *DisputeService) ResolveAfterDeadline(ctx context.Context, disputeID uint64, req *ResolveRequest) (*DisputeView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	view, err := s.resolve(ctx, disputeID, func(txn *database.Txn, dispute *models.Dispute) (*models.Arbitration, models.DisputeOutcome, string, error) {
		if dispute.ArbitrationID == 0 {
			return nil, "", "", preconditionFailed(CodeNotAssigned, "dispute %d has no arbitrators assigned", dispute.ID)
		}
		arbitration, err := loadArbitration(txn.DB, dispute.ArbitrationID)
		if err != nil {
			return nil, "", "", err
		}
		if txn.Now.Before(arbitration.Deadline) {
			return nil, "", "", preconditionFailed(CodeDeadlineNotReached, "dispute %d is open for decisions until %s", dispute.ID, arbitration.Deadline.Format(time.RFC3339)).
				With("deadline", arbitration.Deadline)
		}
		outcome := models.DisputeOutcomeRejected
		if arbitration.VotesFor > arbitration.VotesAgainst && arbitration.VotesFor >= arbitration.RequiredUpholdVotes {
			outcome = models.DisputeOutcomeUpheld
		}
		resolution := req.Resolution
		if resolution == "" {
			resolution = fmt.Sprintf("%s at deadline with %d votes for and %d against", outcome, arbitration.VotesFor, arbitration.VotesAgainst)
		}
		return arbitration, outcome, resolution, nil
	})
	metrics.Operation("resolve_after_deadline", err)
	return view, err
}

// ResolveWithoutArbitrators lets the disputer close a dispute nobody took
// up. The dispute is auto-rejected and no reputation changes.
func (s *DisputeService) ResolveWithoutArbitrators(ctx context.Context, caller Caller, disputeID uint64) (*DisputeView, error) {
	disputer, err := normalizeAccount("disputer", caller.Address)
	if err != nil {
		return nil, err
	}
	view, err := s.resolve(ctx, disputeID, func(txn *database.Txn, dispute *models.Dispute) (*models.Arbitration, models.DisputeOutcome, string, error) {
		if dispute.ArbitrationID != 0 {
			return nil, "", "", preconditionFailed(CodeArbitratorsAssigned, "dispute %d has arbitrators assigned", dispute.ID).
				With("arbitration_id", dispute.ArbitrationID)
		}
		if disputer != dispute.Disputer {
			return nil, "", "", unauthorized(CodeNotDisputer, "only the disputer may close dispute %d without arbitrators", dispute.ID)
		}
		readyAt := dispute.RaisedAt.Add(s.cfg.NoArbitratorDeadline)
		if txn.Now.Before(readyAt) {
			return nil, "", "", preconditionFailed(CodeDeadlineNotReached, "dispute %d can be closed from %s", dispute.ID, readyAt.Format(time.RFC3339)).
				With("resolvable_at", readyAt)
		}
		return nil, models.DisputeOutcomeAutoRejected, "auto-rejected: no arbitrators assigned before the deadline", nil
	})
	metrics.Operation("resolve_without_arbitrators", err)
	return view, err
}

type resolutionRule func(txn *database.Txn, dispute *models.Dispute) (*models.Arbitration, models.DisputeOutcome, string, error)

// resolve is the single path into the terminal state. rule validates the
// transition and picks the outcome; resolve applies it.
func (s *DisputeService) resolve(ctx context.Context, disputeID uint64, rule resolutionRule) (*DisputeView, error) {
	var view *DisputeView
	err := s.ledger.Update(ctx, func(txn *database.Txn) error {
		dispute, err := loadDispute(txn.DB, disputeID)
		if err != nil {
			return err
		}
		if dispute.IsResolved {
			return alreadyResolved(dispute)
		}

		arbitration, outcome, resolution, err := rule(txn, dispute)
		if err != nil {
			return err
		}

		now := txn.Now
		if err := txn.DB.Model(dispute).Updates(map[string]interface{}{
			"is_resolved": true,
			"outcome":     outcome,
			"resolved_at": &now,
		}).Error; err != nil {
			return fmt.Errorf("failed to resolve dispute: %w", err)
		}
		dispute.IsResolved = true
		dispute.Outcome = outcome
		dispute.ResolvedAt = &now

		if arbitration != nil {
			if err := txn.DB.Model(&models.Arbitration{}).Where("id = ?", arbitration.ID).Updates(map[string]interface{}{
				"is_resolved": true,
				"resolution":  resolution,
			}).Error; err != nil {
				return fmt.Errorf("failed to close arbitration: %w", err)
			}
			arbitration.IsResolved = true
			arbitration.Resolution = resolution

			if err := s.settleArbitrators(txn.DB, arbitration, outcome); err != nil {
				return err
			}
		}

		if err := refreshDisputedFlag(txn.DB, dispute.IPAssetID); err != nil {
			return err
		}

		txn.Emit(events.New(events.DisputeResolved, map[string]interface{}{
			"dispute_id":  dispute.ID,
			"ip_asset_id": dispute.IPAssetID,
			"outcome":     outcome,
			"resolution":  resolution,
		}))
		view = &DisputeView{Dispute: dispute, Status: dispute.Status(), Arbitration: arbitration}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dispute_id":  disputeID,
		"ip_asset_id": view.IPAssetID,
		"outcome":     view.Outcome,
	}).Info("Dispute resolved")
	return view, nil
}

// settleArbitrators frees the panel and scores the voters: every voter gets
// a case, voters who matched the outcome get a success and the reward.
func (s *DisputeService) settleArbitrators(tx *gorm.DB, arbitration *models.Arbitration, outcome models.DisputeOutcome) error {
	if err := adjustActiveDisputes(tx, arbitration.Arbitrators, -1); err != nil {
		return err
	}

	upheld := outcome == models.DisputeOutcomeUpheld
	for _, v := range arbitration.Votes {
		updates := map[string]interface{}{
			"total_cases": gorm.Expr("total_cases + ?", 1),
		}
		if v.Uphold == upheld {
			updates["successful_cases"] = gorm.Expr("successful_cases + ?", 1)
			updates["reputation"] = gorm.Expr("reputation + ?", s.cfg.ReputationReward)
		}
		if err := tx.Model(&models.Arbitrator{}).Where("address = ?", v.Arbitrator).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update arbitrator reputation: %w", err)
		}
	}
	return nil
}

func adjustActiveDisputes(tx *gorm.DB, addresses []string, delta int64) error {
	if len(addresses) == 0 {
		return nil
	}
	if err := tx.Model(&models.Arbitrator{}).Where("address IN ?", addresses).
		Update("active_disputes", gorm.Expr("active_disputes + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to update active dispute counts: %w", err)
	}
	return nil
}

// refreshDisputedFlag recomputes IsDisputed from the asset's open disputes.
func refreshDisputedFlag(tx *gorm.DB, assetID uint64) error {
	open, err := unresolvedDisputeIDs(tx, assetID)
	if err != nil {
		return err
	}
	if err := tx.Model(&models.IPAsset{}).Where("id = ?", assetID).
		Update("is_disputed", len(open) > 0).Error; err != nil {
		return fmt.Errorf("failed to update disputed flag: %w", err)
	}
	return nil
}

func alreadyResolved(dispute *models.Dispute) error {
	return preconditionFailed(CodeAlreadyResolved, "dispute %d is already resolved", dispute.ID).
		With("outcome", dispute.Outcome)
}

func (s *DisputeService) GetDispute(ctx context.Context, id uint64) (*DisputeView, error) {
	var view *DisputeView
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		dispute, err := loadDispute(txn.DB, id)
		if err != nil {
			return err
		}
		view = &DisputeView{Dispute: dispute, Status: dispute.Status()}
		if dispute.ArbitrationID != 0 {
			view.Arbitration, err = loadArbitration(txn.DB, dispute.ArbitrationID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *DisputeService) SearchDisputes(ctx context.Context, params DisputeSearchParams) ([]DisputeView, int64, error) {
	var views []DisputeView
	var total int64

	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		query := txn.DB.Model(&models.Dispute{})

		if params.IPAssetID != 0 {
			if _, err := loadAsset(txn.DB, params.IPAssetID); err != nil {
				return err
			}
			query = query.Where("ip_asset_id = ?", params.IPAssetID)
		}
		if params.Disputer != "" {
			disputer, err := normalizeAccount("disputer", params.Disputer)
			if err != nil {
				return err
			}
			query = query.Where("disputer = ?", disputer)
		}
		if params.Status != nil {
			switch *params.Status {
			case models.DisputeStatusResolved:
				query = query.Where("is_resolved = ?", true)
			case models.DisputeStatusArbitratorsAssigned:
				query = query.Where("is_resolved = ? AND arbitration_id <> 0", false)
			case models.DisputeStatusAwaitingArbitrators:
				query = query.Where("is_resolved = ? AND arbitration_id = 0", false)
			default:
				return invalidInput(CodeInvalidArgument, "unknown dispute status %q", *params.Status)
			}
		}

		if err := query.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count disputes: %w", err)
		}

		var disputes []models.Dispute
		query = utils.ApplySort(query, params.PaginationParams, []string{"id", "raised_at"})
		query = utils.ApplyPagination(query, params.PaginationParams)
		if err := query.Find(&disputes).Error; err != nil {
			return fmt.Errorf("failed to search disputes: %w", err)
		}

		views = make([]DisputeView, 0, len(disputes))
		for i := range disputes {
			views = append(views, DisputeView{Dispute: &disputes[i], Status: disputes[i].Status()})
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// HasActiveDisputes reports whether any dispute on the asset is unresolved.
func (s *DisputeService) HasActiveDisputes(ctx context.Context, ipAssetID uint64) (bool, error) {
	var open []uint64
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		if _, err := loadAsset(txn.DB, ipAssetID); err != nil {
			return err
		}
		var err error
		open, err = unresolvedDisputeIDs(txn.DB, ipAssetID)
		return err
	})
	if err != nil {
		return false, err
	}
	return len(open) > 0, nil
}

func (s *DisputeService) OpenDisputeCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		return txn.DB.Model(&models.Dispute{}).Where("is_resolved = ?", false).Count(&count).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count open disputes: %w", err)
	}
	return count, nil
}
