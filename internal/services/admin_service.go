// internal/services/admin_service.go
package services

import (
	"context"
	"fmt"
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

// AdminService owns the ledger-wide settings and operator views. Audit logs
// are operational data written outside the ledger lock, so they are read
// straight from the database.
type AdminService struct {
	ledger *database.Ledger
	db     *gorm.DB
}

type LedgerSettings struct {
	Version            uint64    `json:"version"`
	PlatformFeeBp      int64     `json:"platform_fee_bp"`
	PlatformFeePercent string    `json:"platform_fee_percent"`
	FeeCollector       string    `json:"fee_collector"`
	TotalFeesCollected int64     `json:"total_fees_collected"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	PlatformFeeBp *int64  `json:"platform_fee_bp,omitempty"`
	FeeCollector  *string `json:"fee_collector,omitempty" validate:"omitempty,account"`
}

type AdminDashboardStats struct {
	LedgerVersion      uint64 `json:"ledger_version"`
	TotalIPs           int64  `json:"total_ips"`
	DisputedIPs        int64  `json:"disputed_ips"`
	TotalLicenses      int64  `json:"total_licenses"`
	ActiveLicenses     int64  `json:"active_licenses"`
	OpenDisputes       int64  `json:"open_disputes"`
	ResolvedDisputes   int64  `json:"resolved_disputes"`
	ActiveArbitrators  int64  `json:"active_arbitrators"`
	TotalRevenue       int64  `json:"total_revenue"`
	TotalFeesCollected int64  `json:"total_fees_collected"`
	UnclaimedRoyalties int64  `json:"unclaimed_royalties"`
}

type AuditLogFilter struct {
	utils.PaginationParams
	Caller       string `json:"caller,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

func NewAdminService(ledger *database.Ledger, db *gorm.DB) *AdminService {
	return &AdminService{
		ledger: ledger,
		db:     db,
	}
}

func settingsFrom(state *models.LedgerState) *LedgerSettings {
	return &LedgerSettings{
		Version:            state.Version,
		PlatformFeeBp:      state.PlatformFeeBp,
		PlatformFeePercent: PercentOf(state.PlatformFeeBp),
		FeeCollector:       state.FeeCollector,
		TotalFeesCollected: state.TotalFeesCollected,
		UpdatedAt:          state.UpdatedAt,
	}
}

// Settings Management
func (s *AdminService) GetSettings(ctx context.Context) (*LedgerSettings, error) {
	var settings *LedgerSettings
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		state, err := loadLedgerState(txn.DB)
		if err != nil {
			return err
		}
		settings = settingsFrom(state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings changes the platform fee and/or its collector. Operator
// only; the fee applies to payments made after the change.
func (s *AdminService) UpdateSettings(ctx context.Context, caller Caller, req *UpdateSettingsRequest) (*LedgerSettings, error) {
	if err := caller.requireOperator("change ledger settings"); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.PlatformFeeBp == nil && req.FeeCollector == nil {
		return nil, invalidInput(CodeInvalidArgument, "nothing to update")
	}

	updates := map[string]interface{}{}
	if req.PlatformFeeBp != nil {
		bp := *req.PlatformFeeBp
		if bp < 0 || bp > config.MaxPlatformFeeBp {
			return nil, invalidInput(CodeInvalidArgument, "platform fee must be between 0 and %d basis points", config.MaxPlatformFeeBp)
		}
		updates["platform_fee_bp"] = bp
	}
	if req.FeeCollector != nil {
		collector, err := normalizeAccount("fee_collector", *req.FeeCollector)
		if err != nil {
			return nil, err
		}
		updates["fee_collector"] = collector
	}

	var settings *LedgerSettings
	err := s.ledger.Update(ctx, func(txn *database.Txn) error {
		if err := txn.DB.Model(&models.LedgerState{}).Where("id = ?", models.LedgerStateID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update ledger settings: %w", err)
		}
		state, err := loadLedgerState(txn.DB)
		if err != nil {
			return err
		}
		state.Version = txn.Version
		settings = settingsFrom(state)

		txn.Emit(events.New(events.SettingsChanged, map[string]interface{}{
			"changes":    updates,
			"changed_by": caller.Address,
		}))
		return nil
	})
	metrics.Operation("update_settings", err)
	if err != nil {
		return nil, err
	}

	metrics.PlatformFee(settings.PlatformFeeBp)
	logrus.WithFields(logrus.Fields{
		"platform_fee_bp": settings.PlatformFeeBp,
		"fee_collector":   settings.FeeCollector,
		"changed_by":      caller.Address,
	}).Info("Ledger settings updated")
	return settings, nil
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		db := txn.DB
		state, err := loadLedgerState(db)
		if err != nil {
			return err
		}
		stats.LedgerVersion = state.Version
		stats.TotalFeesCollected = state.TotalFeesCollected

		counts := []struct {
			model interface{}
			where string
			args  []interface{}
			dest  *int64
		}{
			{&models.IPAsset{}, "", nil, &stats.TotalIPs},
			{&models.IPAsset{}, "is_disputed = ?", []interface{}{true}, &stats.DisputedIPs},
			{&models.License{}, "", nil, &stats.TotalLicenses},
			{&models.License{}, "is_active = ?", []interface{}{true}, &stats.ActiveLicenses},
			{&models.Dispute{}, "is_resolved = ?", []interface{}{false}, &stats.OpenDisputes},
			{&models.Dispute{}, "is_resolved = ?", []interface{}{true}, &stats.ResolvedDisputes},
			{&models.Arbitrator{}, "is_active = ?", []interface{}{true}, &stats.ActiveArbitrators},
		}
		for _, c := range counts {
			query := db.Model(c.model)
			if c.where != "" {
				query = query.Where(c.where, c.args...)
			}
			if err := query.Count(c.dest).Error; err != nil {
				return fmt.Errorf("failed to count dashboard stats: %w", err)
			}
		}

		if err := db.Model(&models.IPAsset{}).Select("COALESCE(SUM(total_revenue), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
			return fmt.Errorf("failed to sum revenue: %w", err)
		}
		if err := db.Model(&models.ClaimableBalance{}).Select("COALESCE(SUM(amount), 0)").Scan(&stats.UnclaimedRoyalties).Error; err != nil {
			return fmt.Errorf("failed to sum unclaimed royalties: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.Caller != "" {
		caller, err := normalizeAccount("caller", filter.Caller)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("caller = ?", caller)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	query = utils.ApplySort(query, filter.PaginationParams, []string{"id", "created_at"})
	query = utils.ApplyPagination(query, filter.PaginationParams)
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}
