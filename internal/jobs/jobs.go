// internal/jobs/jobs.go
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/services"
)

const jobTimeout = 30 * time.Second

// Runner drives housekeeping jobs. None of them is needed for correctness:
// deadlines and expiry are also evaluated lazily by the operations.
type Runner struct {
	scheduler   *gocron.Scheduler
	cfg         config.SchedulerConfig
	licenses    *services.LicenseService
	arbitrators *services.ArbitratorService
	disputes    *services.DisputeService
	admin       *services.AdminService
}

func NewRunner(cfg config.SchedulerConfig, licenses *services.LicenseService, arbitrators *services.ArbitratorService,
	disputes *services.DisputeService, admin *services.AdminService) *Runner {
	return &Runner{
		scheduler:   gocron.NewScheduler(time.UTC),
		cfg:         cfg,
		licenses:    licenses,
		arbitrators: arbitrators,
		disputes:    disputes,
		admin:       admin,
	}
}

func (r *Runner) Start() error {
	sweep := seconds(r.cfg.LicenseSweepInterval, 60)
	reconcile := seconds(r.cfg.ReconcileInterval, 300)

	if _, err := r.scheduler.Every(sweep).Seconds().SingletonMode().Do(r.ExpireLicenses); err != nil {
		return err
	}
	if _, err := r.scheduler.Every(reconcile).Seconds().SingletonMode().Do(r.ReconcileArbitrators); err != nil {
		return err
	}
	if _, err := r.scheduler.Every(1).Minute().SingletonMode().Do(r.RefreshGauges); err != nil {
		return err
	}

	r.scheduler.StartAsync()
	logrus.WithFields(logrus.Fields{
		"license_sweep_seconds": sweep,
		"reconcile_seconds":     reconcile,
	}).Info("Background jobs started")
	return nil
}

func (r *Runner) Stop() {
	r.scheduler.Stop()
}

func seconds(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func (r *Runner) ExpireLicenses() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := r.licenses.ExpireLicenses(ctx)
	if err != nil {
		logrus.WithError(err).Error("License expiry sweep failed")
		return
	}
	if n > 0 {
		logrus.WithField("expired", n).Info("Expired licenses deactivated")
	}
}

func (r *Runner) ReconcileArbitrators() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	diverged, err := r.arbitrators.ReconcileActiveDisputes(ctx)
	if err != nil {
		logrus.WithError(err).Error("Arbitrator reconciliation failed")
		return
	}
	if len(diverged) > 0 {
		logrus.WithField("repaired", len(diverged)).Warn("Repaired arbitrator active dispute counts")
	}
}

func (r *Runner) RefreshGauges() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if open, err := r.disputes.OpenDisputeCount(ctx); err == nil {
		metrics.OpenDisputes(open)
	} else {
		logrus.WithError(err).Warn("Failed to count open disputes")
	}
	if active, err := r.arbitrators.ActiveArbitratorCount(ctx); err == nil {
		metrics.ActiveArbitrators(active)
	} else {
		logrus.WithError(err).Warn("Failed to count active arbitrators")
	}
	if settings, err := r.admin.GetSettings(ctx); err == nil {
		metrics.PlatformFee(settings.PlatformFeeBp)
	} else {
		logrus.WithError(err).Warn("Failed to read ledger settings")
	}
}
