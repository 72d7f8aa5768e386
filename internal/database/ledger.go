// internal/database/ledger.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/models"
)

// Clock returns the current time. Injected so deadline rules can be tested.
type Clock func() time.Time

// Ledger is the single writer of ledger state. Every Update runs under the
// write lock inside one database transaction and bumps the ledger version.
// Views share the read lock and see the state left by the last commit.
type Ledger struct {
	db        *gorm.DB
	mu        deadlock.RWMutex
	clock     Clock
	publisher events.Publisher
}

// Txn is the handle a mutation or read works through. Now is fixed for the
// whole transaction.
type Txn struct {
	DB      *gorm.DB
	Now     time.Time
	Version uint64 // version this mutation commits as; zero in views

	events []events.Event
}

// Emit queues events to publish once the transaction has committed.
func (t *Txn) Emit(evts ...events.Event) {
	t.events = append(t.events, evts...)
}

func NewLedger(db *gorm.DB, publisher events.Publisher, clock Clock) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	if publisher == nil {
		publisher = events.NewLogPublisher()
	}
	return &Ledger{
		db:        db,
		clock:     clock,
		publisher: publisher,
	}
}

func (l *Ledger) now() time.Time {
	return l.clock().UTC().Truncate(time.Microsecond)
}

// Update applies fn as one serialized, all-or-nothing mutation. Events
// emitted by fn are published after the write lock is released.
func (l *Ledger) Update(ctx context.Context, fn func(*Txn) error) error {
	txn, err := l.commit(ctx, fn)
	if err != nil {
		return err
	}

	metrics.LedgerCommitted(txn.Version)
	l.publish(ctx, txn)
	return nil
}

func (l *Ledger) commit(ctx context.Context, fn func(*Txn) error) (*Txn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := &Txn{Now: l.now()}
	err := WithTransaction(l.db.WithContext(ctx), func(tx *gorm.DB) error {
		var state models.LedgerState
		if err := tx.First(&state, models.LedgerStateID).Error; err != nil {
			return fmt.Errorf("failed to load ledger state: %w", err)
		}

		txn.DB = tx
		txn.Version = state.Version + 1
		if err := fn(txn); err != nil {
			return err
		}

		if err := tx.Model(&models.LedgerState{}).
			Where("id = ?", models.LedgerStateID).
			Updates(map[string]interface{}{"version": txn.Version, "updated_at": txn.Now}).Error; err != nil {
			return fmt.Errorf("failed to bump ledger version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// View runs fn against a consistent snapshot. fn must not write.
func (l *Ledger) View(ctx context.Context, fn func(*Txn) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	txn := &Txn{Now: l.now()}
	return WithTransaction(l.db.WithContext(ctx), func(tx *gorm.DB) error {
		txn.DB = tx
		return fn(txn)
	})
}

// Now is the ledger clock, for callers that need it outside a transaction.
func (l *Ledger) Now() time.Time {
	return l.now()
}

func (l *Ledger) Version(ctx context.Context) (uint64, error) {
	var state models.LedgerState
	err := l.View(ctx, func(txn *Txn) error {
		return txn.DB.First(&state, models.LedgerStateID).Error
	})
	return state.Version, err
}

func (l *Ledger) publish(ctx context.Context, txn *Txn) {
	if len(txn.events) == 0 {
		return
	}
	for i := range txn.events {
		txn.events[i].LedgerVersion = txn.Version
		txn.events[i].OccurredAt = txn.Now
	}
	// the mutation is committed; a broker failure must not report it as failed
	if err := l.publisher.Publish(ctx, txn.events...); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"ledger_version": txn.Version,
			"events":         len(txn.events),
		}).Error("Failed to publish ledger events")
	}
}
