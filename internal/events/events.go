// internal/events/events.go
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Type string

const (
	IPRegistered         Type = "ip.registered"
	IPTransferred        Type = "ip.transferred"
	LicenseMinted        Type = "license.minted"
	LicenseRevoked       Type = "license.revoked"
	LicenseExpired       Type = "license.expired"
	RevenuePaid          Type = "royalty.revenue_paid"
	RoyaltiesClaimed     Type = "royalty.claimed"
	SettingsChanged      Type = "ledger.settings_changed"
	DisputeRaised        Type = "dispute.raised"
	ArbitratorsAssigned  Type = "dispute.arbitrators_assigned"
	DecisionSubmitted    Type = "dispute.decision_submitted"
	UpholdQuorumReached  Type = "dispute.uphold_quorum_reached"
	DisputeResolved      Type = "dispute.resolved"
	ArbitratorRegistered Type = "arbitrator.registered"
	ArbitratorUnstaked   Type = "arbitrator.unstaked"
)

// Event is one committed ledger change, published after its transaction commits.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	LedgerVersion uint64                 `json:"ledger_version"`
	OccurredAt    time.Time              `json:"occurred_at"`
	Payload       map[string]interface{} `json:"payload"`
}

func New(t Type, payload map[string]interface{}) Event {
	return Event{
		ID:      uuid.New().String(),
		Type:    t,
		Payload: payload,
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, evts ...Event) error
	Close() error
}

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, evts ...Event) error {
	for _, e := range evts {
		logrus.WithFields(logrus.Fields{
			"event_id":       e.ID,
			"event_type":     e.Type,
			"ledger_version": e.LedgerVersion,
			"payload":        e.Payload,
		}).Info("Ledger event")
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// MemoryPublisher keeps every published event; tests read them back.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, evts ...Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *MemoryPublisher) OfType(t Type) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
