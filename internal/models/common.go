// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Base model with common fields. Ledger records are never deleted, so there
// is no soft-delete column; ids are sequential.
type BaseModel struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Basis points
const (
	BasisPointsDenominator int64 = 10000
)

// Enums
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
)

type DisputeOutcome string

const (
	DisputeOutcomePending      DisputeOutcome = "pending"
	DisputeOutcomeUpheld       DisputeOutcome = "upheld"
	DisputeOutcomeRejected     DisputeOutcome = "rejected"
	DisputeOutcomeAutoRejected DisputeOutcome = "auto_rejected"
)

type DisputeStatus string

const (
	DisputeStatusAwaitingArbitrators DisputeStatus = "awaiting_arbitrators"
	DisputeStatusArbitratorsAssigned DisputeStatus = "arbitrators_assigned"
	DisputeStatusResolved            DisputeStatus = "resolved"
)

type PaymentSource string

const (
	PaymentSourceDirect PaymentSource = "direct"
	PaymentSourceStripe PaymentSource = "stripe"
)
