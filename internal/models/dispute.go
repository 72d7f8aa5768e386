// internal/models/dispute.go
package models

import (
	"time"

	"github.com/lib/pq"
)

type Dispute struct {
	BaseModel
	IPAssetID     uint64         `json:"ip_asset_id" gorm:"not null;index"`
	Disputer      string         `json:"disputer" gorm:"size:42;not null;index"`
	Reason        string         `json:"reason" gorm:"type:text;not null"`
	RaisedAt      time.Time      `json:"raised_at" gorm:"not null"`
	IsResolved    bool           `json:"is_resolved" gorm:"default:false;index"`
	ArbitrationID uint64         `json:"arbitration_id" gorm:"not null;default:0"`
	Outcome       DisputeOutcome `json:"outcome" gorm:"type:varchar(20);default:'pending';index"`
	ResolvedAt    *time.Time     `json:"resolved_at"`
}

func (d *Dispute) Status() DisputeStatus {
	switch {
	case d.IsResolved:
		return DisputeStatusResolved
	case d.ArbitrationID != 0:
		return DisputeStatusArbitratorsAssigned
	default:
		return DisputeStatusAwaitingArbitrators
	}
}

type Arbitration struct {
	BaseModel
	DisputeID             uint64         `json:"dispute_id" gorm:"not null;uniqueIndex"`
	Arbitrators           pq.StringArray `json:"arbitrators" gorm:"type:text"` // array literal, portable across drivers
	RequiredUpholdVotes   int64          `json:"required_uphold_votes" gorm:"not null"`
	VotesFor              int64          `json:"votes_for" gorm:"not null;default:0"`
	VotesAgainst          int64          `json:"votes_against" gorm:"not null;default:0"`
	Deadline              time.Time      `json:"deadline" gorm:"not null"`
	IsResolved            bool           `json:"is_resolved" gorm:"default:false;index"`
	Resolution            string         `json:"resolution" gorm:"type:text"`
	UpholdQuorumReachedAt *time.Time     `json:"uphold_quorum_reached_at"`

	// Relationships
	Votes []ArbitrationVote `json:"votes,omitempty" gorm:"foreignKey:ArbitrationID"`
}

func (a *Arbitration) HasArbitrator(address string) bool {
	for _, arb := range a.Arbitrators {
		if arb == address {
			return true
		}
	}
	return false
}

type ArbitrationVote struct {
	BaseModel
	ArbitrationID uint64    `json:"arbitration_id" gorm:"not null;uniqueIndex:idx_vote_arbitration_arbitrator"`
	Arbitrator    string    `json:"arbitrator" gorm:"size:42;not null;uniqueIndex:idx_vote_arbitration_arbitrator"`
	Uphold        bool      `json:"uphold"`
	Rationale     string    `json:"rationale" gorm:"type:text"`
	CastAt        time.Time `json:"cast_at" gorm:"not null"`
}
