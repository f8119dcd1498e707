package models

import "time"

// PoolGrantAttribute is the sentinel attribute name used in claim_history
// for pool-level grants, so granted and spent totals can be reconstructed
// separately from the same ledger.
const PoolGrantAttribute = "POOL_GRANT"

// DefaultPoolPoints is the allotment every new character starts with.
const DefaultPoolPoints = 10

// ClaimPointPool is a character's budget of spendable claim points.
// total_points only ever grows (via grants); spent_points never exceeds it.
type ClaimPointPool struct {
	CharacterID int `json:"character_id" db:"character_id"`
	TotalPoints int `json:"total_points" db:"total_points"`
	SpentPoints int `json:"spent_points" db:"spent_points"`
}

// Available returns the points still free to allocate.
func (p ClaimPointPool) Available() int {
	return p.TotalPoints - p.SpentPoints
}

// AttributeClaim is a character's public investment in one named attribute.
// Points only accumulate; the justification is replaced on every allocation
// (prior justifications survive only in the history ledger).
type AttributeClaim struct {
	ID            int       `json:"id" db:"id"`
	CharacterID   int       `json:"character_id" db:"character_id"`
	AttributeName string    `json:"attribute_name" db:"attribute_name"`
	PointsSpent   int       `json:"points_spent" db:"points_spent"`
	Justification string    `json:"justification" db:"justification"`
	ClaimedAt     time.Time `json:"claimed_at" db:"claimed_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ClaimHistoryEntry is one immutable row of the audit ledger.
type ClaimHistoryEntry struct {
	ID            int       `json:"id" db:"id"`
	CharacterID   int       `json:"character_id" db:"character_id"`
	AttributeName string    `json:"attribute_name" db:"attribute_name"`
	PointsChange  int       `json:"points_change" db:"points_change"`
	Justification string    `json:"justification" db:"justification"`
	ChangedAt     time.Time `json:"changed_at" db:"changed_at"`
}

// IsPoolGrant reports whether the entry records a pool grant rather than
// an allocation to a real attribute.
func (e ClaimHistoryEntry) IsPoolGrant() bool {
	return e.AttributeName == PoolGrantAttribute
}
