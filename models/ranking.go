package models

import "time"

// RankingEntry is the player-safe slice of an attribute ranking. Claims are
// public commitments, so investments and justifications are visible to
// everyone; who is actually best is not.
type RankingEntry struct {
	CharacterID   int       `json:"character_id"`
	CharacterName string    `json:"character_name"`
	AttributeName string    `json:"attribute_name"`
	PointsSpent   int       `json:"points_spent"`
	Justification string    `json:"justification"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DMRankingEntry adds the truth channel: the 1-based position and the
// best-claimant flag. It must only be serialized on DM-facing responses.
type DMRankingEntry struct {
	RankingEntry
	RankPosition int  `json:"rank_position"`
	IsBest       bool `json:"is_best"`
}

// RedactRanking strips the DM-only fields from a ranking. This is the
// explicit response-shaping step: player-facing handlers go through it
// instead of relying on call sites to drop fields.
func RedactRanking(entries []DMRankingEntry) []RankingEntry {
	redacted := make([]RankingEntry, len(entries))
	for i, e := range entries {
		redacted[i] = e.RankingEntry
	}
	return redacted
}

// RollResolution is the full result of resolving a die roll against a
// character's claim, including the hidden bonus. DM-facing only.
type RollResolution struct {
	BaseRoll       int    `json:"base_roll"`
	ClaimBonus     int    `json:"claim_bonus"`
	TotalBonus     int    `json:"total_bonus"`
	FinalResult    int    `json:"final_result"`
	Message        string `json:"message"`
	IsActuallyBest bool   `json:"is_actually_best"`
}

// PlayerRollView is what a claimant is allowed to see: the visible claim
// bonus and the final number, never whether the hidden bonus applied.
type PlayerRollView struct {
	BaseRoll    int    `json:"base_roll"`
	ClaimBonus  int    `json:"claim_bonus"`
	FinalResult int    `json:"final_result"`
	Message     string `json:"message"`
}

// ForPlayer shapes the resolution for a player-facing response.
func (r RollResolution) ForPlayer() PlayerRollView {
	return PlayerRollView{
		BaseRoll:    r.BaseRoll,
		ClaimBonus:  r.ClaimBonus,
		FinalResult: r.FinalResult,
		Message:     r.Message,
	}
}
