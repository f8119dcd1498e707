package models

import "time"

// PerceivedRanking records what one character believes another has invested
// in an attribute. Unlike claims these are not accumulative: the latest
// perception overwrites the previous one.
type PerceivedRanking struct {
	ID                  int       `json:"id" db:"id"`
	ObserverCharacterID int       `json:"observer_character_id" db:"observer_character_id"`
	TargetCharacterID   int       `json:"target_character_id" db:"target_character_id"`
	TargetCharacterName string    `json:"character_name,omitempty" db:"-"`
	AttributeName       string    `json:"attribute_name" db:"attribute_name"`
	PerceivedPoints     int       `json:"perceived_points" db:"perceived_points"`
	PerceptionNotes     string    `json:"perception_notes" db:"perception_notes"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// PerceivedView is the player-visible counterweight to the actual ranking:
// the observer's own real investment plus their beliefs about everyone else.
type PerceivedView struct {
	OwnPoints       int                `json:"own_points"`
	PerceivedOthers []PerceivedRanking `json:"perceived_others"`
}
