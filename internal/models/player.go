package models

const (
	// MaxHitPoints is the starting and maximum hit point total.
	MaxHitPoints = 100
	// DefaultRating is used for players without a stored rating.
	DefaultRating = 1200.0
	// HandSize is the number of cards dealt each turn.
	HandSize = 3
)

// PlayerState is one seat of a game.
type PlayerState struct {
	ID          string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	HitPoints   int     `json:"hit_points"`
	Hand        []Card  `json:"hand"`
	Rating      float64 `json:"rating"`
}

// NewPlayerState seats a player at full health.
func NewPlayerState(id, name string, hand []Card, rating float64) *PlayerState {
	return &PlayerState{
		ID:          id,
		DisplayName: name,
		HitPoints:   MaxHitPoints,
		Hand:        hand,
		Rating:      rating,
	}
}

// TakeDamage subtracts damage, flooring hit points at zero.
func (p *PlayerState) TakeDamage(damage int) {
	if damage <= 0 {
		return
	}
	p.HitPoints -= damage
	if p.HitPoints < 0 {
		p.HitPoints = 0
	}
}

// Defeated reports whether the player has no hit points left.
func (p *PlayerState) Defeated() bool {
	return p.HitPoints <= 0
}
