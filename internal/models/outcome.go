package models

const (
	// MaxDamage bounds the damage a single turn can deal.
	MaxDamage = 50
	// MaxScore bounds creativity and adherence scores.
	MaxScore = 10.0
	// MaxEffectIntensity bounds VisualEffect.Intensity.
	MaxEffectIntensity = 2.0
)

// EffectType tags the particle effect a client renders for a turn.
type EffectType string

const (
	EffectFire      EffectType = "fire"
	EffectIce       EffectType = "ice"
	EffectLightning EffectType = "lightning"
	EffectExplosion EffectType = "explosion"
	EffectHeal      EffectType = "heal"
	EffectShield    EffectType = "shield"
)

var effectColors = map[EffectType]string{
	EffectFire:      "#FF4500",
	EffectIce:       "#00BFFF",
	EffectLightning: "#FFD700",
	EffectExplosion: "#FF6347",
	EffectHeal:      "#32CD32",
	EffectShield:    "#4169E1",
}

// ParseEffectType maps an oracle tag to a known effect, explosion when unknown.
func ParseEffectType(s string) EffectType {
	t := EffectType(s)
	if _, ok := effectColors[t]; ok {
		return t
	}
	return EffectExplosion
}

// Color is the primary hex colour for the effect.
func (t EffectType) Color() string {
	if c, ok := effectColors[t]; ok {
		return c
	}
	return "#FFFFFF"
}

// VisualEffect describes one rendered effect.
type VisualEffect struct {
	Type       EffectType `json:"particle_type"`
	Intensity  float64    `json:"intensity"`
	Color      string     `json:"color"`
	DurationMs int        `json:"duration_ms"`
}

// Scores is the oracle's rating of a single submission.
type Scores struct {
	Creativity float64 `json:"creativity"`
	Adherence  float64 `json:"adherence"`
}

// Outcome is the judged result of a resolved turn. An empty WinnerID is a tie.
type Outcome struct {
	WinnerID        string         `json:"winner_id,omitempty"`
	Damage          int            `json:"damage_dealt"`
	Narrative       string         `json:"reasoning"`
	CreativityScore float64        `json:"creativity_score"`
	AdherenceScore  float64        `json:"adherence_score"`
	Player1Scores   Scores         `json:"player1_scores"`
	Player2Scores   Scores         `json:"player2_scores"`
	VisualEffects   []VisualEffect `json:"visual_effects"`
}

// Tie reports whether the outcome has no winner.
func (o *Outcome) Tie() bool {
	return o.WinnerID == ""
}
