package ai

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed configs/*.json
var embeddedConfigs embed.FS

// DefaultTuning holds the bundled enemy tank behaviour.
var DefaultTuning = MustLoadTuning()

// Scaled is a value that varies linearly with AI skill.
type Scaled struct {
	Base     float64 `json:"base"`
	PerSkill float64 `json:"perSkill"`
}

// At evaluates the value for the given skill.
func (s Scaled) At(skill float64) float64 {
	return s.Base + s.PerSkill*skill
}

// PatrolTuning controls wandering and reward seeking.
type PatrolTuning struct {
	DecisionInterval float64 `json:"decisionInterval"`
	RewardSeek       Scaled  `json:"rewardSeek"`
	CollectDistance  float64 `json:"collectDistance"`
	WanderJitter     int     `json:"wanderJitter"`
}

// EngageTuning controls spacing and firing while the player is in range.
type EngageTuning struct {
	AdvanceBeyond float64 `json:"advanceBeyond"`
	RetreatWithin float64 `json:"retreatWithin"`
	ShotInterval  Scaled  `json:"shotInterval"`
	AimTolerance  Scaled  `json:"aimTolerance"`
	// WrapAim compares headings along the shortest arc. When false the raw
	// difference is used, so a tank aiming across north never fires.
	WrapAim      bool   `json:"wrapAim"`
	StrafeChance Scaled `json:"strafeChance"`
}

// Tuning is the complete enemy behaviour description.
type Tuning struct {
	Name           string       `json:"name"`
	PatrolDistance float64      `json:"patrolDistance"`
	AttackDistance float64      `json:"attackDistance"`
	Patrol         PatrolTuning `json:"patrol"`
	Pursue         EngageTuning `json:"pursue"`
	Attack         EngageTuning `json:"attack"`
}

// MustLoadTuning loads the embedded tank config or panics on failure.
func MustLoadTuning() *Tuning {
	tuning, err := LoadTuning()
	if err != nil {
		panic(fmt.Errorf("ai: load tuning: %w", err))
	}
	return tuning
}

// LoadTuning decodes the embedded tank config.
func LoadTuning() (*Tuning, error) {
	data, err := embeddedConfigs.ReadFile("configs/tank.json")
	if err != nil {
		return nil, fmt.Errorf("ai: read config: %w", err)
	}
	return ParseTuning(data)
}

// ParseTuning decodes and validates a tuning document.
func ParseTuning(data []byte) (*Tuning, error) {
	var tuning Tuning
	if err := json.Unmarshal(data, &tuning); err != nil {
		return nil, fmt.Errorf("ai: decode config: %w", err)
	}
	if tuning.AttackDistance <= 0 || tuning.PatrolDistance <= tuning.AttackDistance {
		return nil, fmt.Errorf("ai: config %q: attack distance %.1f must be positive and below patrol distance %.1f",
			tuning.Name, tuning.AttackDistance, tuning.PatrolDistance)
	}
	if tuning.Patrol.WanderJitter < 0 {
		return nil, fmt.Errorf("ai: config %q: negative wander jitter", tuning.Name)
	}
	return &tuning, nil
}
