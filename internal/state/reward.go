package state

import "time"

// RewardKind enumerates the power-up types.
type RewardKind string

const (
	RewardBarrel RewardKind = "barrel"
	RewardHealth RewardKind = "health"
	RewardDamage RewardKind = "damage"
)

// ParseRewardKind validates a kind read from a reward catalog document.
func ParseRewardKind(value string) (RewardKind, bool) {
	switch RewardKind(value) {
	case RewardBarrel, RewardHealth, RewardDamage:
		return RewardKind(value), true
	default:
		return "", false
	}
}

// Reward is a collectible power-up lying on the map.
type Reward struct {
	Kind      RewardKind
	X         float64
	Y         float64
	Color     string
	Radius    float64
	Duration  float64
	Stackable bool
	SpawnedAt time.Time
}
