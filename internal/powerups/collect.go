package powerups

import (
	"fmt"
	"math"
	"time"

	"tank-arena/server/internal/geom"
	"tank-arena/server/internal/state"
)

const (
	// PickupRadius is the tank's contribution to the pickup distance.
	PickupRadius = 20.0
	// MessageWindow is how long pickup and expiry notices stay visible.
	MessageWindow = 2 * time.Second

	DamageMultiplier = 2.0

	barrelBonusPerLevel = 5.0
	damageBonusPerLevel = 3.0
	healthBase          = 30.0
	healthBonusPerLevel = 5.0
	healthCap           = 50.0
)

// Pickup describes the effect of a collected reward.
type Pickup struct {
	Kind     state.RewardKind
	Message  string
	Duration float64
	Reward   *state.Reward
}

// HealthGain returns the health restored by a pack on level.
func HealthGain(level int) float64 {
	return math.Min(healthBase+healthBonusPerLevel*float64(level-1), healthCap)
}

// Collect applies the first reward within reach of the tank and removes it
// from the session. Dead tanks collect nothing.
func Collect(session *state.Session, tank *state.Tank, now time.Time) (Pickup, bool) {
	if session == nil || !tank.Alive() {
		return Pickup{}, false
	}
	for _, reward := range session.Rewards {
		if reward == nil {
			continue
		}
		if geom.Distance(tank.X, tank.Y, reward.X, reward.Y) >= PickupRadius+reward.Radius {
			continue
		}
		pickup := apply(tank, reward, session.Level, now)
		session.RemoveReward(reward)
		return pickup, true
	}
	return Pickup{}, false
}

// Nearest returns the closest reward to the point, or nil when none exist.
func Nearest(rewards []*state.Reward, x, y float64) (*state.Reward, float64) {
	var nearest *state.Reward
	best := math.Inf(1)
	for _, reward := range rewards {
		if reward == nil {
			continue
		}
		if d := geom.Distance(x, y, reward.X, reward.Y); d < best {
			nearest, best = reward, d
		}
	}
	return nearest, best
}

func apply(tank *state.Tank, reward *state.Reward, level int, now time.Time) Pickup {
	pickup := Pickup{Kind: reward.Kind, Reward: reward}
	switch reward.Kind {
	case state.RewardBarrel:
		tank.Barrels = min(tank.Barrels+1, state.BarrelCap(level))
		total := reward.Duration + barrelBonusPerLevel*float64(level-1)
		var current *state.Timer
		if tank.BarrelBoost != nil {
			current = &tank.BarrelBoost.Timer
		}
		timer := extend(current, total, reward.Stackable, now)
		tank.BarrelBoost = &state.BarrelBoost{Timer: timer, Color: reward.Color}
		pickup.Duration = timer.Duration
		pickup.Message = fmt.Sprintf("Extra Barrels: %d (%ds)", tank.Barrels, int(timer.Duration))
	case state.RewardHealth:
		gain := HealthGain(level)
		tank.Heal(gain, state.PlayerMaxHealth)
		pickup.Message = fmt.Sprintf("Health Restored: +%d", int(gain))
	case state.RewardDamage:
		total := reward.Duration + damageBonusPerLevel*float64(level-1)
		var current *state.Timer
		if tank.DamageBoost != nil {
			current = &tank.DamageBoost.Timer
		}
		timer := extend(current, total, reward.Stackable, now)
		tank.DamageBoost = &state.DamageBoost{Timer: timer, Multiplier: DamageMultiplier, Color: reward.Color}
		pickup.Duration = timer.Duration
		pickup.Message = fmt.Sprintf("Damage Boost: x%d (%ds)", int(DamageMultiplier), int(timer.Duration))
	}
	tank.SetMessage(pickup.Message, now, MessageWindow)
	return pickup
}

// extend merges a new boost duration into an existing timer. Stackable
// rewards add to the remaining time; others keep whichever is longer.
func extend(current *state.Timer, duration float64, stackable bool, now time.Time) state.Timer {
	fresh := state.Timer{ActivatedAt: now, Duration: duration}
	if current == nil {
		return fresh
	}
	remaining := current.Remaining(now)
	if stackable {
		return state.Timer{ActivatedAt: now, Duration: remaining + duration}
	}
	if duration > remaining {
		return fresh
	}
	return *current
}
