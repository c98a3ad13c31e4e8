package powerups

import (
	"time"

	"tank-arena/server/internal/state"
)

// RewardLifetime is how long an uncollected reward stays on the map.
const RewardLifetime = 15 * time.Second

const (
	BoostBarrels = "barrels"
	BoostDamage  = "damage"

	barrelsExpiredMessage = "Extra Barrels Expired"
	damageExpiredMessage  = "Damage Boost Expired"
)

// Expiry names a boost that ran out on a tank.
type Expiry struct {
	TankID int
	Boost  string
}

// ExpireResult summarises one expiry sweep.
type ExpireResult struct {
	RewardsRemoved int
	Expired        []Expiry
}

// Expire removes stale rewards, ends elapsed boosts, and clears old messages.
func Expire(session *state.Session, now time.Time) ExpireResult {
	result := ExpireResult{}
	if session == nil {
		return result
	}

	kept := make([]*state.Reward, 0, len(session.Rewards))
	for _, reward := range session.Rewards {
		if reward == nil || now.Sub(reward.SpawnedAt) > RewardLifetime {
			result.RewardsRemoved++
			continue
		}
		kept = append(kept, reward)
	}
	session.Rewards = kept

	for _, tank := range session.Tanks {
		if tank == nil {
			continue
		}
		if tank.BarrelBoost != nil && tank.BarrelBoost.Expired(now) {
			tank.BarrelBoost = nil
			tank.Barrels = state.BaseBarrels
			tank.SetMessage(barrelsExpiredMessage, now, MessageWindow)
			result.Expired = append(result.Expired, Expiry{TankID: tank.ID, Boost: BoostBarrels})
		}
		if tank.DamageBoost != nil && tank.DamageBoost.Expired(now) {
			tank.DamageBoost = nil
			tank.SetMessage(damageExpiredMessage, now, MessageWindow)
			result.Expired = append(result.Expired, Expiry{TankID: tank.ID, Boost: BoostDamage})
		}
		if tank.Message != nil && now.After(tank.Message.ExpiresAt) {
			tank.Message = nil
		}
	}

	return result
}
