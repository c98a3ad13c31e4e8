package combat

import (
	"time"

	"tank-arena/server/internal/geom"
	"tank-arena/server/internal/state"
)

const (
	// FireCooldown is the minimum gap between a tank's volleys when fire
	// commands are rate limited.
	FireCooldown = 500 * time.Millisecond

	BaseDamage      = 20.0
	ProjectileSpeed = 15.0
	// MuzzleOffset is the cannon length; shells spawn this far ahead.
	MuzzleOffset = 30.0
	// FanSpread is the total arc covered by a multi-barrel volley.
	FanSpread = 30.0
)

// FanAngles returns the heading of each barrel for a volley. A single barrel
// fires straight ahead; more barrels spread evenly across FanSpread.
func FanAngles(angle float64, barrels int) []float64 {
	if barrels < 1 {
		barrels = 1
	}
	angles := make([]float64, barrels)
	for i := range angles {
		adjustment := 0.0
		if barrels > 1 {
			adjustment = float64(i)/float64(barrels-1)*FanSpread - FanSpread/2
		}
		angles[i] = angle + adjustment
	}
	return angles
}

// OnCooldown reports whether the tank has a projectile in flight younger than
// FireCooldown.
func OnCooldown(tank *state.Tank, projectiles []*state.Projectile, now time.Time) bool {
	if tank == nil {
		return false
	}
	for _, projectile := range projectiles {
		if projectile == nil || projectile.Owner != tank.ID {
			continue
		}
		if now.Sub(projectile.CreatedAt) < FireCooldown {
			return true
		}
	}
	return false
}

// Fire appends a volley for the tank unless it is on cooldown. The second
// return value reports whether any projectiles were created.
func Fire(tank *state.Tank, projectiles []*state.Projectile, now time.Time) ([]*state.Projectile, bool) {
	if tank == nil || !tank.Alive() {
		return projectiles, false
	}
	if OnCooldown(tank, projectiles, now) {
		return projectiles, false
	}
	return append(projectiles, Volley(tank, now)...), true
}

// Volley builds one projectile per barrel without consulting the cooldown.
// AI tanks pace themselves through their own shot timers.
func Volley(tank *state.Tank, now time.Time) []*state.Projectile {
	if tank == nil {
		return nil
	}
	multiplier := tank.DamageMultiplier()
	color := state.ProjectileColor
	if multiplier > 1 {
		color = state.BoostedProjectileColor
	}

	angles := FanAngles(tank.Angle, tank.Barrels)
	volley := make([]*state.Projectile, 0, len(angles))
	for _, angle := range angles {
		dx, dy := geom.Direction(angle)
		volley = append(volley, &state.Projectile{
			X:         tank.X + dx*MuzzleOffset,
			Y:         tank.Y + dy*MuzzleOffset,
			VX:        dx * ProjectileSpeed,
			VY:        dy * ProjectileSpeed,
			Angle:     angle,
			Damage:    BaseDamage * multiplier,
			Owner:     tank.ID,
			Color:     color,
			Active:    true,
			CreatedAt: now,
		})
	}
	return volley
}
