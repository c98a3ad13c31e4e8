package combat

import (
	"tank-arena/server/internal/geom"
	"tank-arena/server/internal/state"
)

const (
	// HitRadius approximates a tank's collision circle.
	HitRadius = 25.0
	// FrameRate converts velocities expressed per frame into per-second motion.
	FrameRate = 30.0
)

// Hit records one projectile impact.
type Hit struct {
	Owner        int
	Target       int
	Damage       float64
	TargetHealth float64
	Killed       bool
}

// AdvanceConfig bundles the inputs for a single projectile step. Tanks is
// consulted before every projectile so kill handlers that replace the tank
// list (for example on level advance) are observed immediately.
type AdvanceConfig struct {
	Projectiles []*state.Projectile
	Tanks       func() []*state.Tank
	Bounds      geom.Bounds
	Elapsed     float64

	// OnKill runs once per tank whose health reaches zero, before the next
	// projectile is processed.
	OnKill func(victim *state.Tank, killerID int)
	// OnHit observes every impact after damage is applied.
	OnHit func(hit Hit)
}

// AdvanceResult reports the projectiles still in flight and the impacts that
// happened this step.
type AdvanceResult struct {
	Survivors []*state.Projectile
	Hits      []Hit
	Culled    int
}

// Advance moves every active projectile, drops the ones that leave the world,
// and applies the first tank hit of each remaining projectile.
func Advance(cfg AdvanceConfig) AdvanceResult {
	result := AdvanceResult{}
	if len(cfg.Projectiles) == 0 {
		return result
	}
	result.Survivors = make([]*state.Projectile, 0, len(cfg.Projectiles))
	step := cfg.Elapsed * FrameRate

	for _, projectile := range cfg.Projectiles {
		if projectile == nil || !projectile.Active {
			continue
		}

		projectile.X += projectile.VX * step
		projectile.Y += projectile.VY * step

		if !cfg.Bounds.Contains(projectile.X, projectile.Y) {
			projectile.Active = false
			result.Culled++
			continue
		}

		var tanks []*state.Tank
		if cfg.Tanks != nil {
			tanks = cfg.Tanks()
		}

		target := firstHit(projectile, tanks)
		if target == nil {
			result.Survivors = append(result.Survivors, projectile)
			continue
		}

		killed := target.ApplyDamage(projectile.Damage)
		projectile.Active = false

		hit := Hit{
			Owner:        projectile.Owner,
			Target:       target.ID,
			Damage:       projectile.Damage,
			TargetHealth: target.Health,
			Killed:       killed,
		}
		result.Hits = append(result.Hits, hit)
		if cfg.OnHit != nil {
			cfg.OnHit(hit)
		}
		if killed && cfg.OnKill != nil {
			cfg.OnKill(target, projectile.Owner)
		}
	}

	return result
}

func firstHit(projectile *state.Projectile, tanks []*state.Tank) *state.Tank {
	for _, tank := range tanks {
		if tank == nil || tank.ID == projectile.Owner || !tank.Alive() {
			continue
		}
		if geom.Distance(tank.X, tank.Y, projectile.X, projectile.Y) < HitRadius {
			return tank
		}
	}
	return nil
}
