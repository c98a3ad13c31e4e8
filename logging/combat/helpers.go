package combat

import (
	"context"

	"tank-arena/server/logging"
)

const (
	// EventShotFired is emitted when a tank fires a volley.
	EventShotFired logging.EventType = "combat.shot_fired"
	// EventDamage is emitted when a projectile damages a tank.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when a tank's health reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
)

// ShotFiredPayload describes a volley.
type ShotFiredPayload struct {
	Barrels    int     `json:"barrels"`
	Damage     float64 `json:"damage"`
	Multiplier float64 `json:"multiplier"`
}

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// DefeatPayload describes the context for a fatal hit.
type DefeatPayload struct {
	ByPlayer bool `json:"byPlayer"`
}

// ShotFired publishes a volley event at debug severity.
func ShotFired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ShotFiredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventShotFired,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// Damage publishes a combat damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// Defeat publishes a combat defeat event for the eliminated tank.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}
