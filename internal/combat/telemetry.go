package combat

import (
	"context"
	"strconv"

	"tank-arena/server/internal/state"
	"tank-arena/server/logging"
	loggingcombat "tank-arena/server/logging/combat"
)

// HitTelemetryRecorderConfig captures the dependencies required to publish
// damage and defeat events for projectile impacts.
type HitTelemetryRecorderConfig struct {
	Publisher   logging.Publisher
	CurrentTick func() uint64
}

// TankRef maps a tank ID to a logging entity reference.
func TankRef(id int) logging.EntityRef {
	kind := logging.EntityKindEnemy
	if id == state.PlayerID {
		kind = logging.EntityKindPlayer
	}
	return logging.EntityRef{ID: strconv.Itoa(id), Kind: kind}
}

// NewHitTelemetryRecorder returns an OnHit hook that emits a damage event
// for every impact and a defeat event for fatal ones.
func NewHitTelemetryRecorder(cfg HitTelemetryRecorderConfig) func(hit Hit) {
	if cfg.Publisher == nil {
		return nil
	}

	tick := cfg.CurrentTick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}

	return func(hit Hit) {
		owner := TankRef(hit.Owner)
		target := TankRef(hit.Target)
		current := tick()

		loggingcombat.Damage(
			context.Background(),
			cfg.Publisher,
			current,
			owner,
			target,
			loggingcombat.DamagePayload{Amount: hit.Damage, TargetHealth: hit.TargetHealth},
			nil,
		)

		if !hit.Killed {
			return
		}

		loggingcombat.Defeat(
			context.Background(),
			cfg.Publisher,
			current,
			owner,
			target,
			loggingcombat.DefeatPayload{ByPlayer: hit.Owner == state.PlayerID},
			nil,
		)
	}
}
