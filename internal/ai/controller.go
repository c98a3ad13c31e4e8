package ai

import (
	"math"
	"math/rand"
	"time"

	"tank-arena/server/internal/geom"
	"tank-arena/server/internal/powerups"
	"tank-arena/server/internal/state"
	"tank-arena/server/internal/world"
)

// RunConfig captures the runtime dependencies required to drive enemy tanks
// for one update.
type RunConfig struct {
	Now     time.Time
	Player  *state.Tank
	Enemies []*state.Tank
	Rewards func() []*state.Reward

	Rand   *rand.Rand
	Tuning *Tuning

	// Move displaces the tank one step and resolves reward pickups.
	Move func(tank *state.Tank, direction string)
	// Fire launches a volley from the tank.
	Fire func(tank *state.Tank)
	// Collect attempts a reward pickup at the tank's current position.
	Collect func(tank *state.Tank)
}

// Decision summarises what one enemy did.
type Decision struct {
	TankID int
	Mode   Mode
	Fired  bool
}

// Run updates every living enemy in ascending ID order. Nothing happens
// while the player is dead or absent.
func Run(cfg RunConfig) []Decision {
	if !cfg.Player.Alive() || len(cfg.Enemies) == 0 {
		return nil
	}
	env := runEnv{cfg: cfg, tuning: cfg.Tuning}
	if env.tuning == nil {
		env.tuning = DefaultTuning
	}
	if env.cfg.Rand == nil {
		env.cfg.Rand = rand.New(rand.NewSource(1))
	}

	decisions := make([]Decision, 0, len(cfg.Enemies))
	for _, enemy := range sortedLiving(cfg.Enemies) {
		decisions = append(decisions, env.update(enemy))
	}
	return decisions
}

type runEnv struct {
	cfg    RunConfig
	tuning *Tuning
}

func (env *runEnv) update(tank *state.Tank) Decision {
	if tank.Blackboard == nil {
		tank.Blackboard = &state.Blackboard{}
	}
	player := env.cfg.Player
	distance := geom.Distance(tank.X, tank.Y, player.X, player.Y)
	bearing := geom.Bearing(tank.X, tank.Y, player.X, player.Y)
	skill := tank.SkillValue()

	decision := Decision{TankID: tank.ID, Mode: env.tuning.Classify(distance)}
	switch decision.Mode {
	case ModePatrol:
		env.patrol(tank, skill)
	case ModePursue:
		decision.Fired = env.pursue(tank, distance, bearing, skill)
	case ModeAttack:
		decision.Fired = env.attack(tank, distance, bearing, skill)
	}
	return decision
}

func (env *runEnv) patrol(tank *state.Tank, skill float64) {
	cfg := env.tuning.Patrol
	now := env.cfg.Now
	if now.Sub(tank.Blackboard.LastDecision).Seconds() <= cfg.DecisionInterval {
		return
	}
	defer func() { tank.Blackboard.LastDecision = now }()

	if env.cfg.Rand.Float64() < cfg.RewardSeek.At(skill) {
		var rewards []*state.Reward
		if env.cfg.Rewards != nil {
			rewards = env.cfg.Rewards()
		}
		if target, distance := powerups.Nearest(rewards, tank.X, tank.Y); target != nil {
			geom.RotateToward(tank, geom.Bearing(tank.X, tank.Y, target.X, target.Y))
			env.move(tank, geom.Forward)
			if distance < cfg.CollectDistance && env.cfg.Collect != nil {
				env.cfg.Collect(tank)
			}
			return
		}
	}
	env.wander(tank)
}

func (env *runEnv) wander(tank *state.Tank) {
	jitter := env.tuning.Patrol.WanderJitter
	geom.Rotate(tank, float64(world.RandomInt(env.cfg.Rand, -jitter, jitter)))
	env.move(tank, geom.Forward)
}

func (env *runEnv) pursue(tank *state.Tank, distance, bearing, skill float64) bool {
	cfg := env.tuning.Pursue
	geom.RotateToward(tank, bearing)
	env.keepDistance(tank, distance, cfg)

	if !env.shotReady(tank, cfg, skill) {
		return false
	}
	if aimError(tank.Angle, bearing, cfg.WrapAim) >= cfg.AimTolerance.At(skill) {
		return false
	}
	if env.cfg.Rand.Float64() >= skill {
		return false
	}
	env.fire(tank)
	return true
}

func (env *runEnv) attack(tank *state.Tank, distance, bearing, skill float64) bool {
	cfg := env.tuning.Attack
	geom.RotateToward(tank, bearing)
	env.keepDistance(tank, distance, cfg)

	if aimError(tank.Angle, bearing, cfg.WrapAim) >= cfg.AimTolerance.At(skill) {
		return false
	}

	fired := false
	if env.shotReady(tank, cfg, skill) {
		env.fire(tank)
		fired = true
	}

	if env.cfg.Rand.Float64() < cfg.StrafeChance.At(skill) {
		if env.cfg.Rand.Float64() < 0.5 {
			env.move(tank, geom.Left)
		} else {
			env.move(tank, geom.Right)
		}
	}
	return fired
}

func (env *runEnv) keepDistance(tank *state.Tank, distance float64, cfg EngageTuning) {
	switch {
	case distance > cfg.AdvanceBeyond:
		env.move(tank, geom.Forward)
	case distance < cfg.RetreatWithin:
		env.move(tank, geom.Backward)
	}
}

func (env *runEnv) shotReady(tank *state.Tank, cfg EngageTuning, skill float64) bool {
	return env.cfg.Now.Sub(tank.Blackboard.LastShot).Seconds() > cfg.ShotInterval.At(skill)
}

func (env *runEnv) fire(tank *state.Tank) {
	if env.cfg.Fire != nil {
		env.cfg.Fire(tank)
	}
	tank.Blackboard.LastShot = env.cfg.Now
}

func (env *runEnv) move(tank *state.Tank, direction string) {
	if env.cfg.Move != nil {
		env.cfg.Move(tank, direction)
	}
}

func aimError(angle, bearing float64, wrap bool) float64 {
	if wrap {
		return math.Abs(geom.AngleDiff(bearing, angle))
	}
	return math.Abs(angle - bearing)
}
