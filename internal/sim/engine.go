package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"tank-arena/server/internal/ai"
	"tank-arena/server/internal/combat"
	"tank-arena/server/internal/geom"
	"tank-arena/server/internal/level"
	"tank-arena/server/internal/powerups"
	"tank-arena/server/internal/state"
	"tank-arena/server/internal/world"
	"tank-arena/server/logging"
	loggingcombat "tank-arena/server/logging/combat"
	logginglifecycle "tank-arena/server/logging/lifecycle"
	loggingpowerups "tank-arena/server/logging/powerups"
	loggingprogression "tank-arena/server/logging/progression"
	loggingsimulation "tank-arena/server/logging/simulation"
)

// Engine owns a single game session. Every exported method holds the engine
// lock for its whole duration, so ticks never interleave with commands.
type Engine struct {
	mu sync.Mutex

	cfg  Config
	deps Deps

	session  *state.Session
	director *level.Director
	spawner  *powerups.Spawner
	aiRand   *rand.Rand
	hits     func(combat.Hit)
}

// NewEngine builds an idle engine. Call Start to begin a game.
func NewEngine(cfg Config, deps Deps) *Engine {
	cfg = cfg.normalized()
	deps = deps.normalized()
	seed := cfg.World.Seed

	e := &Engine{
		cfg:      cfg,
		deps:     deps,
		director: level.NewDirector(cfg.Levels, cfg.NewRNG(seed, "level")),
		spawner:  powerups.NewSpawner(cfg.NewRNG(seed, "rewards"), cfg.Catalog),
		aiRand:   cfg.NewRNG(seed, "ai"),
	}
	e.session = e.idleSession(deps.Clock.Now())
	e.hits = combat.NewHitTelemetryRecorder(combat.HitTelemetryRecorderConfig{
		Publisher:   e.publisher(),
		CurrentTick: func() uint64 { return e.session.Tick },
	})
	return e
}

func (e *Engine) idleSession(now time.Time) *state.Session {
	session := &state.Session{
		Width:      e.cfg.World.Width,
		Height:     e.cfg.World.Height,
		LastUpdate: now,
	}
	e.director.Configure(session, 1)
	return session
}

func (e *Engine) publisher() logging.Publisher {
	return logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		if event.SessionID == "" && e.session != nil {
			event.SessionID = e.session.ID
		}
		e.deps.Publisher.Publish(ctx, event)
	})
}

// Start resets the session: one player tank, level one, and the opening
// rewards. The first enemy is due immediately.
func (e *Engine) Start() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.deps.Clock.Now()
	session := e.idleSession(now)
	session.ID = uuid.NewString()
	session.Tanks = []*state.Tank{state.NewPlayer(e.cfg.World.PlayerX, e.cfg.World.PlayerY)}
	session.Active = true
	session.StartedAt = now
	session.LastRewardSpawn = now
	session.LastAIUpdate = now
	session.NextEnemySpawn = now
	e.session = session

	for i := 0; i < world.InitialRewards; i++ {
		e.spawner.Spawn(session, now)
	}

	logginglifecycle.GameStarted(context.Background(), e.publisher(), session.Tick, sessionRef(session), logginglifecycle.GameStartedPayload{
		Width:   session.Width,
		Height:  session.Height,
		Rewards: len(session.Rewards),
	}, nil)
	if e.deps.Logger != nil {
		e.deps.Logger.Printf("[sim] game started session=%s", session.ID)
	}
	return buildSnapshot(session)
}

// Stop freezes the session. State is kept so clients can still render it.
func (e *Engine) Stop() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Active = false
	logginglifecycle.GameStopped(context.Background(), e.publisher(), e.session.Tick, sessionRef(e.session), nil)
	return buildSnapshot(e.session)
}

// State advances an active session by the wall time since the previous
// update and returns the resulting snapshot.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Active {
		now := e.deps.Clock.Now()
		elapsed := now.Sub(e.session.LastUpdate).Seconds()
		e.tickLocked(elapsed, now)
		e.session.LastUpdate = now
	}
	return buildSnapshot(e.session)
}

// Tick advances the session by elapsed seconds at the given instant.
func (e *Engine) Tick(elapsed float64, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked(elapsed, now)
}

// Snapshot returns the current state without advancing time.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return buildSnapshot(e.session)
}

// Apply executes a tank command. Commands naming an unknown or destroyed
// tank are ignored without error.
func (e *Engine) Apply(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		e.deps.Counters.RecordCommand(false)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tank := e.session.TankByID(cmd.TankID)
	if !tank.Alive() {
		e.deps.Counters.RecordCommand(false)
		return nil
	}

	now := e.deps.Clock.Now()
	switch cmd.Action {
	case ActionRotate:
		geom.Rotate(tank, cmd.Rotate)
	case ActionMove:
		e.move(tank, cmd.Direction, now)
	case ActionFire:
		if projectiles, fired := combat.Fire(tank, e.session.Projectiles, now); fired {
			e.session.Projectiles = projectiles
			e.recordShot(tank)
		}
	}
	e.deps.Counters.RecordCommand(true)
	return nil
}

func (e *Engine) tickLocked(elapsed float64, now time.Time) {
	session := e.session
	if !session.Active || elapsed <= 0 {
		return
	}

	start := time.Now()
	clamped := false
	if limit := e.cfg.MaxTickElapsed.Seconds(); limit > 0 && elapsed > limit {
		loggingsimulation.TickClamped(context.Background(), e.publisher(), session.Tick, loggingsimulation.TickClampedPayload{
			RequestedSeconds: elapsed,
			AppliedSeconds:   limit,
		}, nil)
		elapsed = limit
		clamped = true
	}
	session.Tick++

	e.advanceProjectiles(elapsed, now)
	if session.Active {
		e.updateRewards(now)
		e.runAI(now)
		e.spawnEnemies(now)
	}

	e.deps.Counters.RecordTick(time.Since(start), clamped)
	if e.deps.Metrics != nil {
		e.deps.Metrics.Add("sim.ticks", 1)
		e.deps.Metrics.Store("sim.projectiles", uint64(len(session.Projectiles)))
		e.deps.Metrics.Store("sim.tanks", uint64(len(session.Tanks)))
	}
}

func (e *Engine) advanceProjectiles(elapsed float64, now time.Time) {
	session := e.session
	result := combat.Advance(combat.AdvanceConfig{
		Projectiles: session.Projectiles,
		Tanks:       func() []*state.Tank { return session.Tanks },
		Bounds:      e.cfg.World.Bounds(),
		Elapsed:     elapsed,
		OnHit:       e.hits,
		OnKill: func(victim *state.Tank, killerID int) {
			e.resolveKill(victim, killerID, now)
		},
	})
	session.Projectiles = result.Survivors
}

func (e *Engine) resolveKill(victim *state.Tank, killerID int, now time.Time) {
	session := e.session
	if victim.IsPlayer() {
		if level.CheckGameOver(session) {
			e.recordGameOver()
		}
		return
	}
	if killerID != state.PlayerID {
		return
	}

	session.EnemiesDefeated++
	outcome := e.director.CheckCompletion(session, now)
	switch {
	case outcome.Completed:
		e.recordGameOver()
	case outcome.Advanced:
		loggingprogression.LevelAdvanced(context.Background(), e.publisher(), session.Tick, tankRef(state.PlayerID), loggingprogression.LevelAdvancedPayload{
			From:            outcome.From,
			To:              outcome.To,
			EnemiesRequired: session.EnemiesRequired,
			MaxEnemies:      session.MaxEnemies,
		}, nil)
	}
}

func (e *Engine) updateRewards(now time.Time) {
	session := e.session
	if reward := e.spawner.TrySpawn(session, now); reward != nil {
		loggingpowerups.RewardSpawned(context.Background(), e.publisher(), session.Tick, loggingpowerups.RewardPayload{
			Kind: string(reward.Kind),
			X:    reward.X,
			Y:    reward.Y,
		}, nil)
	}

	result := powerups.Expire(session, now)
	for _, expiry := range result.Expired {
		loggingpowerups.BoostExpired(context.Background(), e.publisher(), session.Tick, tankRef(expiry.TankID), loggingpowerups.ExpiredPayload{
			Boost: expiry.Boost,
		}, nil)
	}
}

func (e *Engine) runAI(now time.Time) {
	session := e.session
	session.LastAIUpdate = now
	decisions := ai.Run(ai.RunConfig{
		Now:     now,
		Player:  session.Player(),
		Enemies: session.LivingEnemies(),
		Rewards: func() []*state.Reward { return session.Rewards },
		Rand:    e.aiRand,
		Tuning:  e.cfg.Tuning,
		Move: func(tank *state.Tank, direction string) {
			e.move(tank, direction, now)
		},
		Fire: func(tank *state.Tank) {
			session.Projectiles = append(session.Projectiles, combat.Volley(tank, now)...)
			e.recordShot(tank)
		},
		Collect: func(tank *state.Tank) {
			e.collect(tank, now)
		},
	})
	if e.deps.Metrics != nil && len(decisions) > 0 {
		e.deps.Metrics.Add("sim.ai_decisions", uint64(len(decisions)))
	}
}

func (e *Engine) spawnEnemies(now time.Time) {
	session := e.session
	enemy := e.director.CheckEnemySpawn(session, now)
	if enemy == nil {
		return
	}
	loggingprogression.EnemySpawned(context.Background(), e.publisher(), session.Tick, tankRef(enemy.ID), loggingprogression.EnemySpawnedPayload{
		X:      enemy.X,
		Y:      enemy.Y,
		Health: enemy.Health,
		Skill:  enemy.SkillValue(),
	}, nil)
}

// move displaces the tank and resolves any reward it drives over.
func (e *Engine) move(tank *state.Tank, direction string, now time.Time) {
	if !geom.Move(tank, direction, geom.DefaultSpeed, e.cfg.World.Bounds()) {
		return
	}
	e.collect(tank, now)
}

func (e *Engine) collect(tank *state.Tank, now time.Time) {
	pickup, ok := powerups.Collect(e.session, tank, now)
	if !ok {
		return
	}
	loggingpowerups.RewardCollected(context.Background(), e.publisher(), e.session.Tick, tankRef(tank.ID), loggingpowerups.CollectedPayload{
		Kind:     string(pickup.Kind),
		Message:  pickup.Message,
		Duration: pickup.Duration,
	}, nil)
}

func (e *Engine) recordShot(tank *state.Tank) {
	loggingcombat.ShotFired(context.Background(), e.publisher(), e.session.Tick, tankRef(tank.ID), loggingcombat.ShotFiredPayload{
		Barrels:    tank.Barrels,
		Damage:     combat.BaseDamage * tank.DamageMultiplier(),
		Multiplier: tank.DamageMultiplier(),
	}, nil)
}

func (e *Engine) recordGameOver() {
	session := e.session
	winner := state.WinnerAI
	if session.Winner != nil {
		winner = *session.Winner
	}
	logginglifecycle.GameOver(context.Background(), e.publisher(), session.Tick, sessionRef(session), logginglifecycle.GameOverPayload{
		Winner:    winner,
		Completed: session.Completed,
		Level:     session.Level,
	}, nil)
	if e.deps.Logger != nil {
		e.deps.Logger.Printf("[sim] game over session=%s winner=%d level=%d", session.ID, winner, session.Level)
	}
}

func tankRef(id int) logging.EntityRef {
	return combat.TankRef(id)
}

func sessionRef(session *state.Session) logging.EntityRef {
	return logging.EntityRef{ID: session.ID, Kind: logging.EntityKindSession}
}

// Summary is a compact view of the session for diagnostics.
type Summary struct {
	SessionID   string `json:"sessionId"`
	Active      bool   `json:"active"`
	GameOver    bool   `json:"gameOver"`
	Level       int    `json:"level"`
	Tanks       int    `json:"tanks"`
	Projectiles int    `json:"projectiles"`
	Rewards     int    `json:"rewards"`
	Tick        uint64 `json:"tick"`
	Uptime      string `json:"uptime,omitempty"`
}

func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	session := e.session
	summary := Summary{
		SessionID:   session.ID,
		Active:      session.Active,
		GameOver:    session.GameOver,
		Level:       session.Level,
		Tanks:       len(session.Tanks),
		Projectiles: len(session.Projectiles),
		Rewards:     len(session.Rewards),
		Tick:        session.Tick,
	}
	if !session.StartedAt.IsZero() {
		summary.Uptime = e.deps.Clock.Now().Sub(session.StartedAt).Truncate(time.Second).String()
	}
	return summary
}

// Seed reports the root seed used for the engine's random streams.
func (e *Engine) Seed() string {
	return e.cfg.World.Seed
}
