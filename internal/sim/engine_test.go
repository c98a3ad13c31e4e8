package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tank-arena/server/internal/powerups"
	"tank-arena/server/internal/state"
	"tank-arena/server/internal/telemetry"
	"tank-arena/server/logging"
	loggingpowerups "tank-arena/server/logging/powerups"
	loggingsimulation "tank-arena/server/logging/simulation"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type capturePublisher struct {
	events []logging.Event
}

func (p *capturePublisher) Publish(_ context.Context, event logging.Event) {
	p.events = append(p.events, event)
}

func (p *capturePublisher) ofType(eventType logging.EventType) []logging.Event {
	var out []logging.Event
	for _, event := range p.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *fakeClock, *capturePublisher) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	pub := &capturePublisher{}
	engine := NewEngine(cfg, Deps{Clock: clock, Publisher: pub, Counters: telemetry.NewCounters()})
	return engine, clock, pub
}

const frame = time.Second / 30

func TestStartBuildsOpeningLayout(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})

	snapshot := engine.Start()

	require.Len(t, snapshot.Tanks, 1)
	player := snapshot.Tanks[0]
	assert.Equal(t, state.PlayerID, player.ID)
	assert.Equal(t, 100.0, player.X)
	assert.Equal(t, 100.0, player.Y)
	assert.Equal(t, 0.0, player.Angle)
	assert.Equal(t, 100.0, player.Health)
	assert.Equal(t, "green", player.Color)
	assert.Equal(t, 1, player.Barrels)
	assert.Nil(t, player.AISkill)
	assert.Len(t, snapshot.Rewards, 2)
	assert.True(t, snapshot.GameActive)
	assert.False(t, snapshot.GameOver)
	assert.Nil(t, snapshot.Winner)
	assert.Equal(t, 1, snapshot.CurrentLevel)
	assert.Equal(t, 1, snapshot.EnemiesRequired)
	assert.Equal(t, 1, snapshot.MaxEnemies)
	assert.Equal(t, 800.0, snapshot.MapWidth)
	assert.Equal(t, 600.0, snapshot.MapHeight)
	assert.Equal(t, UnixSeconds(clock.now), snapshot.NextEnemySpawn)
	assert.NotEmpty(t, snapshot.SessionID)
}

func TestStateIsIdempotentWithinTheSameInstant(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()

	clock.Advance(100 * time.Millisecond)
	first := engine.State()
	require.Len(t, first.Tanks, 2, "first enemy spawns on the first tick")

	second := engine.State()
	assert.Equal(t, first, second)
}

func TestStateDoesNotAdvanceInactiveSession(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()
	clock.Advance(frame)
	before := engine.State()

	stopped := engine.Stop()
	assert.False(t, stopped.GameActive)

	clock.Advance(5 * time.Second)
	after := engine.State()
	assert.Equal(t, before.Tick, after.Tick)
	assert.Equal(t, before.Tanks, after.Tanks)
	assert.Equal(t, before.LastUpdate, after.LastUpdate)
}

func TestApplyCommands(t *testing.T) {
	engine, _, pub := newTestEngine(t, Config{})
	engine.Start()

	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionRotate, Rotate: -5}))
	assert.Equal(t, 355.0, engine.Snapshot().Tanks[0].Angle)

	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionRotate, Rotate: 5}))
	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionMove, Direction: "forward"}))
	assert.InDelta(t, 95.0, engine.Snapshot().Tanks[0].Y, 1e-9)

	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionFire}))
	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionFire}))
	assert.Len(t, engine.Snapshot().Projectiles, 1, "second volley is rate limited")
	assert.Len(t, pub.events, 2, "game start plus one shot")

	err := engine.Apply(Command{TankID: 1, Action: "jump"})
	assert.True(t, errors.Is(err, ErrInvalidCommand))
	err = engine.Apply(Command{TankID: 1, Action: ActionMove, Direction: "up"})
	assert.True(t, errors.Is(err, ErrInvalidCommand))

	assert.NoError(t, engine.Apply(Command{TankID: 99, Action: ActionRotate, Rotate: 10}))

	counters := engine.deps.Counters.Snapshot()
	assert.Equal(t, uint64(5), counters.CommandsApplied)
	assert.Equal(t, uint64(3), counters.CommandsIgnored)
}

func TestApplyIgnoresDestroyedTank(t *testing.T) {
	engine, _, _ := newTestEngine(t, Config{})
	engine.Start()
	engine.session.Player().Health = 0

	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionMove, Direction: "forward"}))
	assert.Equal(t, 100.0, engine.Snapshot().Tanks[0].Y)
}

func TestPlayerKillAdvancesLevel(t *testing.T) {
	engine, clock, pub := newTestEngine(t, Config{})
	engine.Start()
	player := engine.session.Player()
	player.Health = 90
	engine.session.Tanks = append(engine.session.Tanks, state.NewEnemy(2, 100, 60, 180, 10, "blue", 0.5))

	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionFire}))
	clock.Advance(frame)
	snapshot := engine.State()

	assert.Equal(t, 2, snapshot.CurrentLevel)
	assert.Equal(t, 0, snapshot.EnemiesDefeated)
	assert.Equal(t, 3, snapshot.EnemiesRequired)
	assert.Equal(t, 100.0, player.Health)
	assert.True(t, snapshot.GameActive)
	for _, tank := range snapshot.Tanks {
		if tank.ID != state.PlayerID {
			assert.Equal(t, 100.0, tank.Health, "only fresh level two enemies remain")
		}
	}
	assert.Empty(t, snapshot.Projectiles)
	assert.NotEmpty(t, pub.events)
}

func TestFriendlyFireCountsNothing(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()
	victim := state.NewEnemy(2, 400, 300, 0, 10, "blue", 0.5)
	engine.session.Tanks = append(engine.session.Tanks, victim, state.NewEnemy(3, 700, 500, 0, 90, "blue", 0.5))
	engine.session.Projectiles = append(engine.session.Projectiles, &state.Projectile{
		X: 400, Y: 300, Owner: 3, Damage: 20, Active: true, CreatedAt: clock.now,
	})

	clock.Advance(time.Millisecond)
	snapshot := engine.State()

	assert.Equal(t, 0.0, victim.Health)
	assert.Equal(t, 0, snapshot.EnemiesDefeated)
	assert.Equal(t, 1, snapshot.CurrentLevel)
}

func TestPlayerDeathEndsGame(t *testing.T) {
	engine, clock, pub := newTestEngine(t, Config{})
	engine.Start()
	engine.session.Tanks = append(engine.session.Tanks, state.NewEnemy(2, 700, 500, 0, 90, "blue", 0.5))
	engine.session.Projectiles = append(engine.session.Projectiles, &state.Projectile{
		X: 100, Y: 100, Owner: 2, Damage: 150, Active: true, CreatedAt: clock.now,
	})

	clock.Advance(time.Millisecond)
	snapshot := engine.State()

	assert.False(t, snapshot.GameActive)
	assert.True(t, snapshot.GameOver)
	require.NotNil(t, snapshot.Winner)
	assert.Equal(t, state.WinnerAI, *snapshot.Winner)
	assert.False(t, snapshot.Completed)
	assert.Equal(t, 0.0, snapshot.Tanks[0].Health)
	assert.Len(t, snapshot.Tanks, 2, "frozen game skips later tick steps")

	clock.Advance(time.Second)
	assert.Equal(t, snapshot.Tick, engine.State().Tick)
	assert.NotEmpty(t, pub.events)
}

func TestFinalLevelCompletionWinsGame(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()
	engine.director.Configure(engine.session, 5)
	engine.session.EnemiesDefeated = 11
	engine.session.Tanks = append(engine.session.Tanks, state.NewEnemy(2, 400, 300, 0, 5, "darkcyan", 0.9))
	engine.session.Projectiles = append(engine.session.Projectiles, &state.Projectile{
		X: 400, Y: 300, Owner: state.PlayerID, Damage: 20, Active: true, CreatedAt: clock.now,
	})

	clock.Advance(time.Millisecond)
	snapshot := engine.State()

	assert.False(t, snapshot.GameActive)
	assert.True(t, snapshot.GameOver)
	assert.True(t, snapshot.Completed)
	require.NotNil(t, snapshot.Winner)
	assert.Equal(t, state.WinnerPlayer, *snapshot.Winner)
	assert.Equal(t, 12, snapshot.EnemiesDefeated)
}

func TestMaxTickElapsedClampsLongGaps(t *testing.T) {
	clampedEngine, clock, pub := newTestEngine(t, Config{MaxTickElapsed: time.Second})
	clampedEngine.Start()
	shell := &state.Projectile{X: 300, Y: 300, VX: 1, Owner: 9, Active: true, CreatedAt: clock.now}
	clampedEngine.session.Projectiles = []*state.Projectile{shell}

	clock.Advance(10 * time.Second)
	clampedEngine.State()

	assert.InDelta(t, 330.0, shell.X, 1e-9)
	events := pub.ofType(loggingsimulation.EventTickClamped)
	require.Len(t, events, 1)
	payload := events[0].Payload.(loggingsimulation.TickClampedPayload)
	assert.Equal(t, 10.0, payload.RequestedSeconds)
	assert.Equal(t, 1.0, payload.AppliedSeconds)
	assert.Equal(t, uint64(1), clampedEngine.deps.Counters.Snapshot().ClampedTicks)

	freeEngine, freeClock, _ := newTestEngine(t, Config{})
	freeEngine.Start()
	free := &state.Projectile{X: 300, Y: 300, VX: 1, Owner: 9, Active: true, CreatedAt: freeClock.now}
	freeEngine.session.Projectiles = []*state.Projectile{free}

	freeClock.Advance(10 * time.Second)
	freeEngine.State()
	assert.InDelta(t, 600.0, free.X, 1e-9)
}

func TestSnapshotExposesBoostFields(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()
	player := engine.session.Player()
	player.BarrelBoost = &state.BarrelBoost{Timer: state.Timer{ActivatedAt: clock.now, Duration: 45}, Color: "purple"}
	player.DamageBoost = &state.DamageBoost{Timer: state.Timer{ActivatedAt: clock.now, Duration: 30}, Multiplier: 2, Color: "orange"}
	player.SetMessage("Damage Boost: x2 (30s)", clock.now, 2*time.Second)

	tank := engine.Snapshot().Tanks[0]
	require.NotNil(t, tank.PowerupDuration)
	assert.Equal(t, 45.0, *tank.PowerupDuration)
	assert.Equal(t, "barrel", tank.PowerupType)
	assert.Equal(t, "purple", tank.PowerupColor)
	require.NotNil(t, tank.DamageBoost)
	assert.Equal(t, 2.0, *tank.DamageBoost)
	assert.Equal(t, "orange", tank.DamageBoostColor)
	assert.Equal(t, "Damage Boost: x2 (30s)", tank.PowerupMessage)
	require.NotNil(t, tank.MessageExpiry)
	assert.InDelta(t, UnixSeconds(clock.now)+2, *tank.MessageExpiry, 1e-6)
}

func TestLoopStepPullsState(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()

	var seen []Snapshot
	loop := NewLoop(engine, LoopConfig{Rate: 10}, LoopHooks{
		AfterStep: func(result LoopStepResult) { seen = append(seen, result.Snapshot) },
	})
	clock.Advance(frame)
	result := loop.Step()

	require.Len(t, seen, 1)
	assert.Equal(t, uint64(1), result.Snapshot.Tick)
	assert.Equal(t, 100*time.Millisecond, result.Budget)
}

func barrelAt(t *testing.T, x, y float64, now time.Time) *state.Reward {
	t.Helper()
	def, ok := powerups.DefaultCatalog().Lookup(state.RewardBarrel)
	require.True(t, ok)
	return def.NewReward(x, y, now)
}

func TestMovingOverRewardCollectsIt(t *testing.T) {
	engine, clock, pub := newTestEngine(t, Config{})
	engine.Start()
	engine.session.Rewards = []*state.Reward{barrelAt(t, 100, 92, clock.now)}

	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionMove, Direction: "forward"}))

	snapshot := engine.Snapshot()
	assert.Empty(t, snapshot.Rewards)
	player := snapshot.Tanks[0]
	assert.Equal(t, 2, player.Barrels)
	assert.Equal(t, "Extra Barrels: 2 (45s)", player.PowerupMessage)
	require.NotNil(t, player.PowerupDuration)
	assert.Equal(t, 45.0, *player.PowerupDuration)
	assert.Len(t, pub.ofType(loggingpowerups.EventRewardCollected), 1)

	clock.Advance(10 * time.Second)
	engine.session.Rewards = []*state.Reward{barrelAt(t, 100, 87, clock.now)}
	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionMove, Direction: "forward"}))

	player = engine.Snapshot().Tanks[0]
	assert.Equal(t, 3, player.Barrels)
	require.NotNil(t, player.PowerupDuration)
	assert.InDelta(t, 35.0+45.0, *player.PowerupDuration, 1e-9, "stacked onto the remaining time")
	assert.Equal(t, "Extra Barrels: 3 (80s)", player.PowerupMessage)

	clock.Advance(81 * time.Second)
	player = engine.State().Tanks[0]
	assert.Equal(t, 1, player.Barrels)
	assert.Nil(t, player.PowerupDuration)
	assert.Empty(t, player.PowerupType)
	assert.Equal(t, "Extra Barrels Expired", player.PowerupMessage)
	assert.Len(t, pub.ofType(loggingpowerups.EventBoostExpired), 1)
}

func TestMovingAwayFromRewardLeavesIt(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()
	engine.session.Rewards = []*state.Reward{barrelAt(t, 100, 140, clock.now)}

	require.NoError(t, engine.Apply(Command{TankID: 1, Action: ActionMove, Direction: "forward"}))

	snapshot := engine.Snapshot()
	assert.Len(t, snapshot.Rewards, 1)
	assert.Equal(t, 1, snapshot.Tanks[0].Barrels)
	assert.Empty(t, snapshot.Tanks[0].PowerupMessage)
}

func TestTickAdvancesByGivenElapsed(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	engine.Start()
	shell := &state.Projectile{X: 300, Y: 300, VX: 1, Owner: 9, Active: true, CreatedAt: clock.now}
	engine.session.Projectiles = []*state.Projectile{shell}
	lastUpdate := engine.Snapshot().LastUpdate

	engine.Tick(0.5, clock.now.Add(500*time.Millisecond))

	snapshot := engine.Snapshot()
	assert.InDelta(t, 315.0, shell.X, 1e-9)
	assert.Equal(t, uint64(1), snapshot.Tick)
	assert.Equal(t, lastUpdate, snapshot.LastUpdate, "explicit ticks leave the wall clock bookkeeping alone")
	assert.Equal(t, UnixSeconds(clock.now.Add(500*time.Millisecond)), snapshot.LastAIUpdate)

	engine.Tick(0, clock.now.Add(time.Second))
	assert.Equal(t, uint64(1), engine.Snapshot().Tick)

	engine.Stop()
	engine.Tick(0.5, clock.now.Add(2*time.Second))
	assert.InDelta(t, 315.0, shell.X, 1e-9)
}

func TestSnapshotReportsSpawnBookkeeping(t *testing.T) {
	engine, clock, _ := newTestEngine(t, Config{})
	started := clock.now
	snapshot := engine.Start()
	assert.Equal(t, UnixSeconds(started), snapshot.LastRewardSpawn)
	assert.Equal(t, UnixSeconds(started), snapshot.LastAIUpdate)

	clock.Advance(frame)
	snapshot = engine.State()
	assert.Equal(t, UnixSeconds(started), snapshot.LastRewardSpawn, "no reward is due yet")
	assert.Equal(t, UnixSeconds(clock.now), snapshot.LastAIUpdate)
}
