package level

import (
	"math/rand"
	"time"

	"tank-arena/server/internal/geom"
	"tank-arena/server/internal/state"
	"tank-arena/server/internal/world"
)

const (
	spawnAttempts  = 10
	spawnClearance = 300.0
	spawnMargin    = 50

	enemyBaseHealth     = 80.0
	enemyHealthPerLevel = 10.0

	completionBonus = 20.0
)

// Outcome reports what a completion check changed.
type Outcome struct {
	Advanced  bool
	From      int
	To        int
	Completed bool
	Removed   int
}

// Director owns enemy population and level progression for a session.
type Director struct {
	table *Table
	rng   *rand.Rand
}

func NewDirector(table *Table, rng *rand.Rand) *Director {
	if table == nil {
		table = DefaultTable()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Director{table: table, rng: rng}
}

// Configure applies level settings to the session counters.
func (d *Director) Configure(session *state.Session, level int) {
	cfg := d.table.Config(level)
	session.Level = level
	session.EnemiesDefeated = 0
	session.EnemiesRequired = cfg.EnemiesRequired
	session.MaxEnemies = cfg.MaxEnemies
}

// CheckEnemySpawn adds one enemy when the spawn timer has elapsed and the
// level's population cap allows it. It returns the new tank or nil.
func (d *Director) CheckEnemySpawn(session *state.Session, now time.Time) *state.Tank {
	if session == nil || now.Before(session.NextEnemySpawn) {
		return nil
	}
	cfg := d.table.Config(session.Level)
	if len(session.LivingEnemies()) >= cfg.MaxEnemies {
		return nil
	}
	player := session.Player()
	if player == nil {
		return nil
	}

	x, y := d.SpawnPosition(player, session.Width, session.Height)
	enemy := state.NewEnemy(
		session.MaxTankID()+1,
		x,
		y,
		float64(world.RandomInt(d.rng, 0, 359)),
		enemyBaseHealth+enemyHealthPerLevel*float64(session.Level),
		d.table.Color(session.Level),
		cfg.AISkill,
	)
	session.Tanks = append(session.Tanks, enemy)
	session.NextEnemySpawn = now.Add(time.Duration(cfg.SpawnDelay * float64(time.Second)))
	return enemy
}

// SpawnPosition picks a point in the quadrant opposite the player, at least
// spawnClearance away. After repeated failures any point inside the margin
// is accepted.
func (d *Director) SpawnPosition(player *state.Tank, width, height float64) (float64, float64) {
	for attempt := 0; attempt < spawnAttempts; attempt++ {
		x := d.opposite(player.X, width)
		y := d.opposite(player.Y, height)
		if geom.Distance(player.X, player.Y, x, y) > spawnClearance {
			return x, y
		}
	}
	x := world.RandomInt(d.rng, spawnMargin, int(width)-spawnMargin)
	y := world.RandomInt(d.rng, spawnMargin, int(height)-spawnMargin)
	return float64(x), float64(y)
}

func (d *Director) opposite(coord, size float64) float64 {
	if coord < size/2 {
		return float64(world.RandomInt(d.rng, int(size*0.6), int(size*0.9)))
	}
	return float64(world.RandomInt(d.rng, int(size*0.1), int(size*0.4)))
}

// CheckCompletion advances the level once enough enemies fall. Completing
// the last level ends the game with the player as winner.
func (d *Director) CheckCompletion(session *state.Session, now time.Time) Outcome {
	outcome := Outcome{From: session.Level, To: session.Level}
	cfg := d.table.Config(session.Level)
	if session.EnemiesDefeated < cfg.EnemiesRequired {
		return outcome
	}

	next := session.Level + 1
	if next > d.table.Last() {
		session.SetWinner(state.WinnerPlayer, true)
		outcome.Completed = true
		return outcome
	}

	d.Configure(session, next)
	if player := session.Player(); player != nil {
		player.Heal(completionBonus, state.PlayerMaxHealth)
	}
	outcome.Removed = session.RemoveEnemies()
	session.NextEnemySpawn = now
	outcome.Advanced = true
	outcome.To = next
	return outcome
}

// CheckGameOver ends the game when the player is gone or dead and reports
// whether it did.
func CheckGameOver(session *state.Session) bool {
	if session == nil {
		return false
	}
	if session.Player().Alive() {
		return false
	}
	session.SetWinner(state.WinnerAI, false)
	return true
}
