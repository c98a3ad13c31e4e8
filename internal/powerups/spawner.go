package powerups

import (
	"math"
	"math/rand"
	"time"

	"tank-arena/server/internal/geom"
	"tank-arena/server/internal/state"
	"tank-arena/server/internal/world"
)

const (
	// SpawnMargin keeps rewards away from the world edges.
	SpawnMargin = 50
	// SpawnAttempts bounds the search for a free position.
	SpawnAttempts = 10
	// SpawnClearance is the minimum distance between a new reward and any tank.
	SpawnClearance = 100.0
)

// SpawnInterval returns the nominal seconds between reward spawns for level.
func SpawnInterval(level int) float64 {
	return math.Max(5, 20-2*float64(level))
}

// MaxRewards is the number of rewards allowed on the map at once.
func MaxRewards(level int) int {
	return 2 + level
}

// Spawner places rewards on the map using its own random stream.
type Spawner struct {
	rng     *rand.Rand
	catalog Catalog
}

func NewSpawner(rng *rand.Rand, catalog Catalog) *Spawner {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Spawner{rng: rng, catalog: catalog}
}

// TrySpawn applies the timing gate. When the gate opens LastRewardSpawn is
// refreshed even if Spawn then declines to place anything.
func (s *Spawner) TrySpawn(session *state.Session, now time.Time) *state.Reward {
	if s == nil || session == nil {
		return nil
	}
	interval := SpawnInterval(session.Level)
	threshold := world.RandomUniform(s.rng, interval/2, interval)
	if now.Sub(session.LastRewardSpawn).Seconds() <= threshold {
		return nil
	}
	reward := s.Spawn(session, now)
	session.LastRewardSpawn = now
	return reward
}

// Spawn places one reward if the level's cap allows it and a clear position
// is found. It returns the placed reward or nil.
func (s *Spawner) Spawn(session *state.Session, now time.Time) *state.Reward {
	if s == nil || session == nil {
		return nil
	}
	if len(session.Rewards) >= MaxRewards(session.Level) {
		return nil
	}

	def, ok := s.catalog.Lookup(s.RollKind(session.Level))
	if !ok {
		return nil
	}

	x, y, ok := s.position(session)
	if !ok {
		return nil
	}

	reward := def.NewReward(x, y, now)
	session.Rewards = append(session.Rewards, reward)
	return reward
}

// RollKind picks a reward kind. Health packs grow more common with level,
// damage boosts slightly so, and barrels take the remainder.
func (s *Spawner) RollKind(level int) state.RewardKind {
	roll := s.rng.Float64()
	healthChance := 0.2 * float64(level)
	damageChance := 0.1 + 0.05*float64(level)
	switch {
	case roll < healthChance:
		return state.RewardHealth
	case roll < healthChance+damageChance:
		return state.RewardDamage
	default:
		return state.RewardBarrel
	}
}

func (s *Spawner) position(session *state.Session) (float64, float64, bool) {
	maxX := int(session.Width) - SpawnMargin
	maxY := int(session.Height) - SpawnMargin
	for attempt := 0; attempt < SpawnAttempts; attempt++ {
		x := float64(world.RandomInt(s.rng, SpawnMargin, maxX))
		y := float64(world.RandomInt(s.rng, SpawnMargin, maxY))
		if clearOfTanks(session.Tanks, x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}

func clearOfTanks(tanks []*state.Tank, x, y float64) bool {
	for _, tank := range tanks {
		if tank == nil {
			continue
		}
		if geom.Distance(tank.X, tank.Y, x, y) < SpawnClearance {
			return false
		}
	}
	return true
}
