package sim

import (
	"time"

	"tank-arena/server/internal/state"
)

// Snapshot is the externally visible session state. Field names follow the
// browser client's wire format and timestamps are Unix seconds.
type Snapshot struct {
	Tanks       []TankSnapshot       `json:"tanks"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
	Rewards     []RewardSnapshot     `json:"rewards"`

	GameActive      bool    `json:"gameActive"`
	GameOver        bool    `json:"gameOver"`
	Winner          *int    `json:"winner"`
	Completed       bool    `json:"completed"`
	MapWidth        float64 `json:"mapWidth"`
	MapHeight       float64 `json:"mapHeight"`
	LastUpdate      float64 `json:"lastUpdate"`
	CurrentLevel    int     `json:"currentLevel"`
	EnemiesDefeated int     `json:"enemiesDefeated"`
	EnemiesRequired int     `json:"enemiesRequired"`
	MaxEnemies      int     `json:"maxEnemies"`
	NextEnemySpawn  float64 `json:"nextEnemySpawn"`
	LastRewardSpawn float64 `json:"lastRewardSpawn"`
	LastAIUpdate    float64 `json:"lastAIUpdate"`
	SessionID       string  `json:"sessionId,omitempty"`
	Tick            uint64  `json:"tick"`
}

// TankSnapshot mirrors a tank. Power-up fields are omitted when inactive.
type TankSnapshot struct {
	ID        int      `json:"id"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Angle     float64  `json:"angle"`
	Health    float64  `json:"health"`
	MaxHealth float64  `json:"maxHealth"`
	Color     string   `json:"color"`
	Barrels   int      `json:"barrels"`
	AISkill   *float64 `json:"ai_skill,omitempty"`

	PowerupTime     *float64 `json:"powerupTime,omitempty"`
	PowerupDuration *float64 `json:"powerupDuration,omitempty"`
	PowerupType     string   `json:"powerupType,omitempty"`
	PowerupColor    string   `json:"powerupColor,omitempty"`

	DamageBoost         *float64 `json:"damageBoost,omitempty"`
	DamageBoostTime     *float64 `json:"damageBoostTime,omitempty"`
	DamageBoostDuration *float64 `json:"damageBoostDuration,omitempty"`
	DamageBoostColor    string   `json:"damageBoostColor,omitempty"`

	PowerupMessage string   `json:"powerupMessage,omitempty"`
	MessageExpiry  *float64 `json:"messageExpiry,omitempty"`
}

type ProjectileSnapshot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Owner     int     `json:"owner"`
	VelocityX float64 `json:"velocity_x"`
	VelocityY float64 `json:"velocity_y"`
	Damage    float64 `json:"damage"`
	Color     string  `json:"color"`
	Timestamp float64 `json:"timestamp"`
	Active    bool    `json:"active"`
}

type RewardSnapshot struct {
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Color     string  `json:"color"`
	Radius    float64 `json:"radius"`
	Duration  float64 `json:"duration"`
	Stackable bool    `json:"stackable"`
	SpawnTime float64 `json:"spawnTime"`
}

// UnixSeconds converts t to fractional Unix seconds; the zero time maps to 0.
func UnixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

func floatPtr(v float64) *float64 {
	return &v
}

func buildSnapshot(session *state.Session) Snapshot {
	if session == nil {
		return Snapshot{
			Tanks:       []TankSnapshot{},
			Projectiles: []ProjectileSnapshot{},
			Rewards:     []RewardSnapshot{},
		}
	}

	snapshot := Snapshot{
		Tanks:           make([]TankSnapshot, 0, len(session.Tanks)),
		Projectiles:     make([]ProjectileSnapshot, 0, len(session.Projectiles)),
		Rewards:         make([]RewardSnapshot, 0, len(session.Rewards)),
		GameActive:      session.Active,
		GameOver:        session.GameOver,
		Completed:       session.Completed,
		MapWidth:        session.Width,
		MapHeight:       session.Height,
		LastUpdate:      UnixSeconds(session.LastUpdate),
		CurrentLevel:    session.Level,
		EnemiesDefeated: session.EnemiesDefeated,
		EnemiesRequired: session.EnemiesRequired,
		MaxEnemies:      session.MaxEnemies,
		NextEnemySpawn:  UnixSeconds(session.NextEnemySpawn),
		LastRewardSpawn: UnixSeconds(session.LastRewardSpawn),
		LastAIUpdate:    UnixSeconds(session.LastAIUpdate),
		SessionID:       session.ID,
		Tick:            session.Tick,
	}
	if session.Winner != nil {
		winner := *session.Winner
		snapshot.Winner = &winner
	}

	for _, tank := range session.Tanks {
		if tank != nil {
			snapshot.Tanks = append(snapshot.Tanks, tankSnapshot(tank))
		}
	}
	for _, p := range session.Projectiles {
		if p == nil {
			continue
		}
		snapshot.Projectiles = append(snapshot.Projectiles, ProjectileSnapshot{
			X:         p.X,
			Y:         p.Y,
			Angle:     p.Angle,
			Owner:     p.Owner,
			VelocityX: p.VX,
			VelocityY: p.VY,
			Damage:    p.Damage,
			Color:     p.Color,
			Timestamp: UnixSeconds(p.CreatedAt),
			Active:    p.Active,
		})
	}
	for _, r := range session.Rewards {
		if r == nil {
			continue
		}
		snapshot.Rewards = append(snapshot.Rewards, RewardSnapshot{
			Type:      string(r.Kind),
			X:         r.X,
			Y:         r.Y,
			Color:     r.Color,
			Radius:    r.Radius,
			Duration:  r.Duration,
			Stackable: r.Stackable,
			SpawnTime: UnixSeconds(r.SpawnedAt),
		})
	}
	return snapshot
}

func tankSnapshot(tank *state.Tank) TankSnapshot {
	out := TankSnapshot{
		ID:        tank.ID,
		X:         tank.X,
		Y:         tank.Y,
		Angle:     tank.Angle,
		Health:    tank.Health,
		MaxHealth: tank.MaxHealth,
		Color:     tank.Color,
		Barrels:   tank.Barrels,
	}
	if tank.Skill != nil {
		out.AISkill = floatPtr(*tank.Skill)
	}
	if boost := tank.BarrelBoost; boost != nil {
		out.PowerupTime = floatPtr(UnixSeconds(boost.ActivatedAt))
		out.PowerupDuration = floatPtr(boost.Duration)
		out.PowerupType = string(state.RewardBarrel)
		out.PowerupColor = boost.Color
	}
	if boost := tank.DamageBoost; boost != nil {
		out.DamageBoost = floatPtr(boost.Multiplier)
		out.DamageBoostTime = floatPtr(UnixSeconds(boost.ActivatedAt))
		out.DamageBoostDuration = floatPtr(boost.Duration)
		out.DamageBoostColor = boost.Color
	}
	if msg := tank.Message; msg != nil {
		out.PowerupMessage = msg.Text
		out.MessageExpiry = floatPtr(UnixSeconds(msg.ExpiresAt))
	}
	return out
}
