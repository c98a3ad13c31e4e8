package state

import "time"

// PlayerID is the fixed identifier of the human-controlled tank.
const PlayerID = 1

const (
	PlayerMaxHealth = 100.0
	BaseBarrels     = 1
	MaxBarrels      = 6
)

// Tank is a player or enemy tank. Enemy-only fields are nil for the player.
type Tank struct {
	ID        int
	X         float64
	Y         float64
	Angle     float64
	Health    float64
	MaxHealth float64
	Barrels   int
	Color     string

	// Skill scales enemy reaction, aim tolerance, and evasiveness in [0,1].
	Skill *float64

	BarrelBoost *BarrelBoost
	DamageBoost *DamageBoost
	Message     *Message

	Blackboard *Blackboard
}

// Blackboard stores per-enemy AI timing memory.
type Blackboard struct {
	LastDecision time.Time
	LastShot     time.Time
}

// Message is a transient notification shown above a tank.
type Message struct {
	Text      string
	ExpiresAt time.Time
}

// Timer tracks an activation instant and a duration in seconds.
type Timer struct {
	ActivatedAt time.Time
	Duration    float64
}

// Elapsed reports the seconds since activation.
func (t Timer) Elapsed(now time.Time) float64 {
	return now.Sub(t.ActivatedAt).Seconds()
}

// Remaining reports the seconds left, floored at zero.
func (t Timer) Remaining(now time.Time) float64 {
	remaining := t.Duration - t.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the elapsed time strictly exceeds the duration.
func (t Timer) Expired(now time.Time) bool {
	return t.Elapsed(now) > t.Duration
}

// BarrelBoost is an active extra-barrel power-up.
type BarrelBoost struct {
	Timer
	Color string
}

// DamageBoost is an active damage multiplier power-up.
type DamageBoost struct {
	Timer
	Multiplier float64
	Color      string
}

// IsPlayer reports whether the tank is the human-controlled tank.
func (t *Tank) IsPlayer() bool {
	return t != nil && t.ID == PlayerID
}

// Alive reports whether the tank still has health.
func (t *Tank) Alive() bool {
	return t != nil && t.Health > 0
}

// DamageMultiplier returns the active damage boost multiplier or 1.
func (t *Tank) DamageMultiplier() float64 {
	if t == nil || t.DamageBoost == nil || t.DamageBoost.Multiplier <= 0 {
		return 1.0
	}
	return t.DamageBoost.Multiplier
}

// SkillValue returns the AI skill, defaulting to 0.5 like untuned enemies.
func (t *Tank) SkillValue() float64 {
	if t == nil || t.Skill == nil {
		return 0.5
	}
	return *t.Skill
}

// ApplyDamage subtracts amount from health, flooring at zero. It reports
// whether this call brought the tank from alive to dead.
func (t *Tank) ApplyDamage(amount float64) bool {
	if t == nil || t.Health <= 0 {
		return false
	}
	t.Health -= amount
	if t.Health <= 0 {
		t.Health = 0
		return true
	}
	return false
}

// Heal adds amount capped at limit.
func (t *Tank) Heal(amount, limit float64) {
	if t == nil {
		return
	}
	t.Health += amount
	if t.Health > limit {
		t.Health = limit
	}
}

// SetMessage shows text until now+window.
func (t *Tank) SetMessage(text string, now time.Time, window time.Duration) {
	if t == nil {
		return
	}
	t.Message = &Message{Text: text, ExpiresAt: now.Add(window)}
}

// BarrelCap is the most barrels a tank may carry on the given level.
func BarrelCap(level int) int {
	limit := 3 + level/2
	if limit > MaxBarrels {
		return MaxBarrels
	}
	return limit
}

// NewPlayer builds the player tank at its starting position.
func NewPlayer(x, y float64) *Tank {
	return &Tank{
		ID:        PlayerID,
		X:         x,
		Y:         y,
		Angle:     0,
		Health:    PlayerMaxHealth,
		MaxHealth: PlayerMaxHealth,
		Barrels:   BaseBarrels,
		Color:     "green",
	}
}

// NewEnemy builds an AI tank with the provided skill.
func NewEnemy(id int, x, y, angle, health float64, color string, skill float64) *Tank {
	s := skill
	return &Tank{
		ID:         id,
		X:          x,
		Y:          y,
		Angle:      angle,
		Health:     health,
		MaxHealth:  health,
		Barrels:    BaseBarrels,
		Color:      color,
		Skill:      &s,
		Blackboard: &Blackboard{},
	}
}

// Pose reports the position and heading.
func (t *Tank) Pose() (float64, float64, float64) {
	return t.X, t.Y, t.Angle
}

// SetPose overwrites the position and heading.
func (t *Tank) SetPose(x, y, angle float64) {
	t.X, t.Y, t.Angle = x, y, angle
}
