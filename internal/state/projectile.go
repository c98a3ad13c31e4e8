package state

import "time"

const (
	ProjectileColor        = "yellow"
	BoostedProjectileColor = "orange"
)

// Projectile is a single shell in flight.
type Projectile struct {
	X         float64
	Y         float64
	VX        float64
	VY        float64
	Angle     float64
	Damage    float64
	Owner     int
	Color     string
	Active    bool
	CreatedAt time.Time
}
