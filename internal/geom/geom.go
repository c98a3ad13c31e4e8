// Package geom holds the angle and movement math shared by the player,
// the AI controller, and projectiles. Angles are degrees with 0 facing up
// (negative y) and increasing clockwise.
package geom

import "math"

const (
	// TankMargin keeps a tank's centre this far from every world edge.
	TankMargin = 20.0
	// DefaultSpeed is the distance covered by one movement step.
	DefaultSpeed = 5.0
	// TurnStep is the most an AI tank may turn in one update.
	TurnStep = 5.0
)

// Bounds describes the world rectangle anchored at the origin.
type Bounds struct {
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside the closed rectangle.
func (b Bounds) Contains(x, y float64) bool {
	return x >= 0 && x <= b.Width && y >= 0 && y <= b.Height
}

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NormalizeAngle maps any angle into [0, 360).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// AngleDiff returns the shortest signed rotation from -> to, in [-180, 180).
func AngleDiff(from, to float64) float64 {
	return NormalizeAngle(to-from+180) - 180
}

// Direction returns the unit vector for the heading.
func Direction(angle float64) (float64, float64) {
	rad := angle * math.Pi / 180
	return math.Sin(rad), -math.Cos(rad)
}

// Bearing returns the heading that points from (x1,y1) toward (x2,y2).
func Bearing(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return NormalizeAngle(math.Atan2(dx, -dy) * 180 / math.Pi)
}

// Distance returns the euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
