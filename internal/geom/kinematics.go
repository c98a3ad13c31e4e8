package geom

// Body is the mutable pose of a tank.
type Body interface {
	Pose() (x, y, angle float64)
	SetPose(x, y, angle float64)
}

// Direction values accepted by Move.
const (
	Forward  = "forward"
	Backward = "backward"
	Left     = "left"
	Right    = "right"
)

// ValidDirection reports whether dir names one of the four movements.
func ValidDirection(dir string) bool {
	switch dir {
	case Forward, Backward, Left, Right:
		return true
	default:
		return false
	}
}

// Rotate turns the body by delta degrees.
func Rotate(b Body, delta float64) {
	x, y, angle := b.Pose()
	b.SetPose(x, y, NormalizeAngle(angle+delta))
}

// RotateToward turns the body at most TurnStep degrees along the shortest
// arc, snapping to target once within the step.
func RotateToward(b Body, target float64) {
	x, y, angle := b.Pose()
	diff := AngleDiff(angle, target)
	switch {
	case diff > TurnStep:
		angle += TurnStep
	case diff < -TurnStep:
		angle -= TurnStep
	default:
		angle = target
	}
	b.SetPose(x, y, NormalizeAngle(angle))
}

// Move displaces the body one step in dir relative to its heading and clamps
// it inside bounds. Unknown directions leave the body untouched and report false.
func Move(b Body, dir string, speed float64, bounds Bounds) bool {
	x, y, angle := b.Pose()
	heading := angle
	sign := 1.0
	switch dir {
	case Forward:
	case Backward:
		sign = -1
	case Left:
		heading = angle - 90
	case Right:
		heading = angle + 90
	default:
		return false
	}
	dx, dy := Direction(heading)
	x += sign * dx * speed
	y += sign * dy * speed
	b.SetPose(clampX(x, bounds), clampY(y, bounds), angle)
	return true
}

func clampX(x float64, bounds Bounds) float64 {
	return Clamp(x, TankMargin, bounds.Width-TankMargin)
}

func clampY(y float64, bounds Bounds) float64 {
	return Clamp(y, TankMargin, bounds.Height-TankMargin)
}
