package ai

// Mode is the behaviour an enemy runs for one update.
type Mode uint8

const (
	ModePatrol Mode = iota
	ModePursue
	ModeAttack
)

func (m Mode) String() string {
	switch m {
	case ModePatrol:
		return "patrol"
	case ModePursue:
		return "pursue"
	case ModeAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// Classify maps the distance to the player onto a mode using the default
// tuning.
func Classify(distance float64) Mode {
	return DefaultTuning.Classify(distance)
}

// Classify maps the distance to the player onto a mode. The result depends
// on distance alone, so a tank sitting on a boundary may alternate modes
// between updates.
func (t *Tuning) Classify(distance float64) Mode {
	switch {
	case distance > t.PatrolDistance:
		return ModePatrol
	case distance > t.AttackDistance:
		return ModePursue
	default:
		return ModeAttack
	}
}
