package sim

import (
	"errors"
	"fmt"

	"tank-arena/server/internal/geom"
)

// ErrInvalidCommand reports a command whose action or value cannot be applied.
var ErrInvalidCommand = errors.New("sim: invalid command")

// Action enumerates the player-issued commands.
type Action string

const (
	ActionRotate Action = "rotate"
	ActionMove   Action = "move"
	ActionFire   Action = "fire"
)

// Command is a tank intent. Rotate carries the heading delta in degrees for
// ActionRotate and Direction the movement for ActionMove.
type Command struct {
	TankID    int
	Action    Action
	Rotate    float64
	Direction string
}

// Validate checks the action and its value without consulting any state.
func (c Command) Validate() error {
	switch c.Action {
	case ActionRotate, ActionFire:
		return nil
	case ActionMove:
		if !geom.ValidDirection(c.Direction) {
			return fmt.Errorf("move direction %q: %w", c.Direction, ErrInvalidCommand)
		}
		return nil
	default:
		return fmt.Errorf("action %q: %w", c.Action, ErrInvalidCommand)
	}
}
