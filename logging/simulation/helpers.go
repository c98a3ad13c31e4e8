package simulation

import (
	"context"

	"tank-arena/server/logging"
)

const (
	// EventTickClamped is emitted when a tick's elapsed time exceeds the configured cap.
	EventTickClamped logging.EventType = "simulation.tick_clamped"
)

// TickClampedPayload captures the requested and applied step sizes.
type TickClampedPayload struct {
	RequestedSeconds float64 `json:"requestedSeconds"`
	AppliedSeconds   float64 `json:"appliedSeconds"`
}

// TickClamped publishes a warning when a long idle gap was shortened.
func TickClamped(ctx context.Context, pub logging.Publisher, tick uint64, payload TickClampedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickClamped,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSession},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}
