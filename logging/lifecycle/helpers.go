package lifecycle

import (
	"context"

	"tank-arena/server/logging"
)

const (
	// EventGameStarted is emitted when a new session starts.
	EventGameStarted logging.EventType = "lifecycle.game_started"
	// EventGameStopped is emitted when the session is paused by request.
	EventGameStopped logging.EventType = "lifecycle.game_stopped"
	// EventGameOver is emitted when the player wins the last level or dies.
	EventGameOver logging.EventType = "lifecycle.game_over"
)

// GameStartedPayload captures the initial layout.
type GameStartedPayload struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Rewards int     `json:"rewards"`
}

// GameOverPayload captures the outcome.
type GameOverPayload struct {
	Winner    int  `json:"winner"`
	Completed bool `json:"completed"`
	Level     int  `json:"level"`
}

func GameStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GameStartedPayload, extra map[string]any) {
	publish(ctx, pub, tick, actor, EventGameStarted, payload, extra)
}

func GameStopped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, extra map[string]any) {
	publish(ctx, pub, tick, actor, EventGameStopped, nil, extra)
}

func GameOver(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GameOverPayload, extra map[string]any) {
	publish(ctx, pub, tick, actor, EventGameOver, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, eventType logging.EventType, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
