package powerups

import (
	"context"

	"tank-arena/server/logging"
)

const (
	// EventRewardSpawned is emitted when a reward is placed on the map.
	EventRewardSpawned logging.EventType = "powerups.reward_spawned"
	// EventRewardCollected is emitted when a tank picks up a reward.
	EventRewardCollected logging.EventType = "powerups.reward_collected"
	// EventBoostExpired is emitted when a timed boost runs out.
	EventBoostExpired logging.EventType = "powerups.boost_expired"
)

// RewardPayload identifies a reward.
type RewardPayload struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// CollectedPayload describes the effect of a pickup.
type CollectedPayload struct {
	Kind     string  `json:"kind"`
	Message  string  `json:"message"`
	Duration float64 `json:"duration,omitempty"`
}

// ExpiredPayload names the boost that ran out.
type ExpiredPayload struct {
	Boost string `json:"boost"`
}

func RewardSpawned(ctx context.Context, pub logging.Publisher, tick uint64, payload RewardPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:     EventRewardSpawned,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindReward},
		Severity: logging.SeverityDebug,
		Payload:  payload,
		Extra:    extra,
	})
}

func RewardCollected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CollectedPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:     EventRewardCollected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Payload:  payload,
		Extra:    extra,
	})
}

func BoostExpired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExpiredPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:     EventBoostExpired,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Payload:  payload,
		Extra:    extra,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryPowerups
	pub.Publish(ctx, event)
}
