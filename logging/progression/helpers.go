package progression

import (
	"context"

	"tank-arena/server/logging"
)

const (
	// EventLevelAdvanced is emitted when the player clears a level.
	EventLevelAdvanced logging.EventType = "progression.level_advanced"
	// EventEnemySpawned is emitted when the director adds an enemy tank.
	EventEnemySpawned logging.EventType = "progression.enemy_spawned"
)

// LevelAdvancedPayload describes the new level's targets.
type LevelAdvancedPayload struct {
	From            int `json:"from"`
	To              int `json:"to"`
	EnemiesRequired int `json:"enemiesRequired"`
	MaxEnemies      int `json:"maxEnemies"`
}

// EnemySpawnedPayload describes a freshly spawned enemy.
type EnemySpawnedPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Skill  float64 `json:"skill"`
}

func LevelAdvanced(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LevelAdvancedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelAdvanced,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
		Payload:  payload,
		Extra:    extra,
	})
}

func EnemySpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EnemySpawnedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnemySpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryProgression,
		Payload:  payload,
		Extra:    extra,
	})
}
