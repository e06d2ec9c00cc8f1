package lifecycle

import (
	"context"

	"github.com/jbuehler23/eryndor-mmo/logging"
)

const (
	// EventJoined is emitted when a character enters the world.
	EventJoined logging.EventType = "lifecycle.joined"
	// EventLeft is emitted when a character leaves or times out.
	EventLeft logging.EventType = "lifecycle.left"
	// EventRespawned is emitted when a defeated character respawns.
	EventRespawned logging.EventType = "lifecycle.respawned"
	// EventEnemySpawned is emitted when a spawner produces an enemy.
	EventEnemySpawned logging.EventType = "lifecycle.enemy_spawned"
	// EventCheckpoint is emitted when a persistence checkpoint lands.
	EventCheckpoint logging.EventType = "lifecycle.checkpoint"
)

// Payload carries identifying context for a lifecycle transition.
type Payload struct {
	Class     string `json:"class,omitempty"`
	Archetype string `json:"archetype,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Tick      uint64 `json:"tick,omitempty"`
}

func Joined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventJoined, tick, actor, payload)
}

func Left(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventLeft, tick, actor, payload)
}

func Respawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventRespawned, tick, actor, payload)
}

func EnemySpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventEnemySpawned, tick, actor, payload)
}

func Checkpoint(ctx context.Context, pub logging.Publisher, tick uint64, payload Payload) {
	publish(ctx, pub, EventCheckpoint, tick, logging.EntityRef{Kind: logging.EntityKindWorld}, payload)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, payload Payload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
