package quests

import (
	"context"

	"github.com/jbuehler23/eryndor-mmo/logging"
)

const (
	// EventAccepted is emitted when a character accepts a quest.
	EventAccepted logging.EventType = "quest.accepted"
	// EventProgress is emitted when a quest objective advances.
	EventProgress logging.EventType = "quest.progress"
	// EventCompleted is emitted when a quest is turned in.
	EventCompleted logging.EventType = "quest.completed"
	// EventRejected is emitted when an accept or turn-in fails validation.
	EventRejected logging.EventType = "quest.rejected"
)

// Payload carries the quest and objective state for an update.
type Payload struct {
	Quest     string `json:"quest"`
	Objective string `json:"objective,omitempty"`
	Current   int    `json:"current,omitempty"`
	Required  int    `json:"required,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func Accepted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventAccepted, tick, actor, payload, logging.SeverityInfo)
}

func Progress(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventProgress, tick, actor, payload, logging.SeverityDebug)
}

func Completed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventCompleted, tick, actor, payload, logging.SeverityInfo)
}

func Rejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload Payload) {
	publish(ctx, pub, EventRejected, tick, actor, payload, logging.SeverityDebug)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, payload Payload, sev logging.Severity) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Severity: sev,
		Category: logging.CategoryQuest,
		Payload:  payload,
	})
}
