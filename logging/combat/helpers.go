package combat

import (
	"context"

	"github.com/jbuehler23/eryndor-mmo/logging"
)

const (
	// EventDamage is emitted when an ability deals damage to a target.
	EventDamage logging.EventType = "combat.damage"
	// EventCrit is emitted alongside damage when the hit rolled a critical.
	EventCrit logging.EventType = "combat.crit"
	// EventDefeat is emitted when an actor's health pool reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
	// EventAbilityRejected is emitted when an ability use fails validation.
	EventAbilityRejected logging.EventType = "combat.ability_rejected"
	// EventEffectApplied is emitted when a timed effect attaches to a target.
	EventEffectApplied logging.EventType = "combat.effect_applied"
	// EventEffectExpired is emitted when a timed effect runs out.
	EventEffectExpired logging.EventType = "combat.effect_expired"
)

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Ability      string `json:"ability,omitempty"`
	Amount       int    `json:"amount"`
	Critical     bool   `json:"critical,omitempty"`
	TargetHealth int    `json:"targetHealth"`
	Effect       string `json:"effect,omitempty"`
}

// DefeatPayload describes the context for a fatal blow.
type DefeatPayload struct {
	Ability string `json:"ability,omitempty"`
	Effect  string `json:"effect,omitempty"`
}

// RejectedPayload explains why an ability use was refused.
type RejectedPayload struct {
	Ability string `json:"ability"`
	Reason  string `json:"reason"`
}

// EffectPayload describes a timed effect attaching to or leaving a target.
type EffectPayload struct {
	Ability   string `json:"ability,omitempty"`
	Effect    string `json:"effect"`
	TicksLeft uint64 `json:"ticksLeft,omitempty"`
}

// Damage publishes a combat damage event for a single target. Critical hits
// publish under their own event type.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	eventType := EventDamage
	if payload.Critical {
		eventType = EventCrit
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// Defeat publishes a combat defeat event for the eliminated actor.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// AbilityRejected publishes a validation failure for an ability use.
func AbilityRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAbilityRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// EffectApplied publishes a timed-effect attachment.
func EffectApplied(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload EffectPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEffectApplied,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// EffectExpired publishes a timed-effect expiry.
func EffectExpired(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload EffectPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEffectExpired,
		Tick:     tick,
		Actor:    target,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}
