package progression

import (
	"context"

	"github.com/jbuehler23/eryndor-mmo/logging"
)

const (
	// EventExperience is emitted when a character gains experience.
	EventExperience logging.EventType = "progression.experience"
	// EventLevelUp is emitted once per level gained.
	EventLevelUp logging.EventType = "progression.level_up"
	// EventProficiency is emitted when a weapon or armor proficiency levels.
	EventProficiency logging.EventType = "progression.proficiency"
	// EventAbilityUnlocked is emitted when an ability's requirement is met.
	EventAbilityUnlocked logging.EventType = "progression.ability_unlocked"
)

// ExperiencePayload captures an experience award.
type ExperiencePayload struct {
	Amount int    `json:"amount"`
	Total  int64  `json:"total"`
	Source string `json:"source,omitempty"`
}

// LevelUpPayload captures the stats after a level gain.
type LevelUpPayload struct {
	Level     int `json:"level"`
	MaxHealth int `json:"maxHealth"`
	MaxMana   int `json:"maxMana"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
}

// ProficiencyPayload captures a proficiency level gain.
type ProficiencyPayload struct {
	Kind  string `json:"kind"`
	Level int    `json:"level"`
}

// UnlockPayload names the ability made available.
type UnlockPayload struct {
	Ability string `json:"ability"`
	Reason  string `json:"reason,omitempty"`
}

func Experience(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExperiencePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExperience,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryProgression,
		Payload:  payload,
	})
}

func LevelUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LevelUpPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelUp,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
		Payload:  payload,
	})
}

func Proficiency(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ProficiencyPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProficiency,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
		Payload:  payload,
	})
}

func AbilityUnlocked(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UnlockPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAbilityUnlocked,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
		Payload:  payload,
	})
}
