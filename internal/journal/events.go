package journal

import "github.com/jbuehler23/eryndor-mmo/internal/state"

// EventKind identifies a structured outcome emitted by tick processing.
// Events describe what happened; patches describe what state changed.
type EventKind string

const (
	EventCombat           EventKind = "combat"
	EventDeath            EventKind = "death"
	EventLevelUp          EventKind = "level_up"
	EventProficiencyLevel EventKind = "proficiency_level_up"
	EventPassiveUnlocked  EventKind = "passive_unlocked"
	EventAbilityUnlocked  EventKind = "ability_unlocked"
	EventQuestUpdate      EventKind = "quest_update"
	EventEnrage           EventKind = "enrage"
	EventRespawn          EventKind = "respawn"
	EventLoot             EventKind = "loot"
)

// Event is one outcome record, ordered within its tick.
type Event struct {
	Kind    EventKind `json:"kind"`
	Tick    uint64    `json:"tick"`
	Payload any       `json:"payload"`
}

// CombatEvent reports damage or healing applied to a target.
type CombatEvent struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	AbilityID  string `json:"abilityId,omitempty"`
	Amount     int    `json:"amount"`
	Effect     string `json:"effect"`
	Critical   bool   `json:"critical,omitempty"`
	Fatal      bool   `json:"fatal,omitempty"`
}

// DeathEvent reports an entity reaching zero health.
type DeathEvent struct {
	EntityID string `json:"entityId"`
	KillerID string `json:"killerId,omitempty"`
}

// LevelUpEvent reports one gained level; a cascading grant emits one event
// per level crossed.
type LevelUpEvent struct {
	CharacterID string `json:"characterId"`
	Level       int    `json:"level"`
}

// ProficiencyLevelUpEvent reports a weapon or armor proficiency level gain.
type ProficiencyLevelUpEvent struct {
	CharacterID string `json:"characterId"`
	Track       string `json:"track"`
	Kind        string `json:"kind"`
	Level       int    `json:"level"`
}

// PassiveUnlockedEvent reports an armor passive joining the unlocked set.
type PassiveUnlockedEvent struct {
	CharacterID string `json:"characterId"`
	PassiveID   string `json:"passiveId"`
}

// AbilityUnlockedEvent reports an ability joining the unlocked set.
type AbilityUnlockedEvent struct {
	CharacterID string `json:"characterId"`
	AbilityID   string `json:"abilityId"`
}

// QuestUpdateEvent reports a quest accept, objective change, or turn-in.
type QuestUpdateEvent struct {
	CharacterID string            `json:"characterId"`
	QuestID     string            `json:"questId"`
	Status      state.QuestStatus `json:"status"`
	Objectives  []int             `json:"objectives"`
}

// EnrageEvent reports an enemy's permanent enrage trigger.
type EnrageEvent struct {
	EnemyID    string  `json:"enemyId"`
	Multiplier float64 `json:"multiplier"`
}

// RespawnEvent reports an entity returning to the world.
type RespawnEvent struct {
	EntityID string  `json:"entityId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// LootEvent reports items dropped by a defeated enemy.
type LootEvent struct {
	EnemyID  string            `json:"enemyId"`
	LooterID string            `json:"looterId,omitempty"`
	Items    []state.ItemStack `json:"items"`
}
