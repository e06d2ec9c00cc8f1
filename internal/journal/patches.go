package journal

import "github.com/jbuehler23/eryndor-mmo/internal/state"

// PatchKind identifies the type of diff entry.
type PatchKind string

const (
	// PatchCharacterPos updates a character's position.
	PatchCharacterPos PatchKind = "character_pos"
	// PatchCharacterFacing updates a character's facing direction.
	PatchCharacterFacing PatchKind = "character_facing"
	// PatchCharacterHealth updates a character's health pool.
	PatchCharacterHealth PatchKind = "character_health"
	// PatchCharacterMana updates a character's mana pool.
	PatchCharacterMana PatchKind = "character_mana"
	// PatchCharacterXP updates a character's experience counter.
	PatchCharacterXP PatchKind = "character_xp"
	// PatchCharacterLevel updates a character's level and derived stats.
	PatchCharacterLevel PatchKind = "character_level"
	// PatchCharacterProficiency updates one proficiency track.
	PatchCharacterProficiency PatchKind = "character_proficiency"
	// PatchCharacterInventory updates a character's inventory slots.
	PatchCharacterInventory PatchKind = "character_inventory"
	// PatchCharacterEquipment updates a character's equipment loadout.
	PatchCharacterEquipment PatchKind = "character_equipment"
	// PatchCharacterUnlocks updates a character's unlocked sets.
	PatchCharacterUnlocks PatchKind = "character_unlocks"
	// PatchCharacterQuestLog updates one quest's progress.
	PatchCharacterQuestLog PatchKind = "character_quest_log"
	// PatchCharacterRemoved signals a character left the world.
	PatchCharacterRemoved PatchKind = "character_removed"

	// PatchEnemySpawned announces a newly spawned enemy.
	PatchEnemySpawned PatchKind = "enemy_spawned"
	// PatchEnemyPos updates an enemy's position.
	PatchEnemyPos PatchKind = "enemy_pos"
	// PatchEnemyHealth updates an enemy's health pool.
	PatchEnemyHealth PatchKind = "enemy_health"
	// PatchEnemyEnraged marks an enemy permanently enraged.
	PatchEnemyEnraged PatchKind = "enemy_enraged"
	// PatchEnemyRemoved signals an enemy despawned.
	PatchEnemyRemoved PatchKind = "enemy_removed"
)

// Patch represents one diff entry applied to replicated client state.
type Patch struct {
	Kind     PatchKind `json:"kind"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload,omitempty"`
}

// PositionPayload captures the coordinates for a position patch.
type PositionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FacingPayload captures the facing for a facing patch.
type FacingPayload struct {
	Facing state.FacingDirection `json:"facing"`
}

// HealthPayload captures a health pool update.
type HealthPayload struct {
	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`
}

// ManaPayload captures a mana pool update.
type ManaPayload struct {
	Mana    int `json:"mana"`
	MaxMana int `json:"maxMana"`
}

// XPPayload captures an experience counter update.
type XPPayload struct {
	XP        int64 `json:"xp"`
	Threshold int64 `json:"threshold"`
}

// LevelPayload captures a level-up with the stats it produced.
type LevelPayload struct {
	Level     int `json:"level"`
	MaxHealth int `json:"maxHealth"`
	MaxMana   int `json:"maxMana"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
}

// ProficiencyPayload captures one proficiency track update. Track is
// "weapon" or "armor"; Kind names the weapon or armor family.
type ProficiencyPayload struct {
	Track string `json:"track"`
	Kind  string `json:"kind"`
	Level int    `json:"level"`
	XP    int    `json:"xp"`
}

// InventoryPayload captures the full inventory after a change.
type InventoryPayload struct {
	Slots []state.ItemStack `json:"slots"`
}

// EquipmentPayload captures the full equipment loadout after a change.
type EquipmentPayload struct {
	Slots []state.EquippedItem `json:"slots"`
}

// UnlocksPayload captures the unlocked ability and passive sets.
type UnlocksPayload struct {
	Abilities []string `json:"abilities"`
	Passives  []string `json:"passives"`
}

// QuestLogPayload captures one quest's progress after a change.
type QuestLogPayload struct {
	QuestID    string            `json:"questId"`
	Status     state.QuestStatus `json:"status"`
	Objectives []int             `json:"objectives"`
}

// EnemySpawnPayload announces a spawned enemy to clients.
type EnemySpawnPayload struct {
	DefinitionID string  `json:"definitionId"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Health       int     `json:"health"`
	MaxHealth    int     `json:"maxHealth"`
}

// EnragePayload marks the permanent enrage multiplier.
type EnragePayload struct {
	Multiplier float64 `json:"multiplier"`
}
