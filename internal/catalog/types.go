package catalog

// WeaponKind enumerates the weapon families a character can train.
type WeaponKind string

const (
	WeaponSword  WeaponKind = "sword"
	WeaponDagger WeaponKind = "dagger"
	WeaponStaff  WeaponKind = "staff"
	WeaponWand   WeaponKind = "wand"
	WeaponMace   WeaponKind = "mace"
	WeaponBow    WeaponKind = "bow"
	WeaponAxe    WeaponKind = "axe"
)

// ArmorKind enumerates the armor families a character can train.
type ArmorKind string

const (
	ArmorCloth   ArmorKind = "cloth"
	ArmorLeather ArmorKind = "leather"
	ArmorChain   ArmorKind = "chain"
	ArmorPlate   ArmorKind = "plate"
)

// EquipSlot names a slot on a character's body.
type EquipSlot string

const (
	SlotMainHand EquipSlot = "main_hand"
	SlotHead     EquipSlot = "head"
	SlotChest    EquipSlot = "chest"
	SlotLegs     EquipSlot = "legs"
	SlotFeet     EquipSlot = "feet"
)

// ArmorSlots lists the slots that hold armor pieces.
var ArmorSlots = []EquipSlot{SlotHead, SlotChest, SlotLegs, SlotFeet}

// EffectKind is the closed enumeration of ability effects. The combat
// resolver holds the single exhaustive interpreter over these values.
type EffectKind string

const (
	EffectDirectDamage   EffectKind = "direct_damage"
	EffectDamageOverTime EffectKind = "damage_over_time"
	EffectAreaOfEffect   EffectKind = "area_of_effect"
	EffectBuff           EffectKind = "buff"
	EffectDebuff         EffectKind = "debuff"
	EffectMobility       EffectKind = "mobility"
	EffectHeal           EffectKind = "heal"
)

// DebuffKind enumerates debuff behaviors.
type DebuffKind string

const (
	DebuffSlow   DebuffKind = "slow"
	DebuffWeaken DebuffKind = "weaken"
	DebuffStun   DebuffKind = "stun"
	DebuffRoot   DebuffKind = "root"
)

// UnlockRequirement gates an ability behind level, quest, and proficiency
// thresholds. Zero fields are unconstrained; set fields must all hold.
type UnlockRequirement struct {
	Level             int        `json:"level,omitempty" jsonschema:"description=Minimum character level,minimum=0"`
	QuestID           string     `json:"questId,omitempty" jsonschema:"description=Quest that must be completed"`
	Weapon            WeaponKind `json:"weapon,omitempty" jsonschema:"description=Weapon proficiency track to check"`
	WeaponProficiency int        `json:"weaponProficiency,omitempty" jsonschema:"description=Minimum proficiency level in the named weapon,minimum=0"`
}

// None reports whether the requirement places no constraint at all.
func (r UnlockRequirement) None() bool {
	return r.Level == 0 && r.QuestID == "" && (r.Weapon == "" || r.WeaponProficiency == 0)
}

// AbilityDefinition describes one ability. Fields beyond the shared header
// apply only to the matching effect kind; the loader rejects contradictory
// combinations.
type AbilityDefinition struct {
	ID            string            `json:"id" jsonschema:"pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name          string            `json:"name" jsonschema:"required"`
	Effect        EffectKind        `json:"effect" jsonschema:"required"`
	Weapon        WeaponKind        `json:"weapon,omitempty" jsonschema:"description=Proficiency track credited on use"`
	Multiplier    float64           `json:"multiplier,omitempty" jsonschema:"description=Damage multiplier applied to attack,minimum=0"`
	ManaCost      int               `json:"manaCost,omitempty" jsonschema:"minimum=0"`
	CooldownTicks uint64            `json:"cooldownTicks,omitempty"`
	Range         float64           `json:"range,omitempty" jsonschema:"minimum=0"`
	Radius        float64           `json:"radius,omitempty" jsonschema:"description=Area-of-effect radius,minimum=0"`
	DurationTicks uint64            `json:"durationTicks,omitempty" jsonschema:"description=Effect duration for DoT/buff/debuff"`
	TickDamage    int               `json:"tickDamage,omitempty" jsonschema:"description=Damage applied each tick interval for DoT"`
	IntervalTicks uint64            `json:"intervalTicks,omitempty" jsonschema:"description=Ticks between DoT applications"`
	Heal          int               `json:"heal,omitempty" jsonschema:"description=Flat healing amount"`
	Debuff        DebuffKind        `json:"debuff,omitempty"`
	BuffStat      string            `json:"buffStat,omitempty" jsonschema:"description=Stat modified by buff/debuff (attack/defense/speed)"`
	BuffAmount    float64           `json:"buffAmount,omitempty"`
	Requirement   UnlockRequirement `json:"requirement,omitempty"`
}

// ItemClass partitions items by behavior.
type ItemClass string

const (
	ItemClassWeapon     ItemClass = "weapon"
	ItemClassArmor      ItemClass = "armor"
	ItemClassConsumable ItemClass = "consumable"
	ItemClassQuestItem  ItemClass = "quest_item"
	ItemClassCurrency   ItemClass = "currency"
)

// ItemDefinition describes one item.
type ItemDefinition struct {
	ID           string     `json:"id" jsonschema:"pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name         string     `json:"name" jsonschema:"required"`
	Class        ItemClass  `json:"class" jsonschema:"required"`
	Slot         EquipSlot  `json:"slot,omitempty"`
	Weapon       WeaponKind `json:"weapon,omitempty"`
	Armor        ArmorKind  `json:"armor,omitempty"`
	AttackBonus  int        `json:"attackBonus,omitempty"`
	DefenseBonus int        `json:"defenseBonus,omitempty"`
	Heal         int        `json:"heal,omitempty" jsonschema:"description=Health restored when consumed"`
	GoldCost     int        `json:"goldCost,omitempty" jsonschema:"description=Trainer purchase price,minimum=0"`
	Stackable    bool       `json:"stackable,omitempty"`
}

// LootEntry is one roll in an enemy's loot table.
type LootEntry struct {
	ItemID string  `json:"itemId" jsonschema:"required"`
	Chance float64 `json:"chance" jsonschema:"minimum=0,maximum=1,required"`
	Min    int     `json:"min,omitempty" jsonschema:"minimum=0"`
	Max    int     `json:"max,omitempty" jsonschema:"minimum=0"`
}

// EnemyDefinition describes one enemy archetype.
type EnemyDefinition struct {
	ID               string      `json:"id" jsonschema:"pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name             string      `json:"name" jsonschema:"required"`
	MaxHealth        int         `json:"maxHealth" jsonschema:"minimum=1,required"`
	Attack           int         `json:"attack" jsonschema:"minimum=0,required"`
	Defense          int         `json:"defense" jsonschema:"minimum=0"`
	CritChance       float64     `json:"critChance,omitempty" jsonschema:"minimum=0,maximum=1"`
	ExperienceReward int         `json:"experienceReward,omitempty" jsonschema:"minimum=0"`
	AggroRadius      float64     `json:"aggroRadius,omitempty"`
	LeashRadius      float64     `json:"leashRadius,omitempty"`
	MeleeRange       float64     `json:"meleeRange,omitempty"`
	AttackTicks      uint64      `json:"attackTicks,omitempty" jsonschema:"description=Ticks between basic attacks"`
	EnrageTicks      uint64      `json:"enrageTicks,omitempty" jsonschema:"description=Ticks alive before enraging (0 disables)"`
	EnrageMultiplier float64     `json:"enrageMultiplier,omitempty" jsonschema:"description=Permanent damage multiplier once enraged"`
	Abilities        []string    `json:"abilities,omitempty"`
	Loot             []LootEntry `json:"loot,omitempty"`
	RespawnTicks     uint64      `json:"respawnTicks,omitempty"`
	DespawnTicks     uint64      `json:"despawnTicks,omitempty" jsonschema:"description=Ticks a corpse lingers before removal"`
}

// ObjectiveKind enumerates quest objective shapes.
type ObjectiveKind string

const (
	ObjectiveKillEnemy        ObjectiveKind = "kill_enemy"
	ObjectiveObtainItem       ObjectiveKind = "obtain_item"
	ObjectiveUseAbility       ObjectiveKind = "use_ability"
	ObjectiveReachProficiency ObjectiveKind = "reach_proficiency"
	ObjectiveTalkToNPC        ObjectiveKind = "talk_to_npc"
)

// ObjectiveDefinition is one counter a quest tracks. Target names the enemy,
// item, ability, or NPC id depending on Kind; proficiency objectives use
// Weapon and Level instead.
type ObjectiveDefinition struct {
	Kind   ObjectiveKind `json:"kind" jsonschema:"required"`
	Target string        `json:"target,omitempty"`
	Count  int           `json:"count,omitempty" jsonschema:"minimum=0"`
	Weapon WeaponKind    `json:"weapon,omitempty"`
	Level  int           `json:"level,omitempty" jsonschema:"minimum=0"`
}

// ItemGrant is a quantity of one item awarded by a quest.
type ItemGrant struct {
	ItemID   string `json:"itemId" jsonschema:"required"`
	Quantity int    `json:"quantity" jsonschema:"minimum=1,required"`
}

// QuestDefinition describes one quest.
type QuestDefinition struct {
	ID            string                `json:"id" jsonschema:"pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name          string                `json:"name" jsonschema:"required"`
	Description   string                `json:"description,omitempty"`
	GiverNPC      string                `json:"giverNpc,omitempty" jsonschema:"description=NPC that offers and accepts this quest"`
	Requirement   UnlockRequirement     `json:"requirement,omitempty"`
	Objectives    []ObjectiveDefinition `json:"objectives" jsonschema:"required"`
	RewardXP      int                   `json:"rewardXp,omitempty" jsonschema:"minimum=0"`
	RewardItems   []ItemGrant           `json:"rewardItems,omitempty"`
	RewardAbility string                `json:"rewardAbility,omitempty" jsonschema:"description=Ability unlocked on turn-in (at most one)"`
}

// PassiveDefinition describes an armor passive granted automatically when the
// matching armor proficiency reaches the required level.
type PassiveDefinition struct {
	ID            string    `json:"id" jsonschema:"pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name          string    `json:"name" jsonschema:"required"`
	Armor         ArmorKind `json:"armor" jsonschema:"required"`
	RequiredLevel int       `json:"requiredLevel" jsonschema:"minimum=1,required"`
	Modifier      string    `json:"modifier,omitempty" jsonschema:"description=Stat modified (defense/health/speed)"`
	Amount        float64   `json:"amount,omitempty"`
}

// NPCDefinition describes a world NPC: the quests it brokers and the wares a
// trainer sells.
type NPCDefinition struct {
	ID     string   `json:"id" jsonschema:"pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name   string   `json:"name" jsonschema:"required"`
	Quests []string `json:"quests,omitempty"`
	Wares  []string `json:"wares,omitempty" jsonschema:"description=Item ids purchasable from this NPC"`
}

// WeaponProfile carries the swing characteristics shared by all weapons of a
// kind: time between basic attacks, reach, and the damage multiplier applied
// to the wielder's attack stat.
type WeaponProfile struct {
	SpeedTicks uint64
	Range      float64
	Multiplier float64
}

var weaponProfiles = map[WeaponKind]WeaponProfile{
	WeaponSword:  {SpeedTicks: 15, Range: 30, Multiplier: 1.0},
	WeaponDagger: {SpeedTicks: 10, Range: 25, Multiplier: 0.7},
	WeaponStaff:  {SpeedTicks: 20, Range: 40, Multiplier: 1.1},
	WeaponWand:   {SpeedTicks: 12, Range: 120, Multiplier: 0.8},
	WeaponMace:   {SpeedTicks: 18, Range: 30, Multiplier: 1.2},
	WeaponBow:    {SpeedTicks: 16, Range: 180, Multiplier: 0.9},
	WeaponAxe:    {SpeedTicks: 20, Range: 30, Multiplier: 1.3},
}

// unarmedProfile is used when no weapon is equipped. Trains nothing.
var unarmedProfile = WeaponProfile{SpeedTicks: 10, Range: 25, Multiplier: 0.5}

// ProfileFor returns the swing profile for a weapon kind. An empty or unknown
// kind yields the unarmed profile.
func ProfileFor(kind WeaponKind) WeaponProfile {
	if profile, ok := weaponProfiles[kind]; ok {
		return profile
	}
	return unarmedProfile
}

// ProficiencyKindFor maps a weapon kind to the proficiency track it trains.
// Wands train staff proficiency; everything else trains itself.
func ProficiencyKindFor(kind WeaponKind) WeaponKind {
	if kind == WeaponWand {
		return WeaponStaff
	}
	return kind
}
