package state

import "github.com/jbuehler23/eryndor-mmo/internal/catalog"

// Class is fixed at character creation and never mutated.
type Class string

const (
	ClassKnight Class = "knight"
	ClassMage   Class = "mage"
	ClassRogue  Class = "rogue"
)

// ParseClass validates a class string received from the client.
func ParseClass(value string) (Class, bool) {
	switch Class(value) {
	case ClassKnight, ClassMage, ClassRogue:
		return Class(value), true
	default:
		return "", false
	}
}

// ClassDefinition bundles a class's base stats, starting pools, per-level
// growth, regeneration, and starting proficiencies.
type ClassDefinition struct {
	Attack     int
	Defense    int
	CritChance float64

	StartHealth int
	StartMana   int

	// Per-level growth. Health/mana/attack are flat; defense may be
	// fractional and accumulates via the level number (floor(level * g)).
	GrowthHealth  int
	GrowthMana    int
	GrowthAttack  int
	GrowthDefense float64

	// Out-of-combat regeneration per second. In combat health regen stops
	// and mana regen halves.
	HealthRegen float64
	ManaRegen   float64

	StartingProficiencies map[catalog.WeaponKind]int
}

var classDefinitions = map[Class]ClassDefinition{
	ClassKnight: {
		Attack: 10, Defense: 8, CritChance: 0.05,
		StartHealth: 120, StartMana: 80,
		GrowthHealth: 20, GrowthMana: 5, GrowthAttack: 3, GrowthDefense: 2,
		HealthRegen: 5, ManaRegen: 1,
		StartingProficiencies: map[catalog.WeaponKind]int{
			catalog.WeaponSword: 10,
			catalog.WeaponMace:  5,
			catalog.WeaponAxe:   5,
		},
	},
	ClassMage: {
		Attack: 8, Defense: 2, CritChance: 0.10,
		StartHealth: 60, StartMana: 150,
		GrowthHealth: 10, GrowthMana: 20, GrowthAttack: 2, GrowthDefense: 1,
		HealthRegen: 3, ManaRegen: 3,
		StartingProficiencies: map[catalog.WeaponKind]int{
			catalog.WeaponStaff:  10,
			catalog.WeaponDagger: 5,
		},
	},
	ClassRogue: {
		Attack: 12, Defense: 3, CritChance: 0.15,
		StartHealth: 80, StartMana: 100,
		GrowthHealth: 15, GrowthMana: 10, GrowthAttack: 4, GrowthDefense: 1.5,
		HealthRegen: 4, ManaRegen: 2,
		StartingProficiencies: map[catalog.WeaponKind]int{
			catalog.WeaponDagger: 10,
			catalog.WeaponBow:    5,
			catalog.WeaponSword:  5,
		},
	},
}

// DefinitionFor returns the class definition, defaulting to Knight for an
// unknown class so a corrupt record cannot zero out a character.
func DefinitionFor(class Class) ClassDefinition {
	if def, ok := classDefinitions[class]; ok {
		return def
	}
	return classDefinitions[ClassKnight]
}
