package state

import (
	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/threat"
)

// Enemy is a transient AI-controlled entity. Not persisted across restarts;
// created on spawn and destroyed on death or despawn timeout.
type Enemy struct {
	Actor
	DefinitionID     string
	ExperienceReward int

	// Home anchors leash distance checks; the enemy disengages and resets
	// once it strays past the definition's leash radius from Home.
	HomeX float64
	HomeY float64

	SpawnTick uint64

	// Enrage is a hard wipe mechanic: once the enemy has lived past its
	// enrage timer it gains a permanent damage multiplier, never reversed.
	Enraged          bool
	EnrageMultiplier float64

	Threat *threat.Table

	// LastTargetID keeps the enemy pointed at its previous target when the
	// threat table momentarily has no in-range entry, preventing flicker
	// when every attacker steps just outside leash range.
	LastTargetID   string
	NextAttackTick uint64

	// DeadSinceTick is set when the enemy dies; the corpse despawns after
	// the definition's despawn window and the spawner schedules a respawn.
	DeadSinceTick uint64
}

// NewEnemy instantiates one enemy from its catalog definition at a spawn
// point, with a fresh threat table under the given policy.
func NewEnemy(id string, def catalog.EnemyDefinition, x, y float64, spawnTick uint64, policy threat.Policy) *Enemy {
	return &Enemy{
		Actor: Actor{
			ID:         id,
			X:          x,
			Y:          y,
			Facing:     DefaultFacing,
			Health:     def.MaxHealth,
			MaxHealth:  def.MaxHealth,
			Attack:     def.Attack,
			Defense:    def.Defense,
			CritChance: def.CritChance,
			Cooldowns:  make(map[string]uint64),
		},
		DefinitionID:     def.ID,
		ExperienceReward: def.ExperienceReward,
		HomeX:            x,
		HomeY:            y,
		SpawnTick:        spawnTick,
		EnrageMultiplier: def.EnrageMultiplier,
		Threat:           threat.NewTable(policy),
	}
}

// DamageMultiplier returns the enemy's outgoing damage scale, reflecting a
// permanent enrage when triggered.
func (e *Enemy) DamageMultiplier() float64 {
	if e != nil && e.Enraged && e.EnrageMultiplier > 0 {
		return e.EnrageMultiplier
	}
	return 1
}
