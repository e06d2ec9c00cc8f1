package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// ErrNotFound is returned when a lookup references an id absent from the
// active snapshot. Lookups fail closed: a missing entry rejects the
// triggering intent, it never crashes the tick.
var ErrNotFound = errors.New("catalog: entry not found")

// Pack is the authored content document: all definition kinds in one file.
// Multiple packs merge in order, later packs overriding earlier entries with
// the same id.
type Pack struct {
	Abilities []AbilityDefinition `json:"abilities,omitempty"`
	Items     []ItemDefinition    `json:"items,omitempty"`
	Enemies   []EnemyDefinition   `json:"enemies,omitempty"`
	Quests    []QuestDefinition   `json:"quests,omitempty"`
	Passives  []PassiveDefinition `json:"passives,omitempty"`
	NPCs      []NPCDefinition     `json:"npcs,omitempty"`
}

// snapshot is one immutable generation of the catalog. Lookups read whichever
// generation was current when they started; Swap installs a new one between
// ticks without interrupting readers.
type snapshot struct {
	abilities map[string]AbilityDefinition
	items     map[string]ItemDefinition
	enemies   map[string]EnemyDefinition
	quests    map[string]QuestDefinition
	passives  map[string]PassiveDefinition
	npcs      map[string]NPCDefinition
}

// Catalog is the read-only content lookup injected into every component.
type Catalog struct {
	current atomic.Pointer[snapshot]
}

// New builds a Catalog from the given packs merged in order.
func New(packs ...Pack) (*Catalog, error) {
	snap, err := build(packs)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	c.current.Store(snap)
	return c, nil
}

// Swap validates the packs and atomically installs them as the new active
// generation. In-flight lookups keep reading the previous generation.
func (c *Catalog) Swap(packs ...Pack) error {
	snap, err := build(packs)
	if err != nil {
		return err
	}
	c.current.Store(snap)
	return nil
}

func build(packs []Pack) (*snapshot, error) {
	snap := &snapshot{
		abilities: make(map[string]AbilityDefinition),
		items:     make(map[string]ItemDefinition),
		enemies:   make(map[string]EnemyDefinition),
		quests:    make(map[string]QuestDefinition),
		passives:  make(map[string]PassiveDefinition),
		npcs:      make(map[string]NPCDefinition),
	}
	for _, pack := range packs {
		for _, def := range pack.Abilities {
			if err := validateAbility(def); err != nil {
				return nil, err
			}
			snap.abilities[def.ID] = def
		}
		for _, def := range pack.Items {
			if err := requireID("item", def.ID, def.Name); err != nil {
				return nil, err
			}
			snap.items[def.ID] = def
		}
		for _, def := range pack.Enemies {
			if err := requireID("enemy", def.ID, def.Name); err != nil {
				return nil, err
			}
			if def.MaxHealth <= 0 {
				return nil, fmt.Errorf("catalog: enemy %q has no health", def.ID)
			}
			snap.enemies[def.ID] = def
		}
		for _, def := range pack.Quests {
			if err := requireID("quest", def.ID, def.Name); err != nil {
				return nil, err
			}
			if len(def.Objectives) == 0 {
				return nil, fmt.Errorf("catalog: quest %q has no objectives", def.ID)
			}
			snap.quests[def.ID] = def
		}
		for _, def := range pack.Passives {
			if err := requireID("passive", def.ID, def.Name); err != nil {
				return nil, err
			}
			if def.RequiredLevel <= 0 {
				return nil, fmt.Errorf("catalog: passive %q needs requiredLevel >= 1", def.ID)
			}
			snap.passives[def.ID] = def
		}
		for _, def := range pack.NPCs {
			if err := requireID("npc", def.ID, def.Name); err != nil {
				return nil, err
			}
			snap.npcs[def.ID] = def
		}
	}
	return snap, nil
}

func requireID(kind, id, name string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("catalog: %s %q missing id", kind, name)
	}
	return nil
}

func validateAbility(def AbilityDefinition) error {
	if err := requireID("ability", def.ID, def.Name); err != nil {
		return err
	}
	switch def.Effect {
	case EffectDirectDamage, EffectAreaOfEffect:
		if def.Multiplier <= 0 {
			return fmt.Errorf("catalog: ability %q needs a positive multiplier", def.ID)
		}
	case EffectDamageOverTime:
		if def.TickDamage <= 0 || def.DurationTicks == 0 {
			return fmt.Errorf("catalog: ability %q needs tickDamage and durationTicks", def.ID)
		}
	case EffectHeal:
		if def.Heal <= 0 {
			return fmt.Errorf("catalog: ability %q needs a positive heal", def.ID)
		}
	case EffectBuff:
		if def.BuffStat == "" || def.DurationTicks == 0 {
			return fmt.Errorf("catalog: ability %q needs buffStat and durationTicks", def.ID)
		}
	case EffectDebuff:
		if def.Debuff == "" || def.DurationTicks == 0 {
			return fmt.Errorf("catalog: ability %q needs debuff and durationTicks", def.ID)
		}
	case EffectMobility:
		// No extra fields required.
	default:
		return fmt.Errorf("catalog: ability %q has unknown effect %q", def.ID, def.Effect)
	}
	return nil
}

func (c *Catalog) snap() *snapshot {
	return c.current.Load()
}

// Ability returns the definition for id, or ErrNotFound.
func (c *Catalog) Ability(id string) (AbilityDefinition, error) {
	if def, ok := c.snap().abilities[id]; ok {
		return def, nil
	}
	return AbilityDefinition{}, fmt.Errorf("ability %q: %w", id, ErrNotFound)
}

// Item returns the definition for id, or ErrNotFound.
func (c *Catalog) Item(id string) (ItemDefinition, error) {
	if def, ok := c.snap().items[id]; ok {
		return def, nil
	}
	return ItemDefinition{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
}

// Enemy returns the definition for id, or ErrNotFound.
func (c *Catalog) Enemy(id string) (EnemyDefinition, error) {
	if def, ok := c.snap().enemies[id]; ok {
		return def, nil
	}
	return EnemyDefinition{}, fmt.Errorf("enemy %q: %w", id, ErrNotFound)
}

// Quest returns the definition for id, or ErrNotFound.
func (c *Catalog) Quest(id string) (QuestDefinition, error) {
	if def, ok := c.snap().quests[id]; ok {
		return def, nil
	}
	return QuestDefinition{}, fmt.Errorf("quest %q: %w", id, ErrNotFound)
}

// Passive returns the definition for id, or ErrNotFound.
func (c *Catalog) Passive(id string) (PassiveDefinition, error) {
	if def, ok := c.snap().passives[id]; ok {
		return def, nil
	}
	return PassiveDefinition{}, fmt.Errorf("passive %q: %w", id, ErrNotFound)
}

// NPC returns the definition for id, or ErrNotFound.
func (c *Catalog) NPC(id string) (NPCDefinition, error) {
	if def, ok := c.snap().npcs[id]; ok {
		return def, nil
	}
	return NPCDefinition{}, fmt.Errorf("npc %q: %w", id, ErrNotFound)
}

// PassivesForArmor returns every passive keyed to the given armor kind whose
// required proficiency level is at most level. Order is unspecified.
func (c *Catalog) PassivesForArmor(kind ArmorKind, level int) []PassiveDefinition {
	var out []PassiveDefinition
	for _, def := range c.snap().passives {
		if def.Armor == kind && def.RequiredLevel <= level {
			out = append(out, def)
		}
	}
	return out
}

// Enemies returns every enemy definition in the active generation.
func (c *Catalog) Enemies() []EnemyDefinition {
	snap := c.snap()
	out := make([]EnemyDefinition, 0, len(snap.enemies))
	for _, def := range snap.enemies {
		out = append(out, def)
	}
	return out
}
