package state

import (
	"math"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
)

type FacingDirection string

const (
	FacingUp    FacingDirection = "up"
	FacingDown  FacingDirection = "down"
	FacingLeft  FacingDirection = "left"
	FacingRight FacingDirection = "right"

	DefaultFacing FacingDirection = FacingDown
)

// ParseFacing validates a facing string received from the client.
func ParseFacing(value string) (FacingDirection, bool) {
	switch FacingDirection(value) {
	case FacingUp, FacingDown, FacingLeft, FacingRight:
		return FacingDirection(value), true
	default:
		return "", false
	}
}

// EffectInstance is a timed effect attached to an actor: a damage-over-time
// schedule, a buff, or a debuff. Durations are tick-counted and immune to
// wall-clock jitter.
type EffectInstance struct {
	AbilityID     string             `json:"abilityId"`
	Kind          catalog.EffectKind `json:"kind"`
	SourceID      string             `json:"sourceId,omitempty"`
	TickDamage    int                `json:"tickDamage,omitempty"`
	IntervalTicks uint64             `json:"intervalTicks,omitempty"`
	NextTick      uint64             `json:"nextTick,omitempty"`
	ExpiresTick   uint64             `json:"expiresTick"`
	Stat          string             `json:"stat,omitempty"`
	Amount        float64            `json:"amount,omitempty"`
	Debuff        catalog.DebuffKind `json:"debuff,omitempty"`
}

// Actor captures the shared state for any living entity in the world. Pools
// are integral; combat math runs in floating point and floors before landing
// here so fractional health never leaks into replicated state.
type Actor struct {
	ID         string          `json:"id"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Facing     FacingDirection `json:"facing"`
	Health     int             `json:"health"`
	MaxHealth  int             `json:"maxHealth"`
	Mana       int             `json:"mana"`
	MaxMana    int             `json:"maxMana"`
	Attack     int             `json:"attack"`
	Defense    int             `json:"defense"`
	CritChance float64         `json:"critChance"`

	Effects   []EffectInstance  `json:"effects,omitempty"`
	Cooldowns map[string]uint64 `json:"cooldowns,omitempty"`

	// Version increments on every mutation applied through the world's
	// write barriers; the journal uses it to order patches per entity.
	Version uint64 `json:"-"`
}

// Alive reports whether the actor can still act or be targeted.
func (a *Actor) Alive() bool {
	return a != nil && a.Health > 0
}

// DistanceTo returns the Euclidean distance to another actor.
func (a *Actor) DistanceTo(other *Actor) float64 {
	if a == nil || other == nil {
		return math.Inf(1)
	}
	dx := a.X - other.X
	dy := a.Y - other.Y
	return math.Hypot(dx, dy)
}

// CooldownReady reports whether the ability is off cooldown at the tick.
func (a *Actor) CooldownReady(abilityID string, tick uint64) bool {
	if a == nil || a.Cooldowns == nil {
		return true
	}
	return tick >= a.Cooldowns[abilityID]
}

// QuestStatus tracks the per-character quest state machine. Completed is
// terminal; a completed quest is never re-accepted.
type QuestStatus string

const (
	QuestAccepted  QuestStatus = "accepted"
	QuestCompleted QuestStatus = "completed"
)

// QuestProgress is the per-quest objective counters, index-aligned with the
// quest definition's objective list. Counters never exceed their targets.
type QuestProgress struct {
	Status     QuestStatus `json:"status"`
	Objectives []int       `json:"objectives"`
}

func (p *QuestProgress) Clone() *QuestProgress {
	if p == nil {
		return nil
	}
	cloned := &QuestProgress{Status: p.Status}
	if len(p.Objectives) > 0 {
		cloned.Objectives = make([]int, len(p.Objectives))
		copy(cloned.Objectives, p.Objectives)
	}
	return cloned
}

// Character is a persistent player-controlled entity. Level, proficiency
// levels, and the unlocked sets only ever grow for the lifetime of the
// character.
type Character struct {
	Actor
	Name        string `json:"name"`
	Class       Class  `json:"class"`
	Level       int    `json:"level"`
	XP          int64  `json:"xp"`
	XPThreshold int64  `json:"xpThreshold"`

	WeaponProf WeaponProficiencies `json:"weaponProficiencies"`
	ArmorProf  ArmorProficiencies  `json:"armorProficiencies"`

	UnlockedAbilities map[string]bool           `json:"unlockedAbilities"`
	UnlockedPassives  map[string]bool           `json:"unlockedPassives"`
	QuestLog          map[string]*QuestProgress `json:"questLog"`

	Equipment Equipment `json:"equipment"`
	Inventory Inventory `json:"inventory"`

	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`

	// IntentX/IntentY hold the latest normalized movement vector from the
	// client; the world integrates it each tick.
	IntentX float64 `json:"-"`
	IntentY float64 `json:"-"`

	// TargetID is the enemy the character is currently engaged with; auto
	// attacks swing against it each weapon-speed interval.
	TargetID       string `json:"-"`
	NextAttackTick uint64 `json:"-"`
	InCombatUntil  uint64 `json:"-"`

	// Dirty marks unsaved mutations for the periodic checkpoint.
	Dirty bool `json:"-"`
}

// NewCharacter creates a level-1 character of the given class at the spawn
// point, with class base stats and starting proficiencies applied.
func NewCharacter(id, name string, class Class, spawnX, spawnY float64, threshold int64) *Character {
	def := DefinitionFor(class)
	c := &Character{
		Actor: Actor{
			ID:         id,
			X:          spawnX,
			Y:          spawnY,
			Facing:     DefaultFacing,
			Health:     def.StartHealth,
			MaxHealth:  def.StartHealth,
			Mana:       def.StartMana,
			MaxMana:    def.StartMana,
			Attack:     def.Attack,
			Defense:    def.Defense,
			CritChance: def.CritChance,
			Cooldowns:  make(map[string]uint64),
		},
		Name:              name,
		Class:             class,
		Level:             1,
		XPThreshold:       threshold,
		WeaponProf:        WeaponProficiencies{},
		ArmorProf:         ArmorProficiencies{},
		UnlockedAbilities: make(map[string]bool),
		UnlockedPassives:  make(map[string]bool),
		QuestLog:          make(map[string]*QuestProgress),
		Equipment:         NewEquipment(),
		Inventory:         NewInventory(),
		SpawnX:            spawnX,
		SpawnY:            spawnY,
	}
	for kind, level := range def.StartingProficiencies {
		c.WeaponProf[kind] = Proficiency{Level: level}
	}
	return c
}

// InCombat reports whether the character is inside the combat window at the
// tick. Health regen halts and mana regen halves while true.
func (c *Character) InCombat(tick uint64) bool {
	return c != nil && tick < c.InCombatUntil
}

// Snapshot deep-copies the character for persistence or replication. The
// copy shares nothing with the live record.
func (c *Character) Snapshot() *Character {
	if c == nil {
		return nil
	}
	snap := *c
	snap.WeaponProf = c.WeaponProf.Clone()
	snap.ArmorProf = c.ArmorProf.Clone()
	snap.Equipment = c.Equipment.Clone()
	snap.Inventory = c.Inventory.Clone()
	snap.UnlockedAbilities = cloneSet(c.UnlockedAbilities)
	snap.UnlockedPassives = cloneSet(c.UnlockedPassives)
	snap.QuestLog = make(map[string]*QuestProgress, len(c.QuestLog))
	for id, progress := range c.QuestLog {
		snap.QuestLog[id] = progress.Clone()
	}
	if len(c.Effects) > 0 {
		snap.Effects = append([]EffectInstance(nil), c.Effects...)
	}
	snap.Cooldowns = make(map[string]uint64, len(c.Cooldowns))
	for id, ready := range c.Cooldowns {
		snap.Cooldowns[id] = ready
	}
	return &snap
}

func cloneSet(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
