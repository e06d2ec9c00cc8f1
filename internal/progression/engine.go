package progression

import (
	"context"
	"math"
	"sort"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/logging"
	logprogression "github.com/jbuehler23/eryndor-mmo/logging/progression"
)

// Engine converts combat and quest outcomes into experience, proficiency
// gain, level-ups, and passive unlocks. All grants cascade: crossing two
// thresholds in one call yields two level-up events.
type Engine struct {
	catalog *catalog.Catalog
	journal *journal.Journal
	pub     logging.Publisher
	profCap int

	onWeaponLevel func(ctx context.Context, c *state.Character, kind catalog.WeaponKind, level int, tick uint64)
}

func NewEngine(cat *catalog.Catalog, jrnl *journal.Journal, pub logging.Publisher, proficiencyCap int) *Engine {
	if proficiencyCap <= 0 {
		proficiencyCap = DefaultProficiencyCap
	}
	if pub == nil {
		pub = logging.NopPublisher{}
	}
	return &Engine{catalog: cat, journal: jrnl, pub: pub, profCap: proficiencyCap}
}

// OnWeaponLevel registers a callback invoked with the new track level each
// time GrantWeaponProficiency crosses a threshold. The quest gate hangs off
// this to advance reach-proficiency objectives.
func (e *Engine) OnWeaponLevel(fn func(ctx context.Context, c *state.Character, kind catalog.WeaponKind, level int, tick uint64)) {
	e.onWeaponLevel = fn
}

// GrantExperience adds amount to the character's XP and resolves every level
// threshold crossed, applying class stat growth and a full heal per level.
// Emits one LevelUpEvent per level gained. Returns the levels gained.
func (e *Engine) GrantExperience(ctx context.Context, c *state.Character, amount int, tick uint64) int {
	if c == nil || amount <= 0 {
		return 0
	}
	c.XP += int64(amount)
	c.Dirty = true

	logprogression.Experience(ctx, e.pub, tick, characterRef(c), logprogression.ExperiencePayload{
		Amount: amount,
		Total:  c.XP,
	})

	gained := 0
	def := state.DefinitionFor(c.Class)
	for c.XP >= c.XPThreshold {
		c.XP -= c.XPThreshold
		c.Level++
		gained++
		c.XPThreshold = LevelThreshold(c.Level)

		c.MaxHealth += def.GrowthHealth
		c.MaxMana += def.GrowthMana
		c.Attack += def.GrowthAttack
		c.Defense = def.Defense + int(math.Floor(float64(c.Level-1)*def.GrowthDefense))

		// Leveling fully restores both pools.
		c.Health = c.MaxHealth
		c.Mana = c.MaxMana

		e.journal.AppendEvent(journal.Event{Kind: journal.EventLevelUp, Tick: tick, Payload: journal.LevelUpEvent{
			CharacterID: c.ID,
			Level:       c.Level,
		}})
		e.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterLevel, EntityID: c.ID, Payload: journal.LevelPayload{
			Level:     c.Level,
			MaxHealth: c.MaxHealth,
			MaxMana:   c.MaxMana,
			Attack:    c.Attack,
			Defense:   c.Defense,
		}})
		logprogression.LevelUp(ctx, e.pub, tick, characterRef(c), logprogression.LevelUpPayload{
			Level:     c.Level,
			MaxHealth: c.MaxHealth,
			MaxMana:   c.MaxMana,
			Attack:    c.Attack,
			Defense:   c.Defense,
		})
	}

	e.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterXP, EntityID: c.ID, Payload: journal.XPPayload{
		XP:        c.XP,
		Threshold: c.XPThreshold,
	}})
	return gained
}

// GrantWeaponProficiency accrues XP on one weapon track, cascading level-ups
// against the flat per-level threshold up to the configured cap. Each level
// gained emits an event and re-checks quest-independent unlocks.
func (e *Engine) GrantWeaponProficiency(ctx context.Context, c *state.Character, kind catalog.WeaponKind, amount int, tick uint64) int {
	if c == nil || kind == "" || amount <= 0 {
		return 0
	}
	track := c.WeaponProf[kind]
	gained := e.accrue(&track, amount)
	c.WeaponProf[kind] = track
	c.Dirty = true

	e.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterProficiency, EntityID: c.ID, Payload: journal.ProficiencyPayload{
		Track: "weapon",
		Kind:  string(kind),
		Level: track.Level,
		XP:    track.XP,
	}})
	for i := 0; i < gained; i++ {
		level := track.Level - gained + i + 1
		e.journal.AppendEvent(journal.Event{Kind: journal.EventProficiencyLevel, Tick: tick, Payload: journal.ProficiencyLevelUpEvent{
			CharacterID: c.ID,
			Track:       "weapon",
			Kind:        string(kind),
			Level:       level,
		}})
		logprogression.Proficiency(ctx, e.pub, tick, characterRef(c), logprogression.ProficiencyPayload{
			Kind:  string(kind),
			Level: level,
		})
	}
	if gained > 0 && e.onWeaponLevel != nil {
		e.onWeaponLevel(ctx, c, kind, track.Level, tick)
	}
	return gained
}

// GrantArmorProficiency accrues XP on one armor track and unlocks any armor
// passives whose required level is now met. Passives are never quest-gated.
func (e *Engine) GrantArmorProficiency(ctx context.Context, c *state.Character, kind catalog.ArmorKind, amount int, tick uint64) int {
	if c == nil || kind == "" || amount <= 0 {
		return 0
	}
	track := c.ArmorProf[kind]
	gained := e.accrue(&track, amount)
	c.ArmorProf[kind] = track
	c.Dirty = true

	e.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterProficiency, EntityID: c.ID, Payload: journal.ProficiencyPayload{
		Track: "armor",
		Kind:  string(kind),
		Level: track.Level,
		XP:    track.XP,
	}})
	for i := 0; i < gained; i++ {
		level := track.Level - gained + i + 1
		e.journal.AppendEvent(journal.Event{Kind: journal.EventProficiencyLevel, Tick: tick, Payload: journal.ProficiencyLevelUpEvent{
			CharacterID: c.ID,
			Track:       "armor",
			Kind:        string(kind),
			Level:       level,
		}})
		logprogression.Proficiency(ctx, e.pub, tick, characterRef(c), logprogression.ProficiencyPayload{
			Kind:  string(kind),
			Level: level,
		})
	}
	if gained > 0 {
		e.unlockArmorPassives(ctx, c, kind, track.Level, tick)
	}
	return gained
}

// ArmorXPFromDamage converts damage taken into armor XP: 1 XP per 10 damage,
// granted in full to each equipped armor piece's track independently.
func (e *Engine) ArmorXPFromDamage(ctx context.Context, c *state.Character, damage int, tick uint64) {
	if c == nil || damage < ArmorXPDamageDivisor {
		return
	}
	xp := damage / ArmorXPDamageDivisor

	granted := make(map[catalog.ArmorKind]bool)
	for _, piece := range c.Equipment.ArmorPieces() {
		item, err := e.catalog.Item(piece.ItemID)
		if err != nil || item.Armor == "" {
			continue
		}
		// Two pieces of the same kind still train the track once per
		// hit; the full amount goes to each distinct kind.
		if granted[item.Armor] {
			continue
		}
		granted[item.Armor] = true
		e.GrantArmorProficiency(ctx, c, item.Armor, xp, tick)
	}
}

// UnlockAbility adds an ability to the character's unlocked set. One-way:
// re-unlocking an already-known ability is a no-op.
func (e *Engine) UnlockAbility(ctx context.Context, c *state.Character, abilityID string, tick uint64, reason string) bool {
	if c == nil || abilityID == "" || c.UnlockedAbilities[abilityID] {
		return false
	}
	c.UnlockedAbilities[abilityID] = true
	c.Dirty = true
	e.journal.AppendEvent(journal.Event{Kind: journal.EventAbilityUnlocked, Tick: tick, Payload: journal.AbilityUnlockedEvent{
		CharacterID: c.ID,
		AbilityID:   abilityID,
	}})
	e.appendUnlocksPatch(c)
	logprogression.AbilityUnlocked(ctx, e.pub, tick, characterRef(c), logprogression.UnlockPayload{
		Ability: abilityID,
		Reason:  reason,
	})
	return true
}

func (e *Engine) unlockArmorPassives(ctx context.Context, c *state.Character, kind catalog.ArmorKind, level int, tick uint64) {
	for _, passive := range e.catalog.PassivesForArmor(kind, level) {
		if c.UnlockedPassives[passive.ID] {
			continue
		}
		c.UnlockedPassives[passive.ID] = true
		e.journal.AppendEvent(journal.Event{Kind: journal.EventPassiveUnlocked, Tick: tick, Payload: journal.PassiveUnlockedEvent{
			CharacterID: c.ID,
			PassiveID:   passive.ID,
		}})
		e.appendUnlocksPatch(c)
	}
}

func (e *Engine) appendUnlocksPatch(c *state.Character) {
	e.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterUnlocks, EntityID: c.ID, Payload: journal.UnlocksPayload{
		Abilities: sortedKeys(c.UnlockedAbilities),
		Passives:  sortedKeys(c.UnlockedPassives),
	}})
}

// accrue applies the flat-threshold cascade to one track: XP stays strictly
// below the threshold, overflow converts to levels, and the cap discards
// further XP.
func (e *Engine) accrue(track *state.Proficiency, amount int) int {
	if track.Level >= e.profCap {
		return 0
	}
	track.XP += amount
	gained := 0
	for track.XP >= ProficiencyXPPerLevel && track.Level < e.profCap {
		track.XP -= ProficiencyXPPerLevel
		track.Level++
		gained++
	}
	if track.Level >= e.profCap {
		track.XP = 0
	}
	return gained
}

func characterRef(c *state.Character) logging.EntityRef {
	return logging.EntityRef{ID: c.ID, Kind: logging.EntityKindCharacter}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
