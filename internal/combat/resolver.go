package combat

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/progression"
	"github.com/jbuehler23/eryndor-mmo/internal/quest"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/logging"
	logcombat "github.com/jbuehler23/eryndor-mmo/logging/combat"
)

const (
	// CombatWindowTicks is how long an entity stays "in combat" after dealing
	// or taking damage. Health regen halts and mana regen halves inside the
	// window.
	CombatWindowTicks uint64 = 100

	// CritMultiplier scales damage on a critical hit.
	CritMultiplier = 1.5
)

// Hit is one damage or heal application to a single target.
type Hit struct {
	TargetID string
	Amount   int
	Critical bool
	Fatal    bool
}

// Outcome summarizes a successful ability use. Fatal hits carry the kill
// credit the tick loop converts into experience, quest progress, and loot.
type Outcome struct {
	AbilityID string
	Effect    catalog.EffectKind
	Hits      []Hit
	Healed    int
}

// Resolver validates and applies ability uses and basic attacks. Validation
// is all-or-nothing: a use that fails any check spends no mana, starts no
// cooldown, and touches no state. It runs only on the tick goroutine.
type Resolver struct {
	catalog *catalog.Catalog
	store   *state.Store
	journal *journal.Journal
	prog    *progression.Engine
	pub     logging.Publisher

	// roll produces the crit roll in [0,1). Swapped in tests for
	// deterministic outcomes.
	roll func() float64
}

func NewResolver(cat *catalog.Catalog, store *state.Store, jrnl *journal.Journal, prog *progression.Engine, pub logging.Publisher) *Resolver {
	if pub == nil {
		pub = logging.NopPublisher{}
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Resolver{catalog: cat, store: store, journal: jrnl, prog: prog, pub: pub, roll: rng.Float64}
}

// UseAbility resolves one ability use by the character against the target.
// Damage, debuff, and damage-over-time abilities need a live enemy target in
// range; heals, buffs, and mobility target the caster; area abilities sweep
// every live enemy inside the radius around the caster.
func (r *Resolver) UseAbility(ctx context.Context, c *state.Character, abilityID, targetID string, tick uint64) (Outcome, *Failure) {
	ability, err := r.catalog.Ability(abilityID)
	if err != nil {
		return r.reject(ctx, c, abilityID, tick, notKnown(abilityID))
	}
	if !r.known(c, ability) {
		return r.reject(ctx, c, abilityID, tick, notKnown(abilityID))
	}
	if !c.CooldownReady(abilityID, tick) {
		return r.reject(ctx, c, abilityID, tick, onCooldown(c.Cooldowns[abilityID], tick))
	}
	if c.Mana < ability.ManaCost {
		return r.reject(ctx, c, abilityID, tick, insufficientMana(ability.ManaCost, c.Mana))
	}

	var target *state.Enemy
	switch ability.Effect {
	case catalog.EffectDirectDamage, catalog.EffectDamageOverTime, catalog.EffectDebuff:
		enemy, err := r.store.Enemy(targetID)
		if err != nil || !enemy.Alive() {
			return r.reject(ctx, c, abilityID, tick, targetInvalid("target is missing or dead"))
		}
		limit := r.abilityRange(c, ability)
		if dist := c.DistanceTo(&enemy.Actor); dist > limit {
			return r.reject(ctx, c, abilityID, tick, outOfRange(dist, limit))
		}
		target = enemy
	case catalog.EffectAreaOfEffect, catalog.EffectHeal, catalog.EffectBuff, catalog.EffectMobility:
		// Self-targeted or caster-centered; no target validation.
	}

	// Every check passed: commit resources, then apply the effect.
	r.spendMana(c, ability.ManaCost)
	if ability.CooldownTicks > 0 {
		c.Cooldowns[abilityID] = tick + ability.CooldownTicks
	}

	outcome := Outcome{AbilityID: abilityID, Effect: ability.Effect}
	switch ability.Effect {
	case catalog.EffectDirectDamage:
		outcome.Hits = append(outcome.Hits, r.strikeEnemy(ctx, c, target, ability, tick))
	case catalog.EffectAreaOfEffect:
		outcome.Hits = r.sweepEnemies(ctx, c, ability, tick)
	case catalog.EffectDamageOverTime:
		r.attachDoT(ctx, c, target, ability, tick)
	case catalog.EffectDebuff:
		r.attachDebuff(ctx, c, target, ability, tick)
	case catalog.EffectBuff:
		r.attachBuff(ctx, c, ability, tick)
	case catalog.EffectHeal:
		outcome.Healed = r.healCharacter(ctx, c, ability, tick)
	case catalog.EffectMobility:
		r.dash(c, ability)
	}
	return outcome, nil
}

// BasicAttack swings the equipped weapon (or fists) at the target. The swing
// interval comes from the weapon profile; a swing before NextAttackTick is
// rejected without side effects.
func (r *Resolver) BasicAttack(ctx context.Context, c *state.Character, targetID string, tick uint64) (Outcome, *Failure) {
	if tick < c.NextAttackTick {
		return Outcome{}, onCooldown(c.NextAttackTick, tick)
	}
	enemy, err := r.store.Enemy(targetID)
	if err != nil || !enemy.Alive() {
		return Outcome{}, targetInvalid("target is missing or dead")
	}

	weapon, _ := r.equippedWeapon(c)
	profile := catalog.ProfileFor(weapon)
	if dist := c.DistanceTo(&enemy.Actor); dist > profile.Range {
		return Outcome{}, outOfRange(dist, profile.Range)
	}

	c.NextAttackTick = tick + profile.SpeedTicks
	hit := r.strikeEnemy(ctx, c, enemy, catalog.AbilityDefinition{Weapon: weapon, Multiplier: profile.Multiplier}, tick)
	return Outcome{Effect: catalog.EffectDirectDamage, Hits: []Hit{hit}}, nil
}

// EnemyStrike applies one enemy melee hit to a character. Enemy damage takes
// the enrage multiplier and the character's mitigation; the victim's equipped
// armor trains from the damage taken.
func (r *Resolver) EnemyStrike(ctx context.Context, e *state.Enemy, c *state.Character, tick uint64) Hit {
	raw := float64(e.Attack) * e.DamageMultiplier() * mitigation(c.Defense)
	crit := r.roll() < e.CritChance
	if crit {
		raw *= CritMultiplier
	}
	amount := flatten(raw)

	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}
	c.Version++
	c.InCombatUntil = tick + CombatWindowTicks
	c.Dirty = true

	r.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterHealth, EntityID: c.ID, Payload: journal.HealthPayload{
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
	}})
	fatal := c.Health == 0
	r.journal.AppendEvent(journal.Event{Kind: journal.EventCombat, Tick: tick, Payload: journal.CombatEvent{
		AttackerID: e.ID,
		TargetID:   c.ID,
		Amount:     amount,
		Effect:     string(catalog.EffectDirectDamage),
		Critical:   crit,
		Fatal:      fatal,
	}})
	logcombat.Damage(ctx, r.pub, tick, enemyRef(e.ID), charRef(c.ID), logcombat.DamagePayload{
		Amount:       amount,
		Critical:     crit,
		TargetHealth: c.Health,
		Effect:       string(catalog.EffectDirectDamage),
	}, nil)

	r.prog.ArmorXPFromDamage(ctx, c, amount, tick)

	if fatal {
		r.journal.AppendEvent(journal.Event{Kind: journal.EventDeath, Tick: tick, Payload: journal.DeathEvent{
			EntityID: c.ID,
			KillerID: e.ID,
		}})
		logcombat.Defeat(ctx, r.pub, tick, enemyRef(e.ID), charRef(c.ID), logcombat.DefeatPayload{}, nil)
	}
	return Hit{TargetID: c.ID, Amount: amount, Critical: crit, Fatal: fatal}
}

// known reports whether the character can use the ability: explicitly
// unlocked, or granted by the equipped weapon's proficiency family.
// Abilities with no weapon family are common to every loadout. Quest-gated
// abilities always require the explicit unlock from the turn-in; level and
// proficiency gates are checked live against the character.
func (r *Resolver) known(c *state.Character, ability catalog.AbilityDefinition) bool {
	if c.UnlockedAbilities[ability.ID] {
		return true
	}
	if ability.Requirement.QuestID != "" {
		return false
	}
	if ability.Weapon != "" {
		weapon, _ := r.equippedWeapon(c)
		if weapon == "" || catalog.ProficiencyKindFor(weapon) != ability.Weapon {
			return false
		}
	}
	return quest.MeetsRequirement(c, ability.Requirement)
}

func (r *Resolver) reject(ctx context.Context, c *state.Character, abilityID string, tick uint64, failure *Failure) (Outcome, *Failure) {
	logcombat.AbilityRejected(ctx, r.pub, tick, charRef(c.ID), logcombat.RejectedPayload{
		Ability: abilityID,
		Reason:  string(failure.Kind),
	}, nil)
	return Outcome{}, failure
}

// strikeEnemy computes and lands one direct damage hit. The formula scales
// attack plus the equipped weapon bonus by the ability multiplier and the
// proficiency bonus, then mitigates by defense/(defense+100).
func (r *Resolver) strikeEnemy(ctx context.Context, c *state.Character, enemy *state.Enemy, ability catalog.AbilityDefinition, tick uint64) Hit {
	_, equipBonus := r.equippedWeapon(c)
	raw := float64(c.Attack+equipBonus) * r.multiplierFor(c, ability) * r.proficiencyBonus(c, ability) * mitigation(enemy.Defense)
	crit := r.roll() < c.CritChance
	if crit {
		raw *= CritMultiplier
	}
	amount := flatten(raw)

	enemy.Health -= amount
	if enemy.Health < 0 {
		enemy.Health = 0
	}
	enemy.Version++
	enemy.Threat.Add(c.ID, float64(amount), tick)
	c.InCombatUntil = tick + CombatWindowTicks

	r.journal.AppendPatch(journal.Patch{Kind: journal.PatchEnemyHealth, EntityID: enemy.ID, Payload: journal.HealthPayload{
		Health:    enemy.Health,
		MaxHealth: enemy.MaxHealth,
	}})
	fatal := enemy.Health == 0
	r.journal.AppendEvent(journal.Event{Kind: journal.EventCombat, Tick: tick, Payload: journal.CombatEvent{
		AttackerID: c.ID,
		TargetID:   enemy.ID,
		AbilityID:  ability.ID,
		Amount:     amount,
		Effect:     string(catalog.EffectDirectDamage),
		Critical:   crit,
		Fatal:      fatal,
	}})
	logcombat.Damage(ctx, r.pub, tick, charRef(c.ID), enemyRef(enemy.ID), logcombat.DamagePayload{
		Ability:      ability.ID,
		Amount:       amount,
		Critical:     crit,
		TargetHealth: enemy.Health,
	}, nil)

	r.grantWeaponXP(ctx, c, ability, tick)

	if fatal {
		enemy.DeadSinceTick = tick
		r.journal.AppendEvent(journal.Event{Kind: journal.EventDeath, Tick: tick, Payload: journal.DeathEvent{
			EntityID: enemy.ID,
			KillerID: c.ID,
		}})
		logcombat.Defeat(ctx, r.pub, tick, charRef(c.ID), enemyRef(enemy.ID), logcombat.DefeatPayload{Ability: ability.ID}, nil)
	}
	return Hit{TargetID: enemy.ID, Amount: amount, Critical: crit, Fatal: fatal}
}

// sweepEnemies lands the area ability on every live enemy within the radius
// of the caster, in deterministic id order. Crits roll per target.
func (r *Resolver) sweepEnemies(ctx context.Context, c *state.Character, ability catalog.AbilityDefinition, tick uint64) []Hit {
	var hits []Hit
	r.store.ForEachEnemy(func(enemy *state.Enemy) {
		if !enemy.Alive() || c.DistanceTo(&enemy.Actor) > ability.Radius {
			return
		}
		hits = append(hits, r.strikeEnemy(ctx, c, enemy, ability, tick))
	})
	return hits
}

func (r *Resolver) attachDoT(ctx context.Context, c *state.Character, enemy *state.Enemy, ability catalog.AbilityDefinition, tick uint64) {
	r.attach(&enemy.Actor, state.EffectInstance{
		AbilityID:     ability.ID,
		Kind:          catalog.EffectDamageOverTime,
		SourceID:      c.ID,
		TickDamage:    ability.TickDamage,
		IntervalTicks: ability.IntervalTicks,
		NextTick:      tick + ability.IntervalTicks,
		ExpiresTick:   tick + ability.DurationTicks,
	})
	c.InCombatUntil = tick + CombatWindowTicks
	logcombat.EffectApplied(ctx, r.pub, tick, charRef(c.ID), enemyRef(enemy.ID), logcombat.EffectPayload{
		Ability:   ability.ID,
		Effect:    string(catalog.EffectDamageOverTime),
		TicksLeft: ability.DurationTicks,
	}, nil)
	r.grantWeaponXP(ctx, c, ability, tick)
}

func (r *Resolver) attachDebuff(ctx context.Context, c *state.Character, enemy *state.Enemy, ability catalog.AbilityDefinition, tick uint64) {
	r.attach(&enemy.Actor, state.EffectInstance{
		AbilityID:   ability.ID,
		Kind:        catalog.EffectDebuff,
		SourceID:    c.ID,
		ExpiresTick: tick + ability.DurationTicks,
		Stat:        ability.BuffStat,
		Amount:      ability.BuffAmount,
		Debuff:      ability.Debuff,
	})
	c.InCombatUntil = tick + CombatWindowTicks
	logcombat.EffectApplied(ctx, r.pub, tick, charRef(c.ID), enemyRef(enemy.ID), logcombat.EffectPayload{
		Ability:   ability.ID,
		Effect:    string(catalog.EffectDebuff),
		TicksLeft: ability.DurationTicks,
	}, nil)
	r.grantWeaponXP(ctx, c, ability, tick)
}

func (r *Resolver) attachBuff(ctx context.Context, c *state.Character, ability catalog.AbilityDefinition, tick uint64) {
	r.attach(&c.Actor, state.EffectInstance{
		AbilityID:   ability.ID,
		Kind:        catalog.EffectBuff,
		SourceID:    c.ID,
		ExpiresTick: tick + ability.DurationTicks,
		Stat:        ability.BuffStat,
		Amount:      ability.BuffAmount,
	})
	logcombat.EffectApplied(ctx, r.pub, tick, charRef(c.ID), charRef(c.ID), logcombat.EffectPayload{
		Ability:   ability.ID,
		Effect:    string(catalog.EffectBuff),
		TicksLeft: ability.DurationTicks,
	}, nil)
}

func (r *Resolver) healCharacter(ctx context.Context, c *state.Character, ability catalog.AbilityDefinition, tick uint64) int {
	before := c.Health
	c.Health += ability.Heal
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
	healed := c.Health - before
	c.Version++
	c.Dirty = true
	r.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterHealth, EntityID: c.ID, Payload: journal.HealthPayload{
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
	}})
	r.journal.AppendEvent(journal.Event{Kind: journal.EventCombat, Tick: tick, Payload: journal.CombatEvent{
		AttackerID: c.ID,
		TargetID:   c.ID,
		AbilityID:  ability.ID,
		Amount:     healed,
		Effect:     string(catalog.EffectHeal),
	}})
	return healed
}

// dash moves the caster the ability's range in the current facing direction.
// Collision is not modeled; the world loop clamps to map bounds afterwards.
func (r *Resolver) dash(c *state.Character, ability catalog.AbilityDefinition) {
	switch c.Facing {
	case state.FacingUp:
		c.Y -= ability.Range
	case state.FacingDown:
		c.Y += ability.Range
	case state.FacingLeft:
		c.X -= ability.Range
	case state.FacingRight:
		c.X += ability.Range
	}
	c.Version++
	c.Dirty = true
	r.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterPos, EntityID: c.ID, Payload: journal.PositionPayload{
		X: c.X,
		Y: c.Y,
	}})
}

// attach adds the effect instance, refreshing in place when the same ability
// is already active so repeated buffs never stack their stat bonus twice.
func (r *Resolver) attach(a *state.Actor, inst state.EffectInstance) {
	for i := range a.Effects {
		if a.Effects[i].AbilityID == inst.AbilityID {
			a.Effects[i].ExpiresTick = inst.ExpiresTick
			a.Effects[i].NextTick = inst.NextTick
			a.Version++
			return
		}
	}
	applyStat(a, inst.Stat, inst.Amount)
	a.Effects = append(a.Effects, inst)
	a.Version++
}

func (r *Resolver) spendMana(c *state.Character, cost int) {
	if cost <= 0 {
		return
	}
	c.Mana -= cost
	c.Version++
	c.Dirty = true
	r.journal.AppendPatch(journal.Patch{Kind: journal.PatchCharacterMana, EntityID: c.ID, Payload: journal.ManaPayload{
		Mana:    c.Mana,
		MaxMana: c.MaxMana,
	}})
}

func (r *Resolver) grantWeaponXP(ctx context.Context, c *state.Character, ability catalog.AbilityDefinition, tick uint64) {
	track := r.proficiencyTrack(c, ability)
	if track == "" {
		return
	}
	r.prog.GrantWeaponProficiency(ctx, c, track, progression.WeaponXPPerHit, tick)
}

// proficiencyTrack resolves which weapon track an ability trains: the
// ability's own weapon family when declared, otherwise the equipped weapon's
// track. Unarmed trains nothing.
func (r *Resolver) proficiencyTrack(c *state.Character, ability catalog.AbilityDefinition) catalog.WeaponKind {
	if ability.Weapon != "" {
		return catalog.ProficiencyKindFor(ability.Weapon)
	}
	weapon, _ := r.equippedWeapon(c)
	if weapon == "" {
		return ""
	}
	return catalog.ProficiencyKindFor(weapon)
}

func (r *Resolver) proficiencyBonus(c *state.Character, ability catalog.AbilityDefinition) float64 {
	track := r.proficiencyTrack(c, ability)
	if track == "" {
		return 1
	}
	return progression.ProficiencyBonus(c.WeaponProf.Level(track))
}

// multiplierFor prefers the ability's own multiplier, falling back to the
// equipped weapon profile for basic swings.
func (r *Resolver) multiplierFor(c *state.Character, ability catalog.AbilityDefinition) float64 {
	if ability.Multiplier > 0 {
		return ability.Multiplier
	}
	weapon, _ := r.equippedWeapon(c)
	return catalog.ProfileFor(weapon).Multiplier
}

// abilityRange prefers the ability's declared range, falling back to the
// equipped weapon's reach.
func (r *Resolver) abilityRange(c *state.Character, ability catalog.AbilityDefinition) float64 {
	if ability.Range > 0 {
		return ability.Range
	}
	weapon, _ := r.equippedWeapon(c)
	return catalog.ProfileFor(weapon).Range
}

func (r *Resolver) equippedWeapon(c *state.Character) (catalog.WeaponKind, int) {
	itemID, ok := c.Equipment.Get(catalog.SlotMainHand)
	if !ok {
		return "", 0
	}
	item, err := r.catalog.Item(itemID)
	if err != nil || item.Class != catalog.ItemClassWeapon {
		return "", 0
	}
	return item.Weapon, item.AttackBonus
}

// mitigation returns the fraction of damage that passes the defense stat.
func mitigation(defense int) float64 {
	return 1 - float64(defense)/(float64(defense)+100)
}

// flatten floors fractional damage to an int, with a one-point minimum so no
// hit ever rounds to nothing.
func flatten(raw float64) int {
	amount := int(math.Floor(raw))
	if amount < 1 {
		amount = 1
	}
	return amount
}

func charRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindCharacter}
}

func enemyRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindEnemy}
}
