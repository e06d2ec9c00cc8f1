package combat

import (
	"context"
	"testing"
	"time"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/progression"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/internal/threat"
)

func newTestResolver(t *testing.T) (*Resolver, *state.Store, *journal.Journal) {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultPack())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	store := state.NewStore()
	jrnl := journal.New(0, time.Minute)
	prog := progression.NewEngine(cat, jrnl, nil, progression.DefaultProficiencyCap)
	resolver := NewResolver(cat, store, jrnl, prog, nil)
	resolver.roll = func() float64 { return 1 } // never crit
	return resolver, store, jrnl
}

func spawnSlime(t *testing.T, r *Resolver, store *state.Store, id string, x, y float64) *state.Enemy {
	t.Helper()
	def, err := r.catalog.Enemy("slime")
	if err != nil {
		t.Fatalf("catalog.Enemy: %v", err)
	}
	enemy := state.NewEnemy(id, def, x, y, 0, threat.Policy{})
	if err := store.AddEnemy(enemy); err != nil {
		t.Fatalf("AddEnemy: %v", err)
	}
	return enemy
}

func spawnKnight(t *testing.T, store *state.Store, id string) *state.Character {
	t.Helper()
	char := state.NewCharacter(id, "Tester", state.ClassKnight, 0, 0, progression.LevelThreshold(1))
	if err := store.AddCharacter(char); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}
	return char
}

func equipWeapon(t *testing.T, char *state.Character, itemID string) {
	t.Helper()
	char.Inventory.Add(itemID, 1)
	char.Equipment.Set(catalog.SlotMainHand, itemID)
}

func TestDirectDamageFormula(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	equipWeapon(t, char, "rusty_dagger")
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)

	outcome, failure := resolver.UseAbility(context.Background(), char, "quick_strike", enemy.ID, 5)
	if failure != nil {
		t.Fatalf("UseAbility: %v", failure)
	}
	// attack 10 + dagger bonus 2, multiplier 1.2, untrained dagger track,
	// slime defense 2: floor(12 * 1.2 * 1.0 * 100/102) = 14.
	if len(outcome.Hits) != 1 || outcome.Hits[0].Amount != 14 {
		t.Fatalf("unexpected hits %+v", outcome.Hits)
	}
	if enemy.Health != 36 {
		t.Fatalf("enemy health = %d, want 36", enemy.Health)
	}
	if char.Mana != 75 {
		t.Fatalf("mana = %d, want 75", char.Mana)
	}
	if ready := char.Cooldowns["quick_strike"]; ready != 25 {
		t.Fatalf("cooldown ready tick = %d, want 25", ready)
	}
	if got := enemy.Threat.Score(char.ID); got != 14 {
		t.Fatalf("threat = %.1f, want 14", got)
	}
	if char.WeaponProf[catalog.WeaponDagger].XP != progression.WeaponXPPerHit {
		t.Fatalf("expected weapon XP credited to the dagger track")
	}
}

func TestCriticalHitMultiplier(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	resolver.roll = func() float64 { return 0 } // always crit
	char := spawnKnight(t, store, "char-1")
	equipWeapon(t, char, "rusty_dagger")
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)

	outcome, failure := resolver.UseAbility(context.Background(), char, "quick_strike", enemy.ID, 5)
	if failure != nil {
		t.Fatalf("UseAbility: %v", failure)
	}
	// floor(14.12 * 1.5) = 21.
	if !outcome.Hits[0].Critical || outcome.Hits[0].Amount != 21 {
		t.Fatalf("unexpected crit hit %+v", outcome.Hits[0])
	}
}

func TestBasicAttackUsesWeaponProfile(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	char.Inventory.Add("iron_sword", 1)
	char.Equipment.Set(catalog.SlotMainHand, "iron_sword")
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)

	outcome, failure := resolver.BasicAttack(context.Background(), char, enemy.ID, 100)
	if failure != nil {
		t.Fatalf("BasicAttack: %v", failure)
	}
	// (10 attack + 4 sword bonus) * 1.0 * 1.1 sword proficiency * 100/102.
	if outcome.Hits[0].Amount != 15 {
		t.Fatalf("damage = %d, want 15", outcome.Hits[0].Amount)
	}
	if char.NextAttackTick != 115 {
		t.Fatalf("next attack tick = %d, want 115", char.NextAttackTick)
	}
	if _, failure := resolver.BasicAttack(context.Background(), char, enemy.ID, 110); failure == nil || failure.Kind != FailureOnCooldown {
		t.Fatalf("expected swing before interval to be refused, got %v", failure)
	}
	if char.WeaponProf[catalog.WeaponSword].XP != progression.WeaponXPPerHit {
		t.Fatalf("expected sword proficiency XP from the swing")
	}
}

func TestUnarmedTrainsNothing(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)

	if _, failure := resolver.BasicAttack(context.Background(), char, enemy.ID, 1); failure != nil {
		t.Fatalf("BasicAttack: %v", failure)
	}
	for kind, prof := range char.WeaponProf {
		if prof.XP != 0 {
			t.Fatalf("unarmed swing trained %s", kind)
		}
	}
}

func TestInsufficientManaMutatesNothing(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	equipWeapon(t, char, "rusty_dagger")
	char.Mana = 3
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)

	_, failure := resolver.UseAbility(context.Background(), char, "quick_strike", enemy.ID, 5)
	if failure == nil || failure.Kind != FailureInsufficientResource {
		t.Fatalf("expected insufficient mana, got %v", failure)
	}
	if char.Mana != 3 {
		t.Fatalf("rejected use spent mana: %d", char.Mana)
	}
	if _, ok := char.Cooldowns["quick_strike"]; ok {
		t.Fatalf("rejected use started a cooldown")
	}
	if enemy.Health != enemy.MaxHealth {
		t.Fatalf("rejected use dealt damage")
	}
}

func TestOutOfRangeMutatesNothing(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	equipWeapon(t, char, "rusty_dagger")
	enemy := spawnSlime(t, resolver, store, "slime-1", 500, 0)

	_, failure := resolver.UseAbility(context.Background(), char, "quick_strike", enemy.ID, 5)
	if failure == nil || failure.Kind != FailureOutOfRange {
		t.Fatalf("expected out of range, got %v", failure)
	}
	if char.Mana != char.MaxMana || enemy.Health != enemy.MaxHealth {
		t.Fatalf("rejected use mutated state")
	}
}

func TestCooldownBlocksUntilReady(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	equipWeapon(t, char, "rusty_dagger")
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)
	ctx := context.Background()

	if _, failure := resolver.UseAbility(ctx, char, "quick_strike", enemy.ID, 10); failure != nil {
		t.Fatalf("first use: %v", failure)
	}
	if _, failure := resolver.UseAbility(ctx, char, "quick_strike", enemy.ID, 15); failure == nil || failure.Kind != FailureOnCooldown {
		t.Fatalf("expected on cooldown, got %v", failure)
	}
	if _, failure := resolver.UseAbility(ctx, char, "quick_strike", enemy.ID, 30); failure != nil {
		t.Fatalf("use at ready tick: %v", failure)
	}
}

func TestProficiencyGatedAbility(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)
	ctx := context.Background()

	// A mage wielding a sword still has no sword training; heavy_slash
	// stays locked behind its proficiency gate.
	mage := state.NewCharacter("char-mage", "Mage", state.ClassMage, 0, 0, 100)
	if err := store.AddCharacter(mage); err != nil {
		t.Fatalf("AddCharacter: %v", err)
	}
	equipWeapon(t, mage, "iron_sword")
	if _, failure := resolver.UseAbility(ctx, mage, "heavy_slash", enemy.ID, 1); failure == nil || failure.Kind != FailureAbilityNotKnown {
		t.Fatalf("expected ability not known, got %v", failure)
	}

	// A knight starts with sword 10, past the proficiency gate.
	knight := spawnKnight(t, store, "char-knight")
	equipWeapon(t, knight, "iron_sword")
	if _, failure := resolver.UseAbility(ctx, knight, "heavy_slash", enemy.ID, 1); failure != nil {
		t.Fatalf("knight heavy_slash: %v", failure)
	}
}

func TestWeaponFamilyGatesAbility(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)
	ctx := context.Background()

	// Bare-handed, fireball is not part of the knight's loadout.
	if _, failure := resolver.UseAbility(ctx, char, "fireball", enemy.ID, 1); failure == nil || failure.Kind != FailureAbilityNotKnown {
		t.Fatalf("expected ability not known, got %v", failure)
	}

	equipWeapon(t, char, "apprentice_staff")
	if _, failure := resolver.UseAbility(ctx, char, "fireball", enemy.ID, 1); failure != nil {
		t.Fatalf("fireball with staff equipped: %v", failure)
	}

	// A wand counts as the staff family once the cooldown clears.
	equipWeapon(t, char, "oak_wand")
	if _, failure := resolver.UseAbility(ctx, char, "fireball", enemy.ID, 100); failure != nil {
		t.Fatalf("fireball with wand equipped: %v", failure)
	}
}

func TestQuestGatedAbilityNeedsExplicitUnlock(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	ctx := context.Background()

	if _, failure := resolver.UseAbility(ctx, char, "shadowstep", "", 1); failure == nil || failure.Kind != FailureAbilityNotKnown {
		t.Fatalf("expected shadowstep locked, got %v", failure)
	}

	char.UnlockedAbilities["shadowstep"] = true
	char.Facing = state.FacingRight
	if _, failure := resolver.UseAbility(ctx, char, "shadowstep", "", 1); failure != nil {
		t.Fatalf("shadowstep after unlock: %v", failure)
	}
	if char.X != 100 {
		t.Fatalf("dash moved to x=%.1f, want 100", char.X)
	}
}

func TestAreaAbilityHitsOnlyInRadius(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	char.UnlockedAbilities["whirlwind"] = true // the quest-reward unlock
	near := spawnSlime(t, resolver, store, "slime-near", 50, 0)
	far := spawnSlime(t, resolver, store, "slime-far", 200, 0)

	outcome, failure := resolver.UseAbility(context.Background(), char, "whirlwind", "", 5)
	if failure != nil {
		t.Fatalf("whirlwind: %v", failure)
	}
	if len(outcome.Hits) != 1 || outcome.Hits[0].TargetID != near.ID {
		t.Fatalf("unexpected hits %+v", outcome.Hits)
	}
	if far.Health != far.MaxHealth {
		t.Fatalf("out-of-radius enemy took damage")
	}
}

func TestSecondKillerSameTickGetsTargetInvalid(t *testing.T) {
	resolver, store, jrnl := newTestResolver(t)
	first := spawnKnight(t, store, "char-1")
	equipWeapon(t, first, "rusty_dagger")
	second := spawnKnight(t, store, "char-2")
	equipWeapon(t, second, "rusty_dagger")
	enemy := spawnSlime(t, resolver, store, "slime-1", 10, 0)
	enemy.Health = 5
	ctx := context.Background()

	outcome, failure := resolver.UseAbility(ctx, first, "quick_strike", enemy.ID, 7)
	if failure != nil {
		t.Fatalf("first strike: %v", failure)
	}
	if !outcome.Hits[0].Fatal {
		t.Fatalf("expected fatal hit, enemy health %d", enemy.Health)
	}
	if enemy.DeadSinceTick != 7 {
		t.Fatalf("expected corpse stamped with death tick")
	}

	if _, failure := resolver.UseAbility(ctx, second, "quick_strike", enemy.ID, 7); failure == nil || failure.Kind != FailureTargetInvalid {
		t.Fatalf("expected target invalid for second killer, got %v", failure)
	}

	deaths := 0
	for _, event := range jrnl.DrainTick(7).Events {
		if event.Kind == journal.EventDeath {
			deaths++
		}
	}
	if deaths != 1 {
		t.Fatalf("expected exactly one death event, got %d", deaths)
	}
}

func TestHealClampsAtMaxHealth(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	char.Health = char.MaxHealth - 10

	outcome, failure := resolver.UseAbility(context.Background(), char, "minor_heal", "", 5)
	if failure != nil {
		t.Fatalf("minor_heal: %v", failure)
	}
	if outcome.Healed != 10 || char.Health != char.MaxHealth {
		t.Fatalf("healed %d to %d/%d", outcome.Healed, char.Health, char.MaxHealth)
	}
}

func TestEnemyStrikeMitigationAndArmorXP(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")
	char.Inventory.Add("leather_tunic", 1)
	char.Equipment.Set(catalog.SlotChest, "leather_tunic")

	def := catalog.EnemyDefinition{ID: "ogre", Name: "Ogre", MaxHealth: 200, Attack: 30}
	enemy := state.NewEnemy("ogre-1", def, 10, 0, 0, threat.Policy{})
	if err := store.AddEnemy(enemy); err != nil {
		t.Fatalf("AddEnemy: %v", err)
	}

	hit := resolver.EnemyStrike(context.Background(), enemy, char, 5)
	// 30 attack against 8 defense: floor(30 * 100/108) = 27.
	if hit.Amount != 27 {
		t.Fatalf("damage = %d, want 27", hit.Amount)
	}
	if char.Health != char.MaxHealth-27 {
		t.Fatalf("health = %d", char.Health)
	}
	if char.ArmorProf[catalog.ArmorLeather].XP != 2 {
		t.Fatalf("expected 2 leather XP from 27 damage, got %d", char.ArmorProf[catalog.ArmorLeather].XP)
	}
	if !char.InCombat(6) {
		t.Fatalf("expected combat window open after being hit")
	}
}

func TestEnragedEnemyHitsHarder(t *testing.T) {
	resolver, store, _ := newTestResolver(t)
	char := spawnKnight(t, store, "char-1")

	def := catalog.EnemyDefinition{ID: "ogre", Name: "Ogre", MaxHealth: 200, Attack: 30}
	enemy := state.NewEnemy("ogre-1", def, 10, 0, 0, threat.Policy{})
	enemy.Enraged = true
	enemy.EnrageMultiplier = 1.5
	if err := store.AddEnemy(enemy); err != nil {
		t.Fatalf("AddEnemy: %v", err)
	}

	hit := resolver.EnemyStrike(context.Background(), enemy, char, 5)
	// floor(30 * 1.5 * 100/108) = 41.
	if hit.Amount != 41 {
		t.Fatalf("enraged damage = %d, want 41", hit.Amount)
	}
}
