package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultPackLoads(t *testing.T) {
	cat, err := New(DefaultPack())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	slime, err := cat.Enemy("slime")
	if err != nil {
		t.Fatalf("Enemy(slime): %v", err)
	}
	if slime.MaxHealth != 50 || slime.Attack != 5 || slime.Defense != 2 {
		t.Fatalf("unexpected slime stats: %+v", slime)
	}

	quest, err := cat.Quest("choose_your_path")
	if err != nil {
		t.Fatalf("Quest(choose_your_path): %v", err)
	}
	if quest.RewardAbility == "" {
		t.Fatalf("expected choose_your_path to grant an ability")
	}
	if _, err := cat.Ability(quest.RewardAbility); err != nil {
		t.Fatalf("reward ability %q missing from catalog: %v", quest.RewardAbility, err)
	}

	// Every NPC quest and ware must resolve.
	for _, npcID := range []string{"trainer", "quartermaster"} {
		npc, err := cat.NPC(npcID)
		if err != nil {
			t.Fatalf("NPC(%s): %v", npcID, err)
		}
		for _, questID := range npc.Quests {
			if _, err := cat.Quest(questID); err != nil {
				t.Fatalf("npc %s references missing quest %s", npcID, questID)
			}
		}
		for _, itemID := range npc.Wares {
			if _, err := cat.Item(itemID); err != nil {
				t.Fatalf("npc %s sells missing item %s", npcID, itemID)
			}
		}
	}
}

func TestLookupsFailClosed(t *testing.T) {
	cat, err := New(DefaultPack())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := cat.Ability("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := cat.Quest("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := cat.Enemy("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSwapReplacesGeneration(t *testing.T) {
	cat, err := New(Pack{
		Enemies: []EnemyDefinition{{ID: "rat", Name: "Rat", MaxHealth: 10, Attack: 1}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := cat.Swap(Pack{
		Enemies: []EnemyDefinition{{ID: "rat", Name: "Giant Rat", MaxHealth: 30, Attack: 3}},
	}); err != nil {
		t.Fatalf("Swap: %v", err)
	}

	rat, err := cat.Enemy("rat")
	if err != nil {
		t.Fatalf("Enemy(rat): %v", err)
	}
	if rat.MaxHealth != 30 {
		t.Fatalf("expected swapped definition, got %+v", rat)
	}
}

func TestSwapRejectsInvalidPackAndKeepsOld(t *testing.T) {
	cat, err := New(Pack{
		Enemies: []EnemyDefinition{{ID: "rat", Name: "Rat", MaxHealth: 10, Attack: 1}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := cat.Swap(Pack{
		Enemies: []EnemyDefinition{{ID: "rat", Name: "Rat", MaxHealth: 0}},
	}); err == nil {
		t.Fatalf("expected swap of invalid pack to fail")
	}

	if _, err := cat.Enemy("rat"); err != nil {
		t.Fatalf("old generation should survive failed swap: %v", err)
	}
}

func TestAbilityValidation(t *testing.T) {
	cases := []struct {
		name string
		def  AbilityDefinition
		want string
	}{
		{
			name: "direct damage without multiplier",
			def:  AbilityDefinition{ID: "bad", Name: "Bad", Effect: EffectDirectDamage},
			want: "multiplier",
		},
		{
			name: "dot without duration",
			def:  AbilityDefinition{ID: "bad", Name: "Bad", Effect: EffectDamageOverTime, TickDamage: 5},
			want: "durationTicks",
		},
		{
			name: "heal without amount",
			def:  AbilityDefinition{ID: "bad", Name: "Bad", Effect: EffectHeal},
			want: "heal",
		},
		{
			name: "debuff without kind",
			def:  AbilityDefinition{ID: "bad", Name: "Bad", Effect: EffectDebuff, DurationTicks: 10},
			want: "debuff",
		},
		{
			name: "unknown effect",
			def:  AbilityDefinition{ID: "bad", Name: "Bad", Effect: "summon"},
			want: "unknown effect",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Pack{Abilities: []AbilityDefinition{tc.def}})
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWeaponProfiles(t *testing.T) {
	bow := ProfileFor(WeaponBow)
	if bow.Range <= ProfileFor(WeaponSword).Range {
		t.Fatalf("expected bows to outrange swords")
	}
	unarmed := ProfileFor("")
	if unarmed.Multiplier >= 1 {
		t.Fatalf("unarmed should hit below weapon baseline, got %+v", unarmed)
	}
	if ProficiencyKindFor(WeaponWand) != WeaponStaff {
		t.Fatalf("wands should train staff proficiency")
	}
	if ProficiencyKindFor(WeaponAxe) != WeaponAxe {
		t.Fatalf("axes should train themselves")
	}
}

func TestContentSchemaJSON(t *testing.T) {
	data, err := ContentSchemaJSON()
	if err != nil {
		t.Fatalf("ContentSchemaJSON: %v", err)
	}
	if !strings.Contains(string(data), "Eryndor Content Pack") {
		t.Fatalf("schema missing title: %s", data)
	}
}
