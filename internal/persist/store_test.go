package persist

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/progression"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func sampleCharacter() *state.Character {
	c := state.NewCharacter("char-1", "Tester", state.ClassRogue, 200, 200, progression.LevelThreshold(1))
	c.Level = 3
	c.XP = 42
	c.Inventory.Add("gold", 17)
	c.Inventory.Add("health_potion", 2)
	c.Equipment.Set(catalog.SlotMainHand, "rusty_dagger")
	c.WeaponProf[catalog.WeaponDagger] = state.Proficiency{Level: 12, XP: 40}
	c.UnlockedAbilities["shadowstep"] = true
	c.QuestLog["slime_culling"] = &state.QuestProgress{
		Status:     state.QuestAccepted,
		Objectives: []int{3},
	}
	c.Version = 9
	return c
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	original := sampleCharacter()

	if err := store.SaveCharacter(ctx, original); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.LoadCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Name != "Tester" || loaded.Class != state.ClassRogue || loaded.Level != 3 || loaded.XP != 42 {
		t.Fatalf("identity fields lost: %+v", loaded)
	}
	if loaded.Inventory.Count("gold") != 17 || loaded.Inventory.Count("health_potion") != 2 {
		t.Fatalf("inventory lost: %+v", loaded.Inventory)
	}
	if got, _ := loaded.Equipment.Get(catalog.SlotMainHand); got != "rusty_dagger" {
		t.Fatalf("equipment lost, got %q", got)
	}
	if loaded.WeaponProf.Level(catalog.WeaponDagger) != 12 {
		t.Fatalf("proficiency lost: %+v", loaded.WeaponProf)
	}
	if !loaded.UnlockedAbilities["shadowstep"] {
		t.Fatalf("unlocks lost: %+v", loaded.UnlockedAbilities)
	}
	progress := loaded.QuestLog["slime_culling"]
	if progress == nil || progress.Status != state.QuestAccepted || progress.Objectives[0] != 3 {
		t.Fatalf("quest log lost: %+v", progress)
	}
	if loaded.Version != 9 {
		t.Fatalf("version lost: %d", loaded.Version)
	}
}

func TestSaveIsIdempotentUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	c := sampleCharacter()

	if err := store.SaveCharacter(ctx, c); err != nil {
		t.Fatalf("first save: %v", err)
	}
	c.XP = 99
	c.Version = 10
	if err := store.SaveCharacter(ctx, c); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := store.LoadCharacter(ctx, "char-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.XP != 99 || loaded.Version != 10 {
		t.Fatalf("expected latest snapshot, got xp=%d version=%d", loaded.XP, loaded.Version)
	}

	ids, err := store.ListCharacterIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "char-1" {
		t.Fatalf("expected single row after upsert, got %v", ids)
	}
}

func TestLoadMissingCharacter(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.LoadCharacter(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadedCharacterHasUsableZeroCollections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	bare := state.NewCharacter("char-2", "Bare", state.ClassMage, 0, 0, progression.LevelThreshold(1))

	if err := store.SaveCharacter(ctx, bare); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.LoadCharacter(ctx, "char-2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Writes into restored maps must not panic.
	loaded.Cooldowns["fireball"] = 10
	loaded.UnlockedAbilities["fireball"] = true
	loaded.QuestLog["q"] = &state.QuestProgress{Status: state.QuestAccepted, Objectives: []int{0}}
	loaded.WeaponProf[catalog.WeaponStaff] = state.Proficiency{Level: 1}
	loaded.ArmorProf[catalog.ArmorCloth] = state.Proficiency{Level: 1}
}

func TestCheckpointerReportsResults(t *testing.T) {
	store := newTestStore(t)

	var mu sync.Mutex
	var results []SaveResult
	cp := NewCheckpointer(store, nil, nil, func(result SaveResult) {
		mu.Lock()
		results = append(results, result)
		mu.Unlock()
	})

	snapshot := sampleCharacter().Snapshot()
	if !cp.Submit(100, []*state.Character{snapshot}) {
		t.Fatalf("expected submit to succeed")
	}
	cp.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].CharacterID != "char-1" || results[0].Version != 9 || results[0].Err != nil {
		t.Fatalf("unexpected result: %+v", results[0])
	}

	loaded, err := store.LoadCharacter(context.Background(), "char-1")
	if err != nil {
		t.Fatalf("load after checkpoint: %v", err)
	}
	if loaded.Version != 9 {
		t.Fatalf("expected persisted version 9, got %d", loaded.Version)
	}
}
