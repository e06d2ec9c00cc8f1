package hub

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/persist"
	"github.com/jbuehler23/eryndor-mmo/internal/progression"
	"github.com/jbuehler23/eryndor-mmo/internal/sim"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

func newTestHub(t *testing.T, cfg Config, store *persist.Store) *Hub {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultPack())
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	world := sim.NewWorld(sim.WorldConfig{
		Width: 2000, Height: 2000,
		TickRate: 10,
		Seed:     1,
		SpawnX:   200, SpawnY: 200,
		RespawnDelayTicks: 100,
	}, cat, journal.New(4, time.Minute), nil)
	loop := sim.NewLoop(world, sim.LoopConfig{CommandCapacity: 64, PerActorLimit: 8}, sim.LoopHooks{}, nil, nil)
	if cfg.TickRate == 0 {
		cfg = DefaultConfig()
	}
	return New(cfg, loop, store, nil)
}

func newTestStore(t *testing.T) *persist.Store {
	t.Helper()
	store, err := persist.Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestJoinCreatesCharacter(t *testing.T) {
	h := newTestHub(t, Config{}, nil)

	resp, err := h.Join(context.Background(), "", "Hero", state.ClassKnight)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if resp.CharacterID == "" {
		t.Fatalf("expected a generated character id")
	}
	if len(resp.Snapshot.Characters) != 1 {
		t.Fatalf("expected snapshot with one character, got %d", len(resp.Snapshot.Characters))
	}
	joined := resp.Snapshot.Characters[0]
	if joined.Class != state.ClassKnight || joined.X != 200 || joined.Y != 200 {
		t.Fatalf("unexpected joined character: %+v", joined)
	}
	if h.world.Store().CharacterCount() != 1 {
		t.Fatalf("expected character registered in world")
	}
}

func TestJoinRestoresPersistedCharacter(t *testing.T) {
	store := newTestStore(t)
	h := newTestHub(t, Config{}, store)
	ctx := context.Background()

	saved := state.NewCharacter("char-7", "Vet", state.ClassRogue, 200, 200, progression.LevelThreshold(1))
	saved.Level = 5
	saved.XP = 77
	if err := store.SaveCharacter(ctx, saved); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	resp, err := h.Join(ctx, "char-7", "", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if resp.CharacterID != "char-7" {
		t.Fatalf("expected restored id, got %q", resp.CharacterID)
	}
	restored, err := h.world.Store().Character("char-7")
	if err != nil {
		t.Fatalf("restored character missing: %v", err)
	}
	if restored.Level != 5 || restored.XP != 77 {
		t.Fatalf("expected persisted progression, got level=%d xp=%d", restored.Level, restored.XP)
	}
}

func TestHandleMessageEnqueuesCommand(t *testing.T) {
	h := newTestHub(t, Config{}, nil)
	resp, err := h.Join(context.Background(), "", "Hero", state.ClassKnight)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	payload, _ := json.Marshal(map[string]any{"type": "move", "dx": 1.0})
	h.HandleMessage(resp.CharacterID, payload)
	if h.loop.Pending() != 1 {
		t.Fatalf("expected one staged command, got %d", h.loop.Pending())
	}

	// Malformed and unknown frames are discarded, never queued.
	h.HandleMessage(resp.CharacterID, []byte("{not json"))
	h.HandleMessage(resp.CharacterID, []byte(`{"type":"dance"}`))
	if h.loop.Pending() != 1 {
		t.Fatalf("expected junk frames dropped, got %d staged", h.loop.Pending())
	}
}

func TestRejectionsFilteredPerActor(t *testing.T) {
	all := []sim.Rejection{
		{ActorID: "a", Kind: "on_cooldown"},
		{ActorID: "b", Kind: "insufficient_resource"},
		{ActorID: "a", Kind: "out_of_range"},
	}
	mine := rejectionsFor(all, "a")
	if len(mine) != 2 || mine[0].Kind != "on_cooldown" || mine[1].Kind != "out_of_range" {
		t.Fatalf("unexpected filtered rejections: %+v", mine)
	}
	if got := rejectionsFor(all, "c"); got != nil {
		t.Fatalf("expected nil for uninvolved actor, got %+v", got)
	}
}

func TestCheckpointRoundTripClearsDirty(t *testing.T) {
	store := newTestStore(t)
	h := newTestHub(t, Config{
		TickRate:                10,
		CheckpointIntervalTicks: 1,
		KeyframeIntervalTicks:   0,
	}, store)
	ctx := context.Background()

	resp, err := h.Join(ctx, "", "Hero", state.ClassKnight)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	c, err := h.world.Store().Character(resp.CharacterID)
	if err != nil {
		t.Fatalf("character missing: %v", err)
	}
	c.Dirty = true

	// Tick once: the dirty snapshot goes to the checkpointer, whose
	// completion re-enters the loop as a save-ack command.
	h.tick(ctx, time.Now(), 0.1)

	deadline := time.Now().Add(2 * time.Second)
	for h.loop.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("save ack never re-entered the loop")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.tick(ctx, time.Now(), 0.1)
	if c.Dirty {
		t.Fatalf("expected dirty flag cleared after acknowledged save")
	}

	loaded, err := store.LoadCharacter(ctx, resp.CharacterID)
	if err != nil {
		t.Fatalf("expected snapshot persisted: %v", err)
	}
	if loaded.ID != resp.CharacterID {
		t.Fatalf("unexpected persisted character: %+v", loaded)
	}
}

func TestKeyframeRecordedOnInterval(t *testing.T) {
	h := newTestHub(t, Config{
		TickRate:              10,
		KeyframeIntervalTicks: 2,
	}, nil)
	ctx := context.Background()

	if _, err := h.Join(ctx, "", "Hero", state.ClassKnight); err != nil {
		t.Fatalf("join: %v", err)
	}
	h.tick(ctx, time.Now(), 0.1)
	if _, ok := h.world.Journal().LatestKeyframe(); ok {
		t.Fatalf("expected no keyframe at tick 1")
	}
	h.tick(ctx, time.Now(), 0.1)
	frame, ok := h.world.Journal().LatestKeyframe()
	if !ok {
		t.Fatalf("expected keyframe at tick 2")
	}
	if frame.Tick != 2 {
		t.Fatalf("expected keyframe tick 2, got %d", frame.Tick)
	}
}
