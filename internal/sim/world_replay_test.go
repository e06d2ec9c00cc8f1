package sim

import (
	"context"
	"testing"

	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

type replayEntity struct {
	x, y      float64
	health    int
	maxHealth int
	mana      int
	maxMana   int
}

type replayState struct {
	characters map[string]*replayEntity
	enemies    map[string]*replayEntity
}

func (rs *replayState) apply(patches []journal.Patch) {
	for _, p := range patches {
		switch p.Kind {
		case journal.PatchCharacterPos:
			payload := p.Payload.(journal.PositionPayload)
			e := rs.character(p.EntityID)
			e.x, e.y = payload.X, payload.Y
		case journal.PatchCharacterHealth:
			payload := p.Payload.(journal.HealthPayload)
			e := rs.character(p.EntityID)
			e.health, e.maxHealth = payload.Health, payload.MaxHealth
		case journal.PatchCharacterMana:
			payload := p.Payload.(journal.ManaPayload)
			e := rs.character(p.EntityID)
			e.mana, e.maxMana = payload.Mana, payload.MaxMana
		case journal.PatchCharacterRemoved:
			delete(rs.characters, p.EntityID)
		case journal.PatchEnemySpawned:
			payload := p.Payload.(journal.EnemySpawnPayload)
			rs.enemies[p.EntityID] = &replayEntity{
				x: payload.X, y: payload.Y,
				health: payload.Health, maxHealth: payload.MaxHealth,
			}
		case journal.PatchEnemyPos:
			payload := p.Payload.(journal.PositionPayload)
			e := rs.enemy(p.EntityID)
			e.x, e.y = payload.X, payload.Y
		case journal.PatchEnemyHealth:
			payload := p.Payload.(journal.HealthPayload)
			e := rs.enemy(p.EntityID)
			e.health, e.maxHealth = payload.Health, payload.MaxHealth
		case journal.PatchEnemyRemoved:
			delete(rs.enemies, p.EntityID)
		}
	}
}

func (rs *replayState) character(id string) *replayEntity {
	e, ok := rs.characters[id]
	if !ok {
		e = &replayEntity{}
		rs.characters[id] = e
	}
	return e
}

func (rs *replayState) enemy(id string) *replayEntity {
	e, ok := rs.enemies[id]
	if !ok {
		e = &replayEntity{}
		rs.enemies[id] = e
	}
	return e
}

// Applying the patch stream on top of a keyframe must land on the same
// state the server holds, otherwise late-joining clients drift.
func TestPatchStreamReproducesLiveState(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, WorldConfig{
		SpawnX: 580, SpawnY: 400,
		Spawns: []SpawnPoint{{EnemyID: "training_dummy", X: 600, Y: 400}},
	})
	c := spawnTestKnight(t, w, "char-1")
	enemy := firstEnemy(w)
	enemyID := enemy.ID

	// Keyframe-equivalent baseline before any tick runs.
	rs := &replayState{
		characters: map[string]*replayEntity{
			c.ID: {x: c.X, y: c.Y, health: c.Health, maxHealth: c.MaxHealth, mana: c.Mana, maxMana: c.MaxMana},
		},
		enemies: map[string]*replayEntity{
			enemyID: {x: enemy.X, y: enemy.Y, health: enemy.Health, maxHealth: enemy.MaxHealth},
		},
	}

	// Sidestep one tick so the stream carries position patches, then stop
	// inside melee range and let the auto-attack finish the dummy.
	res := w.Step(ctx, 1, 0.1, []Command{
		{ActorID: c.ID, Type: CommandMove, Move: &MoveCommand{DX: 0, DY: 1}},
		{ActorID: c.ID, Type: CommandAttack, Attack: &AttackCommand{TargetID: enemyID}},
	})
	rs.apply(res.Delta.Patches)
	res = w.Step(ctx, 2, 0.1, []Command{
		{ActorID: c.ID, Type: CommandMove, Move: &MoveCommand{DX: 0, DY: 0}},
	})
	rs.apply(res.Delta.Patches)

	// Run the fight through the dummy's death, despawn, and respawn.
	for tick := uint64(3); tick <= 40; tick++ {
		res = w.Step(ctx, tick, 0.1, nil)
		rs.apply(res.Delta.Patches)
	}

	mirror := rs.characters[c.ID]
	if mirror == nil {
		t.Fatal("character missing from replayed state")
	}
	if mirror.x != c.X || mirror.y != c.Y {
		t.Fatalf("replayed position (%v,%v) diverged from live (%v,%v)", mirror.x, mirror.y, c.X, c.Y)
	}
	if mirror.health != c.Health || mirror.mana != c.Mana {
		t.Fatalf("replayed pools (%d hp, %d mp) diverged from live (%d hp, %d mp)",
			mirror.health, mirror.mana, c.Health, c.Mana)
	}

	if _, stale := rs.enemies[enemyID]; stale {
		t.Fatalf("expected original dummy %s removed from replayed state", enemyID)
	}
	if len(rs.enemies) != w.Store().EnemyCount() {
		t.Fatalf("replayed enemy count %d diverged from live %d", len(rs.enemies), w.Store().EnemyCount())
	}
	w.Store().ForEachEnemy(func(e *state.Enemy) {
		m := rs.enemies[e.ID]
		if m == nil {
			t.Fatalf("enemy %s missing from replayed state", e.ID)
		}
		if m.x != e.X || m.y != e.Y || m.health != e.Health {
			t.Fatalf("enemy %s replayed as (%v,%v,%d hp), live (%v,%v,%d hp)",
				e.ID, m.x, m.y, m.health, e.X, e.Y, e.Health)
		}
	})
}

// A target that despawned before the queued swing lands is cleared without
// surfacing a rejection to the client.
func TestDespawnedTargetIntentDroppedSilently(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, WorldConfig{
		SpawnX: 580, SpawnY: 400,
		Spawns: []SpawnPoint{{EnemyID: "training_dummy", X: 600, Y: 400}},
	})
	c := spawnTestKnight(t, w, "char-1")
	c.TargetID = "enemy-long-gone"

	res := w.Step(ctx, 1, 0.1, nil)
	if len(res.Rejections) != 0 {
		t.Fatalf("expected no rejections for a vanished target, got %+v", res.Rejections)
	}
	if c.TargetID != "" {
		t.Fatalf("expected target cleared, still %q", c.TargetID)
	}
}
