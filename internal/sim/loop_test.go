package sim

import (
	"context"
	"testing"
	"time"

	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

func newTestLoop(t *testing.T, cfg LoopConfig, hooks LoopHooks) (*Loop, *state.Character) {
	t.Helper()
	world := newTestWorld(t, WorldConfig{SpawnX: 500, SpawnY: 400})
	c := spawnTestKnight(t, world, "char-1")
	return NewLoop(world, cfg, hooks, nil, nil), c
}

func TestLoopPerActorThrottle(t *testing.T) {
	var dropped []string
	loop, _ := newTestLoop(t, LoopConfig{CommandCapacity: 16, PerActorLimit: 2}, LoopHooks{
		OnCommandDrop: func(reason string, cmd Command) {
			dropped = append(dropped, reason)
		},
	})

	for i := 0; i < 2; i++ {
		if ok, reason := loop.Enqueue(Command{ActorID: "char-1", Type: CommandMove, Move: &MoveCommand{DX: 1}}); !ok {
			t.Fatalf("expected enqueue %d to succeed, got %q", i, reason)
		}
	}
	ok, reason := loop.Enqueue(Command{ActorID: "char-1", Type: CommandMove, Move: &MoveCommand{DX: 1}})
	if ok || reason != CommandRejectQueueLimit {
		t.Fatalf("expected queue_limit rejection, got ok=%v reason=%q", ok, reason)
	}
	if len(dropped) != 1 || dropped[0] != CommandRejectQueueLimit {
		t.Fatalf("expected drop hook once with queue_limit, got %v", dropped)
	}

	// A different actor is unaffected by the throttle.
	if ok, _ := loop.Enqueue(Command{ActorID: "char-2", Type: CommandMove, Move: &MoveCommand{DX: 1}}); !ok {
		t.Fatalf("expected other actor to enqueue")
	}
}

func TestLoopQueueFull(t *testing.T) {
	loop, _ := newTestLoop(t, LoopConfig{CommandCapacity: 1}, LoopHooks{})
	if ok, _ := loop.Enqueue(Command{ActorID: "a", Type: CommandMove, Move: &MoveCommand{DX: 1}}); !ok {
		t.Fatalf("expected first enqueue to succeed")
	}
	ok, reason := loop.Enqueue(Command{ActorID: "b", Type: CommandMove, Move: &MoveCommand{DX: 1}})
	if ok || reason != CommandRejectQueueFull {
		t.Fatalf("expected queue_full rejection, got ok=%v reason=%q", ok, reason)
	}
}

func TestLoopAdvanceAppliesStagedCommands(t *testing.T) {
	loop, c := newTestLoop(t, LoopConfig{CommandCapacity: 16, PerActorLimit: 4}, LoopHooks{})
	if ok, _ := loop.Enqueue(Command{ActorID: c.ID, Type: CommandMove, Move: &MoveCommand{DX: 1}}); !ok {
		t.Fatalf("expected enqueue to succeed")
	}

	result := loop.Advance(context.Background(), time.Now(), 0.1)
	if result.Tick != 1 {
		t.Fatalf("expected tick 1, got %d", result.Tick)
	}
	if c.X != 512 {
		t.Fatalf("expected command applied during advance, got x=%v", c.X)
	}
	if len(result.Commands) != 1 {
		t.Fatalf("expected one drained command, got %d", len(result.Commands))
	}
	if loop.Pending() != 0 {
		t.Fatalf("expected buffer drained, got %d pending", loop.Pending())
	}

	// Draining resets the per-actor counters as well.
	for i := 0; i < 4; i++ {
		if ok, reason := loop.Enqueue(Command{ActorID: c.ID, Type: CommandMove, Move: &MoveCommand{DX: 1}}); !ok {
			t.Fatalf("expected post-drain enqueue %d to succeed, got %q", i, reason)
		}
	}
}
