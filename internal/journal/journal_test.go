package journal

import (
	"testing"
	"time"
)

func TestDrainTickResetsBuffers(t *testing.T) {
	j := New(4, time.Minute)
	j.AppendPatch(Patch{Kind: PatchCharacterHealth, EntityID: "char-1", Payload: HealthPayload{Health: 90, MaxHealth: 120}})
	j.AppendEvent(Event{Kind: EventCombat, Tick: 3, Payload: CombatEvent{AttackerID: "char-1", TargetID: "slime-1", Amount: 12, Effect: "direct_damage"}})

	delta := j.DrainTick(3)
	if delta.Tick != 3 || len(delta.Patches) != 1 || len(delta.Events) != 1 {
		t.Fatalf("unexpected delta: %+v", delta)
	}

	next := j.DrainTick(4)
	if len(next.Patches) != 0 || len(next.Events) != 0 {
		t.Fatalf("expected empty delta after drain, got %+v", next)
	}
}

func TestAppendIgnoresEmptyKind(t *testing.T) {
	j := New(0, 0)
	j.AppendPatch(Patch{EntityID: "char-1"})
	j.AppendEvent(Event{Tick: 1})
	delta := j.DrainTick(1)
	if len(delta.Patches) != 0 || len(delta.Events) != 0 {
		t.Fatalf("expected nothing recorded, got %+v", delta)
	}
}

func TestKeyframeRingEvictsByCapacity(t *testing.T) {
	j := New(2, time.Hour)
	now := time.Now()
	for tick := uint64(1); tick <= 3; tick++ {
		j.RecordKeyframe(Keyframe{Tick: tick, Recorded: now.Add(time.Duration(tick) * time.Second)})
	}

	latest, ok := j.LatestKeyframe()
	if !ok || latest.Tick != 3 {
		t.Fatalf("expected latest keyframe 3, got %+v ok=%v", latest, ok)
	}
	if _, ok := j.KeyframeSince(1); !ok {
		t.Fatalf("expected some keyframe at/after tick 1")
	}
	frame, ok := j.KeyframeSince(2)
	if !ok || frame.Tick != 2 {
		t.Fatalf("expected oldest retained frame 2, got %+v", frame)
	}
}

func TestKeyframeRingEvictsByAge(t *testing.T) {
	j := New(8, time.Second)
	old := time.Now().Add(-time.Minute)
	j.RecordKeyframe(Keyframe{Tick: 1, Recorded: old})
	j.RecordKeyframe(Keyframe{Tick: 2, Recorded: time.Now()})

	if _, ok := j.KeyframeSince(1); !ok {
		t.Fatalf("expected fresh frame retained")
	}
	frame, _ := j.KeyframeSince(1)
	if frame.Tick != 2 {
		t.Fatalf("expected stale frame evicted, got tick %d", frame.Tick)
	}
}

func TestStatsCounters(t *testing.T) {
	j := New(1, 0)
	j.AppendPatch(Patch{Kind: PatchCharacterPos, EntityID: "char-1"})
	j.AppendPatch(Patch{Kind: PatchCharacterPos, EntityID: "char-1"})
	j.AppendEvent(Event{Kind: EventDeath, Tick: 1})
	j.DrainTick(1)

	stats := j.Stats()
	if stats.PatchesTotal != 2 || stats.EventsTotal != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
