package journal

import (
	"sync"
	"time"
)

// TickDelta is everything one tick produced: the diff stream for replication
// plus the outcome events for notification surfaces.
type TickDelta struct {
	Tick    uint64  `json:"tick"`
	Patches []Patch `json:"patches,omitempty"`
	Events  []Event `json:"events,omitempty"`
}

// Keyframe is a full snapshot recorded alongside the diff stream so a late
// or resyncing client can rehydrate without replaying history.
type Keyframe struct {
	Tick     uint64    `json:"tick"`
	Recorded time.Time `json:"recorded"`
	Payload  any       `json:"payload"`
}

// Stats reports journal counters for diagnostics.
type Stats struct {
	PatchesTotal  uint64 `json:"patchesTotal"`
	EventsTotal   uint64 `json:"eventsTotal"`
	KeyframeCount int    `json:"keyframeCount"`
}

// Journal accumulates patches and events generated during a tick and keeps a
// rolling buffer of recent keyframes. Appends happen only on the tick path;
// the lock exists for the broadcast and diagnostics readers.
type Journal struct {
	mu        sync.RWMutex
	patches   []Patch
	events    []Event
	keyframes []Keyframe
	maxFrames int
	maxAge    time.Duration

	patchesTotal uint64
	eventsTotal  uint64
}

// New constructs a journal retaining up to keyframeCapacity keyframes no
// older than maxAge.
func New(keyframeCapacity int, maxAge time.Duration) *Journal {
	if keyframeCapacity < 0 {
		keyframeCapacity = 0
	}
	return &Journal{maxFrames: keyframeCapacity, maxAge: maxAge}
}

// AppendPatch records one diff entry for the current tick.
func (j *Journal) AppendPatch(patch Patch) {
	if j == nil || patch.Kind == "" {
		return
	}
	j.mu.Lock()
	j.patches = append(j.patches, patch)
	j.patchesTotal++
	j.mu.Unlock()
}

// AppendEvent records one outcome event for the current tick.
func (j *Journal) AppendEvent(event Event) {
	if j == nil || event.Kind == "" {
		return
	}
	j.mu.Lock()
	j.events = append(j.events, event)
	j.eventsTotal++
	j.mu.Unlock()
}

// DrainTick returns everything accumulated since the previous drain and
// resets the per-tick buffers. Called once per tick after the step commits.
func (j *Journal) DrainTick(tick uint64) TickDelta {
	if j == nil {
		return TickDelta{Tick: tick}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	delta := TickDelta{Tick: tick, Patches: j.patches, Events: j.events}
	j.patches = nil
	j.events = nil
	return delta
}

// RecordKeyframe stores a snapshot, evicting frames beyond capacity or older
// than the retention window.
func (j *Journal) RecordKeyframe(frame Keyframe) {
	if j == nil || j.maxFrames == 0 {
		return
	}
	if frame.Recorded.IsZero() {
		frame.Recorded = time.Now()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.keyframes = append(j.keyframes, frame)
	if len(j.keyframes) > j.maxFrames {
		j.keyframes = j.keyframes[len(j.keyframes)-j.maxFrames:]
	}
	if j.maxAge > 0 {
		cutoff := frame.Recorded.Add(-j.maxAge)
		trimmed := j.keyframes[:0]
		for _, kept := range j.keyframes {
			if !kept.Recorded.Before(cutoff) {
				trimmed = append(trimmed, kept)
			}
		}
		j.keyframes = trimmed
	}
}

// LatestKeyframe returns the most recent keyframe, if any.
func (j *Journal) LatestKeyframe() (Keyframe, bool) {
	if j == nil {
		return Keyframe{}, false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.keyframes) == 0 {
		return Keyframe{}, false
	}
	return j.keyframes[len(j.keyframes)-1], true
}

// KeyframeSince returns the oldest keyframe at or after the tick, for a
// client resyncing from a known point.
func (j *Journal) KeyframeSince(tick uint64) (Keyframe, bool) {
	if j == nil {
		return Keyframe{}, false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, frame := range j.keyframes {
		if frame.Tick >= tick {
			return frame, true
		}
	}
	return Keyframe{}, false
}

// Stats snapshots the journal counters.
func (j *Journal) Stats() Stats {
	if j == nil {
		return Stats{}
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Stats{
		PatchesTotal:  j.patchesTotal,
		EventsTotal:   j.eventsTotal,
		KeyframeCount: len(j.keyframes),
	}
}
