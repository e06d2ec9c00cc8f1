package threat

// Entry records one attacker's accumulated threat against the owning enemy.
type Entry struct {
	AttackerID string
	Score      float64
	// FirstTick is the tick of the attacker's first contribution. Ties on
	// Score resolve toward the earliest FirstTick so the target does not
	// oscillate between equal attackers.
	FirstTick uint64
}

// Policy configures optional threat decay. The default is no decay: a
// fleeing attacker stays on the table until the enemy dies or resets.
type Policy struct {
	DecayPerTick   float64
	DropBelowScore float64
}

// Table ranks attackers by accumulated threat for a single enemy. It is
// mutated only from the tick-processing path and needs no locking.
type Table struct {
	policy  Policy
	entries map[string]*Entry
}

func NewTable(policy Policy) *Table {
	return &Table{policy: policy, entries: make(map[string]*Entry)}
}

// Add accrues threat for an attacker. Negative or zero amounts are ignored;
// threat only ever rises.
func (t *Table) Add(attackerID string, amount float64, tick uint64) {
	if t == nil || attackerID == "" || amount <= 0 {
		return
	}
	entry, ok := t.entries[attackerID]
	if !ok {
		entry = &Entry{AttackerID: attackerID, FirstTick: tick}
		t.entries[attackerID] = entry
	}
	entry.Score += amount
}

// Decay applies the configured per-tick decay and evicts entries that fall
// below the drop threshold. A zero policy makes this a no-op.
func (t *Table) Decay() {
	if t == nil || t.policy.DecayPerTick <= 0 {
		return
	}
	for id, entry := range t.entries {
		entry.Score -= t.policy.DecayPerTick
		if entry.Score <= t.policy.DropBelowScore {
			delete(t.entries, id)
		}
	}
}

// Target returns the highest-threat attacker among those the eligible
// predicate admits (typically "alive and inside leash range"). Ties break
// toward the earliest first contribution, then lexicographic id for full
// determinism. Returns false when no eligible attacker exists.
func (t *Table) Target(eligible func(attackerID string) bool) (string, bool) {
	if t == nil || len(t.entries) == 0 {
		return "", false
	}
	var best *Entry
	for _, entry := range t.entries {
		if eligible != nil && !eligible(entry.AttackerID) {
			continue
		}
		if best == nil || entry.beats(best) {
			best = entry
		}
	}
	if best == nil {
		return "", false
	}
	return best.AttackerID, true
}

func (e *Entry) beats(other *Entry) bool {
	if e.Score != other.Score {
		return e.Score > other.Score
	}
	if e.FirstTick != other.FirstTick {
		return e.FirstTick < other.FirstTick
	}
	return e.AttackerID < other.AttackerID
}

// Remove drops one attacker, used when the attacker despawns entirely.
func (t *Table) Remove(attackerID string) {
	if t == nil {
		return
	}
	delete(t.entries, attackerID)
}

// Reset clears all entries, used on enemy death, despawn, or leash reset.
func (t *Table) Reset() {
	if t == nil {
		return
	}
	t.entries = make(map[string]*Entry)
}

// Score returns the accumulated threat for one attacker.
func (t *Table) Score(attackerID string) float64 {
	if t == nil {
		return 0
	}
	if entry, ok := t.entries[attackerID]; ok {
		return entry.Score
	}
	return 0
}

// Len reports how many attackers hold entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
