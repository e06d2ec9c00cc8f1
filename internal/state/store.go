package state

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
)

// ErrEntityNotFound is returned when an operation targets a despawned or
// disconnected entity. Callers abandon the triggering intent; they never
// crash the tick.
var ErrEntityNotFound = errors.New("state: entity not found")

const storeShards = 16

// Store indexes every live character and enemy, partitioned by entity id so
// unrelated entities never contend. Record contents are mutated only from
// the tick-processing path; the shard locks protect the index itself so
// sessions can resolve ids concurrently with the loop.
type Store struct {
	shards [storeShards]storeShard
}

type storeShard struct {
	mu         sync.RWMutex
	characters map[string]*Character
	enemies    map[string]*Enemy
}

func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].characters = make(map[string]*Character)
		s.shards[i].enemies = make(map[string]*Enemy)
	}
	return s
}

func (s *Store) shardFor(id string) *storeShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.shards[h.Sum32()%storeShards]
}

// AddCharacter registers a character. Adding a duplicate id is an error.
func (s *Store) AddCharacter(c *Character) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("state: character missing id")
	}
	shard := s.shardFor(c.ID)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, exists := shard.characters[c.ID]; exists {
		return fmt.Errorf("state: character %q already registered", c.ID)
	}
	shard.characters[c.ID] = c
	return nil
}

// Character resolves a live character by id.
func (s *Store) Character(id string) (*Character, error) {
	shard := s.shardFor(id)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	if c, ok := shard.characters[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("character %q: %w", id, ErrEntityNotFound)
}

// RemoveCharacter evicts a character, returning the final record so the
// caller can persist it.
func (s *Store) RemoveCharacter(id string) (*Character, error) {
	shard := s.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	c, ok := shard.characters[id]
	if !ok {
		return nil, fmt.Errorf("character %q: %w", id, ErrEntityNotFound)
	}
	delete(shard.characters, id)
	return c, nil
}

// AddEnemy registers a spawned enemy.
func (s *Store) AddEnemy(e *Enemy) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("state: enemy missing id")
	}
	shard := s.shardFor(e.ID)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, exists := shard.enemies[e.ID]; exists {
		return fmt.Errorf("state: enemy %q already registered", e.ID)
	}
	shard.enemies[e.ID] = e
	return nil
}

// Enemy resolves a live enemy by id.
func (s *Store) Enemy(id string) (*Enemy, error) {
	shard := s.shardFor(id)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	if e, ok := shard.enemies[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("enemy %q: %w", id, ErrEntityNotFound)
}

// RemoveEnemy evicts a despawned enemy.
func (s *Store) RemoveEnemy(id string) (*Enemy, error) {
	shard := s.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	e, ok := shard.enemies[id]
	if !ok {
		return nil, fmt.Errorf("enemy %q: %w", id, ErrEntityNotFound)
	}
	delete(shard.enemies, id)
	return e, nil
}

// Actor resolves either kind of entity by id.
func (s *Store) Actor(id string) (*Actor, error) {
	if c, err := s.Character(id); err == nil {
		return &c.Actor, nil
	}
	if e, err := s.Enemy(id); err == nil {
		return &e.Actor, nil
	}
	return nil, fmt.Errorf("actor %q: %w", id, ErrEntityNotFound)
}

// ForEachCharacter visits every character in id order. The visit order is
// deterministic so per-tick processing replays identically.
func (s *Store) ForEachCharacter(fn func(*Character)) {
	for _, id := range s.characterIDs() {
		if c, err := s.Character(id); err == nil {
			fn(c)
		}
	}
}

// ForEachEnemy visits every enemy in id order.
func (s *Store) ForEachEnemy(fn func(*Enemy)) {
	for _, id := range s.enemyIDs() {
		if e, err := s.Enemy(id); err == nil {
			fn(e)
		}
	}
}

func (s *Store) characterIDs() []string {
	var ids []string
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		for id := range shard.characters {
			ids = append(ids, id)
		}
		shard.mu.RUnlock()
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) enemyIDs() []string {
	var ids []string
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		for id := range shard.enemies {
			ids = append(ids, id)
		}
		shard.mu.RUnlock()
	}
	sort.Strings(ids)
	return ids
}

// CharacterCount reports how many characters are live.
func (s *Store) CharacterCount() int {
	total := 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		total += len(shard.characters)
		shard.mu.RUnlock()
	}
	return total
}

// EnemyCount reports how many enemies are live.
func (s *Store) EnemyCount() int {
	total := 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		total += len(shard.enemies)
		shard.mu.RUnlock()
	}
	return total
}
