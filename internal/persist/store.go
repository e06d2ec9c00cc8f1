// Package persist is the durability boundary: character snapshots in SQLite.
// The simulation never blocks on it; the hub hands dirty snapshots to the
// checkpointer and learns about completion through re-injected commands.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jbuehler23/eryndor-mmo/internal/state"
)

// ErrNotFound reports a character id with no stored snapshot.
var ErrNotFound = errors.New("persist: character not found")

const schema = `
CREATE TABLE IF NOT EXISTS characters (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	class      TEXT NOT NULL,
	version    INTEGER NOT NULL,
	snapshot   TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store persists character snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the snapshot store at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("persist: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("persist: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persist: ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persist: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveCharacter upserts one snapshot. The version travels alongside so the
// simulation can match the acknowledgement against later mutations.
func (s *Store) SaveCharacter(ctx context.Context, c *state.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.ID == "" {
		return fmt.Errorf("persist: character id is required")
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("persist: encode character %s: %w", c.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO characters (id, name, class, version, snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			class = excluded.class,
			version = excluded.version,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, string(c.Class), int64(c.Version), string(payload), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("persist: save character %s: %w", c.ID, err)
	}
	return nil
}

// LoadCharacter reads one snapshot, or ErrNotFound.
func (s *Store) LoadCharacter(ctx context.Context, id string) (*state.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var payload string
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT snapshot, version FROM characters WHERE id = ?`, id).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("persist: load character %s: %w", id, err)
	}
	var c state.Character
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("persist: decode character %s: %w", id, err)
	}
	// The snapshot deliberately omits runtime fields; the version rides in
	// its own column so the save-ack protocol survives a reconnect.
	c.Version = uint64(version)
	normalize(&c)
	return &c, nil
}

// ListCharacterIDs returns every stored character id.
func (s *Store) ListCharacterIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("persist: list characters: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("persist: scan character id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: iterate characters: %w", err)
	}
	return ids, nil
}

// DeleteCharacter removes one snapshot. Deleting an absent id is not an
// error.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("persist: delete character %s: %w", id, err)
	}
	return nil
}

// normalize rebuilds the map and slice fields JSON leaves nil so a restored
// character behaves like a freshly created one.
func normalize(c *state.Character) {
	if c.Cooldowns == nil {
		c.Cooldowns = make(map[string]uint64)
	}
	if c.UnlockedAbilities == nil {
		c.UnlockedAbilities = make(map[string]bool)
	}
	if c.UnlockedPassives == nil {
		c.UnlockedPassives = make(map[string]bool)
	}
	if c.QuestLog == nil {
		c.QuestLog = make(map[string]*state.QuestProgress)
	}
	if c.WeaponProf == nil {
		c.WeaponProf = state.WeaponProficiencies{}
	}
	if c.ArmorProf == nil {
		c.ArmorProf = state.ArmorProficiencies{}
	}
}
