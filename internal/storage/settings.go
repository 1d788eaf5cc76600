package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Change describes a write to the settings store.
type Change struct {
	Key    string
	Value  string
	Origin string // id of the store handle that wrote
	Atom   bool
}

// Observer receives settings changes.
type Observer interface {
	SettingChanged(Change)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) SettingChanged(c Change) { f(c) }

// SettingsStore is the persisted key/value settings surface. Every read goes
// to the database; there is no cache in front of it.
type SettingsStore struct {
	db      *sql.DB
	dataDir string
	origin  string

	// mu serializes read-modify-write cycles issued through this handle.
	mu sync.Mutex

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// OpenSettings opens (or creates) settings.db in dataDir, runs migrations and
// seeds default values for keys that are not present yet.
func OpenSettings(dataDir string) (*SettingsStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "settings.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}

	if _, err := db.Exec(SettingsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate settings db: %w", err)
	}

	s := &SettingsStore{
		db:        db,
		dataDir:   dataDir,
		origin:    uuid.NewString(),
		observers: make(map[int]Observer),
	}
	if err := s.seedDefaults(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SettingsStore) Close() error {
	return s.db.Close()
}

// DataDir returns the base data directory.
func (s *SettingsStore) DataDir() string {
	return s.dataDir
}

// Origin returns the id stamped on changes written through this handle.
func (s *SettingsStore) Origin() string {
	return s.origin
}

// Get returns the full settings mapping.
func (s *SettingsStore) Get() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// GetKey returns one setting. Unknown keys fall back to their default, or ""
// when there is none.
func (s *SettingsStore) GetKey(key string) (string, error) {
	v, ok, err := getKey(s.db, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return DefaultSettings[key], nil
	}
	return v, nil
}

// SetKey writes one setting and notifies observers.
func (s *SettingsStore) SetKey(key, value string) error {
	s.mu.Lock()
	_, err := s.db.Exec(upsertSetting, key, value)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	s.notify(Change{Key: key, Value: value, Origin: s.origin})
	return nil
}

// UpdateKey runs fn on the current value of key and stores its result, all
// inside one transaction. No other update through this handle can interleave.
// When fn returns an error nothing is written.
func (s *SettingsStore) UpdateKey(key string, fn func(old string) (string, error)) (string, error) {
	s.mu.Lock()
	value, err := s.updateKeyLocked(key, fn)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	s.notify(Change{Key: key, Value: value, Origin: s.origin})
	return value, nil
}

func (s *SettingsStore) updateKeyLocked(key string, fn func(old string) (string, error)) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	old, ok, err := getKey(tx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		old = DefaultSettings[key]
	}

	value, err := fn(old)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(upsertSetting, key, value); err != nil {
		return "", fmt.Errorf("set %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return value, nil
}

// Subscribe registers o for every subsequent change and returns a function
// that removes it again.
func (s *SettingsStore) Subscribe(o Observer) func() {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *SettingsStore) notify(c Change) {
	s.obsMu.Lock()
	obs := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	s.obsMu.Unlock()

	for _, o := range obs {
		o.SettingChanged(c)
	}
}

func (s *SettingsStore) seedDefaults() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for k, v := range DefaultSettings {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("seed %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit defaults: %w", err)
	}
	return nil
}

const upsertSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getKey(q queryRower, key string) (string, bool, error) {
	var v string
	err := q.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}
