package storage

import (
	"database/sql"
	"fmt"
	"sync"
)

// AtomOptions configures a persisted cell.
type AtomOptions struct {
	// Listen makes the cell follow writes from other handles on the same
	// database and broadcast its own writes to settings observers. Without
	// it the value is read once and stays local to this handle.
	Listen bool
}

// Atom is a persisted single-value cell.
type Atom struct {
	store  *SettingsStore
	key    string
	listen bool

	mu    sync.Mutex
	value string
}

// Atom opens the cell stored under key, loading its current value.
func (s *SettingsStore) Atom(key string, opts AtomOptions) (*Atom, error) {
	v, err := s.loadAtom(key)
	if err != nil {
		return nil, err
	}
	return &Atom{store: s, key: key, listen: opts.Listen, value: v}, nil
}

// Key returns the key the cell is stored under.
func (a *Atom) Key() string {
	return a.key
}

// Get returns the cell's value. "" means unset.
func (a *Atom) Get() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listen {
		if v, err := a.store.loadAtom(a.key); err == nil {
			a.value = v
		}
	}
	return a.value
}

// Set stores v, both in memory and in the database.
func (a *Atom) Set(v string) error {
	a.mu.Lock()
	a.value = v
	a.store.mu.Lock()
	_, err := a.store.db.Exec(
		`INSERT INTO atoms (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		a.key, v,
	)
	a.store.mu.Unlock()
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("set atom %q: %w", a.key, err)
	}
	if a.listen {
		a.store.notify(Change{Key: a.key, Value: v, Origin: a.store.origin, Atom: true})
	}
	return nil
}

func (s *SettingsStore) loadAtom(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM atoms WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load atom %q: %w", key, err)
	}
	return v, nil
}
