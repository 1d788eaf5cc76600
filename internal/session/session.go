package session

import (
	"fmt"
	"sync"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
)

// Atom keys for the two cursor cells.
const (
	KeyActivePattern  = "activePattern"
	KeyViewingPattern = "viewingPattern"
)

// Session holds the active and viewing pattern of one editing session.
// Both cells are persisted but never follow writes made by other sessions:
// the active pattern must not jump when another session switches patterns.
type Session struct {
	mu      sync.Mutex
	active  *storage.Atom
	viewing *storage.Atom
}

// New opens the session cells on the settings store.
func New(settings *storage.SettingsStore) (*Session, error) {
	active, err := settings.Atom(KeyActivePattern, storage.AtomOptions{Listen: false})
	if err != nil {
		return nil, fmt.Errorf("open active pattern: %w", err)
	}
	viewing, err := settings.Atom(KeyViewingPattern, storage.AtomOptions{Listen: false})
	if err != nil {
		return nil, fmt.Errorf("open viewing pattern: %w", err)
	}
	return &Session{active: active, viewing: viewing}, nil
}

// ActivePattern returns the id of the applied pattern, or "".
func (s *Session) ActivePattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Get()
}

// SetActivePattern changes the applied pattern. "" clears it.
func (s *Session) SetActivePattern(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Set(id)
}

// ViewingPattern returns the id of the displayed pattern, or "".
func (s *Session) ViewingPattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewing.Get()
}

// SetViewingPattern changes the displayed pattern. "" clears it.
func (s *Session) SetViewingPattern(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewing.Set(id)
}

// Current returns both cells at once.
func (s *Session) Current() models.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Cursor{Active: s.active.Get(), Viewing: s.viewing.Get()}
}

// Clear resets both cells.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active.Set(""); err != nil {
		return err
	}
	return s.viewing.Set("")
}
