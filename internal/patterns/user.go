package patterns

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/logger"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
)

var (
	// ErrNotFound is returned when a pattern id resolves to nothing.
	ErrNotFound = errors.New("pattern not found")
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")

	errNameTaken = errors.New("name already taken")
)

// Dialog messages.
const (
	MsgRenamePrompt = "Enter new name"
	MsgNameTaken    = "Name already taken!"
	MsgNameEmpty    = "Name must not be empty!"
	MsgClearConfirm = "This will delete all your patterns. Are you really sure?"
)

const defaultCode = ""

// Cursor tracks which pattern is active and which is being viewed.
type Cursor interface {
	ActivePattern() string
	SetActivePattern(id string) error
	ViewingPattern() string
	SetViewingPattern(id string) error
}

// UserRepo is the mutable user collection. It is stored JSON-encoded under
// one key of the settings store and every mutation rewrites the whole
// collection in a single read-modify-write.
type UserRepo struct {
	settings *storage.SettingsStore
	examples *ExampleRepo
	cursor   Cursor
	log      *logger.Logger
	now      func() time.Time
}

// Source returns the display name of the collection.
func (r *UserRepo) Source() string {
	return models.CollectionUser
}

// GetAll returns the full user collection.
func (r *UserRepo) GetAll() (map[string]models.Pattern, error) {
	raw, err := r.settings.GetKey(storage.KeyUserPatterns)
	if err != nil {
		return nil, err
	}
	return decodePatterns(raw)
}

// GetPatternData returns the pattern stored under id, or nil.
func (r *UserRepo) GetPatternData(id string) (*models.Pattern, error) {
	pats, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	return lookup(pats, id), nil
}

func (r *UserRepo) Exists(id string) (bool, error) {
	p, err := r.GetPatternData(id)
	return p != nil, err
}

// Create stores a new empty pattern under a fresh id.
func (r *UserRepo) Create() (models.Entry, error) {
	var created models.Pattern
	err := r.mutate(func(pats map[string]models.Pattern) error {
		created = models.Pattern{
			ID:         freshID(pats, CreatePatternID),
			Code:       defaultCode,
			CreatedAt:  r.now().UnixMilli(),
			Collection: models.CollectionUser,
		}
		pats[created.ID] = created
		return nil
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("create pattern: %w", err)
	}
	r.log.Debug("pattern created", "id", created.ID)
	return models.Entry{ID: created.ID, Data: &created}, nil
}

// Update stores data under id, overwriting whatever was there. The stored
// pattern always carries id and the user collection.
func (r *UserRepo) Update(id string, data models.Pattern) (models.Entry, error) {
	data.ID = id
	data.Collection = models.CollectionUser
	err := r.mutate(func(pats map[string]models.Pattern) error {
		pats[id] = data
		return nil
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("update pattern %q: %w", id, err)
	}
	return models.Entry{ID: id, Data: &data}, nil
}

// Duplicate copies the example or user pattern id under a new id. Examples
// win when both collections know the id.
func (r *UserRepo) Duplicate(id string) (models.Entry, error) {
	src := r.examples.GetPatternData(id)
	if src == nil {
		var err error
		if src, err = r.GetPatternData(id); err != nil {
			return models.Entry{}, err
		}
	}
	if src == nil {
		return models.Entry{}, fmt.Errorf("duplicate %q: %w", id, ErrNotFound)
	}

	data := *src
	err := r.mutate(func(pats map[string]models.Pattern) error {
		data.ID = freshID(pats, func() string { return NextCloneID(id) })
		data.Collection = models.CollectionUser
		pats[data.ID] = data
		return nil
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("duplicate %q: %w", id, err)
	}
	r.log.Debug("pattern duplicated", "from", id, "to", data.ID)
	return models.Entry{ID: data.ID, Data: &data}, nil
}

// Rename asks d for a new name and moves the pattern there. A cancelled
// prompt, an empty name or a name that is already taken leave everything as
// it was and hand back the original entry.
func (r *UserRepo) Rename(id string, d Dialog) (models.Entry, error) {
	data, err := r.GetPatternData(id)
	if err != nil {
		return models.Entry{}, err
	}
	if data == nil {
		return models.Entry{}, fmt.Errorf("rename %q: %w", id, ErrNotFound)
	}
	original := models.Entry{ID: id, Data: data}

	newID, ok := d.Prompt(MsgRenamePrompt, id)
	if !ok {
		return original, nil
	}
	if newID == "" {
		d.Alert(MsgNameEmpty)
		return original, nil
	}

	var moved models.Pattern
	err = r.mutate(func(pats map[string]models.Pattern) error {
		if _, taken := pats[newID]; taken {
			return errNameTaken
		}
		p, ok := pats[id]
		if !ok {
			return ErrNotFound
		}
		delete(pats, id)
		p.ID = newID
		pats[newID] = p
		moved = p
		return nil
	})
	if errors.Is(err, errNameTaken) {
		d.Alert(MsgNameTaken)
		return original, nil
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("rename %q: %w", id, err)
	}

	if r.cursor.ActivePattern() == id {
		if err := r.cursor.SetActivePattern(newID); err != nil {
			return models.Entry{}, err
		}
	}
	r.log.Info("pattern renamed", "from", id, "to", newID)
	return models.Entry{ID: newID, Data: &moved}, nil
}

// ClearAll erases the whole user collection once d confirms. When the viewed
// pattern is an example it stays on screen; otherwise the active pattern is
// cleared and a blank pattern is returned.
func (r *UserRepo) ClearAll(d Dialog) (models.Entry, error) {
	if !d.Confirm(MsgClearConfirm) {
		return models.Entry{}, ErrCancelled
	}

	viewing := r.cursor.ViewingPattern()
	example := r.examples.GetPatternData(viewing)
	if err := r.settings.SetKey(storage.KeyUserPatterns, "{}"); err != nil {
		return models.Entry{}, fmt.Errorf("clear patterns: %w", err)
	}
	r.log.Info("user patterns cleared")

	if example != nil {
		return models.Entry{ID: viewing, Data: example}, nil
	}
	if err := r.cursor.SetActivePattern(""); err != nil {
		return models.Entry{}, err
	}
	return models.Entry{Data: &models.Pattern{Code: defaultCode, Collection: models.CollectionUser}}, nil
}

// Delete removes the pattern id and returns what should be displayed next:
// a blank pattern when id was being viewed, otherwise the viewed pattern as
// it is stored in the user collection (nil data when it is not there).
func (r *UserRepo) Delete(id string) (models.Entry, error) {
	var remaining map[string]models.Pattern
	err := r.mutate(func(pats map[string]models.Pattern) error {
		delete(pats, id)
		remaining = pats
		return nil
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("delete pattern %q: %w", id, err)
	}

	if r.cursor.ActivePattern() == id {
		if err := r.cursor.SetActivePattern(""); err != nil {
			return models.Entry{}, err
		}
	}
	r.log.Debug("pattern deleted", "id", id)

	viewing := r.cursor.ViewingPattern()
	if viewing == id {
		return models.Entry{Data: &models.Pattern{Code: defaultCode}}, nil
	}
	return models.Entry{ID: viewing, Data: lookup(remaining, viewing)}, nil
}

func (r *UserRepo) mutate(fn func(pats map[string]models.Pattern) error) error {
	_, err := r.settings.UpdateKey(storage.KeyUserPatterns, func(old string) (string, error) {
		pats, err := decodePatterns(old)
		if err != nil {
			return "", err
		}
		if err := fn(pats); err != nil {
			return "", err
		}
		return encodePatterns(pats)
	})
	return err
}

func decodePatterns(raw string) (map[string]models.Pattern, error) {
	pats := make(map[string]models.Pattern)
	if raw == "" {
		return pats, nil
	}
	if err := json.Unmarshal([]byte(raw), &pats); err != nil {
		return nil, fmt.Errorf("decode %s: %w", storage.KeyUserPatterns, err)
	}
	if pats == nil {
		pats = make(map[string]models.Pattern)
	}
	return pats, nil
}

func encodePatterns(pats map[string]models.Pattern) (string, error) {
	b, err := json.Marshal(pats)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", storage.KeyUserPatterns, err)
	}
	return string(b), nil
}

func lookup(pats map[string]models.Pattern, id string) *models.Pattern {
	p, ok := pats[id]
	if !ok {
		return nil
	}
	return &p
}

// freshID draws ids from gen until one is not taken.
func freshID(pats map[string]models.Pattern, gen func() string) string {
	for {
		id := gen()
		if _, taken := pats[id]; !taken {
			return id
		}
	}
}
