package patterns

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/logger"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/tunes"
)

// Library ties the user and example collections to a session cursor.
type Library struct {
	User     *UserRepo
	Examples *ExampleRepo
	Cursor   Cursor

	log *logger.Logger
	now func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(lib *Library) { lib.log = l }
}

// WithClock replaces time.Now, used for created_at and export file names.
func WithClock(now func() time.Time) Option {
	return func(lib *Library) { lib.now = now }
}

// New builds a Library over the settings store and the given tune table.
func New(settings *storage.SettingsStore, cursor Cursor, table []tunes.Tune, opts ...Option) *Library {
	lib := &Library{
		Examples: NewExampleRepo(table),
		Cursor:   cursor,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(lib)
	}
	lib.User = &UserRepo{
		settings: settings,
		examples: lib.Examples,
		cursor:   cursor,
		log:      lib.log,
		now:      lib.now,
	}
	return lib
}

// Get resolves id against the user collection first, then the examples.
func (l *Library) Get(id string) (*models.Pattern, error) {
	p, err := l.User.GetPatternData(id)
	if err != nil || p != nil {
		return p, err
	}
	if p := l.Examples.GetPatternData(id); p != nil {
		return p, nil
	}
	return nil, ErrNotFound
}

// InitUserCode looks for a pattern whose code is exactly code and, when one
// is found, makes it both active and viewed. Examples are scanned first, in
// table order, then user patterns in key order (see keyOrder). User ids
// shadowed by an example id are skipped. found is false when nothing
// matched; state is untouched then.
func (l *Library) InitUserCode(code string) (id string, found bool, err error) {
	user, err := l.User.GetAll()
	if err != nil {
		return "", false, err
	}

	for _, exID := range l.Examples.IDs() {
		if l.Examples.GetPatternData(exID).Code == code {
			return exID, true, l.selectPattern(exID)
		}
	}
	for _, uid := range keyOrder(user) {
		if l.Examples.Exists(uid) {
			continue
		}
		if user[uid].Code == code {
			return uid, true, l.selectPattern(uid)
		}
	}
	l.log.Debug("no pattern matches user code")
	return "", false, nil
}

func (l *Library) selectPattern(id string) error {
	if err := l.Cursor.SetActivePattern(id); err != nil {
		return err
	}
	return l.Cursor.SetViewingPattern(id)
}

// Search matches query case-insensitively against ids and code. User
// patterns come first, sorted by id, then examples in table order.
func (l *Library) Search(query string) ([]models.Pattern, error) {
	user, err := l.User.GetAll()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	match := func(p models.Pattern, id string) bool {
		return strings.Contains(strings.ToLower(id), q) || strings.Contains(strings.ToLower(p.Code), q)
	}

	var out []models.Pattern
	for _, id := range sortedIDs(user) {
		if match(user[id], id) {
			out = append(out, user[id])
		}
	}
	for _, id := range l.Examples.IDs() {
		p := l.Examples.GetPatternData(id)
		if match(*p, id) || strings.Contains(strings.ToLower(l.Examples.Name(id)), q) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func sortedIDs(pats map[string]models.Pattern) []string {
	ids := make([]string, 0, len(pats))
	for id := range pats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// keyOrder lists ids the way a JSON object's keys are enumerated by the
// editor: array-index ids first in numeric order, then the rest sorted.
func keyOrder(pats map[string]models.Pattern) []string {
	ids := sortedIDs(pats)
	sort.SliceStable(ids, func(i, j int) bool {
		a, aok := arrayIndex(ids[i])
		b, bok := arrayIndex(ids[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		}
		return false
	})
	return ids
}

// arrayIndex reports whether id is a canonical array index.
func arrayIndex(id string) (uint64, bool) {
	if id == "" || (len(id) > 1 && id[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return n, true
}
