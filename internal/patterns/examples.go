package patterns

import (
	"strconv"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/tunes"
)

// ExampleSource is the display name of the example collection.
const ExampleSource = "Stock Examples"

// ExampleRepo is the read-only collection of bundled tunes, keyed by their
// position in the tune table.
type ExampleRepo struct {
	order    []string
	names    map[string]string
	patterns map[string]models.Pattern
}

// NewExampleRepo builds the example collection once from a tune table.
func NewExampleRepo(table []tunes.Tune) *ExampleRepo {
	r := &ExampleRepo{
		names:    make(map[string]string, len(table)),
		patterns: make(map[string]models.Pattern, len(table)),
	}
	for i, t := range table {
		id := strconv.Itoa(i)
		r.order = append(r.order, id)
		r.names[id] = t.Name
		r.patterns[id] = models.Pattern{ID: id, Code: t.Code, Collection: models.CollectionExamples}
	}
	return r
}

// Source returns the display name of the collection.
func (r *ExampleRepo) Source() string {
	return ExampleSource
}

// GetAll returns a copy of every example pattern.
func (r *ExampleRepo) GetAll() map[string]models.Pattern {
	out := make(map[string]models.Pattern, len(r.patterns))
	for k, v := range r.patterns {
		out[k] = v
	}
	return out
}

// GetPatternData returns the example stored under id, or nil.
func (r *ExampleRepo) GetPatternData(id string) *models.Pattern {
	p, ok := r.patterns[id]
	if !ok {
		return nil
	}
	return &p
}

func (r *ExampleRepo) Exists(id string) bool {
	return r.GetPatternData(id) != nil
}

// IDs returns the example ids in table order.
func (r *ExampleRepo) IDs() []string {
	return append([]string(nil), r.order...)
}

// Name returns the tune name behind an example id.
func (r *ExampleRepo) Name(id string) string {
	return r.names[id]
}
