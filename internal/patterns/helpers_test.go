package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/tunes"
)

var testNow = time.Date(2024, 3, 9, 22, 15, 0, 0, time.UTC)

var testTunes = []tunes.Tune{
	{Name: "drums", Code: `s("bd sd")`},
	{Name: "bass", Code: `note("c2 g2").s("sawtooth")`},
}

// memCursor is an in-memory Cursor.
type memCursor struct {
	active, viewing string
}

func (c *memCursor) ActivePattern() string             { return c.active }
func (c *memCursor) SetActivePattern(id string) error  { c.active = id; return nil }
func (c *memCursor) ViewingPattern() string            { return c.viewing }
func (c *memCursor) SetViewingPattern(id string) error { c.viewing = id; return nil }

func setupLibrary(t *testing.T) (*Library, *memCursor) {
	t.Helper()
	settings, err := storage.OpenSettings(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { settings.Close() })

	cursor := &memCursor{}
	lib := New(settings, cursor, testTunes, WithClock(func() time.Time { return testNow }))
	return lib, cursor
}
