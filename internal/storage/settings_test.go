package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, dir string) *SettingsStore {
	t.Helper()
	s, err := OpenSettings(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSettings(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	if _, err := os.Stat(filepath.Join(dir, "settings.db")); err != nil {
		t.Errorf("Expected settings.db to exist: %v", err)
	}
	assert.NotEmpty(t, s.Origin())
	assert.Equal(t, dir, s.DataDir())
}

func TestDefaultsSeeded(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	all, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings, all)

	v, err := s.GetKey(KeyUserPatterns)
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestSeedKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSettings(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetKey(KeyTheme, "eclipse"))
	require.NoError(t, s.Close())

	s2 := openTestStore(t, dir)
	v, err := s2.GetKey(KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "eclipse", v)
}

func TestGetKeyUnknown(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	v, err := s.GetKey("doesNotExist")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestSetKeyNotifiesObservers(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	var got []Change
	unsubscribe := s.Subscribe(ObserverFunc(func(c Change) { got = append(got, c) }))

	require.NoError(t, s.SetKey(KeyFontSize, "24"))
	unsubscribe()
	require.NoError(t, s.SetKey(KeyFontSize, "12"))

	require.Len(t, got, 1)
	assert.Equal(t, Change{Key: KeyFontSize, Value: "24", Origin: s.Origin()}, got[0])
}

func TestUpdateKey(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	v, err := s.UpdateKey(KeyLatestCode, func(old string) (string, error) {
		return old + "s(\"bd\")", nil
	})
	require.NoError(t, err)
	assert.Equal(t, `s("bd")`, v)

	stored, err := s.GetKey(KeyLatestCode)
	require.NoError(t, err)
	assert.Equal(t, `s("bd")`, stored)
}

func TestUpdateKeyErrorWritesNothing(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	notified := false
	s.Subscribe(ObserverFunc(func(Change) { notified = true }))

	_, err := s.UpdateKey(KeyTheme, func(string) (string, error) {
		return "", os.ErrInvalid
	})
	require.ErrorIs(t, err, os.ErrInvalid)
	assert.False(t, notified)

	v, err := s.GetKey(KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "strudelTheme", v)
}

func TestUpdateKeyConcurrent(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.SetKey("counter", ""))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateKey("counter", func(old string) (string, error) {
				return old + "x", nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := s.GetKey("counter")
	require.NoError(t, err)
	assert.Len(t, v, 20)
}

func TestUpdateKeyConcurrentWithAtomWrites(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.SetKey("counter", ""))
	a, err := s.Atom("activePattern", AtomOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := s.UpdateKey("counter", func(old string) (string, error) {
					return old + "x", nil
				})
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, a.Set("p"))
			}
		}()
	}
	wg.Wait()

	v, err := s.GetKey("counter")
	require.NoError(t, err)
	assert.Len(t, v, 8*50)
}

func TestUpdateKeyAcrossHandles(t *testing.T) {
	dir := t.TempDir()
	s1 := openTestStore(t, dir)
	s2 := openTestStore(t, dir)
	a, err := s2.Atom("viewingPattern", AtomOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			_, err := s1.UpdateKey("counter", func(old string) (string, error) {
				return old + "x", nil
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			assert.NoError(t, a.Set("v"))
		}
	}()
	wg.Wait()

	v, err := s1.GetKey("counter")
	require.NoError(t, err)
	assert.Len(t, v, 50)
}

func TestSettingsView(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	require.NoError(t, s.SetKey(KeyUserPatterns, `{"a":{"code":"x"},"b":{"id":"b","code":"y"}}`))
	require.NoError(t, s.SetIsZen(true))

	view, err := s.Settings()
	require.NoError(t, err)
	assert.True(t, view.IsZen)
	assert.True(t, view.IsLineNumbersDisplayed)
	assert.False(t, view.IsTooltipEnabled)
	assert.Equal(t, float64(18), view.FontSize)
	assert.Equal(t, "right", view.PanelPosition)
	assert.Equal(t, "a", view.UserPatterns["a"].ID)
	assert.Equal(t, "y", view.UserPatterns["b"].Code)
}

func TestSettingsViewPanelFallsBackToBottom(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.SetActiveFooter(""))

	view, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, "bottom", view.PanelPosition)
}

func TestSettingsViewBadFontSize(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.SetKey(KeyFontSize, "huge"))

	view, err := s.Settings()
	require.NoError(t, err)
	assert.Zero(t, view.FontSize)
}
