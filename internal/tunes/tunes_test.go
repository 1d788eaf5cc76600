package tunes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllBundled(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	seen := make(map[string]bool)
	for _, tune := range all {
		assert.NotEmpty(t, tune.Code, "tune %s has no code", tune.Name)
		assert.False(t, seen[tune.Name], "duplicate tune %s", tune.Name)
		seen[tune.Name] = true
	}
	assert.Equal(t, "swimming", all[0].Name)
}

func TestParseRejectsUnnamed(t *testing.T) {
	_, err := Parse([]byte("- code: s(\"bd\")\n"))
	assert.Error(t, err)
}

func TestParseKeepsOrder(t *testing.T) {
	got, err := Parse([]byte("- {name: b, code: x}\n- {name: a, code: y}\n"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "a", got[1].Name)
}
