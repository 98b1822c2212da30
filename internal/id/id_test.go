package id

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(RecipePrefix)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate(RecipePrefix)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "rcp-"))
	// prefix + hyphen + 21 char nanoid
	assert.Len(t, id, len("rcp-")+21)
}

func TestGenerate_RoundTripsThroughPath(t *testing.T) {
	for range 100 {
		id, err := Generate(RecipePrefix)
		require.NoError(t, err)
		assert.Equal(t, id, url.PathEscape(id), "ID must not need escaping in a URL path")
	}
}
