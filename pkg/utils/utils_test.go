package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", h)
	assert.True(t, CheckPassword("s3cret", h))
	assert.False(t, CheckPassword("wrong", h))
	assert.False(t, CheckPassword("s3cret", "not-a-hash"))
}

func TestNewIDUniqueAndSorted(t *testing.T) {
	prev := ""
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.Len(t, id, 26)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
		require.Greater(t, id, prev)
		prev = id
	}
}
