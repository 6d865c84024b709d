package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Store:
// - Current on a never-written store returns ErrNotFound
// - AddVersion then Current round-trips the payload
// - Later versions shadow earlier ones
// - Len counts every appended version
// - Works with struct payloads, not just scalars

func TestStore_Current_Empty(t *testing.T) {
	t.Parallel()

	s := New[string]()
	_, err := s.Current()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestStore_AddVersion_Current(t *testing.T) {
	t.Parallel()

	s := New[int]()
	s.AddVersion(42)

	v, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, s.Len())
}

func TestStore_LatestShadowsEarlier(t *testing.T) {
	t.Parallel()

	s := New[string]()
	s.AddVersion("first")
	s.AddVersion("second")
	s.AddVersion("third")

	v, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "third", v)
	assert.Equal(t, 3, s.Len())
}

func TestStore_StructPayload(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name  string
		Count int
	}

	s := New[payload]()
	s.AddVersion(payload{Name: "a", Count: 1})
	s.AddVersion(payload{Name: "b", Count: 2})

	v, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "b", v.Name)
	assert.Equal(t, 2, v.Count)
}
