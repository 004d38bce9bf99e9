package recordid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasPrefixAndParses(t *testing.T) {
	id := New(PrefixUpload)

	assert.True(t, strings.HasPrefix(id, "upl_"))
	assert.Equal(t, strings.ToLower(id), id)
	assert.True(t, IsValid(PrefixUpload, id))
	assert.False(t, IsValid(PrefixContact, id))

	_, err := Parse(PrefixUpload, id)
	require.NoError(t, err)
}

func TestNewIsMonotonic(t *testing.T) {
	prev := New(PrefixContact)
	for i := 0; i < 100; i++ {
		next := New(PrefixContact)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestIsValidRejectsGarbage(t *testing.T) {
	assert.False(t, IsValid(PrefixUpload, "upl_not-a-ulid"))
	assert.False(t, IsValid(PrefixUpload, ""))
}
