package ino_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmkfs/rmkfs/internal/ino"
)

func Test_Of_Root_ReturnsReservedInode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ino.Root, ino.Of("."))
}

func Test_Of_IsStableWithinProcess(t *testing.T) {
	t.Parallel()

	id := "a1b2c3d4-0000-0000-0000-000000000000"
	assert.Equal(t, ino.Of(id), ino.Of(id))
}

func Test_Of_DistinctIdsDeriveDistinctInodes(t *testing.T) {
	t.Parallel()

	a := ino.Of("a1b2c3d4-0000-0000-0000-000000000000")
	b := ino.Of("b2c3d4e5-0000-0000-0000-000000000000")
	assert.NotEqual(t, a, b)
}

func Test_OfParent_NilDefaultsToRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ino.Root, ino.OfParent(nil))
}

func Test_OfParent_MatchesOfForNonNil(t *testing.T) {
	t.Parallel()

	id := "a1b2c3d4-0000-0000-0000-000000000000"
	assert.Equal(t, ino.Of(id), ino.OfParent(&id))
}

// Every derived ino must fit in int64's non-negative range: it is stored
// in a sqlite INTEGER column and round-tripped through database/sql's
// generic uint64 bind/scan path, both of which reject a value with the
// high bit set.
func Test_Of_NeverSetsHighBit(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		id := string(rune('a'+i%26)) + string(rune(i))
		assert.Less(t, ino.Of(id), uint64(1)<<63)
	}
}
