package hashring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKey_Deterministic(t *testing.T) {
	assert.Equal(t, HashKey("group-42"), HashKey("group-42"))
}

func TestHashKey_DifferentInputsLikelyDiffer(t *testing.T) {
	assert.NotEqual(t, HashKey("group-1"), HashKey("group-2"))
}

func TestIndexOf_WithinRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		idx := IndexOf(groupIDFor(i), 7)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 7)
	}
}

func TestIndexOf_StableForSameKeyAndBucketCount(t *testing.T) {
	key := "group-stable"
	first := IndexOf(key, 16)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IndexOf(key, 16))
	}
}

func TestIndexOf_PanicsOnNonPositiveN(t *testing.T) {
	assert.Panics(t, func() { IndexOf("x", 0) })
	assert.Panics(t, func() { IndexOf("x", -1) })
}

func TestIndexOf_DistributesAcrossBuckets(t *testing.T) {
	const buckets = 8
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		seen[IndexOf(groupIDFor(i), buckets)] = true
	}
	assert.Len(t, seen, buckets, "260 distinct keys over 8 buckets should hit every bucket")
}

func groupIDFor(i int) string {
	return "group-" + string(rune('a'+i%26)) + string(rune('0'+i%10)) + string(rune('A'+(i/10)%26))
}
