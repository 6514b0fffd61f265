package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_OrdersByPriority(t *testing.T) {
	var l List[string]
	l.Insert(5, "e")
	l.Insert(-3, "a")
	l.Insert(0, "b")
	l.Insert(2, "d")
	l.Insert(0, "c")

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, l.Snapshot())
	assert.Equal(t, 5, l.Len())
}

func TestInsert_TiesKeepInsertionOrder(t *testing.T) {
	var l List[int]
	for i := 0; i < 10; i++ {
		l.Insert(0, i)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, l.Snapshot())
}

func TestRemove(t *testing.T) {
	var l List[string]
	a := l.Insert(0, "a")
	b := l.Insert(0, "b")
	c := l.Insert(0, "c")

	require.True(t, l.Remove(b))
	assert.False(t, l.Remove(b), "second removal misses")
	assert.Equal(t, []string{"a", "c"}, l.Snapshot())
	assert.Equal(t, 2, l.Len())

	require.True(t, l.Remove(a))
	require.True(t, l.Remove(c))
	assert.Zero(t, l.Len())
	assert.Nil(t, l.Snapshot())
}

func TestRemove_UnknownSeq(t *testing.T) {
	var l List[int]
	l.Insert(0, 1)
	assert.False(t, l.Remove(999))
	assert.Equal(t, 1, l.Len())
}

func TestEach_StopsEarly(t *testing.T) {
	var l List[int]
	for i := 1; i <= 5; i++ {
		l.Insert(i, i)
	}

	var seen []int
	l.Each(func(v int) bool {
		seen = append(seen, v)
		return v < 3
	})
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestSnapshot_ImmuneToMutation(t *testing.T) {
	var l List[string]
	l.Insert(0, "a")
	seq := l.Insert(1, "b")

	snap := l.Snapshot()
	l.Remove(seq)
	l.Insert(-1, "z")

	assert.Equal(t, []string{"a", "b"}, snap)
	assert.Equal(t, []string{"z", "a"}, l.Snapshot())
}

func TestClear_DoesNotReuseSequenceIDs(t *testing.T) {
	var l List[int]
	stale := l.Insert(0, 1)
	l.Clear()
	require.Zero(t, l.Len())

	l.Insert(0, 2)
	assert.False(t, l.Remove(stale), "stale id must not alias a new entry")
	assert.Equal(t, 1, l.Len())
}

func TestZeroValueReady(t *testing.T) {
	var l List[int]
	assert.Zero(t, l.Len())
	assert.Nil(t, l.Snapshot())
	l.Each(func(int) bool {
		t.Fatal("empty list must not iterate")
		return false
	})
}
