package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		before []int
		after  []int
		want   []int
	}{
		{"nothing changed", []int{1, 2, 3}, []int{3, 2, 1}, []int{}},
		{"single import", []int{1, 2}, []int{1, 2, 3}, []int{3}},
		{"multi body import", []int{1}, []int{1, 4, 2, 3}, []int{2, 3, 4}},
		{"empty session", nil, []int{1}, []int{1}},
		{"removed entity shows up", []int{1, 2}, []int{1}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(Take(tt.before), tt.after)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiffAfterUniteAgainstOriginalSnapshot(t *testing.T) {
	original := Take([]int{1, 2})

	// import added 3, 4, 5; unite consumed them and produced 6
	afterImport := []int{1, 2, 3, 4, 5}
	afterUnite := []int{1, 2, 6}

	assert.Equal(t, []int{3, 4, 5}, Diff(original, afterImport))
	assert.Equal(t, []int{6}, Diff(original, afterUnite))

	// diffing against the post-import snapshot would wrongly include the consumed ids
	assert.Equal(t, []int{3, 4, 5, 6}, Diff(Take(afterImport), afterUnite))
}

func TestSnapshotIsIndependentOfInput(t *testing.T) {
	ids := []int{1, 2}
	s := Take(ids)
	ids[0] = 9

	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(9))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []int{1, 2}, s.IDs())
}

func TestNegativeIdentifierPanics(t *testing.T) {
	assert.Panics(t, func() { NewSet([]int{-1}) })
}
