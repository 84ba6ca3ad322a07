package models

import (
	"sort"
	"testing"

	"github.com/aouyang1/go-featureselect/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStratifiedKFold(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	folds, err := StratifiedKFold(y, 2, false, 0)
	require.Nil(t, err)

	expected := []Fold{
		{Train: []int{1, 3, 5, 7, 9}, Test: []int{0, 2, 4, 6, 8}},
		{Train: []int{0, 2, 4, 6, 8}, Test: []int{1, 3, 5, 7, 9}},
	}
	assert.Equal(t, expected, folds)
}

func TestStratifiedKFoldShuffle(t *testing.T) {
	y := []int{2, 0, 1, 0, 2, 1, 0, 0, 1, 2, 0, 1, 2, 0, 1}
	classCount := map[int]int{}
	for _, label := range y {
		classCount[label]++
	}

	for _, k := range []int{2, 3, 4} {
		folds, err := StratifiedKFold(y, k, true, 9)
		require.Nil(t, err)
		require.Len(t, folds, k)

		var allTest []int
		for _, fold := range folds {
			assert.Len(t, fold.Train, len(y)-len(fold.Test))
			assert.True(t, sort.IntsAreSorted(fold.Test))

			inFold := map[int]int{}
			for _, i := range fold.Test {
				inFold[y[i]]++
			}
			for label, cnt := range classCount {
				assert.InDelta(t, float64(cnt)/float64(k), float64(inFold[label]), 1.0)
			}
			allTest = append(allTest, fold.Test...)
		}
		sort.Ints(allTest)
		expected := make([]int, len(y))
		for i := range expected {
			expected[i] = i
		}
		assert.Equal(t, expected, allTest)
	}

	first, err := StratifiedKFold(y, 3, true, 9)
	require.Nil(t, err)
	second, err := StratifiedKFold(y, 3, true, 9)
	require.Nil(t, err)
	assert.Equal(t, first, second)
}

func TestStratifiedKFoldErrors(t *testing.T) {
	testData := map[string]struct {
		y   []int
		k   int
		err error
	}{
		"one fold":              {y: []int{0, 1, 0, 1}, k: 1, err: errs.ErrConfiguration},
		"folds exceed class":    {y: []int{0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, k: 10, err: errs.ErrInvalidInput},
		"no samples":            {y: nil, k: 2, err: errs.ErrInvalidInput},
		"folds equal min class": {y: []int{0, 0, 1, 1, 1}, k: 2, err: nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := StratifiedKFold(td.y, td.k, false, 0)
			if td.err == nil {
				assert.Nil(t, err)
				return
			}
			assert.ErrorIs(t, err, td.err)
		})
	}
}
