package selection

import (
	"testing"

	"github.com/aouyang1/go-featureselect/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFE(t *testing.T) {
	ds := generateDataset(t, [][]float64{{-3}, {3}}, 12, 2, 0.5, 0, 7)

	res, err := RFE(ds, &RFEOptions{Folds: 3, Step: 1, C: 1, Seed: 7})
	require.Nil(t, err)

	assert.Equal(t, 1, res.OptimalFeatures)
	require.Len(t, res.Ranking, 3)
	assert.Equal(t, "Otu001", res.Ranking[0].Name)
	assert.Equal(t, 0, res.Ranking[0].Index)
	assert.Equal(t, []int{1, 2, 3}, []int{res.Ranking[0].Rank, res.Ranking[1].Rank, res.Ranking[2].Rank})

	require.Len(t, res.Curve, 3)
	for i, p := range res.Curve {
		assert.Equal(t, i+1, p.NumFeatures)
		assert.GreaterOrEqual(t, p.Score, 0.0)
		assert.LessOrEqual(t, p.Score, 1.0)
	}
	assert.Equal(t, 1.0, res.Curve[0].Score)

	require.Len(t, res.FoldScores, 3)
	for _, scores := range res.FoldScores {
		assert.Len(t, scores, 3)
	}
}

func TestRFEOffsetCounts(t *testing.T) {
	ds := generateDataset(t, [][]float64{{1000}, {1400}}, 12, 6, 100, 500, 13)

	res, err := RFE(ds, &RFEOptions{Folds: 3, Step: 1, C: 1, Seed: 13})
	require.Nil(t, err)

	require.Len(t, res.Curve, 7)
	assert.Equal(t, 1, res.Curve[0].NumFeatures)
	assert.Equal(t, 1.0, res.Curve[0].Score)
	assert.Equal(t, 1, res.OptimalFeatures)
	assert.Equal(t, "Otu001", res.Ranking[0].Name)
}

func TestRFEDeterministic(t *testing.T) {
	ds := generateDataset(t, [][]float64{{-1, 0}, {1, 0}, {0, 1}}, 6, 3, 1.0, 0, 3)

	var results []*RFEResult
	for _, parallel := range []int{1, 4} {
		res, err := RFE(ds, &RFEOptions{Folds: 3, Step: 1, C: 1, MaxParallelism: parallel, Seed: 99})
		require.Nil(t, err)
		results = append(results, res)
	}
	assert.Equal(t, results[0], results[1])

	res := results[0]
	var retained int
	for i, f := range res.Ranking {
		if i > 0 {
			assert.LessOrEqual(t, res.Ranking[i-1].Rank, f.Rank)
		}
		if f.Rank == 1 {
			retained++
		}
	}
	assert.Equal(t, res.OptimalFeatures, retained)
}

func TestRFEStep(t *testing.T) {
	ds := generateDataset(t, [][]float64{{-3}, {3}}, 6, 4, 0.5, 0, 5)

	res, err := RFE(ds, &RFEOptions{Folds: 2, Step: 2, C: 1, Seed: 1})
	require.Nil(t, err)

	counts := make([]int, 0, len(res.Curve))
	for _, p := range res.Curve {
		counts = append(counts, p.NumFeatures)
	}
	assert.Equal(t, []int{1, 3, 5}, counts)
}

func TestEliminationCounts(t *testing.T) {
	testData := map[string]struct {
		n, target, step int
		expected        []int
	}{
		"single feature": {n: 1, target: 1, step: 1, expected: []int{1}},
		"step one":       {n: 4, target: 1, step: 1, expected: []int{1, 2, 3, 4}},
		"step two":       {n: 5, target: 1, step: 2, expected: []int{1, 3, 5}},
		"uneven step":    {n: 4, target: 1, step: 2, expected: []int{1, 2, 4}},
		"large step":     {n: 4, target: 1, step: 10, expected: []int{1, 4}},
		"target above 1": {n: 6, target: 3, step: 2, expected: []int{3, 4, 6}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, eliminationCounts(td.n, td.target, td.step))
		})
	}
}

func TestRFEErrors(t *testing.T) {
	// smallest class has 3 samples
	small := generateDataset(t, [][]float64{{-3}, {3}}, 3, 1, 0.5, 0, 1)

	testData := map[string]struct {
		opt *RFEOptions
		err error
	}{
		"folds exceed smallest class": {opt: &RFEOptions{Folds: 10, Step: 1, C: 1}, err: errs.ErrInvalidInput},
		"one fold":                    {opt: &RFEOptions{Folds: 1, Step: 1, C: 1}, err: ErrFoldsRange},
		"zero step":                   {opt: &RFEOptions{Folds: 2, Step: 0, C: 1}, err: ErrStepRange},
		"zero penalty":                {opt: &RFEOptions{Folds: 2, Step: 1, C: 0}, err: ErrCRange},
		"negative parallelism":        {opt: &RFEOptions{Folds: 2, Step: 1, C: 1, MaxParallelism: -1}, err: errs.ErrConfiguration},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := RFE(small, td.opt)
			assert.ErrorIs(t, err, td.err)
		})
	}

	_, err := RFE(nil, nil)
	assert.ErrorIs(t, err, ErrNoDataset)
}
