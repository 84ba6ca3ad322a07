package selection

import (
	"testing"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForest(t *testing.T) {
	ds := generateDataset(t, [][]float64{{2}, {6}}, 15, 3, 1.0, 4, 5)

	res, err := Forest(ds, &ForestOptions{Trees: 100, Seed: 5})
	require.Nil(t, err)

	require.Len(t, res.Ranking, 4)
	assert.Equal(t, "Otu001", res.Ranking[0].Name)

	var total float64
	for i, f := range res.Ranking {
		assert.Equal(t, i+1, f.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Ranking[i-1].Score, f.Score)
		}
		total += f.Score
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, res.OOBScore, 0.8)
	assert.LessOrEqual(t, res.OOBScore, 1.0)
}

func TestForestDeterministic(t *testing.T) {
	ds := generateDataset(t, [][]float64{{0, 0}, {2, 0}, {0, 2}}, 8, 4, 1.5, 1, 17)

	var results []*ForestResult
	for _, parallel := range []int{1, 4} {
		res, err := Forest(ds, &ForestOptions{Trees: 30, MaxParallelism: parallel, Seed: 21})
		require.Nil(t, err)
		results = append(results, res)
	}
	assert.Equal(t, results[0], results[1])
}

func TestForestMinImpurityDecrease(t *testing.T) {
	ds := generateDataset(t, [][]float64{{2}, {6}}, 15, 3, 1.0, 4, 5)

	testData := map[string]struct {
		decrease  float64
		splitting bool
	}{
		"no minimum":     {decrease: 0, splitting: true},
		"above any gain": {decrease: 100, splitting: false},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Forest(ds, &ForestOptions{Trees: 20, MinImpurityDecrease: td.decrease, Seed: 5})
			require.Nil(t, err)

			if td.splitting {
				assert.Equal(t, "Otu001", res.Ranking[0].Name)
				assert.Greater(t, res.Ranking[0].Score, 0.0)
				return
			}
			assert.Equal(t, []string{"Otu001", "Otu002", "Otu003", "Otu004"}, res.Ranking.Names())
			for _, f := range res.Ranking {
				assert.Equal(t, 0.0, f.Score)
			}
		})
	}
}

func TestForestConstantFeatures(t *testing.T) {
	ds := datasetFromRows(t, []string{"a", "b", "c"}, [][]float64{
		{1, 2, 3},
		{1, 2, 3},
		{1, 2, 3},
		{1, 2, 3},
	}, []int{0, 0, 1, 1})

	res, err := Forest(ds, &ForestOptions{Trees: 10, Seed: 1})
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, res.Ranking.Names())
	for _, f := range res.Ranking {
		assert.Equal(t, 0.0, f.Score)
	}
}

func TestForestErrors(t *testing.T) {
	empty, err := dataset.New([]string{}, []string{"s0", "s1"}, nil, []int{0, 1})
	require.Nil(t, err)
	ds := datasetFromRows(t, []string{"a"}, [][]float64{{1}, {2}}, []int{0, 1})

	testData := map[string]struct {
		ds  *dataset.Dataset
		opt *ForestOptions
		err error
	}{
		"empty matrix":               {ds: empty, opt: nil, err: errs.ErrInvalidInput},
		"no dataset":                 {ds: nil, opt: nil, err: errs.ErrInvalidInput},
		"zero trees":                 {ds: ds, opt: &ForestOptions{Trees: 0}, err: ErrTreesRange},
		"negative max depth":         {ds: ds, opt: &ForestOptions{Trees: 1, MaxDepth: -1}, err: errs.ErrConfiguration},
		"negative impurity decrease": {ds: ds, opt: &ForestOptions{Trees: 1, MinImpurityDecrease: -1}, err: ErrNegativeForestParameter},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Forest(td.ds, td.opt)
			assert.ErrorIs(t, err, td.err)
		})
	}
}
