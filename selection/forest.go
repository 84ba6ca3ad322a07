package selection

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/aouyang1/go-featureselect/models"
)

const DefaultForestTrees = 1000

var (
	ErrTreesRange              = fmt.Errorf("number of trees must be at least 1: %w", errs.ErrConfiguration)
	ErrNegativeForestParameter = fmt.Errorf("forest parameters must be non-negative: %w", errs.ErrConfiguration)
)

// ForestOptions configures the random forest importance selector
type ForestOptions struct {
	// Trees is the number of trees in the forest
	Trees int `json:"numforests"`

	// MaxFeatures is the number of features evaluated per split. 0 uses the square root of the
	// number of features.
	MaxFeatures     int `json:"max_features"`
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`

	// MinImpurityDecrease stops a tree from splitting a node unless the split lowers the
	// weighted entropy by at least this much
	MinImpurityDecrease float64 `json:"min_impurity_decrease"`

	// MaxParallelism bounds how many trees are grown concurrently. 0 uses every core.
	MaxParallelism int `json:"-"`

	Seed uint64 `json:"-"`
}

// NewDefaultForestOptions returns a 1000 tree forest of fully grown trees
func NewDefaultForestOptions() *ForestOptions {
	return &ForestOptions{
		Trees:           DefaultForestTrees,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// Validate runs basic validation on forest options
func (o *ForestOptions) Validate() (*ForestOptions, error) {
	if o == nil {
		o = NewDefaultForestOptions()
	}
	if o.Trees < 1 {
		return nil, fmt.Errorf("got %d, %w", o.Trees, ErrTreesRange)
	}
	if o.MaxFeatures < 0 || o.MaxDepth < 0 || o.MinSamplesSplit < 0 || o.MinSamplesLeaf < 0 ||
		o.MinImpurityDecrease < 0 || math.IsNaN(o.MinImpurityDecrease) {
		return nil, ErrNegativeForestParameter
	}
	if o.MaxParallelism < 0 {
		return nil, ErrNegativeParallelism
	}
	return o, nil
}

// ForestResult holds every feature sorted by descending importance and the out of bag accuracy
// of the forest.
type ForestResult struct {
	Ranking  Ranking
	OOBScore float64
}

// Forest fits a class balanced random forest with entropy splits and ranks the features by
// their mean decrease in impurity. Ties keep column order.
func Forest(ds *dataset.Dataset, opt *ForestOptions) (*ForestResult, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if err := validateDataset(ds); err != nil {
		return nil, err
	}

	forest, err := models.NewRandomForest(&models.RandomForestOptions{
		Trees:           opt.Trees,
		MaxFeatures:     opt.MaxFeatures,
		MaxDepth:        opt.MaxDepth,
		MinSamplesSplit: opt.MinSamplesSplit,
		MinSamplesLeaf:  opt.MinSamplesLeaf,

		MinImpurityDecrease: opt.MinImpurityDecrease,

		ClassWeight:     models.ClassWeightBalanced,
		OOBScore:        true,
		Parallelization: parallelism(opt.MaxParallelism, opt.Trees),
		Seed:            opt.Seed,
	})
	if err != nil {
		return nil, err
	}
	if err := forest.Fit(ds.X, ds.Y); err != nil {
		return nil, fmt.Errorf("unable to fit random forest, %w", err)
	}

	imp := forest.FeatureImportances()
	ranking := make(Ranking, len(imp))
	for j, v := range imp {
		ranking[j] = RankedFeature{
			Name:  ds.Features[j],
			Index: j,
			Score: v,
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}

	res := &ForestResult{
		Ranking:  ranking,
		OOBScore: forest.OOBScore(),
	}
	slog.Info("ranked features by random forest importance", "trees", opt.Trees, "oob_score", res.OOBScore)
	return res, nil
}
