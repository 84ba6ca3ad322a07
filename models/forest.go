package models

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/aouyang1/go-featureselect/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultTrees = 100

	ClassWeightNone     = ""
	ClassWeightBalanced = "balanced"
)

// RandomForestOptions configures a bagged ensemble of entropy decision trees
type RandomForestOptions struct {
	// Trees is the number of trees in the forest
	Trees int

	// MaxFeatures is the number of features evaluated per split. 0 uses the square root of the
	// number of features.
	MaxFeatures int

	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int

	// MinImpurityDecrease is the weighted entropy decrease a split must reach in every tree
	MinImpurityDecrease float64

	// ClassWeight set to "balanced" weights every sample by n_samples / (n_classes * class count)
	ClassWeight string

	// OOBScore computes the accuracy on samples left out of each tree's bootstrap
	OOBScore bool

	// Parallelization sets how many trees are grown concurrently. 0 uses GOMAXPROCS.
	Parallelization int

	// Seed derives the bootstrap and feature sampling of every tree
	Seed uint64
}

// NewDefaultRandomForestOptions returns a default set of random forest options
func NewDefaultRandomForestOptions() *RandomForestOptions {
	return &RandomForestOptions{
		Trees:           DefaultTrees,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		ClassWeight:     ClassWeightBalanced,
		OOBScore:        true,
	}
}

// Validate runs basic validation on random forest options
func (o *RandomForestOptions) Validate() (*RandomForestOptions, error) {
	if o == nil {
		o = NewDefaultRandomForestOptions()
	}
	if o.Trees < 1 {
		return nil, fmt.Errorf("got %d, %w", o.Trees, ErrNonPositiveTrees)
	}
	if o.MaxFeatures < 0 || o.MaxDepth < 0 || o.MinSamplesSplit < 0 || o.MinSamplesLeaf < 0 || o.Parallelization < 0 ||
		o.MinImpurityDecrease < 0 || math.IsNaN(o.MinImpurityDecrease) {
		return nil, ErrNegativeTreeParameter
	}
	switch o.ClassWeight {
	case ClassWeightNone, ClassWeightBalanced:
	default:
		return nil, fmt.Errorf("got %q, %w", o.ClassWeight, ErrUnknownClassWeight)
	}
	if o.Parallelization == 0 {
		o.Parallelization = runtime.GOMAXPROCS(0)
	}
	if o.Parallelization > o.Trees {
		o.Parallelization = o.Trees
	}
	return o, nil
}

// RandomForest fits every tree on a bootstrap sample of the training data and averages the
// trees' class distributions for prediction.
type RandomForest struct {
	opt *RandomForestOptions

	classes     []int
	nFeatures   int
	trees       []*DecisionTree
	inBag       [][]int
	importances []float64
	oobScore    float64
}

// NewRandomForest initializes a random forest ready for fitting
func NewRandomForest(opt *RandomForestOptions) (*RandomForest, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RandomForest{
		opt:      opt,
		oobScore: math.NaN(),
	}, nil
}

// Fit grows every tree. Trees are seeded by their index so the fit does not depend on how many
// trees are grown in parallel.
func (r *RandomForest) Fit(x mat.Matrix, y []int) error {
	m, n, err := fitValidate(x, y)
	if err != nil {
		return err
	}
	if m == 0 || n == 0 {
		return fmt.Errorf("got %d rows and %d features, %w", m, n, ErrNoTrainingMatrix)
	}
	classes, yIdx := uniqueClasses(y)
	r.classes = classes
	r.nFeatures = n

	classWeight := make([]float64, len(classes))
	floats.AddConst(1.0, classWeight)
	if r.opt.ClassWeight == ClassWeightBalanced {
		counts := make([]float64, len(classes))
		for _, c := range yIdx {
			counts[c]++
		}
		for c, cnt := range counts {
			classWeight[c] = float64(m) / (float64(len(classes)) * cnt)
		}
	}

	maxFeatures := r.opt.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Max(1, math.Floor(math.Sqrt(float64(n)))))
	}

	rows := rowsOf(x)
	r.trees = make([]*DecisionTree, r.opt.Trees)
	r.inBag = make([][]int, r.opt.Trees)
	fitErrs := make([]error, r.opt.Trees)

	sem := make(chan struct{}, r.opt.Parallelization)
	var wg sync.WaitGroup
	for t := 0; t < r.opt.Trees; t++ {
		sem <- struct{}{}
		wg.Add(1)

		go func(t int) {
			defer func() {
				wg.Done()
				<-sem
			}()
			r.trees[t], r.inBag[t], fitErrs[t] = r.growTree(t, rows, yIdx, classWeight, maxFeatures)
		}(t)
	}
	wg.Wait()

	for t, err := range fitErrs {
		if err != nil {
			return fmt.Errorf("unable to grow tree %d, %w", t, err)
		}
	}

	r.importances = make([]float64, n)
	for _, tree := range r.trees {
		floats.Add(r.importances, tree.importances)
	}
	if sum := floats.Sum(r.importances); sum > 0 {
		floats.Scale(1/sum, r.importances)
	}

	if r.opt.OOBScore {
		r.oobScore = r.computeOOBScore(rows, y)
	}
	return nil
}

func (r *RandomForest) growTree(t int, rows [][]float64, yIdx []int, classWeight []float64, maxFeatures int) (*DecisionTree, []int, error) {
	rnd := rand.New(rand.NewPCG(r.opt.Seed, uint64(t)))
	m := len(rows)

	inBag := make([]int, m)
	for i := 0; i < m; i++ {
		inBag[rnd.IntN(m)]++
	}
	weights := make([]float64, m)
	for i, cnt := range inBag {
		weights[i] = float64(cnt) * classWeight[yIdx[i]]
	}

	tree, err := NewDecisionTree(&DecisionTreeOptions{
		MaxDepth:            r.opt.MaxDepth,
		MinSamplesSplit:     r.opt.MinSamplesSplit,
		MinSamplesLeaf:      r.opt.MinSamplesLeaf,
		MaxFeatures:         maxFeatures,
		MinImpurityDecrease: r.opt.MinImpurityDecrease,
		Seed:                rnd.Uint64(),
	})
	if err != nil {
		return nil, nil, err
	}
	tree.classes = r.classes
	tree.grow(rows, yIdx, weights, r.nFeatures)
	return tree, inBag, nil
}

// computeOOBScore sums the class distributions of the trees that did not see each sample and
// scores the resulting predictions on the samples with at least one such tree.
func (r *RandomForest) computeOOBScore(rows [][]float64, y []int) float64 {
	oob := make([][]float64, len(rows))
	for t, tree := range r.trees {
		for i, cnt := range r.inBag[t] {
			if cnt > 0 {
				continue
			}
			if oob[i] == nil {
				oob[i] = make([]float64, len(r.classes))
			}
			floats.Add(oob[i], tree.predictRow(rows[i]))
		}
	}

	var actual, pred []int
	for i, p := range oob {
		if p == nil {
			continue
		}
		actual = append(actual, y[i])
		pred = append(pred, r.classes[argmax(p)])
	}
	if len(actual) < len(rows) {
		slog.Warn("some samples were never left out of a bootstrap, out of bag score may be unreliable",
			"samples", len(rows), "scored", len(actual))
	}
	if len(actual) == 0 {
		return math.NaN()
	}
	return stats.Accuracy(actual, pred)
}

// PredictProba averages the class distribution of every tree. Columns follow the order of Classes.
func (r *RandomForest) PredictProba(x mat.Matrix) ([][]float64, error) {
	if len(r.trees) == 0 {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	_, n := x.Dims()
	if n != r.nFeatures {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, r.nFeatures, ErrFeatureLenMismatch)
	}
	rows := rowsOf(x)
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(r.classes))
		for _, tree := range r.trees {
			floats.Add(out[i], tree.predictRow(row))
		}
		floats.Scale(1/float64(len(r.trees)), out[i])
	}
	return out, nil
}

// Predict returns the most probable class of every row
func (r *RandomForest) Predict(x mat.Matrix) ([]int, error) {
	proba, err := r.PredictProba(x)
	if err != nil {
		return nil, err
	}
	pred := make([]int, len(proba))
	for i, p := range proba {
		pred[i] = r.classes[argmax(p)]
	}
	return pred, nil
}

// Score returns the mean accuracy of the predictions
func (r *RandomForest) Score(x mat.Matrix, y []int) (float64, error) {
	pred, err := r.Predict(x)
	if err != nil {
		return 0.0, err
	}
	if len(pred) != len(y) {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d, %w", len(pred), len(y), ErrTargetLenMismatch)
	}
	return stats.Accuracy(y, pred), nil
}

// FeatureImportances returns the mean decrease in weighted entropy of every feature averaged
// over the trees and normalized to sum to 1.
func (r *RandomForest) FeatureImportances() []float64 {
	out := make([]float64, len(r.importances))
	copy(out, r.importances)
	return out
}

// OOBScore returns the out of bag accuracy or NaN if it was not computed
func (r *RandomForest) OOBScore() float64 {
	return r.oobScore
}

// Classes returns the sorted class labels seen during fit
func (r *RandomForest) Classes() []int {
	return r.classes
}
