package models

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/aouyang1/go-featureselect/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DecisionTreeOptions configures an entropy decision tree
type DecisionTreeOptions struct {
	// MaxDepth limits the depth of the tree where the root has depth 0. 0 means no limit.
	MaxDepth int

	// MinSamplesSplit is the minimum number of samples a node needs to be split
	MinSamplesSplit int

	// MinSamplesLeaf is the minimum number of samples each child of a split must keep
	MinSamplesLeaf int

	// MaxFeatures is the number of non-constant features evaluated per split. 0 uses every feature.
	MaxFeatures int

	// MinImpurityDecrease is the weighted entropy decrease a split must reach
	MinImpurityDecrease float64

	// Seed controls the order features are considered in at each split
	Seed uint64
}

// NewDefaultDecisionTreeOptions returns options growing a full tree on every feature
func NewDefaultDecisionTreeOptions() *DecisionTreeOptions {
	return &DecisionTreeOptions{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// Validate runs basic validation on decision tree options
func (o *DecisionTreeOptions) Validate() (*DecisionTreeOptions, error) {
	if o == nil {
		o = NewDefaultDecisionTreeOptions()
	}
	if o.MaxDepth < 0 || o.MinSamplesSplit < 0 || o.MinSamplesLeaf < 0 || o.MaxFeatures < 0 || o.MinImpurityDecrease < 0 {
		return nil, ErrNegativeTreeParameter
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = 2
	}
	if o.MinSamplesLeaf < 1 {
		o.MinSamplesLeaf = 1
	}
	return o, nil
}

type treeNode struct {
	leaf      bool
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	// weighted class distribution normalized to sum to 1
	proba []float64
}

// DecisionTree is a classification tree choosing splits by the largest decrease in weighted
// entropy. Samples may carry weights which scale their contribution to class counts.
type DecisionTree struct {
	opt *DecisionTreeOptions

	classes     []int
	nFeatures   int
	root        *treeNode
	importances []float64
}

// NewDecisionTree initializes a decision tree ready for fitting
func NewDecisionTree(opt *DecisionTreeOptions) (*DecisionTree, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &DecisionTree{opt: opt}, nil
}

// Fit grows the tree with every sample weighted equally
func (t *DecisionTree) Fit(x mat.Matrix, y []int) error {
	return t.FitWeighted(x, y, nil)
}

// FitWeighted grows the tree using per sample weights. Samples with zero weight are ignored.
// A nil weight slice weights every sample by 1.
func (t *DecisionTree) FitWeighted(x mat.Matrix, y []int, weights []float64) error {
	m, n, err := fitValidate(x, y)
	if err != nil {
		return err
	}
	if weights == nil {
		weights = make([]float64, m)
		floats.AddConst(1.0, weights)
	}
	if len(weights) != m {
		return fmt.Errorf("got %d weights for %d rows, %w", len(weights), m, ErrWeightLenMismatch)
	}
	classes, yIdx := uniqueClasses(y)
	t.classes = classes
	t.grow(rowsOf(x), yIdx, weights, n)
	return nil
}

// grow builds the tree from rows whose labels are already indexes into t.classes
func (t *DecisionTree) grow(rows [][]float64, yIdx []int, weights []float64, nFeatures int) {
	t.nFeatures = nFeatures
	t.importances = make([]float64, nFeatures)

	idx := make([]int, 0, len(rows))
	var total float64
	for i, w := range weights {
		if w > 0 {
			idx = append(idx, i)
			total += w
		}
	}

	b := &treeBuilder{
		opt:         t.opt,
		rows:        rows,
		yIdx:        yIdx,
		weights:     weights,
		nClasses:    len(t.classes),
		nFeatures:   nFeatures,
		total:       total,
		importances: t.importances,
		rnd:         rand.New(rand.NewPCG(t.opt.Seed, uint64(nFeatures))),
	}
	t.root = b.build(idx, 0)

	if sum := floats.Sum(t.importances); sum > 0 {
		floats.Scale(1/sum, t.importances)
	}
}

type treeBuilder struct {
	opt         *DecisionTreeOptions
	rows        [][]float64
	yIdx        []int
	weights     []float64
	nClasses    int
	nFeatures   int
	total       float64
	importances []float64
	rnd         *rand.Rand
}

type split struct {
	feature     int
	threshold   float64
	improvement float64
	left        []int
	right       []int
}

func (b *treeBuilder) classWeights(idx []int) ([]float64, float64) {
	counts := make([]float64, b.nClasses)
	for _, i := range idx {
		counts[b.yIdx[i]] += b.weights[i]
	}
	return counts, floats.Sum(counts)
}

func (b *treeBuilder) leaf(counts []float64, total float64) *treeNode {
	proba := make([]float64, len(counts))
	if total > 0 {
		floats.ScaleTo(proba, 1/total, counts)
	}
	return &treeNode{leaf: true, proba: proba}
}

func (b *treeBuilder) build(idx []int, depth int) *treeNode {
	counts, total := b.classWeights(idx)
	impurity := entropy(counts, total)
	if impurity <= 0 ||
		len(idx) < b.opt.MinSamplesSplit ||
		len(idx) < 2*b.opt.MinSamplesLeaf ||
		(b.opt.MaxDepth > 0 && depth >= b.opt.MaxDepth) {
		return b.leaf(counts, total)
	}

	best, found := b.bestSplit(idx, counts, total, impurity)
	if !found || best.improvement < b.opt.MinImpurityDecrease {
		return b.leaf(counts, total)
	}
	b.importances[best.feature] += best.improvement

	node := b.leaf(counts, total)
	node.leaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.left = b.build(best.left, depth+1)
	node.right = b.build(best.right, depth+1)
	return node
}

// bestSplit evaluates features in random order, skipping features that are constant within the
// node, until MaxFeatures non-constant features have been evaluated.
func (b *treeBuilder) bestSplit(idx []int, counts []float64, total, impurity float64) (split, bool) {
	maxFeatures := b.opt.MaxFeatures
	if maxFeatures == 0 || maxFeatures > b.nFeatures {
		maxFeatures = b.nFeatures
	}
	features := b.rnd.Perm(b.nFeatures)

	var best split
	bestChild := math.Inf(1)
	found := false
	visited := 0

	sorted := make([]int, len(idx))
	leftCounts := make([]float64, b.nClasses)
	rightCounts := make([]float64, b.nClasses)
	for _, f := range features {
		if visited >= maxFeatures {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.rows[sorted[i]][f] < b.rows[sorted[j]][f]
		})
		lo := b.rows[sorted[0]][f]
		hi := b.rows[sorted[len(sorted)-1]][f]
		if lo == hi {
			continue
		}
		visited++

		for k := range leftCounts {
			leftCounts[k] = 0
		}
		copy(rightCounts, counts)
		var leftTotal float64
		rightTotal := total

		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			w := b.weights[i]
			leftCounts[b.yIdx[i]] += w
			rightCounts[b.yIdx[i]] -= w
			leftTotal += w
			rightTotal -= w

			v := b.rows[i][f]
			next := b.rows[sorted[k+1]][f]
			if v == next {
				continue
			}
			if k+1 < b.opt.MinSamplesLeaf || len(sorted)-k-1 < b.opt.MinSamplesLeaf {
				continue
			}

			child := leftTotal*entropy(leftCounts, leftTotal) + rightTotal*entropy(rightCounts, rightTotal)
			if child < bestChild {
				bestChild = child
				threshold := v + (next-v)/2
				if threshold >= next {
					threshold = v
				}
				best = split{
					feature:   f,
					threshold: threshold,
				}
				found = true
			}
		}
	}
	if !found {
		return best, false
	}

	for _, i := range idx {
		if b.rows[i][best.feature] <= best.threshold {
			best.left = append(best.left, i)
		} else {
			best.right = append(best.right, i)
		}
	}
	best.improvement = (total*impurity - bestChild) / b.total
	return best, true
}

// entropy returns the base 2 entropy of weighted class counts
func entropy(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}

func (t *DecisionTree) predictRow(row []float64) []float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.proba
}

// PredictProba returns the class distribution of the leaf every row falls into. Columns follow
// the order of Classes.
func (t *DecisionTree) PredictProba(x mat.Matrix) ([][]float64, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	_, n := x.Dims()
	if n != t.nFeatures {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, t.nFeatures, ErrFeatureLenMismatch)
	}
	rows := rowsOf(x)
	out := make([][]float64, len(rows))
	for i, row := range rows {
		p := t.predictRow(row)
		out[i] = make([]float64, len(p))
		copy(out[i], p)
	}
	return out, nil
}

// Predict returns the most probable class of every row
func (t *DecisionTree) Predict(x mat.Matrix) ([]int, error) {
	proba, err := t.PredictProba(x)
	if err != nil {
		return nil, err
	}
	pred := make([]int, len(proba))
	for i, p := range proba {
		pred[i] = t.classes[argmax(p)]
	}
	return pred, nil
}

// Score returns the mean accuracy of the predictions
func (t *DecisionTree) Score(x mat.Matrix, y []int) (float64, error) {
	pred, err := t.Predict(x)
	if err != nil {
		return 0.0, err
	}
	if len(pred) != len(y) {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d, %w", len(pred), len(y), ErrTargetLenMismatch)
	}
	return stats.Accuracy(y, pred), nil
}

// FeatureImportances returns the normalized weighted entropy decrease attributed to every feature
func (t *DecisionTree) FeatureImportances() []float64 {
	out := make([]float64, len(t.importances))
	copy(out, t.importances)
	return out
}

// Classes returns the sorted class labels seen during fit
func (t *DecisionTree) Classes() []int {
	return t.classes
}
