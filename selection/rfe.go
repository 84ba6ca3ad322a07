package selection

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	mat_ "github.com/aouyang1/go-featureselect/mat"
	"github.com/aouyang1/go-featureselect/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultFolds = 5
	DefaultStep  = 1
)

var (
	ErrFoldsRange = fmt.Errorf("cross validation folds must be at least 2: %w", errs.ErrConfiguration)
	ErrStepRange  = fmt.Errorf("elimination step must be at least 1: %w", errs.ErrConfiguration)
	ErrCRange     = fmt.Errorf("svm penalty C must be positive: %w", errs.ErrConfiguration)
)

// RFEOptions configures recursive feature elimination with cross validation
type RFEOptions struct {
	// Folds is the number of stratified cross validation folds
	Folds int `json:"cross_val_folds"`

	// Step is the number of features eliminated every round
	Step int `json:"step"`

	// C is the penalty of the linear SVM ranking the features
	C float64 `json:"c"`

	// MaxParallelism bounds how many folds are evaluated concurrently. 0 uses every core.
	MaxParallelism int `json:"-"`

	// Seed drives the fold assignment and the SVM coordinate descent order
	Seed uint64 `json:"-"`
}

// NewDefaultRFEOptions returns 5 fold cross validation eliminating one feature at a time
func NewDefaultRFEOptions() *RFEOptions {
	return &RFEOptions{
		Folds: DefaultFolds,
		Step:  DefaultStep,
		C:     models.DefaultC,
	}
}

// Validate runs basic validation on RFE options
func (o *RFEOptions) Validate() (*RFEOptions, error) {
	if o == nil {
		o = NewDefaultRFEOptions()
	}
	if o.Folds < 2 {
		return nil, fmt.Errorf("got %d, %w", o.Folds, ErrFoldsRange)
	}
	if o.Step < 1 {
		return nil, fmt.Errorf("got %d, %w", o.Step, ErrStepRange)
	}
	if o.C <= 0 || math.IsNaN(o.C) {
		return nil, fmt.Errorf("got %f, %w", o.C, ErrCRange)
	}
	if o.MaxParallelism < 0 {
		return nil, ErrNegativeParallelism
	}
	return o, nil
}

// RFEResult holds the feature count with the best cross validated accuracy, the ranking of
// every feature and the accuracy curve the count was chosen from.
type RFEResult struct {
	OptimalFeatures int

	// Ranking is sorted by rank where rank 1 features are retained and higher ranks were
	// eliminated earlier. Score is the feature's importance in the last model it was part of.
	Ranking Ranking

	// Curve is ordered by ascending feature count
	Curve []CurvePoint

	// FoldScores holds the test accuracy of every fold aligned with Curve
	FoldScores [][]float64
}

// RFE recursively eliminates the least important features of a linear SVM, choosing how many
// features to keep by stratified k-fold cross validation, then ranks every feature by a final
// elimination on the full dataset down to that count.
func RFE(ds *dataset.Dataset, opt *RFEOptions) (*RFEResult, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if err := validateDataset(ds); err != nil {
		return nil, err
	}
	_, n := ds.Dims()

	folds, err := models.StratifiedKFold(ds.Y, opt.Folds, true, opt.Seed)
	if err != nil {
		return nil, fmt.Errorf("unable to split %d folds, %w", opt.Folds, err)
	}

	counts := eliminationCounts(n, 1, opt.Step)
	foldScores := make([][]float64, len(folds))
	foldErrs := make([]error, len(folds))

	sem := make(chan struct{}, parallelism(opt.MaxParallelism, len(folds)))
	var wg sync.WaitGroup
	for f, fold := range folds {
		sem <- struct{}{}
		wg.Add(1)

		go func(f int, fold models.Fold) {
			defer func() {
				wg.Done()
				<-sem
			}()
			foldScores[f], foldErrs[f] = opt.scoreFold(ds, fold, counts, opt.Seed+uint64(f)+1)
		}(f, fold)
	}
	wg.Wait()

	for f, err := range foldErrs {
		if err != nil {
			return nil, fmt.Errorf("unable to evaluate fold %d, %w", f, err)
		}
	}

	curve := make([]CurvePoint, len(counts))
	for c, cnt := range counts {
		scores := make([]float64, len(folds))
		for f := range folds {
			scores[f] = foldScores[f][c]
		}
		curve[c] = CurvePoint{
			NumFeatures: cnt,
			Score:       floats.Sum(scores) / float64(len(scores)),
		}
	}

	// ties resolve to the fewest features since the curve ascends by count
	best := 0
	for c := 1; c < len(curve); c++ {
		if curve[c].Score > curve[best].Score {
			best = c
		}
	}
	optimal := curve[best].NumFeatures
	slog.Info("cross validated recursive feature elimination",
		"folds", opt.Folds, "optimal_features", optimal, "score", curve[best].Score)

	ranks, importance, err := opt.eliminate(ds.X, ds.Y, optimal, opt.Seed, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to rank features, %w", err)
	}

	ranking := make(Ranking, n)
	for j := 0; j < n; j++ {
		ranking[j] = RankedFeature{
			Name:  ds.Features[j],
			Index: j,
			Rank:  ranks[j],
			Score: importance[j],
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Rank < ranking[j].Rank
	})

	return &RFEResult{
		OptimalFeatures: optimal,
		Ranking:         ranking,
		Curve:           curve,
		FoldScores:      foldScores,
	}, nil
}

// eliminationCounts returns the ascending feature counts a model is evaluated at when
// eliminating step features at a time from n down to target.
func eliminationCounts(n, target, step int) []int {
	var counts []int
	for cnt := n; ; cnt -= step {
		if cnt <= target {
			counts = append(counts, target)
			break
		}
		counts = append(counts, cnt)
	}
	sort.Ints(counts)
	return counts
}

// scoreFold runs the elimination on the training rows of a fold and returns the test accuracy
// at every feature count, aligned with counts.
func (o *RFEOptions) scoreFold(ds *dataset.Dataset, fold models.Fold, counts []int, seed uint64) ([]float64, error) {
	xTrain, err := mat_.SelectRows(ds.X, fold.Train)
	if err != nil {
		return nil, err
	}
	xTest, err := mat_.SelectRows(ds.X, fold.Test)
	if err != nil {
		return nil, err
	}
	yTrain := make([]int, len(fold.Train))
	for k, i := range fold.Train {
		yTrain[k] = ds.Y[i]
	}
	yTest := make([]int, len(fold.Test))
	for k, i := range fold.Test {
		yTest[k] = ds.Y[i]
	}

	scoreByCount := make(map[int]float64, len(counts))
	score := func(clf models.Classifier, cols []int) error {
		x, err := mat_.SelectCols(xTest, cols)
		if err != nil {
			return err
		}
		s, err := clf.Score(x, yTest)
		if err != nil {
			return err
		}
		scoreByCount[len(cols)] = s
		return nil
	}
	if _, _, err := o.eliminate(xTrain, yTrain, 1, seed, score); err != nil {
		return nil, err
	}

	scores := make([]float64, len(counts))
	for c, cnt := range counts {
		scores[c] = scoreByCount[cnt]
	}
	return scores, nil
}

// eliminate fits a linear SVM on the remaining columns of x and drops the Step columns with the
// smallest importance until target columns remain. Importance ties drop the lower column index
// first. score, if set, is called with every fitted model and the columns it was trained on.
// Returns the rank of every column, 1 for retained columns, and the importance of every column
// in the last model it was part of.
func (o *RFEOptions) eliminate(x *mat.Dense, y []int, target int, seed uint64, score func(models.Classifier, []int) error) ([]int, []float64, error) {
	_, n := x.Dims()
	ranks := make([]int, n)
	importance := make([]float64, n)
	remaining := make([]int, n)
	for j := range remaining {
		ranks[j] = 1
		remaining[j] = j
	}
	eliminated := make([]bool, n)

	for {
		sub, err := mat_.SelectCols(x, remaining)
		if err != nil {
			return nil, nil, err
		}
		svc, err := models.NewLinearSVC(&models.LinearSVCOptions{
			C:            o.C,
			Iterations:   models.DefaultSVMIterations,
			Tolerance:    models.DefaultSVMTolerance,
			FitIntercept: true,
			Seed:         seed,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := svc.Fit(sub, y); err != nil {
			return nil, nil, err
		}
		if score != nil {
			if err := score(svc, remaining); err != nil {
				return nil, nil, err
			}
		}

		imp := svc.FeatureImportances()
		for k, j := range remaining {
			importance[j] = imp[k]
		}
		if len(remaining) <= target {
			break
		}

		order := make([]int, len(remaining))
		for k := range order {
			order[k] = k
		}
		sort.SliceStable(order, func(a, b int) bool {
			return imp[order[a]] < imp[order[b]]
		})

		drop := o.Step
		if left := len(remaining) - target; drop > left {
			drop = left
		}
		for _, k := range order[:drop] {
			eliminated[remaining[k]] = true
		}

		next := make([]int, 0, len(remaining))
		for _, j := range remaining {
			if !eliminated[j] {
				next = append(next, j)
			}
		}
		remaining = next

		for j := range ranks {
			if eliminated[j] {
				ranks[j]++
			}
		}
	}
	return ranks, importance, nil
}
