package models

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-featureselect/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultC             = 1.0
	DefaultSVMIterations = 1000
	DefaultSVMTolerance  = 0.1
)

// LinearSVCOptions configures the linear support vector classifier
type LinearSVCOptions struct {
	// C is the penalty on the hinge loss. Larger values fit the training data more closely.
	C float64

	// Iterations is the maximum number of passes over the training samples per binary problem.
	Iterations int

	// Tolerance stops the coordinate descent once the projected gradient spread falls below it.
	Tolerance float64

	// FitIntercept centers the columns of each binary problem and learns a bias term through a
	// constant 1.0 feature. The column means are folded back into the stored intercept.
	FitIntercept bool

	// Seed controls the sample visiting order of the coordinate descent
	Seed uint64
}

// NewDefaultLinearSVCOptions returns a default set of linear SVC options
func NewDefaultLinearSVCOptions() *LinearSVCOptions {
	return &LinearSVCOptions{
		C:            DefaultC,
		Iterations:   DefaultSVMIterations,
		Tolerance:    DefaultSVMTolerance,
		FitIntercept: true,
	}
}

// Validate runs basic validation on linear SVC options
func (o *LinearSVCOptions) Validate() (*LinearSVCOptions, error) {
	if o == nil {
		o = NewDefaultLinearSVCOptions()
	}
	if o.C <= 0 || math.IsNaN(o.C) {
		return nil, ErrNonPositiveC
	}
	if o.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if o.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return o, nil
}

// LinearSVC is a hinge loss linear support vector classifier trained with dual coordinate
// descent. More than two classes are handled one-vs-one with a binary problem per class pair
// and prediction by majority vote, ties going to the lowest class.
type LinearSVC struct {
	opt *LinearSVCOptions

	classes   []int
	pairs     [][2]int
	coef      [][]float64
	intercept []float64
	nFeatures int
}

// NewLinearSVC initializes a linear SVC ready for fitting
func NewLinearSVC(opt *LinearSVCOptions) (*LinearSVC, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LinearSVC{opt: opt}, nil
}

// Fit trains a binary problem for every pair of classes present in y
func (s *LinearSVC) Fit(x mat.Matrix, y []int) error {
	_, n, err := fitValidate(x, y)
	if err != nil {
		return err
	}
	classes, yIdx := uniqueClasses(y)
	if len(classes) < 2 {
		return fmt.Errorf("found %d classes, %w", len(classes), ErrSingleClass)
	}

	rows := rowsOf(x)
	s.classes = classes
	s.nFeatures = n
	s.pairs = s.pairs[:0]
	s.coef = s.coef[:0]
	s.intercept = s.intercept[:0]

	rnd := rand.New(rand.NewPCG(s.opt.Seed, uint64(n)))
	for a := 0; a < len(classes); a++ {
		for b := a + 1; b < len(classes); b++ {
			var sub [][]float64
			var sign []float64
			for i, c := range yIdx {
				switch c {
				case a:
					sub = append(sub, rows[i])
					sign = append(sign, 1)
				case b:
					sub = append(sub, rows[i])
					sign = append(sign, -1)
				}
			}
			var offset []float64
			if s.opt.FitIntercept {
				sub, offset = centerRows(sub, n)
			}
			w, bias := s.fitBinary(sub, sign, n, rnd)
			if offset != nil {
				bias -= floats.Dot(w, offset)
			}
			s.pairs = append(s.pairs, [2]int{a, b})
			s.coef = append(s.coef, w)
			s.intercept = append(s.intercept, bias)
		}
	}
	return nil
}

// centerRows returns copies of rows shifted so every column has zero mean, along with the
// column means that were subtracted.
func centerRows(rows [][]float64, n int) ([][]float64, []float64) {
	mean := make([]float64, n)
	for _, row := range rows {
		floats.Add(mean, row)
	}
	floats.Scale(1/float64(len(rows)), mean)

	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, n)
		floats.SubTo(out[i], row, mean)
	}
	return out, mean
}

// fitBinary solves the L1-loss SVM dual for labels in {-1, +1}. The bias is learned as the
// weight of an implicit constant feature, so rows are expected to be centered.
func (s *LinearSVC) fitBinary(rows [][]float64, sign []float64, n int, rnd *rand.Rand) ([]float64, float64) {
	m := len(rows)
	w := make([]float64, n)
	var bias float64
	biasFeat := 0.0
	if s.opt.FitIntercept {
		biasFeat = 1.0
	}

	qii := make([]float64, m)
	for i, row := range rows {
		qii[i] = floats.Dot(row, row) + biasFeat*biasFeat
	}
	alpha := make([]float64, m)
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}

	upper := s.opt.C
	for iter := 0; iter < s.opt.Iterations; iter++ {
		rnd.Shuffle(m, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		maxPG := math.Inf(-1)
		minPG := math.Inf(1)
		for _, i := range order {
			if qii[i] == 0 {
				continue
			}
			row := rows[i]
			g := sign[i]*(floats.Dot(w, row)+bias*biasFeat) - 1

			pg := g
			switch {
			case alpha[i] == 0:
				pg = math.Min(g, 0)
			case alpha[i] == upper:
				pg = math.Max(g, 0)
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)

			if math.Abs(pg) < 1e-12 {
				continue
			}
			prev := alpha[i]
			alpha[i] = math.Min(math.Max(alpha[i]-g/qii[i], 0), upper)
			delta := (alpha[i] - prev) * sign[i]
			floats.AddScaled(w, delta, row)
			bias += delta * biasFeat
		}

		// converged once the projected gradients of every sample are within tolerance
		if maxPG-minPG <= s.opt.Tolerance {
			break
		}
	}
	return w, bias
}

// Decision returns the signed distance of every row to each class pair's hyperplane
func (s *LinearSVC) Decision(x mat.Matrix) ([][]float64, error) {
	if len(s.coef) == 0 {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	_, n := x.Dims()
	if n != s.nFeatures {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, s.nFeatures, ErrFeatureLenMismatch)
	}
	rows := rowsOf(x)
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(s.coef))
		for p, w := range s.coef {
			out[i][p] = floats.Dot(w, row) + s.intercept[p]
		}
	}
	return out, nil
}

// Predict returns the class receiving the most one-vs-one votes for every row
func (s *LinearSVC) Predict(x mat.Matrix) ([]int, error) {
	dec, err := s.Decision(x)
	if err != nil {
		return nil, err
	}
	pred := make([]int, len(dec))
	votes := make([]float64, len(s.classes))
	for i, d := range dec {
		for k := range votes {
			votes[k] = 0
		}
		for p, pair := range s.pairs {
			if d[p] > 0 {
				votes[pair[0]]++
			} else {
				votes[pair[1]]++
			}
		}
		pred[i] = s.classes[argmax(votes)]
	}
	return pred, nil
}

// Score returns the mean accuracy of the predictions
func (s *LinearSVC) Score(x mat.Matrix, y []int) (float64, error) {
	pred, err := s.Predict(x)
	if err != nil {
		return 0.0, err
	}
	if len(pred) != len(y) {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d, %w", len(pred), len(y), ErrTargetLenMismatch)
	}
	return stats.Accuracy(y, pred), nil
}

// Coef returns a copy of the weights of every class pair hyperplane, one row per pair in the
// order (0,1), (0,2), ..., (1,2), ...
func (s *LinearSVC) Coef() [][]float64 {
	out := make([][]float64, len(s.coef))
	for i, w := range s.coef {
		out[i] = make([]float64, len(w))
		copy(out[i], w)
	}
	return out
}

// Intercept returns the bias of every class pair hyperplane
func (s *LinearSVC) Intercept() []float64 {
	out := make([]float64, len(s.intercept))
	copy(out, s.intercept)
	return out
}

// Classes returns the sorted class labels seen during fit
func (s *LinearSVC) Classes() []int {
	return s.classes
}

// FeatureImportances returns the sum over class pairs of the squared weight of every feature
func (s *LinearSVC) FeatureImportances() []float64 {
	imp := make([]float64, s.nFeatures)
	for _, w := range s.coef {
		for j, v := range w {
			imp[j] += v * v
		}
	}
	return imp
}
