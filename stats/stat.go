// Package stats holds the column statistics used to prune and score features: standard
// deviation, Pearson correlation, chi-square against a categorical label, and percentiles.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aouyang1/go-featureselect/errs"
	mat_ "github.com/aouyang1/go-featureselect/mat"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrNegativeValues       = fmt.Errorf("chi-square requires non-negative values: %w", errs.ErrInvalidInput)
	ErrLabelLenMismatch     = fmt.Errorf("labels do not match the number of rows: %w", errs.ErrInvalidInput)
	ErrInsufficientClasses  = fmt.Errorf("need at least 2 label classes: %w", errs.ErrInvalidInput)
	ErrPercentileOutOfRange = errors.New("percentile must be within [0, 100]")
	ErrEmptyValues          = errors.New("no values to compute percentile from")
)

// ColumnStdDev returns the sample standard deviation (n-1 denominator) of every column.
// Columns with fewer than two rows report NaN.
func ColumnStdDev(x mat.Matrix) []float64 {
	if x == nil {
		return nil
	}
	cols := mat_.Columns(x)
	std := make([]float64, len(cols))
	for j, col := range cols {
		std[j] = stat.StdDev(col, nil)
	}
	return std
}

// MaxFinite returns the largest non-NaN value or 0 if there is none.
func MaxFinite(x []float64) float64 {
	res := math.Inf(-1)
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		res = math.Max(res, v)
	}
	if math.IsInf(res, -1) {
		return 0
	}
	return res
}

// CorrelationMatrix computes the Pearson correlation between every pair of columns. Constant
// columns produce NaN entries.
func CorrelationMatrix(x mat.Matrix) *mat.SymDense {
	if x == nil {
		return nil
	}
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x, nil)
	return &corr
}

// Classes returns the sorted unique labels and the number of samples for each
func Classes(y []int) ([]int, map[int]int) {
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	classes := make([]int, 0, len(counts))
	for label := range counts {
		classes = append(classes, label)
	}
	sort.Ints(classes)
	return classes, counts
}

// ChiSquare computes the chi-square statistic of every non-negative feature column against the
// categorical labels along with the p-value of the statistic. Observed values are the per class
// column sums and expected values are the column total scaled by the class frequency.
func ChiSquare(x mat.Matrix, y []int) ([]float64, []float64, error) {
	if x == nil {
		return nil, nil, nil
	}
	m, n := x.Dims()
	if len(y) != m {
		return nil, nil, fmt.Errorf("got %d labels for %d rows, %w", len(y), m, ErrLabelLenMismatch)
	}
	classes, counts := Classes(y)
	if len(classes) < 2 {
		return nil, nil, fmt.Errorf("found %d classes, %w", len(classes), ErrInsufficientClasses)
	}
	classIdx := make(map[int]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}

	observed := mat.NewDense(len(classes), n, nil)
	total := make([]float64, n)
	for i := 0; i < m; i++ {
		c := classIdx[y[i]]
		for j := 0; j < n; j++ {
			v := x.At(i, j)
			if v < 0 {
				return nil, nil, fmt.Errorf("value %f at row %d column %d, %w", v, i, j, ErrNegativeValues)
			}
			observed.Set(c, j, observed.At(c, j)+v)
			total[j] += v
		}
	}

	dist := distuv.ChiSquared{K: float64(len(classes) - 1)}
	scores := make([]float64, n)
	pvalues := make([]float64, n)
	for j := 0; j < n; j++ {
		var chi2 float64
		for ci, c := range classes {
			expected := float64(counts[c]) / float64(m) * total[j]
			diff := observed.At(ci, j) - expected
			chi2 += diff * diff / expected
		}
		scores[j] = chi2
		pvalues[j] = math.NaN()
		if !math.IsNaN(chi2) {
			pvalues[j] = dist.Survival(chi2)
		}
	}
	return scores, pvalues, nil
}

// Percentile computes the p-th percentile, p in [0, 100], using linear interpolation between
// the closest ranks of the sorted values. NaN values are ignored.
func Percentile(x []float64, p float64) (float64, error) {
	if p < 0 || p > 100 || math.IsNaN(p) {
		return 0, fmt.Errorf("got %f, %w", p, ErrPercentileOutOfRange)
	}
	vals := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, ErrEmptyValues
	}
	sort.Float64s(vals)

	rank := p / 100.0 * float64(len(vals)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return vals[lo], nil
	}
	frac := rank - float64(lo)
	return vals[lo] + (vals[hi]-vals[lo])*frac, nil
}

// Accuracy returns the fraction of matching labels.
func Accuracy(actual, predicted []int) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	matched := make([]float64, len(actual))
	for i := range actual {
		if actual[i] == predicted[i] {
			matched[i] = 1
		}
	}
	return floats.Sum(matched) / float64(len(actual))
}
