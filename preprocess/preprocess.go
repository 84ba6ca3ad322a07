// Package preprocess prunes low variance and highly correlated feature columns before
// feature selection.
package preprocess

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/aouyang1/go-featureselect/stats"
)

const (
	DefaultStdPercent    = 0.01
	DefaultCorrThreshold = 0.8
)

var (
	ErrStdPercentRange    = fmt.Errorf("std percent must be within (0, 1]: %w", errs.ErrConfiguration)
	ErrCorrThresholdRange = fmt.Errorf("correlation threshold must be within (0, 1]: %w", errs.ErrConfiguration)
	ErrNoDataset          = fmt.Errorf("no dataset to preprocess: %w", errs.ErrInvalidInput)
)

// Options configures the two pruning passes
type Options struct {
	// StdPercent keeps columns whose standard deviation is above this fraction of the largest
	// column standard deviation.
	StdPercent float64 `json:"std_percent"`

	// CorrThreshold marks the later column of any pair whose absolute Pearson correlation is
	// above this value.
	CorrThreshold float64 `json:"corr_threshold"`
}

// NewDefaultOptions returns the default pruning thresholds
func NewDefaultOptions() *Options {
	return &Options{
		StdPercent:    DefaultStdPercent,
		CorrThreshold: DefaultCorrThreshold,
	}
}

// Validate checks both thresholds are within (0, 1]
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if !inUnitRange(o.StdPercent) {
		return nil, fmt.Errorf("got %f, %w", o.StdPercent, ErrStdPercentRange)
	}
	if !inUnitRange(o.CorrThreshold) {
		return nil, fmt.Errorf("got %f, %w", o.CorrThreshold, ErrCorrThresholdRange)
	}
	return o, nil
}

func inUnitRange(v float64) bool {
	return v > 0 && v <= 1 && !math.IsNaN(v)
}

// Result holds the pruned dataset along with the feature count after every pass
type Result struct {
	Dataset *dataset.Dataset

	InputFeatures    int
	AfterVariance    int
	AfterCorrelation int
	Dropped          []string
}

// TablePrint writes the feature count after every pass
func (r *Result) TablePrint(w io.Writer, corrThreshold float64) error {
	if _, err := fmt.Fprintf(w, "Number of input features: %d\n", r.InputFeatures); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Number of input features after standard deviation based pruning: %d\n", r.AfterVariance); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Number of input features after pearson's correlation check with threshold value %g: %d\n",
		corrThreshold, r.AfterCorrelation)
	return err
}

// Run applies the variance filter followed by the correlation filter. Labels are passed through.
func Run(ds *dataset.Dataset, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNoDataset
	}

	_, n := ds.Dims()
	res := &Result{InputFeatures: n}

	filtered, err := VarianceFilter(ds, opt.StdPercent)
	if err != nil {
		return nil, fmt.Errorf("unable to prune by standard deviation, %w", err)
	}
	_, res.AfterVariance = filtered.Dims()
	slog.Info("pruned by standard deviation", "std_percent", opt.StdPercent, "features", res.AfterVariance)

	filtered, res.Dropped, err = CorrelationFilter(filtered, opt.CorrThreshold)
	if err != nil {
		return nil, fmt.Errorf("unable to prune by correlation, %w", err)
	}
	_, res.AfterCorrelation = filtered.Dims()
	slog.Info("pruned by pearson correlation", "corr_threshold", opt.CorrThreshold, "features", res.AfterCorrelation)

	res.Dataset = filtered
	return res, nil
}

// VarianceFilter keeps the columns whose sample standard deviation is strictly above
// stdPercent of the largest column standard deviation. If every column is constant the
// result has no features.
func VarianceFilter(ds *dataset.Dataset, stdPercent float64) (*dataset.Dataset, error) {
	if !inUnitRange(stdPercent) {
		return nil, fmt.Errorf("got %f, %w", stdPercent, ErrStdPercentRange)
	}
	stddevs := stats.ColumnStdDev(ds.X)
	threshold := stats.MaxFinite(stddevs) * stdPercent

	keep := make([]int, 0, len(stddevs))
	for j, std := range stddevs {
		if std > threshold {
			keep = append(keep, j)
		}
	}
	return ds.SelectFeatures(keep)
}

// CorrelationFilter scans column pairs (i, j), j > i, in column order and marks column j when
// the absolute Pearson correlation is above corrThreshold. Columns already marked are not
// compared again as the later member of a pair, so the first column of a correlated group
// always survives. The dropped names are returned in the order they were marked.
func CorrelationFilter(ds *dataset.Dataset, corrThreshold float64) (*dataset.Dataset, []string, error) {
	if !inUnitRange(corrThreshold) {
		return nil, nil, fmt.Errorf("got %f, %w", corrThreshold, ErrCorrThresholdRange)
	}
	_, n := ds.Dims()
	if n < 2 {
		return ds, nil, nil
	}

	corr := stats.CorrelationMatrix(ds.X)
	marked := make([]bool, n)
	var dropped []string
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if marked[j] {
				continue
			}
			if math.Abs(corr.At(i, j)) > corrThreshold {
				marked[j] = true
				dropped = append(dropped, ds.Features[j])
			}
		}
	}

	keep := make([]int, 0, n-len(dropped))
	for j := 0; j < n; j++ {
		if !marked[j] {
			keep = append(keep, j)
		}
	}
	filtered, err := ds.SelectFeatures(keep)
	if err != nil {
		return nil, nil, err
	}
	return filtered, dropped, nil
}
