package selection

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/aouyang1/go-featureselect/stats"
)

const DefaultPercentile = 10.0

var ErrPercentileRange = fmt.Errorf("percentile must be within [0, 100]: %w", errs.ErrConfiguration)

// UnivariateOptions configures the chi-square selector
type UnivariateOptions struct {
	// Percentile is the share of features, in percent, kept by highest chi-square score
	Percentile float64 `json:"percentile"`
}

// NewDefaultUnivariateOptions keeps the top 10 percent of features
func NewDefaultUnivariateOptions() *UnivariateOptions {
	return &UnivariateOptions{
		Percentile: DefaultPercentile,
	}
}

// Validate checks the percentile is within [0, 100]
func (o *UnivariateOptions) Validate() (*UnivariateOptions, error) {
	if o == nil {
		o = NewDefaultUnivariateOptions()
	}
	if o.Percentile < 0 || o.Percentile > 100 || math.IsNaN(o.Percentile) {
		return nil, fmt.Errorf("got %f, %w", o.Percentile, ErrPercentileRange)
	}
	return o, nil
}

// UnivariateResult holds the features kept by the chi-square selector in column order along
// with the statistic and p-value of every input feature.
type UnivariateResult struct {
	Selected Ranking
	Scores   []float64
	PValues  []float64
}

// Univariate scores every feature with a chi-square test against the labels and keeps the top
// percentile of features. Feature values must be non-negative counts.
func Univariate(ds *dataset.Dataset, opt *UnivariateOptions) (*UnivariateResult, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if err := validateDataset(ds); err != nil {
		return nil, err
	}

	scores, pvalues, err := stats.ChiSquare(ds.X, ds.Y)
	if err != nil {
		return nil, fmt.Errorf("unable to compute chi-square scores, %w", err)
	}
	mask, err := percentileMask(scores, opt.Percentile)
	if err != nil {
		return nil, err
	}

	res := &UnivariateResult{
		Selected: make(Ranking, 0),
		Scores:   scores,
		PValues:  pvalues,
	}
	for j, keep := range mask {
		if !keep {
			continue
		}
		res.Selected = append(res.Selected, RankedFeature{
			Name:  ds.Features[j],
			Index: j,
			Rank:  len(res.Selected) + 1,
			Score: scores[j],
		})
	}
	slog.Info("selected features by chi-square percentile", "percentile", opt.Percentile, "features", len(res.Selected))
	return res, nil
}

// percentileMask keeps the scores strictly above the (100-percentile)-th percentile of all scores.
// Scores equal to the threshold are admitted in column order until floor(n*percentile/100)
// features are kept. NaN scores rank below every other score.
func percentileMask(scores []float64, percentile float64) ([]bool, error) {
	n := len(scores)
	mask := make([]bool, n)
	switch percentile {
	case 100:
		for j := range mask {
			mask[j] = true
		}
		return mask, nil
	case 0:
		return mask, nil
	}

	clean := make([]float64, n)
	for j, s := range scores {
		clean[j] = s
		if math.IsNaN(s) {
			clean[j] = -math.MaxFloat64
		}
	}
	threshold, err := stats.Percentile(clean, 100-percentile)
	if err != nil {
		return nil, err
	}

	var kept int
	var ties []int
	for j, s := range clean {
		switch {
		case s > threshold:
			mask[j] = true
			kept++
		case s == threshold:
			ties = append(ties, j)
		}
	}
	maxFeatures := int(float64(n) * percentile / 100)
	for _, j := range ties {
		if kept >= maxFeatures {
			break
		}
		mask[j] = true
		kept++
	}
	return mask, nil
}
