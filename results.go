package featureselect

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-featureselect/preprocess"
	"github.com/aouyang1/go-featureselect/selection"
)

// Results holds the outcome of every pipeline stage of one run
type Results struct {
	RunID string
	Seed  uint64

	Samples        int
	LoadedFeatures int

	Preprocess *preprocess.Result
	Univariate *selection.UnivariateResult
	RFE        *selection.RFEResult
	Forest     *selection.ForestResult

	opt *Options
}

// TablePrint writes the feature counts of every preprocessing pass followed by the ranking of
// every selector
func (r *Results) TablePrint(w io.Writer) error {
	opt := r.options()
	if _, err := fmt.Fprintf(w, "Run %s (seed %d, %d samples)\n", r.RunID, r.Seed, r.Samples); err != nil {
		return err
	}
	if r.Preprocess != nil {
		if err := r.Preprocess.TablePrint(w, opt.PreprocessOptions.CorrThreshold); err != nil {
			return err
		}
	}
	if r.Univariate == nil || r.RFE == nil || r.Forest == nil {
		_, err := fmt.Fprintln(w, "No features remain after preprocessing, skipping feature selection")
		return err
	}

	if _, err := fmt.Fprintf(w, "\nFeatures selected by chi-square in the top %g percentile: %d\n",
		opt.UnivariateOptions.Percentile, len(r.Univariate.Selected)); err != nil {
		return err
	}
	if err := r.Univariate.Selected.TablePrint(w, "chi2"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nOptimal number of features: %d\nFeature ranking:\n", r.RFE.OptimalFeatures); err != nil {
		return err
	}
	if err := r.RFE.Ranking.TablePrint(w, "svm weight"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nRandom forest out of bag score: %.5f\nFeatures sorted by their score:\n", r.Forest.OOBScore); err != nil {
		return err
	}
	return r.Forest.Ranking.TablePrint(w, "importance")
}

func (r *Results) options() *Options {
	if r.opt == nil {
		return NewDefaultOptions()
	}
	return r.opt
}
