package featureselect

import (
	"fmt"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/aouyang1/go-featureselect/preprocess"
	"github.com/aouyang1/go-featureselect/selection"
)

var ErrNegativeParallelism = fmt.Errorf("max parallelism must be non-negative: %w", errs.ErrConfiguration)

// Options configures every stage of the pipeline. Nil stage options use that stage's defaults.
type Options struct {
	LoadOptions       *dataset.LoadOptions
	PreprocessOptions *preprocess.Options
	UnivariateOptions *selection.UnivariateOptions
	RFEOptions        *selection.RFEOptions
	ForestOptions     *selection.ForestOptions

	// MaxParallelism bounds the concurrent cross validation folds and forest trees. 0 uses
	// every available core.
	MaxParallelism int

	// Seed makes fold assignment and forest sampling reproducible. 0 draws a random seed which
	// is reported in the results.
	Seed uint64
}

// NewDefaultOptions returns the reference experiment's parameters
func NewDefaultOptions() *Options {
	return &Options{
		LoadOptions:       dataset.NewDefaultLoadOptions(),
		PreprocessOptions: preprocess.NewDefaultOptions(),
		UnivariateOptions: selection.NewDefaultUnivariateOptions(),
		RFEOptions:        selection.NewDefaultRFEOptions(),
		ForestOptions:     selection.NewDefaultForestOptions(),
	}
}

// Validate fills in defaults for missing stage options and validates every stage
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.LoadOptions == nil {
		o.LoadOptions = dataset.NewDefaultLoadOptions()
	}
	if o.MaxParallelism < 0 {
		return nil, fmt.Errorf("got %d, %w", o.MaxParallelism, ErrNegativeParallelism)
	}

	preprocessOpt, err := o.PreprocessOptions.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid preprocess options, %w", err)
	}
	univariateOpt, err := o.UnivariateOptions.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid univariate options, %w", err)
	}
	rfeOpt, err := o.RFEOptions.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid rfe options, %w", err)
	}
	forestOpt, err := o.ForestOptions.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid forest options, %w", err)
	}
	o.PreprocessOptions = preprocessOpt
	o.UnivariateOptions = univariateOpt
	o.RFEOptions = rfeOpt
	o.ForestOptions = forestOpt
	return o, nil
}
