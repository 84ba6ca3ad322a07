// Package featureselect runs the OTU feature selection pipeline: load an abundance table and its
// design labels, prune low variance and correlated features, then rank the remaining features
// with a chi-square test, SVM recursive feature elimination and random forest importances.
package featureselect

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
	"github.com/aouyang1/go-featureselect/preprocess"
	"github.com/aouyang1/go-featureselect/selection"
	"github.com/google/uuid"
)

var ErrNoDataset = fmt.Errorf("no dataset to select features from: %w", errs.ErrInvalidInput)

// Run loads the feature table at sharedPath and the design table at designPath and runs the
// whole pipeline on them.
func Run(sharedPath, designPath string, opt *Options) (*Results, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(sharedPath, designPath, opt.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to load dataset, %w", err)
	}
	return RunDataset(ds, opt)
}

// RunDataset preprocesses the dataset and runs the three selectors on the preprocessed features.
// Every selector receives the same dataset. If preprocessing removes every feature the selectors
// are skipped and their results are nil.
func RunDataset(ds *dataset.Dataset, opt *Options) (*Results, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNoDataset
	}

	seed := opt.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	m, n := ds.Dims()
	res := &Results{
		RunID:          uuid.New().String(),
		Seed:           seed,
		Samples:        m,
		LoadedFeatures: n,
		opt:            opt,
	}
	logger := slog.With("run_id", res.RunID)
	logger.Info("starting feature selection", "samples", m, "features", n, "seed", seed)

	res.Preprocess, err = preprocess.Run(ds, opt.PreprocessOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to preprocess dataset, %w", err)
	}
	pruned := res.Preprocess.Dataset
	if _, remaining := pruned.Dims(); remaining == 0 {
		logger.Warn("no features remain after preprocessing, skipping feature selection")
		return res, nil
	}

	res.Univariate, err = selection.Univariate(pruned, opt.UnivariateOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to select features by chi-square, %w", err)
	}

	rfeOpt := *opt.RFEOptions
	rfeOpt.MaxParallelism = opt.MaxParallelism
	rfeOpt.Seed = seed
	res.RFE, err = selection.RFE(pruned, &rfeOpt)
	if err != nil {
		return nil, fmt.Errorf("unable to run recursive feature elimination, %w", err)
	}

	forestOpt := *opt.ForestOptions
	forestOpt.MaxParallelism = opt.MaxParallelism
	forestOpt.Seed = seed
	res.Forest, err = selection.Forest(pruned, &forestOpt)
	if err != nil {
		return nil, fmt.Errorf("unable to rank features by random forest, %w", err)
	}

	logger.Info("finished feature selection",
		"chi2_selected", len(res.Univariate.Selected),
		"rfe_optimal", res.RFE.OptimalFeatures,
		"oob_score", res.Forest.OOBScore,
	)
	return res, nil
}
