package models

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-featureselect/errs"
)

var (
	ErrNoTrainingMatrix   = fmt.Errorf("no training matrix: %w", errs.ErrInvalidInput)
	ErrTargetLenMismatch  = fmt.Errorf("target length does not match training rows: %w", errs.ErrInvalidInput)
	ErrWeightLenMismatch  = fmt.Errorf("sample weights do not match training rows: %w", errs.ErrInvalidInput)
	ErrSingleClass        = fmt.Errorf("need at least 2 classes to train a classifier: %w", errs.ErrInvalidInput)
	ErrFeatureLenMismatch = fmt.Errorf("number of features does not match the trained model: %w", errs.ErrInvalidInput)
	ErrNoDesignMatrix     = fmt.Errorf("no design matrix for inference: %w", errs.ErrInvalidInput)
	ErrNotFitted          = errors.New("model has not been fit")

	ErrNonPositiveC          = fmt.Errorf("svm penalty C must be positive: %w", errs.ErrConfiguration)
	ErrNegativeIterations    = fmt.Errorf("negative iterations: %w", errs.ErrConfiguration)
	ErrNegativeTolerance     = fmt.Errorf("negative tolerance: %w", errs.ErrConfiguration)
	ErrNonPositiveTrees      = fmt.Errorf("number of trees must be at least 1: %w", errs.ErrConfiguration)
	ErrNegativeTreeParameter = fmt.Errorf("tree parameters must be non-negative: %w", errs.ErrConfiguration)
	ErrUnknownClassWeight    = fmt.Errorf("unknown class weight mode: %w", errs.ErrConfiguration)
	ErrFoldsRange            = fmt.Errorf("number of folds must be at least 2: %w", errs.ErrConfiguration)
	ErrFoldsExceedClass      = fmt.Errorf("number of folds exceeds the smallest class size: %w", errs.ErrInvalidInput)
)
