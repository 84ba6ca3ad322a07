// Package selection ranks the features of a dataset with three independent selectors: a
// univariate chi-square test, recursive feature elimination around a linear SVM and random
// forest importances.
package selection

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/aouyang1/go-featureselect/errs"
)

var (
	ErrNoDataset           = fmt.Errorf("no dataset to select features from: %w", errs.ErrInvalidInput)
	ErrNoFeatures          = fmt.Errorf("dataset has no features: %w", errs.ErrInvalidInput)
	ErrNegativeParallelism = fmt.Errorf("max parallelism must be non-negative: %w", errs.ErrConfiguration)
)

// RankedFeature is a feature column along with its position in a ranking and the score the
// selector ranked it by.
type RankedFeature struct {
	Name  string
	Index int
	Rank  int
	Score float64
}

// Ranking is an ordered list of features. Index always refers to the column of the dataset the
// selector received.
type Ranking []RankedFeature

// Names returns the feature names in ranking order
func (r Ranking) Names() []string {
	names := make([]string, 0, len(r))
	for _, f := range r {
		names = append(names, f.Name)
	}
	return names
}

// TablePrint writes one row per feature with its rank and score
func (r Ranking) TablePrint(w io.Writer, scoreName string) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "rank\tfeature\t%s\t\n", scoreName); err != nil {
		return err
	}
	for _, f := range r {
		if _, err := fmt.Fprintf(tbl, "%d\t%s\t%.5f\t\n", f.Rank, f.Name, f.Score); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// CurvePoint is the mean cross validated accuracy of a model trained on NumFeatures features
type CurvePoint struct {
	NumFeatures int
	Score       float64
}

func validateDataset(ds *dataset.Dataset) error {
	if ds == nil {
		return ErrNoDataset
	}
	m, n := ds.Dims()
	if m == 0 || n == 0 || ds.X == nil {
		return fmt.Errorf("got %d samples and %d features, %w", m, n, ErrNoFeatures)
	}
	return nil
}

// parallelism resolves a max parallelism setting where 0 means every available core
func parallelism(maxParallelism, tasks int) int {
	p := maxParallelism
	if p == 0 {
		p = runtime.GOMAXPROCS(0)
	}
	if p > tasks {
		p = tasks
	}
	if p < 1 {
		p = 1
	}
	return p
}
