// Package dataset loads an OTU abundance table and a sample design table into an aligned
// feature matrix and integer label vector.
package dataset

import (
	"errors"
	"fmt"

	mat_ "github.com/aouyang1/go-featureselect/mat"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrFeatureLenMismatch = errors.New("number of feature names does not match matrix columns")
	ErrSampleLenMismatch  = errors.New("number of samples does not match matrix rows or labels")
)

// Dataset is a samples by features matrix with its column names and the label of every row.
// X is nil when there are no features or no samples.
type Dataset struct {
	Features []string
	Samples  []string
	X        *mat.Dense
	Y        []int
}

// New validates that the names, matrix and labels line up and returns a Dataset.
func New(features, samples []string, x *mat.Dense, y []int) (*Dataset, error) {
	m, n := 0, 0
	if x != nil {
		m, n = x.Dims()
	}
	if x == nil {
		m = len(samples)
	}
	if len(features) != n {
		return nil, fmt.Errorf("got %d names for %d columns, %w", len(features), n, ErrFeatureLenMismatch)
	}
	if len(samples) != m || len(y) != m {
		return nil, fmt.Errorf("got %d samples and %d labels for %d rows, %w", len(samples), len(y), m, ErrSampleLenMismatch)
	}
	return &Dataset{
		Features: features,
		Samples:  samples,
		X:        x,
		Y:        y,
	}, nil
}

// Dims returns the number of samples and features
func (d *Dataset) Dims() (int, int) {
	return len(d.Samples), len(d.Features)
}

// FeatureIndex returns the column index of the named feature or -1 if it does not exist
func (d *Dataset) FeatureIndex(name string) int {
	for i, f := range d.Features {
		if f == name {
			return i
		}
	}
	return -1
}

// SelectFeatures returns a new Dataset holding only the given columns, in the given order.
// Labels and samples are shared with the receiver since they are never mutated.
func (d *Dataset) SelectFeatures(idx []int) (*Dataset, error) {
	x, err := mat_.SelectCols(d.X, idx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(idx))
	for _, j := range idx {
		names = append(names, d.Features[j])
	}
	return New(names, d.Samples, x, d.Y)
}

// Column returns a copy of the values of the column at index j
func (d *Dataset) Column(j int) []float64 {
	if d.X == nil {
		return nil
	}
	return mat.Col(nil, j, d.X)
}
