// Package models is a collection of classifiers and resampling helpers used to rank features:
// a linear support vector classifier, entropy decision trees and a random forest built from them.
package models

import (
	"fmt"
	"sort"

	mat_ "github.com/aouyang1/go-featureselect/mat"
	"gonum.org/v1/gonum/mat"
)

// Classifier is a model fit on a samples by features matrix with integer class labels
type Classifier interface {
	Fit(x mat.Matrix, y []int) error
	Predict(x mat.Matrix) ([]int, error)
	Score(x mat.Matrix, y []int) (float64, error)
	FeatureImportances() []float64
	Classes() []int
}

var (
	_ Classifier = (*LinearSVC)(nil)
	_ Classifier = (*DecisionTree)(nil)
	_ Classifier = (*RandomForest)(nil)
)

// rowsOf returns the rows of x as slices, reusing the backing data of a dense matrix
func rowsOf(x mat.Matrix) [][]float64 {
	d, ok := x.(*mat.Dense)
	if !ok {
		return mat_.Rows(x)
	}
	m, n := d.Dims()
	rows := make([][]float64, m)
	for i := 0; i < m; i++ {
		rows[i] = d.RawRowView(i)[:n]
	}
	return rows
}

func fitValidate(x mat.Matrix, y []int) (int, int, error) {
	if x == nil {
		return 0, 0, ErrNoTrainingMatrix
	}
	m, n := x.Dims()
	if len(y) != m {
		return 0, 0, fmt.Errorf("training data has %d rows and target has %d, %w", m, len(y), ErrTargetLenMismatch)
	}
	return m, n, nil
}

// uniqueClasses returns the sorted labels and the index of every sample's label in that slice
func uniqueClasses(y []int) ([]int, []int) {
	seen := make(map[int]struct{})
	for _, label := range y {
		seen[label] = struct{}{}
	}
	classes := make([]int, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	lookup := make(map[int]int, len(classes))
	for i, c := range classes {
		lookup[c] = i
	}
	yIdx := make([]int, len(y))
	for i, label := range y {
		yIdx[i] = lookup[label]
	}
	return classes, yIdx
}

func argmax(x []float64) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}
