// Package mat contains small helpers around gonum dense matrices used to carry feature
// tables through the pipeline.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColOutOfBounds = errors.New("column is out of bounds")
	ErrRowOutOfBounds = errors.New("row is out of bounds")
)

// Columns returns a copy of every column of x in column order.
func Columns(x mat.Matrix) [][]float64 {
	if x == nil {
		return nil
	}
	_, n := x.Dims()
	cols := make([][]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = mat.Col(nil, j, x)
	}
	return cols
}

// SelectCols copies the requested columns of x into a new matrix in the requested order.
// nil is returned when no columns are requested since gonum does not allow empty matrices.
func SelectCols(x mat.Matrix, idx []int) (*mat.Dense, error) {
	if x == nil || len(idx) == 0 {
		return nil, nil
	}
	m, n := x.Dims()
	out := mat.NewDense(m, len(idx), nil)
	for k, j := range idx {
		if j < 0 || j >= n {
			return nil, fmt.Errorf("column %d with %d columns, %w", j, n, ErrColOutOfBounds)
		}
		for i := 0; i < m; i++ {
			out.Set(i, k, x.At(i, j))
		}
	}
	return out, nil
}

// SelectRows copies the requested rows of x into a new matrix in the requested order.
func SelectRows(x mat.Matrix, idx []int) (*mat.Dense, error) {
	if x == nil || len(idx) == 0 {
		return nil, nil
	}
	m, n := x.Dims()
	out := mat.NewDense(len(idx), n, nil)
	for k, i := range idx {
		if i < 0 || i >= m {
			return nil, fmt.Errorf("row %d with %d rows, %w", i, m, ErrRowOutOfBounds)
		}
		for j := 0; j < n; j++ {
			out.Set(k, j, x.At(i, j))
		}
	}
	return out, nil
}

// Rows returns x as row slices. Each row is a copy.
func Rows(x mat.Matrix) [][]float64 {
	if x == nil {
		return nil
	}
	m, _ := x.Dims()
	rows := make([][]float64, m)
	for i := 0; i < m; i++ {
		rows[i] = mat.Row(nil, i, x)
	}
	return rows
}
