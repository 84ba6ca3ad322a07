package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRowsOf(t *testing.T) {
	dense := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	expected := [][]float64{{1, 2, 3}, {4, 5, 6}}

	assert.Equal(t, expected, rowsOf(dense))
	assert.Equal(t, expected, rowsOf(mat.NewDense(3, 2, []float64{1, 4, 2, 5, 3, 6}).T()))
}

func TestFitTransposedView(t *testing.T) {
	// features by samples, viewed as samples by features
	xT := mat.NewDense(2, 6, []float64{
		-3.0, -2.5, -2.0, 2.0, 2.5, 3.0,
		0.1, -0.1, 0.2, -0.2, 0.1, -0.1,
	})
	y := []int{0, 0, 0, 1, 1, 1}

	model, err := NewLinearSVC(nil)
	require.Nil(t, err)
	require.Nil(t, model.Fit(xT.T(), y))

	score, err := model.Score(xT.T(), y)
	require.Nil(t, err)
	assert.Equal(t, 1.0, score)
}
