package models

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// generateBlobs creates samples around one center per class with uniform noise of the given
// radius. Columns beyond the centers' dimension are uniform noise in [-1, 1].
func generateBlobs(centers [][]float64, perClass, noiseCols int, radius float64, seed uint64) (*mat.Dense, []int) {
	rnd := rand.New(rand.NewPCG(seed, 1))
	dim := len(centers[0])
	n := dim + noiseCols
	m := len(centers) * perClass

	x := mat.NewDense(m, n, nil)
	y := make([]int, 0, m)
	row := 0
	for c, center := range centers {
		for s := 0; s < perClass; s++ {
			for j := 0; j < dim; j++ {
				x.Set(row, j, center[j]+(rnd.Float64()*2-1)*radius)
			}
			for j := dim; j < n; j++ {
				x.Set(row, j, rnd.Float64()*2-1)
			}
			y = append(y, c)
			row++
		}
	}
	return x, y
}
