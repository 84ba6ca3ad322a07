package selection

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/aouyang1/go-featureselect/dataset"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// generateDataset creates perClass samples for every center. The first len(center) features
// are uniformly spread around the class center within radius and the remaining noiseCols
// features are uniform noise in [-1, 1] shifted by offset.
func generateDataset(t *testing.T, centers [][]float64, perClass, noiseCols int, radius, offset float64, seed uint64) *dataset.Dataset {
	t.Helper()
	rnd := rand.New(rand.NewPCG(seed, 2))
	dim := len(centers[0])
	n := dim + noiseCols
	m := len(centers) * perClass

	features := make([]string, n)
	for j := range features {
		features[j] = fmt.Sprintf("Otu%03d", j+1)
	}
	samples := make([]string, 0, m)
	x := mat.NewDense(m, n, nil)
	y := make([]int, 0, m)
	row := 0
	for c, center := range centers {
		for s := 0; s < perClass; s++ {
			for j := 0; j < dim; j++ {
				x.Set(row, j, center[j]+(rnd.Float64()*2-1)*radius)
			}
			for j := dim; j < n; j++ {
				x.Set(row, j, offset+rnd.Float64()*2-1)
			}
			samples = append(samples, fmt.Sprintf("sample%d", row))
			y = append(y, c)
			row++
		}
	}
	ds, err := dataset.New(features, samples, x, y)
	require.Nil(t, err)
	return ds
}

func datasetFromRows(t *testing.T, features []string, rows [][]float64, y []int) *dataset.Dataset {
	t.Helper()
	samples := make([]string, len(rows))
	data := make([]float64, 0, len(rows)*len(features))
	for i, r := range rows {
		samples[i] = fmt.Sprintf("sample%d", i)
		data = append(data, r...)
	}
	ds, err := dataset.New(features, samples, mat.NewDense(len(rows), len(features), data), y)
	require.Nil(t, err)
	return ds
}
