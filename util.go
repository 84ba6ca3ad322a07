package featureselect

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoCurve = errors.New("no recursive feature elimination curve to plot")

// LineSeries generates an echart multi-line chart for values against an integer x axis. Every
// series in y must have the same length as x. NaN values are left out of the chart.
func LineSeries(title, xName, yName string, seriesName []string, x []int, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: xName,
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: yName,
			},
		),
	)

	line = line.SetXAxis(x)
	for i, series := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData = append(lineData, opts.LineData{Value: "-"})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: y[i][j]})
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// PlotRFECurve uses the Apache Echarts library to render an html page of the number of features
// selected against the mean cross validated accuracy, along with the accuracy of every fold.
func (r *Results) PlotRFECurve(w io.Writer) error {
	if r.RFE == nil || len(r.RFE.Curve) == 0 {
		return ErrNoCurve
	}

	x := make([]int, len(r.RFE.Curve))
	mean := make([]float64, len(r.RFE.Curve))
	for i, p := range r.RFE.Curve {
		x[i] = p.NumFeatures
		mean[i] = p.Score
	}

	seriesName := []string{"Mean"}
	y := [][]float64{mean}
	for f, scores := range r.RFE.FoldScores {
		seriesName = append(seriesName, fmt.Sprintf("Fold %d", f+1))
		y = append(y, scores)
	}

	page := components.NewPage()
	page.AddCharts(
		LineSeries(
			"Recursive feature elimination",
			"Number of features selected",
			"Cross validation score",
			seriesName,
			x,
			y,
		),
	)
	return page.Render(w)
}
