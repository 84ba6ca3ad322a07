package featureselect

import (
	"io"
	"math"
	"strconv"

	"github.com/aouyang1/go-featureselect/preprocess"
	"github.com/aouyang1/go-featureselect/selection"
	"github.com/goccy/go-json"
)

// Float encodes NaN and infinite values as null
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// ReportFeature is a feature in a report ranking
type ReportFeature struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Rank  int    `json:"rank"`
	Score Float  `json:"score"`
}

type ReportPoint struct {
	NumFeatures int   `json:"num_features"`
	Score       Float `json:"score"`
}

type FeatureCounts struct {
	Loaded           int `json:"loaded"`
	AfterVariance    int `json:"after_variance"`
	AfterCorrelation int `json:"after_correlation"`
}

type UnivariateReport struct {
	Options  *selection.UnivariateOptions `json:"options"`
	Selected []ReportFeature              `json:"selected"`
}

type RFEReport struct {
	Options         *selection.RFEOptions `json:"options"`
	OptimalFeatures int                   `json:"optimal_features"`
	Ranking         []ReportFeature       `json:"ranking"`
	Curve           []ReportPoint         `json:"curve"`
}

type ForestReport struct {
	Options  *selection.ForestOptions `json:"options"`
	OOBScore Float                    `json:"oob_score"`
	Ranking  []ReportFeature          `json:"ranking"`
}

// Report is the serializable summary of a run
type Report struct {
	RunID   string `json:"run_id"`
	Seed    uint64 `json:"seed"`
	Samples int    `json:"samples"`

	PreprocessOptions *preprocess.Options `json:"preprocess_options"`
	Features          FeatureCounts       `json:"features"`
	DroppedCorrelated []string            `json:"dropped_correlated"`

	Univariate *UnivariateReport `json:"univariate,omitempty"`
	RFE        *RFEReport        `json:"rfe,omitempty"`
	Forest     *ForestReport     `json:"forest,omitempty"`
}

func reportRanking(r selection.Ranking) []ReportFeature {
	out := make([]ReportFeature, 0, len(r))
	for _, f := range r {
		out = append(out, ReportFeature{
			Name:  f.Name,
			Index: f.Index,
			Rank:  f.Rank,
			Score: Float(f.Score),
		})
	}
	return out
}

// Report summarizes the results for serialization
func (r *Results) Report() *Report {
	opt := r.options()
	rep := &Report{
		RunID:             r.RunID,
		Seed:              r.Seed,
		Samples:           r.Samples,
		PreprocessOptions: opt.PreprocessOptions,
		Features:          FeatureCounts{Loaded: r.LoadedFeatures},
		DroppedCorrelated: []string{},
	}
	if r.Preprocess != nil {
		rep.Features.AfterVariance = r.Preprocess.AfterVariance
		rep.Features.AfterCorrelation = r.Preprocess.AfterCorrelation
		if r.Preprocess.Dropped != nil {
			rep.DroppedCorrelated = r.Preprocess.Dropped
		}
	}
	if r.Univariate != nil {
		rep.Univariate = &UnivariateReport{
			Options:  opt.UnivariateOptions,
			Selected: reportRanking(r.Univariate.Selected),
		}
	}
	if r.RFE != nil {
		curve := make([]ReportPoint, 0, len(r.RFE.Curve))
		for _, p := range r.RFE.Curve {
			curve = append(curve, ReportPoint{NumFeatures: p.NumFeatures, Score: Float(p.Score)})
		}
		rep.RFE = &RFEReport{
			Options:         opt.RFEOptions,
			OptimalFeatures: r.RFE.OptimalFeatures,
			Ranking:         reportRanking(r.RFE.Ranking),
			Curve:           curve,
		}
	}
	if r.Forest != nil {
		rep.Forest = &ForestReport{
			Options:  opt.ForestOptions,
			OOBScore: Float(r.Forest.OOBScore),
			Ranking:  reportRanking(r.Forest.Ranking),
		}
	}
	return rep
}

// WriteJSON writes the indented JSON report of the results
func (r *Results) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Report())
}
