package dataset

import (
	"fmt"
	"sort"

	"github.com/aouyang1/go-featureselect/errs"
)

var ErrUnmappedLabel = fmt.Errorf("label not present in category mapping: %w", errs.ErrDataFormat)

// CategoryMapping maps the design label strings onto integer class codes. The set is closed,
// any other label is a data format error.
type CategoryMapping map[string]int

// NewDefaultCategoryMapping returns the sampling time points of the reference experiment
func NewDefaultCategoryMapping() CategoryMapping {
	return CategoryMapping{
		"Before": 0,
		"After1": 1,
		"After2": 2,
		"After3": 3,
	}
}

// Labels returns the mapped label strings ordered by code then name
func (c CategoryMapping) Labels() []string {
	labels := make([]string, 0, len(c))
	for label := range c {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if c[labels[i]] != c[labels[j]] {
			return c[labels[i]] < c[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

// MapLabels converts every label string into its code
func MapLabels(labels []string, mapping CategoryMapping) ([]int, error) {
	codes := make([]int, len(labels))
	for i, label := range labels {
		code, exists := mapping[label]
		if !exists {
			return nil, fmt.Errorf("label %q at row %d, %w", label, i, ErrUnmappedLabel)
		}
		codes[i] = code
	}
	return codes, nil
}
