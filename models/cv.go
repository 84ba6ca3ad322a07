package models

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// Fold holds the sample indexes used to train and test one cross validation split
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold splits the samples into k folds that keep the label proportions of y. Each
// class's samples are optionally shuffled and then dealt round robin across the folds, continuing
// from the fold the previous class ended on so fold sizes differ by at most one.
func StratifiedKFold(y []int, k int, shuffle bool, seed uint64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("got %d folds, %w", k, ErrFoldsRange)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	if len(classes) == 0 {
		return nil, fmt.Errorf("no samples to split into %d folds, %w", k, ErrFoldsExceedClass)
	}
	for _, c := range classes {
		if cnt := len(byClass[c]); k > cnt {
			return nil, fmt.Errorf("%d folds but class %d has %d samples, %w", k, c, cnt, ErrFoldsExceedClass)
		}
	}

	rnd := rand.New(rand.NewPCG(seed, uint64(k)))
	tests := make([][]int, k)
	var offset int
	for _, c := range classes {
		idx := byClass[c]
		if shuffle {
			rnd.Shuffle(len(idx), func(i, j int) {
				idx[i], idx[j] = idx[j], idx[i]
			})
		}
		for r, i := range idx {
			f := (offset + r) % k
			tests[f] = append(tests[f], i)
		}
		offset += len(idx)
	}

	folds := make([]Fold, k)
	for f := 0; f < k; f++ {
		sort.Ints(tests[f])
		inTest := make(map[int]struct{}, len(tests[f]))
		for _, i := range tests[f] {
			inTest[i] = struct{}{}
		}
		train := make([]int, 0, len(y)-len(tests[f]))
		for i := range y {
			if _, exists := inTest[i]; !exists {
				train = append(train, i)
			}
		}
		folds[f] = Fold{Train: train, Test: tests[f]}
	}
	return folds, nil
}
