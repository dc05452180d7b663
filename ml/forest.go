package ml

import (
	"errors"
	"fmt"
	"sort"
)

// RandomForest predicts by majority vote over its trees. Ties go to the
// smaller class label.
type RandomForest struct {
	featureNames []string
	classes      []int
	trees        []*DecisionTree
}

func NewRandomForest(featureNames []string, classes []int, trees ...*DecisionTree) (*RandomForest, error) {
	if len(featureNames) == 0 {
		return nil, errors.New("no feature names")
	}
	if len(classes) == 0 {
		return nil, errors.New("no classes")
	}
	if len(trees) == 0 {
		return nil, errors.New("no trees")
	}
	declared := make(map[int]bool, len(classes))
	for _, c := range classes {
		if declared[c] {
			return nil, fmt.Errorf("duplicate class %d", c)
		}
		declared[c] = true
	}
	for i, tree := range trees {
		if tree == nil {
			return nil, fmt.Errorf("tree %d: nil", i)
		}
		if err := tree.validate(len(featureNames), declared); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	sorted := append([]int(nil), classes...)
	sort.Ints(sorted)
	return &RandomForest{
		featureNames: append([]string(nil), featureNames...),
		classes:      sorted,
		trees:        append([]*DecisionTree(nil), trees...),
	}, nil
}

func (rf *RandomForest) FeatureNames() []string {
	return append([]string(nil), rf.featureNames...)
}

func (rf *RandomForest) Classes() []int {
	return append([]int(nil), rf.classes...)
}

func (rf *RandomForest) NumTrees() int {
	return len(rf.trees)
}

func (rf *RandomForest) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != len(rf.featureNames) {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, len(rf.featureNames), len(row))
		}
		label, err := rf.vote(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}

func (rf *RandomForest) vote(row []float64) (int, error) {
	counts := make(map[int]int, len(rf.classes))
	for _, tree := range rf.trees {
		label, err := tree.Predict(row)
		if err != nil {
			return 0, err
		}
		counts[label]++
	}
	best, bestCount := rf.classes[0], -1
	for _, class := range rf.classes {
		if counts[class] > bestCount {
			best, bestCount = class, counts[class]
		}
	}
	return best, nil
}
