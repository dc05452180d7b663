package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
)

const (
	ArtifactFormat  = "diabetes-rf"
	ArtifactVersion = 1
)

type artifact struct {
	Format       string       `json:"format"`
	Version      int          `json:"version"`
	FeatureNames []string     `json:"feature_names"`
	Classes      []int        `json:"classes"`
	Trees        [][]TreeNode `json:"trees"`
}

// LoadModel reads the forest artifact at path. The artifact's feature names
// must match schema exactly, in order.
func LoadModel(path string, schema *FeatureSchema) (*RandomForest, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer file.Close()

	model, err := DecodeModel(file, schema)
	if err != nil {
		var derr *DeserializationError
		if errors.As(err, &derr) {
			derr.Path = path
		}
		return nil, err
	}
	return model, nil
}

func DecodeModel(r io.Reader, schema *FeatureSchema) (*RandomForest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc artifact
	if err := dec.Decode(&doc); err != nil {
		return nil, &DeserializationError{Reason: "invalid json", Err: err}
	}
	if doc.Format != ArtifactFormat {
		return nil, &DeserializationError{Reason: fmt.Sprintf("unsupported format %q", doc.Format)}
	}
	if doc.Version != ArtifactVersion {
		return nil, &DeserializationError{Reason: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	if schema != nil && !slices.Equal(doc.FeatureNames, schema.Names()) {
		return nil, &DeserializationError{
			Reason: fmt.Sprintf("feature names %v do not match schema %v", doc.FeatureNames, schema.Names()),
		}
	}
	for _, c := range doc.Classes {
		if !IsKnownPrediction(c) {
			return nil, &DeserializationError{Reason: fmt.Sprintf("class %d outside binary domain", c)}
		}
	}

	trees := make([]*DecisionTree, len(doc.Trees))
	for i, nodes := range doc.Trees {
		trees[i] = NewDecisionTree(nodes)
	}
	model, err := NewRandomForest(doc.FeatureNames, doc.Classes, trees...)
	if err != nil {
		return nil, &DeserializationError{Reason: "invalid forest", Err: err}
	}
	return model, nil
}
