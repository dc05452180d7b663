package ml

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadModel(t *testing.T) {
	schema := DefaultSchema()
	model, err := LoadModel(filepath.Join("testdata", "forest.json"), schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.NumTrees() != 3 {
		t.Fatalf("expected 3 trees, got %d", model.NumTrees())
	}

	reference, err := schema.Assemble(referenceInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defaults, err := schema.Assemble(schema.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels, err := model.Predict([][]float64{reference.Values(), defaults.Values()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != 1 || labels[1] != 0 {
		t.Fatalf("expected [1 0], got %v", labels)
	}
}

func TestLoadModelNotFound(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.json"), DefaultSchema())
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
	if errors.Is(err, ErrDeserialization) {
		t.Fatal("missing artifact must not read as a deserialization failure")
	}
}

func TestLoadModelDeserializationErrors(t *testing.T) {
	valid, err := os.ReadFile(filepath.Join("testdata", "forest.json"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "\x80\x04\x95pickle"},
		{name: "empty", payload: ""},
		{name: "wrong format", payload: strings.Replace(string(valid), `"diabetes-rf"`, `"sklearn"`, 1)},
		{name: "wrong version", payload: strings.Replace(string(valid), `"version": 1`, `"version": 2`, 1)},
		{name: "renamed feature", payload: strings.Replace(string(valid), `"Insulin"`, `"insulin"`, 1)},
		{name: "unknown field", payload: strings.Replace(string(valid), `"version": 1`, `"version": 1, "n_estimators": 3`, 1)},
		{
			name: "non binary class",
			payload: `{"format":"diabetes-rf","version":1,"classes":[0,2],"trees":[[{"is_leaf":true}]],` +
				`"feature_names":["Pregnancies","Glucose","BloodPressure","SkinThickness","Insulin","BMI","DiabetesPedigreeFunction","Age"]}`,
		},
		{
			name: "no trees",
			payload: `{"format":"diabetes-rf","version":1,"classes":[0,1],"trees":[],` +
				`"feature_names":["Pregnancies","Glucose","BloodPressure","SkinThickness","Insulin","BMI","DiabetesPedigreeFunction","Age"]}`,
		},
		{
			name: "cyclic tree",
			payload: `{"format":"diabetes-rf","version":1,"classes":[0,1],` +
				`"trees":[[{"feature_idx":0,"left_child":0,"right_child":0}]],` +
				`"feature_names":["Pregnancies","Glucose","BloodPressure","SkinThickness","Insulin","BMI","DiabetesPedigreeFunction","Age"]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rfc.json")
			if err := os.WriteFile(path, []byte(tt.payload), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadModel(path, DefaultSchema())
			if !errors.Is(err, ErrDeserialization) {
				t.Fatalf("expected ErrDeserialization, got %v", err)
			}
			var derr *DeserializationError
			if !errors.As(err, &derr) || derr.Path != path {
				t.Fatalf("expected path in error, got %v", err)
			}
		})
	}
}
