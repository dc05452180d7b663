package ml

import "testing"

func TestLabelFor(t *testing.T) {
	tests := []struct {
		prediction int
		want       DiagnosisLabel
	}{
		{1, Diabetic},
		{0, Healthy},
		{2, Healthy},
		{-1, Healthy},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.prediction); got != tt.want {
			t.Errorf("LabelFor(%d) = %s, want %s", tt.prediction, got, tt.want)
		}
	}
}

func TestIsKnownPrediction(t *testing.T) {
	if !IsKnownPrediction(0) || !IsKnownPrediction(1) {
		t.Fatal("expected 0 and 1 to be known")
	}
	if IsKnownPrediction(2) {
		t.Fatal("expected 2 to be unknown")
	}
}
