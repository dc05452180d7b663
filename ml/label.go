package ml

type DiagnosisLabel string

const (
	Diabetic DiagnosisLabel = "Diabetic"
	Healthy  DiagnosisLabel = "Healthy"
)

// LabelFor maps a classifier output to a diagnosis. Anything other than 1
// reads as Healthy.
func LabelFor(prediction int) DiagnosisLabel {
	if prediction == 1 {
		return Diabetic
	}
	return Healthy
}

// IsKnownPrediction reports whether prediction is inside the binary output
// domain {0, 1}.
func IsKnownPrediction(prediction int) bool {
	return prediction == 0 || prediction == 1
}
