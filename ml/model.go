package ml

// Classifier predicts one class label per feature row.
type Classifier interface {
	Predict(rows [][]float64) ([]int, error)
}
