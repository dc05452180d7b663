package diagnosis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"diabetesdx/ml"
)

type Result struct {
	Row        ml.FeatureRow     `json:"features"`
	Prediction int               `json:"prediction"`
	Label      ml.DiagnosisLabel `json:"label"`
}

// Pipeline turns captured inputs into a diagnosis. It holds no state between
// runs, so identical inputs always give identical results.
type Pipeline struct {
	schema     *ml.FeatureSchema
	classifier ml.Classifier
	logger     *zap.Logger
}

func NewPipeline(schema *ml.FeatureSchema, classifier ml.Classifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{schema: schema, classifier: classifier, logger: logger}
}

func (p *Pipeline) Schema() *ml.FeatureSchema {
	return p.schema
}

// Run assembles one feature row, classifies it and maps the prediction to a
// label. Assembler and classifier errors are returned as they are.
func (p *Pipeline) Run(ctx context.Context, inputs ml.Inputs) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	row, err := p.schema.Assemble(inputs)
	if err != nil {
		return Result{}, err
	}
	predictions, err := p.classifier.Predict([][]float64{row.Values()})
	if err != nil {
		return Result{}, err
	}
	if len(predictions) != 1 {
		return Result{}, fmt.Errorf("classifier returned %d predictions for 1 row", len(predictions))
	}

	prediction := predictions[0]
	if !ml.IsKnownPrediction(prediction) {
		p.logger.Warn("prediction outside {0,1}, reporting Healthy",
			zap.Int("prediction", prediction),
			zap.Float64s("features", row.Values()))
	}
	label := ml.LabelFor(prediction)
	p.logger.Debug("diagnosis",
		zap.Int("prediction", prediction),
		zap.String("label", string(label)))
	return Result{Row: row, Prediction: prediction, Label: label}, nil
}

// Validate reports name and range problems in inputs without classifying.
func (p *Pipeline) Validate(inputs ml.Inputs) error {
	row, err := p.schema.Assemble(inputs)
	if err != nil {
		return err
	}
	return p.schema.Validate(row)
}
