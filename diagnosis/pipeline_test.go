package diagnosis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"diabetesdx/ml"
)

type fakeClassifier struct {
	predictions []int
	err         error
	calls       int
	lastRows    [][]float64
}

func (f *fakeClassifier) Predict(rows [][]float64) ([]int, error) {
	f.calls++
	f.lastRows = rows
	return f.predictions, f.err
}

func referenceInputs() ml.Inputs {
	return ml.Inputs{
		ml.FieldPregnancies:              6,
		ml.FieldGlucose:                  148,
		ml.FieldBloodPressure:            72,
		ml.FieldSkinThickness:            35,
		ml.FieldInsulin:                  0,
		ml.FieldBMI:                      33,
		ml.FieldDiabetesPedigreeFunction: 0.627,
		ml.FieldAge:                      50,
	}
}

func TestRunPassesRowInSchemaOrder(t *testing.T) {
	classifier := &fakeClassifier{predictions: []int{1}}
	p := NewPipeline(ml.DefaultSchema(), classifier, nil)

	result, err := p.Run(context.Background(), referenceInputs())
	require.NoError(t, err)

	assert.Equal(t, ml.Diabetic, result.Label)
	assert.Equal(t, 1, result.Prediction)
	assert.Equal(t, [][]float64{{6, 148, 72, 35, 0, 33, 0.627, 50}}, classifier.lastRows)
	assert.Equal(t, ml.DefaultSchema().Names(), result.Row.Names())
}

func TestRunIsIdempotent(t *testing.T) {
	model, err := ml.LoadModel("../ml/testdata/forest.json", ml.DefaultSchema())
	require.NoError(t, err)
	p := NewPipeline(ml.DefaultSchema(), model, nil)

	first, err := p.Run(context.Background(), referenceInputs())
	require.NoError(t, err)
	second, err := p.Run(context.Background(), referenceInputs())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ml.Diabetic, first.Label)
}

func TestRunUnknownPredictionFallsBackToHealthy(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := NewPipeline(ml.DefaultSchema(), &fakeClassifier{predictions: []int{7}}, zap.New(core))

	result, err := p.Run(context.Background(), referenceInputs())
	require.NoError(t, err)
	assert.Equal(t, ml.Healthy, result.Label)
	assert.Equal(t, 7, result.Prediction)
	assert.Equal(t, 1, logs.Len())
}

func TestRunPropagatesErrors(t *testing.T) {
	predictErr := errors.New("boom")
	p := NewPipeline(ml.DefaultSchema(), &fakeClassifier{err: predictErr}, nil)
	_, err := p.Run(context.Background(), referenceInputs())
	assert.ErrorIs(t, err, predictErr)

	classifier := &fakeClassifier{predictions: []int{1}}
	p = NewPipeline(ml.DefaultSchema(), classifier, nil)
	inputs := referenceInputs()
	delete(inputs, ml.FieldInsulin)
	_, err = p.Run(context.Background(), inputs)
	assert.ErrorIs(t, err, ml.ErrNameResolution)
	assert.Zero(t, classifier.calls, "classifier must not run on an incomplete row")
}

func TestRunRejectsWrongPredictionCount(t *testing.T) {
	p := NewPipeline(ml.DefaultSchema(), &fakeClassifier{predictions: []int{0, 1}}, nil)
	_, err := p.Run(context.Background(), referenceInputs())
	assert.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	classifier := &fakeClassifier{predictions: []int{1}}
	_, err := NewPipeline(ml.DefaultSchema(), classifier, nil).Run(ctx, referenceInputs())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, classifier.calls)
}

func TestValidate(t *testing.T) {
	p := NewPipeline(ml.DefaultSchema(), &fakeClassifier{}, nil)

	err := p.Validate(referenceInputs())
	var rangeErr *ml.RangeViolationError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, ml.FieldInsulin, rangeErr.Field)

	assert.NoError(t, p.Validate(ml.DefaultSchema().Defaults()))
}

func TestRunBoundaryRows(t *testing.T) {
	schema := ml.DefaultSchema()
	model, err := ml.LoadModel("../ml/testdata/forest.json", schema)
	require.NoError(t, err)
	p := NewPipeline(schema, model, nil)

	picks := map[string]func(ml.Field) float64{
		"min":     func(f ml.Field) float64 { return f.Min },
		"max":     func(f ml.Field) float64 { return f.Max },
		"default": func(f ml.Field) float64 { return f.Default },
	}
	for name, pick := range picks {
		t.Run(name, func(t *testing.T) {
			inputs := make(ml.Inputs, schema.Len())
			for _, f := range schema.Fields() {
				inputs[f.Name] = pick(f)
			}
			require.NoError(t, p.Validate(inputs))

			first, err := p.Run(context.Background(), inputs)
			require.NoError(t, err)
			second, err := p.Run(context.Background(), inputs)
			require.NoError(t, err)

			assert.Equal(t, first.Label, second.Label)
			assert.Contains(t, []ml.DiagnosisLabel{ml.Diabetic, ml.Healthy}, first.Label)
			assert.Equal(t, schema.Names(), first.Row.Names())
		})
	}

	// each field alone at its bounds, others at defaults
	for _, f := range schema.Fields() {
		for _, v := range []float64{f.Min, f.Max} {
			inputs := schema.Defaults()
			inputs[f.Name] = v
			first, err := p.Run(context.Background(), inputs)
			require.NoError(t, err, "%s=%g", f.Name, v)
			second, err := p.Run(context.Background(), inputs)
			require.NoError(t, err)
			assert.Equal(t, first.Label, second.Label, "%s=%g", f.Name, v)
		}
	}
}
