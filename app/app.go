// Package app holds the process-wide context: the classifier and the
// reference dataset, loaded once at startup and read-only afterwards.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"diabetesdx/config"
	"diabetesdx/dataset"
	"diabetesdx/diagnosis"
	"diabetesdx/ml"
)

// App is built once by Bootstrap and shared by every request.
type App struct {
	Schema     *ml.FeatureSchema
	Classifier ml.Classifier
	Dataset    *dataset.Table
	Pipeline   *diagnosis.Pipeline
	Config     *config.Config
}

var (
	loadModel = func(path string, schema *ml.FeatureSchema) (ml.Classifier, error) {
		return ml.LoadModel(path, schema)
	}
	loadDataset = dataset.Load
)

// Bootstrap loads the model artifact and the reference dataset named by cfg.
// Any failure is fatal for the caller: no App is returned.
func Bootstrap(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema := ml.DefaultSchema()

	start := time.Now()
	classifier, err := loadModel(cfg.Model.Path, schema)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if forest, ok := classifier.(*ml.RandomForest); ok {
		logger.Info("model loaded",
			zap.String("path", cfg.Model.Path),
			zap.Int("trees", forest.NumTrees()),
			zap.Duration("took", time.Since(start)))
	}

	start = time.Now()
	table, err := loadDataset(cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded",
		zap.String("path", cfg.Dataset.Path),
		zap.Int("rows", table.Len()),
		zap.Strings("columns", table.Columns()),
		zap.Duration("took", time.Since(start)))

	return &App{
		Schema:     schema,
		Classifier: classifier,
		Dataset:    table,
		Pipeline:   diagnosis.NewPipeline(schema, classifier, logger.Named("diagnosis")),
		Config:     cfg,
	}, nil
}
