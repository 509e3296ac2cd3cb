package training

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/priceworks/carprice/pkg/logging"
	"github.com/priceworks/carprice/pkg/model"
	"github.com/priceworks/carprice/pkg/pipeline"
)

// Config controls one training run.
type Config struct {
	// DataPath is the historical sales CSV.
	DataPath string

	// ArtifactPath is where the fitted artifact is persisted.
	// An existing artifact is overwritten.
	ArtifactPath string

	// HoldoutFraction is the holdout share of rows (default 0.2).
	HoldoutFraction float64

	// Seed drives the train/holdout shuffle (default 42).
	Seed int64

	// Hyperparams for the regressor.
	Hyperparams model.Hyperparams
}

// DefaultConfig returns the standard training configuration for the
// given input and output paths.
func DefaultConfig(dataPath, artifactPath string) Config {
	return Config{
		DataPath:        dataPath,
		ArtifactPath:    artifactPath,
		HoldoutFraction: 0.2,
		Seed:            42,
		Hyperparams:     model.DefaultHyperparams(),
	}
}

// Run executes one training run from scratch: load, dedup, split, fit
// pipeline and regressor on the train split, evaluate on the holdout,
// persist. Any error aborts the run before anything is written; the
// artifact only appears on disk after a fully successful fit.
func Run(cfg Config) (*model.Artifact, error) {
	logger := logging.NewLogger("training")
	start := time.Now()

	ds, err := LoadCSV(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info().Int("rows", ds.Len()).Str("path", cfg.DataPath).Msg("dataset loaded")

	train, holdout := Split(ds, cfg.HoldoutFraction, cfg.Seed)
	logger.Info().Int("train_rows", train.Len()).Int("holdout_rows", holdout.Len()).Msg("dataset split")

	pipe, err := pipeline.Fit(train.Features)
	if err != nil {
		return nil, fmt.Errorf("fit pipeline: %w", err)
	}

	x := pipe.TransformBatch(train.Features)
	y := make([]float64, train.Len())
	for i, price := range train.Prices {
		y[i] = math.Log1p(price)
	}

	ens, err := model.FitEnsemble(x, y, cfg.Hyperparams)
	if err != nil {
		return nil, fmt.Errorf("fit regressor: %w", err)
	}

	art := model.NewArtifact(pipe, ens)

	if holdout.Len() > 0 {
		rmse, mae := evaluate(art, holdout)
		logger.Info().
			Float64("holdout_rmse", rmse).
			Float64("holdout_mae", mae).
			Msg("holdout evaluation")
	}

	if err := art.Save(cfg.ArtifactPath); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}

	logger.Info().
		Str("run_id", art.RunID).
		Str("artifact", cfg.ArtifactPath).
		Dur("duration", time.Since(start)).
		Msg("training run complete")

	return art, nil
}

// evaluate computes price-scale RMSE and MAE over the holdout set.
func evaluate(art *model.Artifact, holdout *Dataset) (rmse, mae float64) {
	sqErrs := make([]float64, holdout.Len())
	absErrs := make([]float64, holdout.Len())

	for i, v := range holdout.Features {
		logPrice, err := art.EstimateLogPrice(v)
		if err != nil {
			// Artifact was just fitted; this cannot fail in practice.
			continue
		}
		diff := math.Expm1(logPrice) - holdout.Prices[i]
		sqErrs[i] = diff * diff
		absErrs[i] = math.Abs(diff)
	}

	return math.Sqrt(stat.Mean(sqErrs, nil)), stat.Mean(absErrs, nil)
}
