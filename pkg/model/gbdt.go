// Package model implements the gradient-boosted tree regressor and the
// trained artifact bundle the serving process loads. The regressor maps
// a preprocessed feature vector to a scalar log-price estimate; the
// inverse target transform is applied by the prediction service, not
// here.
package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyTrainingSet indicates FitEnsemble received no rows.
	ErrEmptyTrainingSet = errors.New("cannot fit model on empty training set")

	// ErrDimensionMismatch indicates features and targets disagree in length.
	ErrDimensionMismatch = errors.New("feature and target lengths differ")
)

// Hyperparams controls ensemble fitting. The structural contract is
// only "preprocessed vector in, log-price out"; these values are a
// tuning detail.
type Hyperparams struct {
	LearningRate   float64 `json:"learning_rate"`
	NumTrees       int     `json:"num_trees"`
	MaxDepth       int     `json:"max_depth"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
}

// DefaultHyperparams returns the hyperparameters used by the standard
// training run.
func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		LearningRate:   0.1,
		NumTrees:       100,
		MaxDepth:       4,
		MinSamplesLeaf: 5,
	}
}

// Ensemble is a fitted gradient-boosted tree regressor. A fitted
// ensemble is immutable and safe for concurrent Predict calls.
type Ensemble struct {
	Base         float64          `json:"base"`
	LearningRate float64          `json:"learning_rate"`
	Trees        []regressionTree `json:"trees"`
}

// FitEnsemble trains a least-squares boosted ensemble: the base score
// is the target mean, then each tree fits the residuals of the current
// prediction. Fitting is deterministic for identical inputs.
func FitEnsemble(x [][]float64, y []float64, hp Hyperparams) (*Ensemble, error) {
	if len(x) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d features, %d targets", ErrDimensionMismatch, len(x), len(y))
	}
	if hp.LearningRate <= 0 || hp.NumTrees <= 0 || hp.MaxDepth <= 0 || hp.MinSamplesLeaf <= 0 {
		return nil, fmt.Errorf("invalid hyperparameters: %+v", hp)
	}

	e := &Ensemble{
		Base:         stat.Mean(y, nil),
		LearningRate: hp.LearningRate,
	}

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = e.Base
	}

	residuals := make([]float64, len(y))
	for m := 0; m < hp.NumTrees; m++ {
		for i := range y {
			residuals[i] = y[i] - pred[i]
		}
		tree := fitTree(x, residuals, hp.MaxDepth, hp.MinSamplesLeaf)
		for i := range pred {
			pred[i] += hp.LearningRate * tree.predict(x[i])
		}
		e.Trees = append(e.Trees, tree)
	}

	return e, nil
}

// Predict returns the log-price estimate for one preprocessed vector.
func (e *Ensemble) Predict(x []float64) float64 {
	out := e.Base
	for i := range e.Trees {
		out += e.LearningRate * e.Trees[i].predict(x)
	}
	return out
}
