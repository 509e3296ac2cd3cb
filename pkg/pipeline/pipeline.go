// Package pipeline implements the fit-once feature preprocessing used
// by both the training job and the prediction service: median
// imputation + robust scaling for numeric columns, constant imputation
// + one-hot encoding for categorical columns.
//
// Fit runs exactly once, offline, over the training matrix. Transform
// is pure: it only reads fitted statistics and never mutates them, so
// a fitted Pipeline is safe for concurrent use.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/priceworks/carprice/pkg/schema"
)

// FillConstant replaces missing categorical values before encoding.
const FillConstant = "missing"

var (
	// ErrEmptyFit indicates Fit was called without training rows.
	ErrEmptyFit = errors.New("cannot fit pipeline on empty feature matrix")

	// ErrBadParams indicates fitted parameters do not match the schema.
	ErrBadParams = errors.New("pipeline parameters do not match schema")
)

// Params holds the fitted per-column statistics. It is the part of the
// trained artifact owned by this package and is serialized as explicit
// JSON rather than an opaque blob.
type Params struct {
	// Medians are the per-numeric-column training medians, used both as
	// the imputation value and the robust-scaling center.
	Medians []float64 `json:"medians"`

	// Scales are the per-numeric-column inter-quartile ranges, with 1
	// substituted where the IQR is zero.
	Scales []float64 `json:"scales"`

	// Vocabulary holds the sorted category vocabulary per categorical
	// column, in schema order.
	Vocabulary [][]string `json:"vocabulary"`
}

// Pipeline applies fitted preprocessing to feature vectors.
type Pipeline struct {
	params Params

	// index[col][category] -> position within the column's one-hot block
	index []map[string]int
}

// Fit learns imputation, scaling and encoding statistics from the
// training feature matrix.
func Fit(vectors []schema.FeatureVector) (*Pipeline, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyFit
	}

	numCols := len(schema.NumericColumns)
	params := Params{
		Medians: make([]float64, numCols),
		Scales:  make([]float64, numCols),
	}

	// Numeric columns: median ignoring missing, then IQR over the
	// imputed column (imputation happens before scaling, so the scaler
	// sees filled values).
	for col := 0; col < numCols; col++ {
		values := make([]float64, 0, len(vectors))
		for _, v := range vectors {
			x := v.Numeric()[col]
			if !math.IsNaN(x) {
				values = append(values, x)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("numeric column %q has no observed values", schema.NumericColumns[col])
		}

		median := quantile(values, 0.5)
		params.Medians[col] = median

		filled := make([]float64, 0, len(vectors))
		for _, v := range vectors {
			x := v.Numeric()[col]
			if math.IsNaN(x) {
				x = median
			}
			filled = append(filled, x)
		}

		iqr := quantile(filled, 0.75) - quantile(filled, 0.25)
		if iqr == 0 {
			iqr = 1
		}
		params.Scales[col] = iqr
	}

	// Categorical columns: sorted vocabulary over imputed values.
	for col := range schema.CategoricalColumns {
		seen := make(map[string]struct{})
		for _, v := range vectors {
			val := v.Categorical()[col]
			if val == "" {
				val = FillConstant
			}
			seen[val] = struct{}{}
		}
		vocab := make([]string, 0, len(seen))
		for val := range seen {
			vocab = append(vocab, val)
		}
		sort.Strings(vocab)
		params.Vocabulary = append(params.Vocabulary, vocab)
	}

	return FromParams(params)
}

// FromParams reconstructs a fitted pipeline from persisted parameters.
func FromParams(params Params) (*Pipeline, error) {
	if len(params.Medians) != len(schema.NumericColumns) ||
		len(params.Scales) != len(schema.NumericColumns) ||
		len(params.Vocabulary) != len(schema.CategoricalColumns) {
		return nil, ErrBadParams
	}

	index := make([]map[string]int, len(params.Vocabulary))
	for col, vocab := range params.Vocabulary {
		index[col] = make(map[string]int, len(vocab))
		for i, val := range vocab {
			index[col][val] = i
		}
	}

	return &Pipeline{params: params, index: index}, nil
}

// Params returns the fitted statistics for persistence.
func (p *Pipeline) Params() Params {
	return p.params
}

// Width returns the length of the transformed vector: numeric columns
// followed by the one-hot expansion of every categorical column.
func (p *Pipeline) Width() int {
	w := len(p.params.Medians)
	for _, vocab := range p.params.Vocabulary {
		w += len(vocab)
	}
	return w
}

// Transform maps one feature vector to a fixed-length numeric vector.
// Missing numerics are imputed with the training median; categories
// unseen at fit time encode as an all-zero block, never an error.
func (p *Pipeline) Transform(v schema.FeatureVector) []float64 {
	out := make([]float64, 0, p.Width())

	nums := v.Numeric()
	for col, x := range nums {
		if math.IsNaN(x) {
			x = p.params.Medians[col]
		}
		out = append(out, (x-p.params.Medians[col])/p.params.Scales[col])
	}

	cats := v.Categorical()
	for col, vocab := range p.params.Vocabulary {
		block := make([]float64, len(vocab))
		val := cats[col]
		if val == "" {
			val = FillConstant
		}
		if i, ok := p.index[col][val]; ok {
			block[i] = 1
		}
		out = append(out, block...)
	}

	return out
}

// TransformBatch transforms a batch of feature vectors.
func (p *Pipeline) TransformBatch(vectors []schema.FeatureVector) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		out[i] = p.Transform(v)
	}
	return out
}
