// Package predict wraps trained-artifact inference behind a service
// object: fingerprint the request, consult the cache, fall back to
// live inference, apply the inverse target transform.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/priceworks/carprice/pkg/cache"
	"github.com/priceworks/carprice/pkg/logging"
	"github.com/priceworks/carprice/pkg/schema"
)

// Estimator produces a log1p-scale price estimate for one feature
// vector. *model.Artifact implements it.
type Estimator interface {
	EstimateLogPrice(v schema.FeatureVector) (float64, error)
}

// Cache is the prediction cache handle. *cache.Client implements it.
type Cache interface {
	Get(ctx context.Context, key string) (*cache.PredictionRecord, error)
	Set(ctx context.Context, key string, rec *cache.PredictionRecord) error
}

// Result is one served prediction.
type Result struct {
	// Price is the predicted resale price in monetary units.
	Price float64

	// Cached reports whether the price came from the cache layer.
	Cached bool

	// Fingerprint is the feature-vector digest used as the cache key
	// component.
	Fingerprint string
}

// Service owns the loaded artifact reference and the cache handle for
// the process lifetime. Both are injected at startup; the service keeps
// no other state, so it is safe for arbitrarily many concurrent
// Predict calls.
type Service struct {
	estimator Estimator
	cache     Cache
	runID     string
	logger    zerolog.Logger
}

// NewService creates a prediction service. runID scopes cache keys to
// one training run so a retrained artifact never reads stale entries.
func NewService(estimator Estimator, c Cache, runID string) (*Service, error) {
	if estimator == nil {
		return nil, errors.New("estimator is required")
	}
	if c == nil {
		return nil, errors.New("cache is required")
	}
	return &Service{
		estimator: estimator,
		cache:     c,
		runID:     runID,
		logger:    logging.NewLogger("predict"),
	}, nil
}

// Predict returns the resale price estimate for one feature vector.
//
// Cache lookups that fail for any reason (outage, timeout, malformed
// stored value) degrade to a miss and live inference; a failed cache
// write is logged and swallowed. A request only fails if inference
// itself fails.
func (s *Service) Predict(ctx context.Context, v schema.FeatureVector) (*Result, error) {
	fp := v.Fingerprint()
	key := s.cacheKey(fp)

	rec, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		predictionsTotal.WithLabelValues("cache").Inc()
		s.logger.Debug().Str("fingerprint", fp).Msg("cache hit")
		return &Result{Price: rec.Price, Cached: true, Fingerprint: fp}, nil
	case errors.Is(err, cache.ErrCacheMiss):
		s.logger.Debug().Str("fingerprint", fp).Msg("cache miss")
	default:
		s.logger.Warn().Err(err).Str("fingerprint", fp).Msg("cache get failed, falling back to inference")
	}

	start := time.Now()
	logPrice, err := s.estimator.EstimateLogPrice(v)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	inferenceDuration.Observe(time.Since(start).Seconds())

	// Invert the log1p training transform. The model was fit on
	// non-negative targets; clamp guards against a tiny undershoot.
	price := math.Expm1(logPrice)
	if price < 0 {
		price = 0
	}

	if err := s.cache.Set(ctx, key, &cache.PredictionRecord{
		Price:      price,
		ComputedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn().Err(err).Str("fingerprint", fp).Msg("cache set failed")
	}

	predictionsTotal.WithLabelValues("model").Inc()
	return &Result{Price: price, Cached: false, Fingerprint: fp}, nil
}

// cacheKey builds the full cache key: price:<run_id>:<fingerprint>.
func (s *Service) cacheKey(fingerprint string) string {
	return "price:" + s.runID + ":" + fingerprint
}
