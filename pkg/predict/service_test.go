package predict

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/priceworks/carprice/pkg/cache"
	"github.com/priceworks/carprice/pkg/schema"
)

// stubEstimator returns a fixed log-price and counts invocations, so
// tests can verify when inference is skipped.
type stubEstimator struct {
	logPrice float64
	err      error
	calls    int
}

func (s *stubEstimator) EstimateLogPrice(schema.FeatureVector) (float64, error) {
	s.calls++
	return s.logPrice, s.err
}

// stubCache is an in-memory Cache with switchable failure modes.
type stubCache struct {
	store   map[string]*cache.PredictionRecord
	getErr  error
	setErr  error
	getCnt  int
	setCnt  int
	lastKey string
}

func newStubCache() *stubCache {
	return &stubCache{store: map[string]*cache.PredictionRecord{}}
}

func (c *stubCache) Get(_ context.Context, key string) (*cache.PredictionRecord, error) {
	c.getCnt++
	c.lastKey = key
	if c.getErr != nil {
		return nil, c.getErr
	}
	rec, ok := c.store[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return rec, nil
}

func (c *stubCache) Set(_ context.Context, key string, rec *cache.PredictionRecord) error {
	c.setCnt++
	if c.setErr != nil {
		return c.setErr
	}
	c.store[key] = rec
	return nil
}

func testVector() schema.FeatureVector {
	return schema.FeatureVector{
		Company:      "Maruti",
		Year:         schema.Float(2017),
		Owner:        "First Owner",
		Fuel:         "Petrol",
		SellerType:   "Individual",
		Transmission: "Manual",
		KmDriven:     schema.Float(45000),
		MileageMPG:   schema.Float(48.2),
		EngineCC:     schema.Float(1197),
		MaxPowerBHP:  schema.Float(81.8),
		TorqueNM:     schema.Float(113),
		Seats:        schema.Float(5),
	}
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(nil, newStubCache(), "run"); err == nil {
		t.Error("NewService(nil estimator) did not fail")
	}
	if _, err := NewService(&stubEstimator{}, nil, "run"); err == nil {
		t.Error("NewService(nil cache) did not fail")
	}
}

func TestPredict_InverseTransformApplied(t *testing.T) {
	est := &stubEstimator{logPrice: math.Log1p(500000)}
	svc, err := NewService(est, newStubCache(), "run1")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	res, err := svc.Predict(context.Background(), testVector())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if math.Abs(res.Price-500000) > 1e-6 {
		t.Errorf("Price = %v, want 500000 (expm1 of log1p)", res.Price)
	}
	if res.Cached {
		t.Error("first prediction reported as cached")
	}
}

func TestPredict_CacheHitSkipsInference(t *testing.T) {
	est := &stubEstimator{logPrice: 12}
	c := newStubCache()
	svc, err := NewService(est, c, "run1")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	first, err := svc.Predict(ctx, testVector())
	if err != nil {
		t.Fatalf("first Predict failed: %v", err)
	}
	if est.calls != 1 {
		t.Fatalf("inference calls after miss = %d, want 1", est.calls)
	}

	second, err := svc.Predict(ctx, testVector())
	if err != nil {
		t.Fatalf("second Predict failed: %v", err)
	}
	if est.calls != 1 {
		t.Errorf("inference calls after hit = %d, want 1 (inference must be skipped)", est.calls)
	}
	if !second.Cached {
		t.Error("second prediction not reported as cached")
	}
	if second.Price != first.Price {
		t.Errorf("cached price %v differs from computed %v", second.Price, first.Price)
	}
}

func TestPredict_CacheOutageFallsBack(t *testing.T) {
	est := &stubEstimator{logPrice: 13}
	c := newStubCache()
	c.getErr = errors.New("connection refused")
	c.setErr = errors.New("connection refused")

	svc, err := NewService(est, c, "run1")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	res, err := svc.Predict(context.Background(), testVector())
	if err != nil {
		t.Fatalf("Predict during cache outage failed: %v", err)
	}
	if est.calls != 1 {
		t.Errorf("inference calls = %d, want 1", est.calls)
	}
	if res.Price <= 0 || math.IsNaN(res.Price) {
		t.Errorf("Price = %v, want valid positive price", res.Price)
	}
}

func TestPredict_MalformedCacheRecordFallsBack(t *testing.T) {
	est := &stubEstimator{logPrice: 11}
	c := newStubCache()
	c.getErr = cache.ErrInvalidRecord

	svc, err := NewService(est, c, "run1")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Predict(context.Background(), testVector()); err != nil {
		t.Fatalf("Predict with malformed cache record failed: %v", err)
	}
	if est.calls != 1 {
		t.Errorf("inference calls = %d, want 1", est.calls)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	est := &stubEstimator{logPrice: 12.5}
	svc, err := NewService(est, &stubCache{store: map[string]*cache.PredictionRecord{}, getErr: cache.ErrCacheMiss, setErr: errors.New("disabled")}, "run1")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	a, err := svc.Predict(ctx, testVector())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	b, err := svc.Predict(ctx, testVector())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if a.Price != b.Price {
		t.Errorf("identical vectors (cache disabled) predicted %v then %v", a.Price, b.Price)
	}
}

func TestPredict_NegativeLogPriceClampedToZero(t *testing.T) {
	est := &stubEstimator{logPrice: -5}
	svc, err := NewService(est, newStubCache(), "run1")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	res, err := svc.Predict(context.Background(), testVector())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if res.Price < 0 {
		t.Errorf("Price = %v, want >= 0", res.Price)
	}
}

func TestPredict_InferenceErrorPropagates(t *testing.T) {
	est := &stubEstimator{err: errors.New("incomplete artifact")}
	svc, err := NewService(est, newStubCache(), "run1")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Predict(context.Background(), testVector()); err == nil {
		t.Error("Predict with failing estimator did not fail")
	}
}

func TestPredict_KeyScopedToRun(t *testing.T) {
	est := &stubEstimator{logPrice: 10}
	c := newStubCache()
	svc, err := NewService(est, c, "run-abc")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Predict(context.Background(), testVector()); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	want := "price:run-abc:" + testVector().Fingerprint()
	if c.lastKey != want {
		t.Errorf("cache key = %q, want %q", c.lastKey, want)
	}
}

func TestLogRoundTrip(t *testing.T) {
	// The log1p/expm1 pair must round-trip representative prices.
	for _, price := range []float64{0, 100, 100000, 5000000} {
		got := math.Expm1(math.Log1p(price))
		if math.Abs(got-price) > 1e-6*math.Max(1, price) {
			t.Errorf("expm1(log1p(%v)) = %v", price, got)
		}
	}
}
