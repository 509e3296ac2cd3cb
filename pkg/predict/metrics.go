package predict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carprice_predictions_total",
		Help: "Total predictions served by source",
	}, []string{"source"}) // "cache", "model"

	inferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "carprice_inference_duration_seconds",
		Help:    "Live inference duration in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
)
