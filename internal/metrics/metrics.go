// Package metrics exposes Prometheus collectors for HTTP traffic and live predictions
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "glucotrend"

// Collector exposes Prometheus metrics for inbound HTTP requests and live predictions.
type Collector struct {
	registry           *prometheus.Registry
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	predictionDuration *prometheus.HistogramVec
	predictionTotal    *prometheus.CounterVec
	lastPrediction     prometheus.Gauge
}

// NewCollector constructs a collector on its own registry.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	predictionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "prediction",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for calls to the prediction endpoint.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	predictionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "prediction",
		Name:      "requests_total",
		Help:      "Total number of live prediction attempts by outcome.",
	}, []string{"outcome"})

	lastPrediction := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "prediction",
		Name:      "last_predicted_mgdl",
		Help:      "Most recent live 30-minute glucose forecast in mg/dL.",
	})

	for _, c := range []prometheus.Collector{
		requestDuration, requestTotal, predictionDuration, predictionTotal, lastPrediction,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:           registry,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		predictionDuration: predictionDuration,
		predictionTotal:    predictionTotal,
		lastPrediction:     lastPrediction,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObservePrediction records one live prediction attempt.
func (c *Collector) ObservePrediction(outcome string, elapsed time.Duration) {
	c.predictionTotal.WithLabelValues(outcome).Inc()
	c.predictionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// SetLastPrediction records the latest forecast value.
func (c *Collector) SetLastPrediction(mgdl float64) {
	c.lastPrediction.Set(mgdl)
}

// Middleware records request metrics for gin routes. The route template is
// used as the path label so ids do not explode cardinality.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		c.observeRequest(ctx.Request.Method, path, ctx.Writer.Status(), time.Since(start))
	}
}

func (c *Collector) observeRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	c.requestTotal.WithLabelValues(method, path, code).Inc()
	c.requestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}
