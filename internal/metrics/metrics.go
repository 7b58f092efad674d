package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	OrdersCreated    *prometheus.CounterVec
	Generations      *prometheus.CounterVec
	GenerationSec    prometheus.Histogram
	QueueDepth       prometheus.Gauge
	OrdersRejected   prometheus.Counter
	RetriesRequested prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gokart_orders_created_total",
		Help: "Orders accepted, by model type.",
	}, []string{"model_type"})
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gokart_generations_total",
		Help: "Generation runs, by outcome.",
	}, []string{"outcome"})
	generationSec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gokart_generation_seconds",
		Help:    "Wall-clock duration of a generation run.",
		Buckets: prometheus.DefBuckets,
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gokart_generation_queue_depth",
		Help: "Generation jobs waiting for a worker.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gokart_orders_rejected_total",
		Help: "Create requests rejected for invalid input.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gokart_retries_requested_total",
		Help: "Retry requests that re-queued an order.",
	})

	r.MustRegister(created, generations, generationSec, queueDepth, rejected, retries)
	return &Registry{
		reg:              r,
		OrdersCreated:    created,
		Generations:      generations,
		GenerationSec:    generationSec,
		QueueDepth:       queueDepth,
		OrdersRejected:   rejected,
		RetriesRequested: retries,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
