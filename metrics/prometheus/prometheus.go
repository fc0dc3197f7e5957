// Package prometheus exports knngraph build metrics to Prometheus.
//
//	c := prometheus.New()
//	b := knngraph.NewThreadedBrute(func(o *knngraph.Options[string]) {
//	    o.Metrics = c
//	})
package prometheus

import (
	"strconv"
	"time"

	"github.com/hupe1980/knngraph"
	"github.com/prometheus/client_golang/prometheus"
)

var _ knngraph.MetricsCollector = (*Collector)(nil)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Default: "knngraph".
	Namespace string

	// Registerer receives the collectors. Default: prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Buckets are the duration histogram buckets. Default: prometheus.DefBuckets.
	Buckets []float64
}

// Collector implements knngraph.MetricsCollector on top of Prometheus
// counters and histograms.
type Collector struct {
	buildLatency    *prometheus.HistogramVec
	builds          *prometheus.CounterVec
	evaluations     *prometheus.CounterVec
	nodes           *prometheus.CounterVec
	cellLatency     *prometheus.HistogramVec
	cellSize        prometheus.Histogram
	cellEvaluations *prometheus.CounterVec
}

// New creates a Collector and registers its metrics. It panics if the
// metrics are already registered with the chosen Registerer.
func New(optFns ...func(o *Options)) *Collector {
	opts := Options{
		Namespace:  "knngraph",
		Registerer: prometheus.DefaultRegisterer,
		Buckets:    prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		buildLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of graph builds.",
			Buckets:   opts.Buckets,
		}, []string{"builder", "status"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "builds_total",
			Help:      "Number of graph builds.",
		}, []string{"builder", "status"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "similarity_evaluations_total",
			Help:      "Number of similarity evaluations performed by graph builds.",
		}, []string{"builder"}),
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "build_nodes_total",
			Help:      "Number of nodes passed to graph builds.",
		}, []string{"builder"}),
		cellLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "cell_duration_seconds",
			Help:      "Duration of partition cell builds.",
			Buckets:   opts.Buckets,
		}, []string{"stage"}),
		cellSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "cell_size_nodes",
			Help:      "Number of nodes per solved partition cell.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 16),
		}),
		cellEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "cell_evaluations_total",
			Help:      "Number of similarity evaluations performed inside partition cells.",
		}, []string{"stage"}),
	}

	opts.Registerer.MustRegister(
		c.buildLatency,
		c.builds,
		c.evaluations,
		c.nodes,
		c.cellLatency,
		c.cellSize,
		c.cellEvaluations,
	)
	return c
}

// RecordBuild implements knngraph.MetricsCollector.
func (c *Collector) RecordBuild(builder string, nodes int, evaluations int64, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.buildLatency.WithLabelValues(builder, status).Observe(d.Seconds())
	c.builds.WithLabelValues(builder, status).Inc()
	c.evaluations.WithLabelValues(builder).Add(float64(evaluations))
	c.nodes.WithLabelValues(builder).Add(float64(nodes))
}

// RecordCell implements knngraph.MetricsCollector.
func (c *Collector) RecordCell(stage, size int, evaluations int64, d time.Duration) {
	s := strconv.Itoa(stage)
	c.cellLatency.WithLabelValues(s).Observe(d.Seconds())
	c.cellSize.Observe(float64(size))
	c.cellEvaluations.WithLabelValues(s).Add(float64(evaluations))
}
