package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScrapeRegistry implements Registry for the web front's /metrics endpoint.
// Metric names get the registry namespace, matching the prefix the push
// registry adds, so both surfaces export the same series names.
type ScrapeRegistry struct {
	prom      *prometheus.Registry
	namespace string
}

// NewScrapeRegistry creates a ScrapeRegistry with the Go and process
// collectors registered. An empty namespace leaves metric names as given.
func NewScrapeRegistry(namespace string) (*ScrapeRegistry, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("registering go collector: %w", err)
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace})); err != nil {
		return nil, fmt.Errorf("registering process collector: %w", err)
	}

	return &ScrapeRegistry{prom: reg, namespace: namespace}, nil
}

// Handler returns an http.Handler for the /metrics endpoint.
func (r *ScrapeRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (r *ScrapeRegistry) register(c prometheus.Collector, kind, name string) error {
	if err := r.prom.Register(c); err != nil {
		return fmt.Errorf("registering %s %q: %w", kind, name, err)
	}
	return nil
}

// NewGauge creates and registers a new Gauge.
func (r *ScrapeRegistry) NewGauge(opts prometheus.GaugeOpts) (Gauge, error) {
	if opts.Namespace == "" {
		opts.Namespace = r.namespace
	}
	g := prometheus.NewGauge(opts)
	if err := r.register(g, "gauge", opts.Name); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGaugeVec creates and registers a new GaugeVec.
func (r *ScrapeRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error) {
	if opts.Namespace == "" {
		opts.Namespace = r.namespace
	}
	g := prometheus.NewGaugeVec(opts, labels)
	if err := r.register(g, "gauge vec", opts.Name); err != nil {
		return nil, err
	}
	return &scrapeGaugeVec{vec: g}, nil
}

// NewCounter creates and registers a new Counter.
func (r *ScrapeRegistry) NewCounter(opts prometheus.CounterOpts) (Counter, error) {
	if opts.Namespace == "" {
		opts.Namespace = r.namespace
	}
	c := prometheus.NewCounter(opts)
	if err := r.register(c, "counter", opts.Name); err != nil {
		return nil, err
	}
	return c, nil
}

// NewCounterVec creates and registers a new CounterVec.
func (r *ScrapeRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error) {
	if opts.Namespace == "" {
		opts.Namespace = r.namespace
	}
	c := prometheus.NewCounterVec(opts, labels)
	if err := r.register(c, "counter vec", opts.Name); err != nil {
		return nil, err
	}
	return &scrapeCounterVec{vec: c}, nil
}

// The prometheus vecs return prometheus.Gauge and prometheus.Counter from
// With, so they are adapted to this package's interfaces.
type scrapeGaugeVec struct {
	vec *prometheus.GaugeVec
}

func (g *scrapeGaugeVec) With(labels prometheus.Labels) Gauge {
	return g.vec.With(labels)
}

func (g *scrapeGaugeVec) Reset() {
	g.vec.Reset()
}

type scrapeCounterVec struct {
	vec *prometheus.CounterVec
}

func (c *scrapeCounterVec) With(labels prometheus.Labels) Counter {
	return c.vec.With(labels)
}
