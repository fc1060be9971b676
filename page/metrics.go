package page

import (
	"errors"
	"fmt"

	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/metrics"
	"github.com/nomis52/clubsignup/render"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	operationList       = "list"
	operationSignup     = "signup"
	operationUnregister = "unregister"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Metrics are the page's backend metrics. Create one per registry and share
// it between pages.
type Metrics struct {
	requests   metrics.CounterVec
	activities metrics.Gauge
	spotsLeft  metrics.GaugeVec
}

// NewMetrics registers the page metrics on registry.
func NewMetrics(registry metrics.Registry) (*Metrics, error) {
	requests, err := registry.NewCounterVec(prometheus.CounterOpts{
		Name: "requests_total",
		Help: "Backend requests by operation and outcome",
	}, []string{"operation", "outcome"})
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	activities, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "activities",
		Help: "Activities in the last loaded collection",
	})
	if err != nil {
		return nil, fmt.Errorf("creating activities gauge: %w", err)
	}

	spotsLeft, err := registry.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spots_left",
		Help: "Spots left per activity in the last loaded collection",
	}, []string{"activity"})
	if err != nil {
		return nil, fmt.Errorf("creating spots left gauge: %w", err)
	}

	return &Metrics{requests: requests, activities: activities, spotsLeft: spotsLeft}, nil
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.requests.With(prometheus.Labels{"operation": operation, "outcome": outcome(err)}).Inc()
}

func (m *Metrics) recordView(view render.View) {
	if m == nil {
		return
	}
	m.activities.Set(float64(len(view.Cards)))
	m.spotsLeft.Reset()
	for _, c := range view.Cards {
		m.spotsLeft.With(prometheus.Labels{"activity": c.Name}).Set(float64(c.SpotsLeft))
	}
}

func outcome(err error) string {
	var apiErr *activityclient.APIError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &apiErr):
		return outcomeRejected
	default:
		return outcomeError
	}
}
