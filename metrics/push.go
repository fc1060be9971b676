package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
)

const (
	// DefaultTimeout is the default timeout for remote write requests
	DefaultTimeout = 30 * time.Second
	// DefaultQueueSize is the default number of samples buffered for pushing.
	DefaultQueueSize = 256
)

// PushRegistry implements Registry for push-based metrics collection.
// Every Set, Inc or Add queues one sample; a background goroutine batches
// queued samples into remote write requests. Callers never wait on the
// endpoint. Close flushes the queue.
type PushRegistry struct {
	pusher *pusher
}

// PushConfig configures a PushRegistry.
type PushConfig struct {
	// URL is the base URL of the remote write endpoint (e.g., "http://localhost:8428").
	URL string
	// Prefix is prepended to all metric names, followed by an underscore.
	Prefix string
	// Job is the job label for all metrics.
	Job string
	// Instance is the instance label for all metrics.
	Instance string
	// Timeout is the HTTP client timeout. Defaults to DefaultTimeout.
	Timeout time.Duration
	// QueueSize bounds the samples waiting to be pushed. Samples recorded
	// while the queue is full are dropped. Defaults to DefaultQueueSize.
	QueueSize int
	// Logger receives push failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewPushRegistry creates a new PushRegistry that pushes metrics to the given URL.
func NewPushRegistry(cfg PushConfig) *PushRegistry {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	p := &pusher{
		url:        strings.TrimRight(cfg.URL, "/") + "/api/v1/write",
		httpClient: &http.Client{Timeout: timeout},
		prefix:     cfg.Prefix,
		job:        cfg.Job,
		instance:   cfg.Instance,
		timeout:    timeout,
		logger:     logger,
		queue:      make(chan sample, queueSize),
		done:       make(chan struct{}),
	}
	go p.loop()
	return &PushRegistry{pusher: p}
}

// Close stops accepting samples and waits until the queued ones are pushed.
// It is safe to call more than once.
func (r *PushRegistry) Close() {
	r.pusher.close()
}

// NewGauge creates a new push-based Gauge.
func (r *PushRegistry) NewGauge(opts prometheus.GaugeOpts) (Gauge, error) {
	return &pushGauge{pusher: r.pusher, name: opts.Name}, nil
}

// NewGaugeVec creates a new push-based GaugeVec.
func (r *PushRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error) {
	return &pushGaugeVec{pusher: r.pusher, name: opts.Name, labels: labels}, nil
}

// NewCounter creates a new push-based Counter.
func (r *PushRegistry) NewCounter(opts prometheus.CounterOpts) (Counter, error) {
	return &pushCounter{pusher: r.pusher, name: opts.Name}, nil
}

// NewCounterVec creates a new push-based CounterVec.
func (r *PushRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error) {
	return &pushCounterVec{pusher: r.pusher, name: opts.Name, labels: labels}, nil
}

// pusher handles remote write to VictoriaMetrics/Prometheus.
type pusher struct {
	url        string
	httpClient *http.Client
	prefix     string
	job        string
	instance   string
	timeout    time.Duration
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan sample
	done   chan struct{}
}

// sample is one recorded value waiting to be pushed.
type sample struct {
	name      string
	value     float64
	labels    map[string]string
	timestamp int64
}

// record queues one sample without blocking. A full queue drops the sample.
func (p *pusher) record(name string, value float64, labels map[string]string) {
	s := sample{name: name, value: value, labels: labels, timestamp: time.Now().UnixMilli()}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- s:
	default:
		p.logger.Warn("dropping metric sample, push queue full", "metric", name)
	}
}

// loop pushes queued samples, batching whatever is waiting into one request.
func (p *pusher) loop() {
	defer close(p.done)
	for s := range p.queue {
		batch := []sample{s}
	drain:
		for {
			select {
			case next, ok := <-p.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		if err := p.push(batch); err != nil {
			p.logger.Warn("failed to push metric", "metric", batch[0].name, "samples", len(batch), "error", err)
		}
	}
}

func (p *pusher) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}

// push sends a batch of samples to the remote write endpoint.
func (p *pusher) push(batch []sample) error {
	req := &prompb.WriteRequest{
		Timeseries: make([]prompb.TimeSeries, 0, len(batch)),
	}
	for _, s := range batch {
		req.Timeseries = append(req.Timeseries, p.metricToTimeSeries(s))
	}

	data, err := proto.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling write request: %w", err)
	}

	compressed := snappy.Encode(nil, data)

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// metricToTimeSeries converts a sample to Prometheus TimeSeries format.
// Labels are sorted by name, as remote write receivers expect.
func (p *pusher) metricToTimeSeries(s sample) prompb.TimeSeries {
	metricName := s.name
	if p.prefix != "" {
		metricName = p.prefix + "_" + s.name
	}

	all := make(map[string]string, len(s.labels)+3)
	for k, v := range s.labels {
		all[k] = v
	}
	if p.job != "" {
		all["job"] = p.job
	}
	if p.instance != "" {
		all["instance"] = p.instance
	}
	all["__name__"] = metricName

	promLabels := make([]prompb.Label, 0, len(all))
	for k, v := range all {
		promLabels = append(promLabels, prompb.Label{Name: k, Value: v})
	}
	sort.Slice(promLabels, func(i, j int) bool {
		return promLabels[i].Name < promLabels[j].Name
	})

	return prompb.TimeSeries{
		Labels: promLabels,
		Samples: []prompb.Sample{{
			Value:     s.value,
			Timestamp: s.timestamp,
		}},
	}
}

// pushGauge implements Gauge for push mode.
type pushGauge struct {
	pusher *pusher
	name   string
	labels map[string]string
}

func (g *pushGauge) Set(v float64) {
	g.pusher.record(g.name, v, g.labels)
}

// pushGaugeVec implements GaugeVec for push mode.
type pushGaugeVec struct {
	pusher *pusher
	name   string
	labels []string
}

func (g *pushGaugeVec) With(labels prometheus.Labels) Gauge {
	return &pushGauge{pusher: g.pusher, name: g.name, labels: copyLabels(labels)}
}

// Reset is a no-op: pushed series live in the remote store and go stale there.
func (g *pushGaugeVec) Reset() {}

// pushCounter implements Counter for push mode. The running total is kept
// locally and pushed on every change.
type pushCounter struct {
	mu     sync.Mutex
	pusher *pusher
	name   string
	labels map[string]string
	value  float64
}

func (c *pushCounter) Inc() {
	c.Add(1)
}

func (c *pushCounter) Add(v float64) {
	if v < 0 {
		panic("counter cannot decrease in value")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += v
	c.pusher.record(c.name, c.value, c.labels)
}

// pushCounterVec implements CounterVec for push mode.
type pushCounterVec struct {
	mu       sync.Mutex
	pusher   *pusher
	name     string
	labels   []string
	counters map[string]*pushCounter
}

func (c *pushCounterVec) With(labels prometheus.Labels) Counter {
	key := labelsToKey(labels)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counters == nil {
		c.counters = make(map[string]*pushCounter)
	}
	if counter, ok := c.counters[key]; ok {
		return counter
	}

	counter := &pushCounter{pusher: c.pusher, name: c.name, labels: copyLabels(labels)}
	c.counters[key] = counter
	return counter
}

// labelsToKey builds a deterministic map key from labels.
func labelsToKey(labels prometheus.Labels) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

func copyLabels(labels prometheus.Labels) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}
