// Package metrics collects client-side Prometheus metrics: backend request
// counts and latency, and grid block cache efficiency.
package metrics

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal counts backend requests by method, route and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks backend request latency in seconds.
	RequestDuration *prometheus.HistogramVec

	BlockHits   prometheus.Counter
	BlockMisses prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_client_requests_total",
				Help: "Backend requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leads_client_request_duration_seconds",
				Help:    "Backend request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		BlockHits: f.NewCounter(prometheus.CounterOpts{
			Name: "leads_client_grid_block_hits_total",
			Help: "Row blocks served from the in-memory cache",
		}),
		BlockMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "leads_client_grid_block_misses_total",
			Help: "Row blocks that had to be loaded from the backend",
		}),
	}
}

func (m *Metrics) BlockHit()  { m.BlockHits.Inc() }
func (m *Metrics) BlockMiss() { m.BlockMisses.Inc() }

var leadIDPath = regexp.MustCompile(`^/leads/[^/]+$`)

// Route collapses request paths into low-cardinality labels.
func Route(path string) string {
	if leadIDPath.MatchString(path) {
		return "/leads/:id"
	}
	return path
}

type roundTripper struct {
	next http.RoundTripper
	m    *Metrics
}

// RoundTripper wraps next so every request is counted and timed. A nil
// next uses http.DefaultTransport.
func (m *Metrics) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &roundTripper{next: next, m: m}
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	route := Route(req.URL.Path)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	rt.m.RequestsTotal.WithLabelValues(req.Method, route, status).Inc()
	rt.m.RequestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())

	return resp, err
}

// Sample is one counter value with its labels rendered as text.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Counters gathers every counter from the registry, sorted by name and labels.
func (m *Metrics) Counters() ([]Sample, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			c := metric.GetCounter()
			if c == nil {
				continue
			}
			labels := ""
			for i, lp := range metric.GetLabel() {
				if i > 0 {
					labels += ","
				}
				labels += lp.GetName() + "=" + lp.GetValue()
			}
			out = append(out, Sample{Name: mf.GetName(), Labels: labels, Value: c.GetValue()})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}
