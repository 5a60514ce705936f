package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// RouteMonitor counts requests, failures and latency per route.
// All methods are safe for concurrent use.
type RouteMonitor struct {
	routes sync.Map // route -> *RouteMetrics

	totalRequests atomic.Uint64
	totalErrors   atomic.Uint64
}

// RouteMetrics stores per-route counters
type RouteMetrics struct {
	Name          string
	Count         atomic.Uint64
	Errors        atomic.Uint64
	TotalDuration atomic.Uint64
	MinDuration   atomic.Uint64
	MaxDuration   atomic.Uint64
}

// RouteStats is a point-in-time copy of RouteMetrics
type RouteStats struct {
	Route  string
	Count  uint64
	Errors uint64
	Avg    time.Duration
	Min    time.Duration
	Max    time.Duration
}

// Stats is a snapshot of the whole monitor
type Stats struct {
	TotalRequests uint64
	TotalErrors   uint64
	Routes        []RouteStats
}

// NewRouteMonitor creates a monitor
func NewRouteMonitor() *RouteMonitor {
	return &RouteMonitor{}
}

// RecordRequest records one request/response cycle for route.
// isError marks cycles that ended the connection without a response.
func (m *RouteMonitor) RecordRequest(route string, duration time.Duration, isError bool) {
	val, _ := m.routes.LoadOrStore(route, &RouteMetrics{Name: route})
	metrics := val.(*RouteMetrics)

	metrics.Count.Add(1)
	m.totalRequests.Add(1)
	if isError {
		metrics.Errors.Add(1)
		m.totalErrors.Add(1)
	}

	d := uint64(duration.Nanoseconds())
	metrics.TotalDuration.Add(d)
	updateMinMax(metrics, d)
}

func updateMinMax(m *RouteMetrics, d uint64) {
	for {
		min := m.MinDuration.Load()
		if min != 0 && d >= min {
			break
		}
		if m.MinDuration.CompareAndSwap(min, d) {
			break
		}
	}
	for {
		max := m.MaxDuration.Load()
		if d <= max {
			break
		}
		if m.MaxDuration.CompareAndSwap(max, d) {
			break
		}
	}
}

// Stats returns a snapshot sorted by route name
func (m *RouteMonitor) Stats() Stats {
	s := Stats{
		TotalRequests: m.totalRequests.Load(),
		TotalErrors:   m.totalErrors.Load(),
	}

	m.routes.Range(func(_, value any) bool {
		rm := value.(*RouteMetrics)
		count := rm.Count.Load()
		rs := RouteStats{
			Route:  rm.Name,
			Count:  count,
			Errors: rm.Errors.Load(),
			Min:    time.Duration(rm.MinDuration.Load()),
			Max:    time.Duration(rm.MaxDuration.Load()),
		}
		if count > 0 {
			rs.Avg = time.Duration(rm.TotalDuration.Load() / count)
		}
		s.Routes = append(s.Routes, rs)
		return true
	})

	sort.Slice(s.Routes, func(i, j int) bool {
		return s.Routes[i].Route < s.Routes[j].Route
	})
	return s
}
