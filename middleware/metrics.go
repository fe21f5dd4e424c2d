package middleware

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Metrics is an explicit request-metrics collector. It is constructed in main
// and injected as middleware instead of living as a package-level singleton,
// so tests can build and reset their own instance.
type Metrics struct {
	startedAt time.Time

	totalRequests atomic.Int64
	totalFailures atomic.Int64

	mu      sync.Mutex
	byRoute map[string]int64
}

// NewMetrics creates a fresh collector with its uptime clock started.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt: time.Now(),
		byRoute:   make(map[string]int64),
	}
}

// Handler returns the Fiber middleware that feeds this collector.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		m.totalRequests.Add(1)
		if err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
			m.totalFailures.Add(1)
		}

		route := c.Method() + " " + c.Route().Path
		m.mu.Lock()
		m.byRoute[route]++
		m.mu.Unlock()

		return err
	}
}

// Snapshot returns the current counters for the health endpoint.
func (m *Metrics) Snapshot() fiber.Map {
	m.mu.Lock()
	routes := make(map[string]int64, len(m.byRoute))
	for route, count := range m.byRoute {
		routes[route] = count
	}
	m.mu.Unlock()

	return fiber.Map{
		"uptime_seconds": int64(time.Since(m.startedAt).Seconds()),
		"total_requests": m.totalRequests.Load(),
		"total_failures": m.totalFailures.Load(),
		"by_route":       routes,
	}
}

// Reset zeroes all counters and restarts the uptime clock.
func (m *Metrics) Reset() {
	m.mu.Lock()
	m.byRoute = make(map[string]int64)
	m.mu.Unlock()
	m.totalRequests.Store(0)
	m.totalFailures.Store(0)
	m.startedAt = time.Now()
}
