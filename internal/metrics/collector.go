// Package metrics is a lightweight collector that renders Prometheus
// exposition text without pulling in the prometheus client library. It
// tracks the handful of series the relay cares about: updates by kind,
// fallback servings, delivery failures and completion latency.
package metrics

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates counters and histograms.
type Collector struct {
	counters   sync.Map // key -> *Counter
	histograms sync.Map // key -> *Histogram
	startTime  time.Time
}

func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	labels string
	value  atomic.Int64
}

func (c *Counter) Inc()         { c.value.Add(1) }
func (c *Counter) Value() int64 { return c.value.Load() }

// Histogram tracks a value distribution with fixed buckets.
type Histogram struct {
	name    string
	help    string
	mu      sync.Mutex
	count   int64
	sum     float64
	buckets []histBucket
}

type histBucket struct {
	le    float64
	count int64
}

func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for i := range h.buckets {
		if v <= h.buckets[i].le {
			h.buckets[i].count++
		}
	}
}

// Counter returns or creates a counter.
func (c *Collector) Counter(name, help, labels string) *Counter {
	key := name + "{" + labels + "}"
	if v, ok := c.counters.Load(key); ok {
		return v.(*Counter)
	}
	ctr := &Counter{name: name, help: help, labels: labels}
	actual, _ := c.counters.LoadOrStore(key, ctr)
	return actual.(*Counter)
}

// Histogram returns or creates a histogram.
func (c *Collector) Histogram(name, help string, buckets []float64) *Histogram {
	if v, ok := c.histograms.Load(name); ok {
		return v.(*Histogram)
	}
	sort.Float64s(buckets)
	hb := make([]histBucket, len(buckets))
	for i, b := range buckets {
		hb[i] = histBucket{le: b}
	}
	h := &Histogram{name: name, help: help, buckets: hb}
	actual, _ := c.histograms.LoadOrStore(name, h)
	return actual.(*Histogram)
}

// --- Domain series ---

// UpdatesTotal counts handled updates by kind.
func (c *Collector) UpdatesTotal(kind string) *Counter {
	return c.Counter("sinax_updates_total", "Inbound updates handled, by kind", `kind="`+kind+`"`)
}

// FallbacksTotal counts replies served by the deterministic responder.
func (c *Collector) FallbacksTotal() *Counter {
	return c.Counter("sinax_fallbacks_total", "Replies served by the deterministic fallback responder", "")
}

// SendFailuresTotal counts gateway delivery failures.
func (c *Collector) SendFailuresTotal() *Counter {
	return c.Counter("sinax_send_failures_total", "Outbound gateway send failures", "")
}

// CompletionSeconds tracks completion call latency.
func (c *Collector) CompletionSeconds() *Histogram {
	return c.Histogram("sinax_completion_seconds", "Completion API call latency in seconds",
		[]float64{0.5, 1, 2, 5, 10, 30, 60, math.Inf(1)})
}

// --- Prometheus text rendering ---

// Handler renders all series in Prometheus exposition format.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		var sb strings.Builder

		fmt.Fprintf(&sb, "# HELP sinax_uptime_seconds Time since start in seconds\n")
		fmt.Fprintf(&sb, "# TYPE sinax_uptime_seconds gauge\n")
		fmt.Fprintf(&sb, "sinax_uptime_seconds %d\n\n", int64(time.Since(c.startTime).Seconds()))

		helpWritten := make(map[string]bool)
		c.counters.Range(func(key, value any) bool {
			ctr := value.(*Counter)
			if !helpWritten[ctr.name] {
				fmt.Fprintf(&sb, "# HELP %s %s\n", ctr.name, ctr.help)
				fmt.Fprintf(&sb, "# TYPE %s counter\n", ctr.name)
				helpWritten[ctr.name] = true
			}
			if ctr.labels != "" {
				fmt.Fprintf(&sb, "%s{%s} %d\n", ctr.name, ctr.labels, ctr.Value())
			} else {
				fmt.Fprintf(&sb, "%s %d\n", ctr.name, ctr.Value())
			}
			return true
		})

		c.histograms.Range(func(key, value any) bool {
			h := value.(*Histogram)
			h.mu.Lock()
			defer h.mu.Unlock()

			fmt.Fprintf(&sb, "# HELP %s %s\n", h.name, h.help)
			fmt.Fprintf(&sb, "# TYPE %s histogram\n", h.name)
			for _, b := range h.buckets {
				le := fmt.Sprintf("%g", b.le)
				if math.IsInf(b.le, 1) {
					le = "+Inf"
				}
				fmt.Fprintf(&sb, "%s_bucket{le=\"%s\"} %d\n", h.name, le, b.count)
			}
			fmt.Fprintf(&sb, "%s_count %d\n", h.name, h.count)
			fmt.Fprintf(&sb, "%s_sum %f\n", h.name, h.sum)
			return true
		})

		w.Write([]byte(sb.String()))
	}
}
