// Package metrics collects per-run measurements of the generation
// pipeline: stage durations, oracle evaluations, achieved porosities.
// Values are aggregated on demand.
package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/foamgen/foamgen/pkg/utils"
)

// Aggregation summarizes the recorded values of one metric.
type Aggregation struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P95   float64
}

// Collector accumulates metric samples keyed by name and labels.
// Safe for concurrent use.
type Collector struct {
	mu      sync.RWMutex
	samples map[string]map[string][]float64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		samples: make(map[string]map[string][]float64),
	}
}

// Record appends a sample for the metric identified by name and
// labels.
func (c *Collector) Record(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.samples[name] == nil {
		c.samples[name] = make(map[string][]float64)
	}
	c.samples[name][key] = append(c.samples[name][key], value)
}

// Values returns a copy of the recorded samples for a metric.
func (c *Collector) Values(name string, labels map[string]string) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.samples[name][labelKey(labels)]
	if points == nil {
		return nil
	}
	out := make([]float64, len(points))
	copy(out, points)
	return out
}

// Aggregate summarizes a metric. Returns nil when nothing was
// recorded under the name and labels.
func (c *Collector) Aggregate(name string, labels map[string]string) *Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.samples[name][labelKey(labels)]
	if len(points) == 0 {
		return nil
	}

	agg := &Aggregation{
		Count: len(points),
		Sum:   utils.Sum(points),
		Min:   points[0],
		Max:   points[0],
		Mean:  utils.Mean(points),
		P50:   utils.Percentile(points, 50),
		P95:   utils.Percentile(points, 95),
	}
	for _, v := range points {
		if v < agg.Min {
			agg.Min = v
		}
		if v > agg.Max {
			agg.Max = v
		}
	}
	return agg
}

// Names returns the sorted names of all recorded metrics.
func (c *Collector) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.samples))
	for name := range c.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// labelKey builds a stable map key from a label set.
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	return b.String()
}
