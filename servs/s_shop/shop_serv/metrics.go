// file: shopbot/servs/s_shop/shop_serv/metrics.go
package shop_serv

import (
	"maps"
	"strings"
	"sync"
)

const (
	MetricCommands     = "updates.commands"
	MetricCallbacks    = "updates.callbacks"
	MetricIgnored      = "updates.ignored"
	MetricInvalid      = "updates.invalid_selection"
	MetricReloads      = "catalogue.reloads"
	MetricReloadErrors = "catalogue.reload_errors"

	MetricPrefixWS = "ws"
)

// Metrics is a set of named counters.
type Metrics struct {
	mu     sync.RWMutex
	values map[string]int64
}

func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]int64)}
}

func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *Metrics) Add(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] += delta
}

func (m *Metrics) Set(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
}

func (m *Metrics) Get(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[name]
}

// Snapshot copies the current values.
func (m *Metrics) Snapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}

// WithPrefix returns a recorder that prefixes every name with prefix.
func (m *Metrics) WithPrefix(prefix string) *Recorder {
	return &Recorder{metrics: m, prefix: strings.TrimSuffix(prefix, ".") + "."}
}

// Recorder is a prefixed view of Metrics.
type Recorder struct {
	metrics *Metrics
	prefix  string
}

func (r *Recorder) Inc(name string)              { r.metrics.Inc(r.prefix + name) }
func (r *Recorder) Set(name string, value int64) { r.metrics.Set(r.prefix+name, value) }
