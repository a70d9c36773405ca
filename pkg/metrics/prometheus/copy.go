// Package prometheus provides the Prometheus-backed implementation of the
// ferry metrics interfaces.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/ferry/pkg/metrics"
)

// copyMetrics is the Prometheus implementation of metrics.CopyMetrics.
type copyMetrics struct {
	filesCopied prometheus.Counter
	bytesCopied prometheus.Counter
	dirsCreated prometheus.Counter
	copyErrors  prometheus.Counter
}

// NewCopyMetrics registers the copy counters with the given registerer and
// returns the collector. Pass prometheus.DefaultRegisterer for the default
// registry.
func NewCopyMetrics(reg prometheus.Registerer) metrics.CopyMetrics {
	factory := promauto.With(reg)

	return &copyMetrics{
		filesCopied: factory.NewCounter(prometheus.CounterOpts{
			Name: "ferry_files_copied_total",
			Help: "Number of files successfully transferred.",
		}),
		bytesCopied: factory.NewCounter(prometheus.CounterOpts{
			Name: "ferry_bytes_copied_total",
			Help: "Number of content bytes successfully transferred.",
		}),
		dirsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ferry_dirs_created_total",
			Help: "Number of destination directories created.",
		}),
		copyErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ferry_copy_errors_total",
			Help: "Number of copy operations that failed.",
		}),
	}
}

func (m *copyMetrics) ObserveFile(bytes int64) {
	m.filesCopied.Inc()
	m.bytesCopied.Add(float64(bytes))
}

func (m *copyMetrics) ObserveDirCreated() {
	m.dirsCreated.Inc()
}

func (m *copyMetrics) ObserveError() {
	m.copyErrors.Inc()
}
