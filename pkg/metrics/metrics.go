// Package metrics defines observation hooks for copy operations.
//
// The engine reports through the CopyMetrics interface and never depends on
// a concrete metrics system; the prometheus subpackage provides the real
// implementation and NewNoopCopyMetrics the default. Metrics are purely
// observational — they never change engine behavior.
package metrics

// CopyMetrics receives one callback per engine event. Implementations must
// be safe for concurrent use, since independent copy operations may run
// concurrently.
type CopyMetrics interface {
	// ObserveFile records one completed file transfer of the given size.
	ObserveFile(bytes int64)

	// ObserveDirCreated records one destination directory creation.
	ObserveDirCreated()

	// ObserveError records one failed copy operation.
	ObserveError()
}

// noopCopyMetrics discards all observations.
type noopCopyMetrics struct{}

func (noopCopyMetrics) ObserveFile(int64) {}
func (noopCopyMetrics) ObserveDirCreated() {}
func (noopCopyMetrics) ObserveError()      {}

// NewNoopCopyMetrics returns a CopyMetrics that discards everything. It is
// the default when no collector is configured.
func NewNoopCopyMetrics() CopyMetrics {
	return noopCopyMetrics{}
}
