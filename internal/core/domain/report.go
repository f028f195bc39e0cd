package domain

// SourceStatus is the outcome of loading one source descriptor.
type SourceStatus string

const (
	// SourceLoaded means the loader ran and returned rules (possibly zero).
	SourceLoaded SourceStatus = "loaded"

	// SourceSkipped means no registered loader accepted the loader type.
	SourceSkipped SourceStatus = "skipped"

	// SourceFailed means the loader returned an error or panicked.
	SourceFailed SourceStatus = "failed"

	// SourceCancelled means cancellation was observed before or while the
	// source loaded. Rules loaded before that point are still counted.
	SourceCancelled SourceStatus = "cancelled"
)

// SourceReport records how one descriptor contributed to a load run.
type SourceReport struct {
	// Index is the descriptor's position in configuration order.
	Index int

	// Descriptor is the configured source.
	Descriptor SourceDescriptor

	// Loader is the type of the loader that handled the source, if any.
	Loader string

	// Status is the outcome.
	Status SourceStatus

	// Rules is the number of rules the source contributed.
	Rules int

	// Err is the isolated failure, or why the source was skipped or cancelled.
	Err error
}

// LoadReport is the aggregate result of one ingestion run.
type LoadReport struct {
	// RunID correlates log lines for a run.
	RunID string

	// Rules is the union of all loaded rules in descriptor-then-document order.
	Rules []Rule

	// Sources holds one report per descriptor, in configuration order.
	Sources []SourceReport
}

// Count returns the number of sources with the given status.
func (r *LoadReport) Count(status SourceStatus) int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.Sources {
		if r.Sources[i].Status == status {
			n++
		}
	}
	return n
}
