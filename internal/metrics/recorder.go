package metrics

import "time"

// ResultLabel enumerates transform result categories for counters.
type ResultLabel string

const (
	ResultPassThrough ResultLabel = "pass_through"
	ResultWrapped     ResultLabel = "wrapped"
	ResultFailed      ResultLabel = "failed"
)

// Recorder defines observability hooks for transforms and layout lookups.
// All methods must be safe to call on the zero value of an implementation.
type Recorder interface {
	ObserveTransformDuration(result ResultLabel, d time.Duration)
	IncTransformResult(result ResultLabel)
	IncTransformError(category string)
	IncLayoutLookup(found bool)
	ObserveBatchDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTransformDuration(ResultLabel, time.Duration) {}
func (NoopRecorder) IncTransformResult(ResultLabel)                      {}
func (NoopRecorder) IncTransformError(string)                            {}
func (NoopRecorder) IncLayoutLookup(bool)                                {}
func (NoopRecorder) ObserveBatchDuration(time.Duration)                  {}
