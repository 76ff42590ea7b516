package driven

import "time"

// BackendObserver records backend call outcomes.
type BackendObserver interface {
	// ObserveCall records one backend call of the given operation.
	ObserveCall(operation string, backend string, elapsed time.Duration, err error)
}
