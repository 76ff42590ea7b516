package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// Operation names reported to the BackendObserver.
const (
	opSummarise = "summarise"
	opAnswer    = "answer"
	opGenerate  = "generate_questions"
	opGrade     = "grade"
)

// caller runs single backend calls under a deadline and classifies their errors.
type caller struct {
	timeout  time.Duration
	backend  string
	observer driven.BackendObserver
}

func newCaller(timeout time.Duration, backend string, observer driven.BackendObserver) caller {
	if timeout <= 0 {
		timeout = domain.DefaultBackendTimeout
	}
	return caller{timeout: timeout, backend: backend, observer: observer}
}

// run invokes fn with a per-call deadline.
func (c caller) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	if c.observer != nil {
		c.observer.ObserveCall(op, c.backend, time.Since(start), err)
	}
	if err == nil {
		return nil
	}
	return classify(ctx, callCtx, op, err)
}

// classify maps a raw backend error into the domain taxonomy.
func classify(parent, callCtx context.Context, op string, err error) error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return fmt.Errorf("%s: %w", op, parent.Err())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, domain.ErrBackendTimeout)
	case errors.Is(err, domain.ErrBackend):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBackend, err)
	}
}
