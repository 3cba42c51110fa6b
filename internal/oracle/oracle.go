// Package oracle defines the support-count oracle: the only component that
// reads the stored dataset while mining.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

// Oracle answers how many rows satisfy a conjunction of category = value
// equalities. The empty predicate counts every row. For a fixed dataset
// snapshot the answer must be stable across calls.
type Oracle interface {
	Count(ctx context.Context, p itemset.Predicate) (int64, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, p itemset.Predicate) (int64, error)

// Count calls f.
func (f Func) Count(ctx context.Context, p itemset.Predicate) (int64, error) {
	return f(ctx, p)
}

// Observer receives oracle telemetry. metrics.Collector implements it.
type Observer interface {
	QueryObserved(d time.Duration, err error)
	CacheLookup(hit bool)
}

// QueryError is returned when the underlying store cannot answer a count.
// The core never retries it.
type QueryError struct {
	Predicate itemset.Predicate
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("support count for %s failed: %v", e.Predicate, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Instrumented reports the latency and outcome of every query to an Observer.
type Instrumented struct {
	next     Oracle
	observer Observer
}

// NewInstrumented wraps next. A nil observer makes the wrapper transparent.
func NewInstrumented(next Oracle, observer Observer) *Instrumented {
	return &Instrumented{next: next, observer: observer}
}

// Count forwards to the wrapped oracle and records the call.
func (i *Instrumented) Count(ctx context.Context, p itemset.Predicate) (int64, error) {
	start := time.Now()
	n, err := i.next.Count(ctx, p)
	if i.observer != nil {
		i.observer.QueryObserved(time.Since(start), err)
	}
	return n, err
}
