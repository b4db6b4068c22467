package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tatipharma/pharmabi/internal/logging"
	"github.com/tatipharma/pharmabi/metrics"
)

var (
	ErrEmptySelection      = errors.New("no items selected")
	ErrIncompleteSelection = errors.New("select all did not load every item")
)

// Check returns the error that prevents a bulk action on s, if any. An
// incomplete select-all is accepted only when allowIncomplete is set, which
// callers do after the user chose to go on with the ids already loaded.
func Check(s *Set, allowIncomplete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ids) == 0 {
		return ErrEmptySelection
	}
	if !allowIncomplete && !s.isComplete() {
		return fmt.Errorf("%w: %d of %d selected", ErrIncompleteSelection, len(s.ids), s.total)
	}
	return nil
}

type Result struct {
	Success int
	Failed  int
	Skipped int
	Errors  []ItemError
	Elapsed time.Duration
}

func (r Result) Total() int {
	return r.Success + r.Failed + r.Skipped
}

type ItemError struct {
	ID  int
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%d: %v", e.ID, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Bulk sends one request per selected id, strictly one after the other.
type Bulk[T any] struct {
	// Action names the bulk action in metrics and logs.
	Action string
	// Lookup resolves the item behind an id. A lookup failure counts as a
	// failed item.
	Lookup func(ctx context.Context, id int) (T, error)
	// Skip reports whether item lacks the data needed to send it. Skipped
	// items are not sent.
	Skip func(item T) bool
	Send func(ctx context.Context, id int, item T) error

	// Limiter spaces consecutive sends. Nil means no limit.
	Limiter *rate.Limiter
	// AllowIncomplete sends to the loaded ids of an incomplete select-all.
	AllowIncomplete bool
	// OnItem is called after each item with its outcome.
	OnItem func(id int, outcome string, err error)
}

// Run sends to every id of s. A failed item never stops the ones after it,
// even when its error wraps context.DeadlineExceeded. Once the ids have been processed, or ctx is done, s is cleared whatever
// the outcome. Guard errors are returned before anything is sent, and leave
// s untouched.
func (b Bulk[T]) Run(ctx context.Context, s *Set) (Result, error) {
	if err := Check(s, b.AllowIncomplete); err != nil {
		return Result{}, err
	}
	defer s.Clear()

	start := time.Now()
	var result Result
	for i, id := range s.IDs() {
		if err := ctx.Err(); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}

		outcome, err := b.one(ctx, i, id)
		switch outcome {
		case metrics.OutcomeSuccess:
			result.Success++
		case metrics.OutcomeSkipped:
			result.Skipped++
		default:
			// A timeout of a single request is that item's failure. Only a
			// done ctx stops the sequence.
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.Elapsed = time.Since(start)
				return result, ctxErr
			}
			result.Failed++
			result.Errors = append(result.Errors, ItemError{ID: id, Err: err})
			logging.Debugf("%s: item %d failed: %v", b.Action, id, err)
		}

		metrics.ObserveBulkItem(b.Action, outcome)
		if b.OnItem != nil {
			b.OnItem(id, outcome, err)
		}
	}

	result.Elapsed = time.Since(start)
	logging.Debugf("%s: %d sent, %d failed, %d skipped in %s", b.Action, result.Success, result.Failed, result.Skipped, result.Elapsed)
	return result, nil
}

func (b Bulk[T]) one(ctx context.Context, i, id int) (string, error) {
	var item T
	if b.Lookup != nil {
		var err error
		item, err = b.Lookup(ctx, id)
		if err != nil {
			return metrics.OutcomeFailed, err
		}
	}

	if b.Skip != nil && b.Skip(item) {
		return metrics.OutcomeSkipped, nil
	}

	if b.Limiter != nil && i > 0 {
		if err := b.Limiter.Wait(ctx); err != nil {
			return metrics.OutcomeFailed, err
		}
	}

	if err := b.Send(ctx, id, item); err != nil {
		return metrics.OutcomeFailed, err
	}
	return metrics.OutcomeSuccess, nil
}
