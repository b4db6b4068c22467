// Package query holds the state of one paginated, filterable list and keeps
// the displayed page in step with the latest request.
package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/validator/v10"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/logging"
)

var ErrInvalidPageSize = errors.New("invalid page size")

// Fetcher loads one page of a list. It is usually a method value of
// api.Client, such as client.ListCustomers.
type Fetcher[F, T any] func(ctx context.Context, page api.PageRequest, filter F) (*api.Page[T], error)

type Options[F, T any] struct {
	Fetch Fetcher[F, T]
	// WithSearch returns filter with its free-text field set to text. It is
	// required for SetSearchText.
	WithSearch func(filter F, text string) F
	// Filter is the initial filter, and the value restored by ClearFilters.
	Filter   F
	PageSize int
	Debounce time.Duration
	Clock    clock.Clock
}

// State is a snapshot of a Controller.
type State[F, T any] struct {
	Filter     F
	SearchText string
	PageNumber int
	PageSize   int

	// Loading is true while the latest request is outstanding.
	Loading bool
	// Err is the failure of the latest request. Items is empty when it is set.
	Err error

	Items           []T
	TotalCount      int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

func (s State[F, T]) Request() api.PageRequest {
	return api.PageRequest{PageNumber: s.PageNumber, PageSize: s.PageSize}
}

// Controller owns the filter, page number and page size of one list. Every
// change dispatches exactly one request. Requests are tagged in order, and a
// response is applied only if it answers the most recent request; older
// responses are dropped when they arrive.
type Controller[F, T any] struct {
	fetch      Fetcher[F, T]
	withSearch func(F, string) F
	initial    F
	debouncer  *Debouncer
	validate   *validator.Validate

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	seq   uint64
	state State[F, T]

	notifyMu    sync.Mutex
	subscribers map[int]func(State[F, T])
	nextSub     int
}

func New[F, T any](opts Options[F, T]) (*Controller[F, T], error) {
	if opts.Fetch == nil {
		return nil, fmt.Errorf("fetch function is required")
	}
	if opts.PageSize == 0 {
		opts.PageSize = api.DefaultPageSize
	}

	v := validator.New()
	if err := v.Struct(api.FirstPage(opts.PageSize)); err != nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, opts.PageSize)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[F, T]{
		fetch:       opts.Fetch,
		withSearch:  opts.WithSearch,
		initial:     opts.Filter,
		debouncer:   NewDebouncer(opts.Clock, opts.Debounce),
		validate:    v,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: map[int]func(State[F, T]){},
		state: State[F, T]{
			Filter:     opts.Filter,
			PageNumber: 1,
			PageSize:   opts.PageSize,
			Items:      []T{},
		},
	}, nil
}

// State returns a snapshot of the controller. The Items slice is shared and
// must not be modified.
func (c *Controller[F, T]) State() State[F, T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called with a snapshot after every change of
// state. fn must not call the methods of c that change state. The returned
// function removes the subscription.
func (c *Controller[F, T]) Subscribe(fn func(State[F, T])) func() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Controller[F, T]) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	// take the snapshot under notifyMu so subscribers never see an older
	// state after a newer one
	snapshot := c.State()
	for _, fn := range c.subscribers {
		fn(snapshot)
	}
}

// SetSearchText updates the free-text search once the debounce interval has
// passed without another call. The page is reset to 1 when it takes effect.
func (c *Controller[F, T]) SetSearchText(text string) {
	c.debouncer.Trigger(func() {
		c.update(func(s *State[F, T]) bool {
			s.SearchText = text
			if c.withSearch != nil {
				s.Filter = c.withSearch(s.Filter, text)
			}
			s.PageNumber = 1
			return true
		})
	})
}

// SetFilter replaces the filter with fn(filter) and resets the page to 1.
func (c *Controller[F, T]) SetFilter(fn func(F) F) {
	c.update(func(s *State[F, T]) bool {
		s.Filter = fn(s.Filter)
		s.PageNumber = 1
		return true
	})
}

// ClearFilters restores the initial filter and the first page. A pending
// search is dropped.
func (c *Controller[F, T]) ClearFilters() {
	c.debouncer.Cancel()
	c.update(func(s *State[F, T]) bool {
		s.Filter = c.initial
		s.SearchText = ""
		s.PageNumber = 1
		return true
	})
}

// SetPageSize changes the page size and resets the page to 1. Sizes outside
// api.PageSizes are rejected without a request.
func (c *Controller[F, T]) SetPageSize(n int) error {
	if err := c.validate.Struct(api.FirstPage(n)); err != nil {
		return fmt.Errorf("%w: %d, expected one of %v", ErrInvalidPageSize, n, api.PageSizes)
	}
	c.update(func(s *State[F, T]) bool {
		s.PageSize = n
		s.PageNumber = 1
		return true
	})
	return nil
}

// GoToPage loads page n. It does nothing, and returns false, when n is out
// of range or already the current page.
func (c *Controller[F, T]) GoToPage(n int) bool {
	return c.update(func(s *State[F, T]) bool {
		if n < 1 || n > s.TotalPages || n == s.PageNumber {
			return false
		}
		s.PageNumber = n
		return true
	})
}

func (c *Controller[F, T]) NextPage() bool {
	return c.update(func(s *State[F, T]) bool {
		if !s.HasNextPage {
			return false
		}
		s.PageNumber++
		return true
	})
}

func (c *Controller[F, T]) PreviousPage() bool {
	return c.update(func(s *State[F, T]) bool {
		if !s.HasPreviousPage || s.PageNumber <= 1 {
			return false
		}
		s.PageNumber--
		return true
	})
}

// Refresh re-issues the current request unchanged. It is also used for the
// first load.
func (c *Controller[F, T]) Refresh() {
	c.update(func(*State[F, T]) bool { return true })
}

// SearchPending reports whether a search is waiting for its debounce
// interval to pass.
func (c *Controller[F, T]) SearchPending() bool {
	return c.debouncer.Pending()
}

// Wait blocks until every dispatched request has returned. A pending search
// is not waited for.
func (c *Controller[F, T]) Wait() {
	c.wg.Wait()
}

// Close drops a pending search and cancels outstanding requests.
func (c *Controller[F, T]) Close() {
	c.debouncer.Cancel()
	c.cancel()
}

// update applies fn to the state and, if fn reports a change, dispatches a
// request for the new state.
func (c *Controller[F, T]) update(fn func(s *State[F, T]) bool) bool {
	c.mu.Lock()
	if !fn(&c.state) {
		c.mu.Unlock()
		return false
	}

	c.seq++
	seq := c.seq
	c.state.Loading = true
	req := c.state.Request()
	filter := c.state.Filter
	c.wg.Add(1)
	c.mu.Unlock()

	c.notify()

	go func() {
		defer c.wg.Done()
		page, err := c.fetch(c.ctx, req, filter)
		c.complete(seq, req, page, err)
	}()
	return true
}

func (c *Controller[F, T]) complete(seq uint64, req api.PageRequest, page *api.Page[T], err error) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		logging.Debugf("dropping stale response for page %d (request %d, latest %d)", req.PageNumber, seq, c.seq)
		return
	}

	s := &c.state
	s.Loading = false
	s.Err = err
	if err != nil || page == nil {
		if err == nil {
			s.Err = fmt.Errorf("empty response")
		}
		s.Items = []T{}
		s.TotalCount, s.TotalPages = 0, 0
		s.HasNextPage, s.HasPreviousPage = false, false
	} else {
		s.Items = page.Items
		if s.Items == nil {
			s.Items = []T{}
		}
		s.TotalCount = page.TotalCount
		s.TotalPages = api.TotalPages(page.TotalCount, req.PageSize)
		s.HasNextPage = req.PageNumber < s.TotalPages
		s.HasPreviousPage = req.PageNumber > 1
	}
	c.mu.Unlock()

	c.notify()
}
