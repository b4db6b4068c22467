package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"

	"github.com/tatipharma/pharmabi/api"
)

type testFilter struct {
	Search string
	Status string
}

type reply struct {
	page *api.Page[int]
	err  error
}

type call struct {
	page   api.PageRequest
	filter testFilter
	reply  chan reply
}

func (c call) respond(total int, items ...int) {
	c.reply <- reply{page: &api.Page[int]{Items: items, TotalCount: total}}
}

func (c call) fail(err error) {
	c.reply <- reply{err: err}
}

// backend blocks every fetch until the test responds to it.
type backend struct {
	calls chan call
}

func (b *backend) fetch(_ context.Context, page api.PageRequest, filter testFilter) (*api.Page[int], error) {
	c := call{page: page, filter: filter, reply: make(chan reply, 1)}
	b.calls <- c
	r := <-c.reply
	return r.page, r.err
}

func newController(t *testing.T, clk clock.Clock) (*Controller[testFilter, int], *backend) {
	t.Helper()
	b := &backend{calls: make(chan call, 10)}
	c, err := New(Options[testFilter, int]{
		Fetch: b.fetch,
		WithSearch: func(f testFilter, text string) testFilter {
			f.Search = text
			return f
		},
		Filter: testFilter{Status: "all"},
		Clock:  clk,
	})
	assert.NilError(t, err)
	t.Cleanup(c.Close)
	return c, b
}

// load performs the first load with totalCount results and waits for it.
func load(t *testing.T, c *Controller[testFilter, int], b *backend, total int) {
	t.Helper()
	c.Refresh()
	expectOne(t, b.calls).respond(total, 1, 2, 3)
	c.Wait()
}

func TestNew(t *testing.T) {
	_, err := New(Options[testFilter, int]{})
	assert.ErrorContains(t, err, "fetch function is required")

	b := &backend{}
	_, err = New(Options[testFilter, int]{Fetch: b.fetch, PageSize: 7})
	assert.Assert(t, errors.Is(err, ErrInvalidPageSize))

	c, err := New(Options[testFilter, int]{Fetch: b.fetch})
	assert.NilError(t, err)
	assert.Equal(t, c.State().PageSize, api.DefaultPageSize)
	assert.Equal(t, c.State().PageNumber, 1)
}

func TestController_Refresh(t *testing.T) {
	c, b := newController(t, nil)

	c.Refresh()
	req := expectOne(t, b.calls)
	assert.Equal(t, req.page, api.PageRequest{PageNumber: 1, PageSize: 10})
	assert.Equal(t, req.filter, testFilter{Status: "all"})
	assert.Assert(t, c.State().Loading)

	req.respond(95, 1, 2, 3)
	c.Wait()

	state := c.State()
	assert.Assert(t, !state.Loading)
	assert.NilError(t, state.Err)
	assert.DeepEqual(t, state.Items, []int{1, 2, 3})
	assert.Equal(t, state.TotalCount, 95)
	assert.Equal(t, state.TotalPages, 10)
	assert.Assert(t, state.HasNextPage)
	assert.Assert(t, !state.HasPreviousPage)

	c.Refresh()
	assert.Equal(t, expectOne(t, b.calls).page, api.PageRequest{PageNumber: 1, PageSize: 10})
}

func TestController_ResetsPage(t *testing.T) {
	c, b := newController(t, nil)
	load(t, c, b, 95)

	goToThree := func() {
		t.Helper()
		assert.Assert(t, c.GoToPage(3))
		req := expectOne(t, b.calls)
		assert.Equal(t, req.page.PageNumber, 3)
		req.respond(95)
		c.Wait()
	}

	t.Run("filter change", func(t *testing.T) {
		goToThree()
		c.SetFilter(func(f testFilter) testFilter {
			f.Status = "active"
			return f
		})
		req := expectOne(t, b.calls)
		assert.Equal(t, req.page.PageNumber, 1)
		assert.Equal(t, req.filter.Status, "active")
		req.respond(95)
		c.Wait()
		expectNone(t, b.calls)
	})

	t.Run("page size change", func(t *testing.T) {
		goToThree()
		assert.NilError(t, c.SetPageSize(25))
		req := expectOne(t, b.calls)
		assert.Equal(t, req.page, api.PageRequest{PageNumber: 1, PageSize: 25})
		req.respond(95)
		c.Wait()
		assert.Equal(t, c.State().TotalPages, 4)
	})

	t.Run("invalid page size", func(t *testing.T) {
		err := c.SetPageSize(7)
		assert.Assert(t, errors.Is(err, ErrInvalidPageSize))
		expectNone(t, b.calls)
		assert.Equal(t, c.State().PageSize, 25)
	})

	t.Run("clear filters", func(t *testing.T) {
		goToThree()
		c.ClearFilters()
		req := expectOne(t, b.calls)
		assert.Equal(t, req.page.PageNumber, 1)
		assert.Equal(t, req.filter, testFilter{Status: "all"})
		req.respond(95)
		c.Wait()
	})
}

func TestController_GoToPage(t *testing.T) {
	c, b := newController(t, nil)
	load(t, c, b, 42)

	for _, n := range []int{0, -1, 6, 1} {
		assert.Assert(t, !c.GoToPage(n), "page %d", n)
	}
	expectNone(t, b.calls)

	assert.Assert(t, c.GoToPage(5))
	expectOne(t, b.calls).respond(42, 41, 42)
	c.Wait()

	state := c.State()
	assert.Assert(t, !state.HasNextPage)
	assert.Assert(t, state.HasPreviousPage)
	assert.Assert(t, !c.NextPage())

	assert.Assert(t, c.PreviousPage())
	assert.Equal(t, expectOne(t, b.calls).page.PageNumber, 4)
}

func TestController_DebouncedSearch(t *testing.T) {
	mock := clock.NewMock()
	c, b := newController(t, mock)
	load(t, c, b, 95)
	assert.Assert(t, c.GoToPage(2))
	expectOne(t, b.calls).respond(95)
	c.Wait()

	for _, text := range []string{"p", "pa", "par", "para"} {
		c.SetSearchText(text)
		mock.Add(100 * time.Millisecond)
	}
	expectNone(t, b.calls)

	mock.Add(DefaultDebounce)
	req := expectOne(t, b.calls)
	assert.Equal(t, req.filter.Search, "para")
	assert.Equal(t, req.page.PageNumber, 1)
	req.respond(3, 7, 8, 9)
	c.Wait()

	expectNone(t, b.calls)
	assert.Equal(t, c.State().SearchText, "para")
}

func TestController_LastRequestWins(t *testing.T) {
	c, b := newController(t, nil)
	load(t, c, b, 50)

	assert.Assert(t, c.GoToPage(2))
	first := expectOne(t, b.calls)
	assert.Assert(t, c.GoToPage(3))
	second := expectOne(t, b.calls)

	second.respond(50, 30)
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if c.State().Loading {
			return poll.Continue("waiting for the second response")
		}
		return poll.Success()
	}, poll.WithTimeout(2*time.Second))

	first.respond(50, 20)
	c.Wait()

	state := c.State()
	assert.Equal(t, state.PageNumber, 3)
	assert.DeepEqual(t, state.Items, []int{30})
	assert.Assert(t, !state.Loading)
}

func TestController_StaleResponseKeepsLoading(t *testing.T) {
	c, b := newController(t, nil)

	c.Refresh()
	first := expectOne(t, b.calls)
	c.Refresh()
	second := expectOne(t, b.calls)

	first.respond(10, 1)
	time.Sleep(20 * time.Millisecond)
	assert.Assert(t, c.State().Loading, "a stale response must not end loading")

	second.respond(10, 2)
	c.Wait()
	assert.DeepEqual(t, c.State().Items, []int{2})
}

func TestController_Failure(t *testing.T) {
	c, b := newController(t, nil)
	load(t, c, b, 95)

	c.Refresh()
	expectOne(t, b.calls).fail(api.Error{Message: "Failed to fetch customers"})
	c.Wait()

	state := c.State()
	assert.Error(t, state.Err, "Failed to fetch customers")
	assert.DeepEqual(t, state.Items, []int{})
	assert.Equal(t, state.TotalPages, 0)
	assert.Assert(t, !state.Loading)

	c.Refresh()
	expectOne(t, b.calls).respond(95, 1)
	c.Wait()
	assert.NilError(t, c.State().Err)
	assert.DeepEqual(t, c.State().Items, []int{1})
}

func TestController_Subscribe(t *testing.T) {
	c, b := newController(t, nil)

	var mu sync.Mutex
	var loading []bool
	unsubscribe := c.Subscribe(func(s State[testFilter, int]) {
		mu.Lock()
		defer mu.Unlock()
		loading = append(loading, s.Loading)
	})

	load(t, c, b, 5)

	mu.Lock()
	assert.DeepEqual(t, loading, []bool{true, false})
	mu.Unlock()

	unsubscribe()
	load(t, c, b, 5)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, len(loading), 2)
}
