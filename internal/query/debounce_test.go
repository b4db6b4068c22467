package query

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"
)

func TestDebouncer(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 300*time.Millisecond)

	fired := make(chan string, 10)
	trigger := func(v string) {
		d.Trigger(func() { fired <- v })
	}

	t.Run("rapid triggers run once with the last value", func(t *testing.T) {
		trigger("a")
		mock.Add(100 * time.Millisecond)
		trigger("ab")
		mock.Add(299 * time.Millisecond)
		trigger("abc")
		assert.Assert(t, d.Pending())

		mock.Add(299 * time.Millisecond)
		expectNone(t, fired)

		mock.Add(time.Millisecond)
		assert.Equal(t, expectOne(t, fired), "abc")
		expectNone(t, fired)
		poll.WaitOn(t, func(poll.LogT) poll.Result {
			if d.Pending() {
				return poll.Continue("call still pending")
			}
			return poll.Success()
		})
	})

	t.Run("cancel drops the pending call", func(t *testing.T) {
		trigger("x")
		assert.Assert(t, d.Cancel())
		assert.Assert(t, !d.Cancel())

		mock.Add(time.Second)
		expectNone(t, fired)
	})
}

func expectOne[V any](t *testing.T, ch chan V) V {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a value")
	}
	panic("unreachable")
}

func expectNone[V any](t *testing.T, ch chan V) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}
