package query

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultDebounce is the delay between the last keystroke of a search and
// the query it triggers.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer holds at most one pending call. Triggering it again before the
// interval elapses replaces the pending call and restarts the interval.
type Debouncer struct {
	clock    clock.Clock
	interval time.Duration

	mu    sync.Mutex
	timer *clock.Timer
	gen   uint64
}

func NewDebouncer(clk clock.Clock, interval time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Debouncer{clock: clk, interval: interval}
}

// Trigger schedules fn to run once the interval has passed without another
// call to Trigger or Cancel.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.interval, func() {
		d.mu.Lock()
		// a timer that fired after being replaced must not run
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()

		fn()

		// still pending while fn runs
		d.mu.Lock()
		if gen == d.gen {
			d.timer = nil
		}
		d.mu.Unlock()
	})
}

// Cancel drops the pending call, if any. It reports whether a call was
// pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
