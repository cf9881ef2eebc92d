package listctl

import (
	"sync"
	"time"
)

// debouncer runs the last scheduled function once no new call arrived for d.
// A callback whose timer already fired but was superseded before it took the
// lock does nothing.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	d     time.Duration
	gen   uint64
}

func newDebouncer(d time.Duration) *debouncer {
	return &debouncer{d: d}
}

// Debounce schedules fn, replacing any pending call.
func (d *debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.d, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
