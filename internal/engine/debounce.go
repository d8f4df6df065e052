package engine

import "time"

// firing is a debounce timer going off for path. gen identifies the timer
// so that a timer replaced after it fired can be told apart from the
// current one.
type firing struct {
	path string
	gen  uint64
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

// debouncer coalesces bursts of changes to a file into one firing after
// delay. It is owned by the watch loop and is not safe for concurrent use;
// only the timer callbacks run elsewhere, and they just send on fired.
type debouncer struct {
	delay  time.Duration
	fired  chan firing
	done   chan struct{}
	timers map[string]pendingTimer
	gen    uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		fired:  make(chan firing),
		done:   make(chan struct{}),
		timers: make(map[string]pendingTimer),
	}
}

// touch (re)arms the timer of path.
func (d *debouncer) touch(path string) {
	d.cancel(path)
	d.gen++
	f := firing{path: path, gen: d.gen}
	t := time.AfterFunc(d.delay, func() {
		select {
		case d.fired <- f:
		case <-d.done:
		}
	})
	d.timers[path] = pendingTimer{timer: t, gen: f.gen}
}

// cancel drops the pending timer of path, if any.
func (d *debouncer) cancel(path string) {
	if p, ok := d.timers[path]; ok {
		p.timer.Stop()
		delete(d.timers, path)
	}
}

// current reports whether f comes from the live timer of its path and, if
// so, retires that timer. A stale firing leaves the newer timer in place.
func (d *debouncer) current(f firing) bool {
	p, ok := d.timers[f.path]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.timers, f.path)
	return true
}

// pending returns the number of armed timers.
func (d *debouncer) pending() int { return len(d.timers) }

// stop cancels every timer and releases callbacks blocked on fired.
func (d *debouncer) stop() {
	for path := range d.timers {
		d.cancel(path)
	}
	close(d.done)
}
