package page_test

import (
	"sync"
	"time"

	"github.com/nomis52/clubsignup/page"
)

// fakeDialog answers every confirmation with confirm and records prompts.
type fakeDialog struct {
	mu       sync.Mutex
	confirm  bool
	confirms []string
	alerts   []string
}

func (d *fakeDialog) Confirm(message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirms = append(d.confirms, message)
	return d.confirm
}

func (d *fakeDialog) Alert(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, message)
}

func (d *fakeDialog) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.alerts...)
}

func (d *fakeDialog) Confirms() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.confirms...)
}

// fakeScheduler is a manual clock. Tasks run during Advance.
// When ignoreStop is set, Stop reports success but the task still runs,
// like a timer that had already fired when it was cancelled.
type fakeScheduler struct {
	mu         sync.Mutex
	now        time.Duration
	timers     []*fakeTimer
	ignoreStop bool
}

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) page.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	if !t.s.ignoreStop {
		t.stopped = true
	}
	return true
}

// Advance moves the clock forward and runs every task that became due.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.fired && !t.stopped && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of tasks that have neither run nor been stopped.
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}
