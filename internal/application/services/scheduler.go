package services

import (
	"sync"
	"time"
)

// Scheduler is the refresh guard: it decides whether a new refresh may be
// issued, based on the configured minimum interval, widget visibility and
// user presence. It replaces the widget's process-wide mutable state with
// one explicit component.
type Scheduler struct {
	mu          sync.Mutex
	interval    time.Duration
	lastRequest time.Time
	visible     bool
	present     bool

	now func() time.Time
}

// NewScheduler creates a scheduler that starts visible with a user present.
func NewScheduler(interval time.Duration) *Scheduler {
	return &Scheduler{
		interval: interval,
		visible:  true,
		present:  true,
		now:      time.Now,
	}
}

// ShouldRefreshNow reports whether a refresh may be issued: the widget must
// be visible with a user present, and at least the configured interval must
// have passed since the last request.
func (s *Scheduler) ShouldRefreshNow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.visible || !s.present {
		return false
	}
	return s.lastRequest.IsZero() || s.now().Sub(s.lastRequest) > s.interval
}

// MarkRequested records that a refresh was just issued.
func (s *Scheduler) MarkRequested() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRequest = s.now()
}

// Suspend pauses refreshing while the widget is hidden.
func (s *Scheduler) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}

// Resume re-enables refreshing when the widget is shown again.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
}

// SetPresence records whether a user is in front of the display.
func (s *Scheduler) SetPresence(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present = present
}

// State returns a snapshot of the guard for the status endpoint.
func (s *Scheduler) State() (visible, present bool, lastRequest time.Time, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible, s.present, s.lastRequest, s.interval
}
