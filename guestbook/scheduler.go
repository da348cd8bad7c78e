package guestbook

import (
	"sync"
	"time"
)

// Scheduler runs deferred work. Tasks are never cancelled individually;
// Close drops whatever has not started yet.
type Scheduler interface {
	// After runs fn once, d from now, on a goroutine of the scheduler's choosing.
	After(d time.Duration, fn func())

	// Wait blocks until every scheduled task has run or been dropped.
	Wait()

	// Close drops pending tasks and waits for running ones to return.
	// After returns without scheduling anything once Close has been called.
	Close()
}

// TimerScheduler is a Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	timers map[*time.Timer]struct{}
	closed bool
}

// NewTimerScheduler creates a ready-to-use TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[*time.Timer]struct{})}
}

// After schedules fn to run after d.
func (s *TimerScheduler) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.wg.Add(1)
	var t *time.Timer
	// The callback takes s.mu first, so t is always assigned by the time it reads it.
	t = time.AfterFunc(d, func() {
		defer s.wg.Done()

		s.mu.Lock()
		_, live := s.timers[t]
		delete(s.timers, t)
		s.mu.Unlock()

		if live {
			fn()
		}
	})
	s.timers[t] = struct{}{}
}

// Pending returns the number of tasks that have not started.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Wait blocks until all scheduled tasks have finished.
func (s *TimerScheduler) Wait() {
	s.wg.Wait()
}

// Close stops pending timers and waits for in-flight tasks.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for t := range s.timers {
		// A timer that already fired runs its callback, which does its own Done.
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, t)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
