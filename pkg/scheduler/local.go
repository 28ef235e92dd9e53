package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ReleaseFunc processes a due release.
type ReleaseFunc func(ctx context.Context, msg ReleaseMessage) error

// LocalScheduler runs releases on in-process timers when the app runs without
// a queue. Timers do not survive a restart.
type LocalScheduler struct {
	mu      sync.Mutex
	release ReleaseFunc
	timers  map[string]*time.Timer
	logger  *slog.Logger
	stopped bool
}

// NewLocalScheduler creates a LocalScheduler. SetReleaser must be called
// before the first timer fires.
func NewLocalScheduler(logger *slog.Logger) *LocalScheduler {
	return &LocalScheduler{
		timers: make(map[string]*time.Timer),
		logger: logger,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*LocalScheduler)(nil)

// SetReleaser installs the function timers call.
func (s *LocalScheduler) SetReleaser(fn ReleaseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release = fn
}

// ScheduleRelease arms a timer for msg. Scheduling the same entry again
// replaces the earlier timer.
func (s *LocalScheduler) ScheduleRelease(ctx context.Context, msg ReleaseMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	if t, ok := s.timers[msg.EntryID]; ok {
		t.Stop()
	}
	// fire takes mu, so it cannot observe timer before the assignment below.
	var timer *time.Timer
	timer = time.AfterFunc(time.Until(msg.ReleaseAt), func() {
		s.fire(msg, timer)
	})
	s.timers[msg.EntryID] = timer
	return nil
}

// fire runs the release armed by timer. The map entry is dropped only while
// it still holds timer, since a later ScheduleRelease may have replaced it.
func (s *LocalScheduler) fire(msg ReleaseMessage, timer *time.Timer) {
	s.mu.Lock()
	if s.timers[msg.EntryID] == timer {
		delete(s.timers, msg.EntryID)
	}
	fn := s.release
	s.mu.Unlock()

	if fn == nil {
		s.logger.Error("no releaser installed, dropping release", "entry_id", msg.EntryID)
		return
	}
	if err := fn(context.Background(), msg); err != nil {
		s.logger.Error("failed to release hold", "user_id", msg.UserID, "entry_id", msg.EntryID, "error", err)
	}
}

// Pending returns the number of armed timers.
func (s *LocalScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every armed timer. Later calls to ScheduleRelease are ignored.
func (s *LocalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
