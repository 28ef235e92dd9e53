package scheduler

import (
	"context"
	"time"
)

// ReleaseMessage asks for a verification hold to be released once it is due.
type ReleaseMessage struct {
	UserID    string    `json:"user_id"`
	EntryID   string    `json:"entry_id"`
	ReleaseAt time.Time `json:"release_at"`
}

// Scheduler defines the interface for a component that schedules a hold release for later processing.
type Scheduler interface {
	// ScheduleRelease enqueues a release to be processed at or after msg.ReleaseAt.
	ScheduleRelease(ctx context.Context, msg ReleaseMessage) error
}
