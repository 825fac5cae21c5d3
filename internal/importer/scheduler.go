package importer

import (
	"context"
	"time"

	"quizlet-importer/internal/components/chrono"
)

const DefaultStartPause = 500 * time.Millisecond

// Scheduler runs one import at a time and keeps quizlet from seeing a burst
// of page loads: the first task waits startPause, every later one waits pause.
type Scheduler struct {
	time       chrono.API
	startPause time.Duration
	pause      time.Duration
	started    bool
}

func NewScheduler(clock chrono.API, startPause, pause time.Duration) *Scheduler {
	return &Scheduler{time: clock, startPause: startPause, pause: pause}
}

// Next blocks until the next task may start, it returns early with the
// context's error on cancellation.
func (s *Scheduler) Next(ctx context.Context) error {
	wait := s.pause
	if !s.started {
		wait = s.startPause
		s.started = true
	}
	return s.time.Sleep(ctx, wait)
}
