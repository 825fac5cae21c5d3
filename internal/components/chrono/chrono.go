package chrono

import (
	"context"
	"sync"
	"time"
)

// API is the interface everything that needs the current time or needs to
// wait should go through.
type API interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first. It
	// returns ctx.Err() when woken by the context.
	Sleep(ctx context.Context, d time.Duration) error
}

type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

func (StandardImpl) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FakeImpl never actually sleeps, it advances its own clock instead and
// remembers every requested sleep.
type FakeImpl struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func NewFakeImpl(start time.Time) *FakeImpl {
	return &FakeImpl{now: start}
}

func (f *FakeImpl) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeImpl) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

func (f *FakeImpl) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
