package ephemqd

import (
	"context"
	"time"
)

const DefaultPollInterval = 10 * time.Millisecond

type nonBlockingPopper interface {
	PopNow(key string) ([]byte, bool)
}

// PollingWaiter implements a bounded-wait pop by probing the store at a
// fixed interval until a message shows up or the deadline passes.
type PollingWaiter struct {
	store    nonBlockingPopper
	interval time.Duration
}

func NewPollingWaiter(store nonBlockingPopper, interval time.Duration) *PollingWaiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingWaiter{
		store:    store,
		interval: interval,
	}
}

func (w *PollingWaiter) Interval() time.Duration {
	return w.interval
}

// Pop with a nil timeout is a single non-blocking probe. Otherwise it keeps
// probing until a message is found, the timeout elapses (overshooting by at
// most one interval) or ctx is done. A negative timeout probes once.
//
// ctx is checked before every probe so an abandoned wait never removes a
// message it cannot deliver.
func (w *PollingWaiter) Pop(ctx context.Context, key string, timeout *time.Duration) ([]byte, bool) {
	if timeout == nil {
		return w.store.PopNow(key)
	}

	deadline := time.Now().Add(*timeout)
	var timer *time.Timer
	for {
		if ctx.Err() != nil {
			return nil, false
		}
		if msg, ok := w.store.PopNow(key); ok {
			return msg, true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}
		sleep := w.interval
		if remaining < sleep {
			sleep = remaining
		}

		if timer == nil {
			timer = time.NewTimer(sleep)
			defer timer.Stop()
		} else {
			timer.Reset(sleep)
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-timer.C:
		}
	}
}
