package repository

import (
	"context"
	"sync"
	"time"

	"createform/internal/model"
)

// ProbeFunc cheaply reads the current state of a feed (typically a count)
type ProbeFunc func(ctx context.Context) (*model.SubmissionSnapshot, error)

// LoadFunc fills in the full snapshot once a probe shows a change
type LoadFunc func(ctx context.Context, snap *model.SubmissionSnapshot) error

// Subscription is a cancellable stream of submission snapshots.
// C only ever holds the latest snapshot; a slow reader skips intermediate ones.
type Subscription struct {
	C <-chan *model.SubmissionSnapshot

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// NewSubscription starts polling immediately and then every interval until ctx is done or Close is called.
// A snapshot is emitted on the first successful probe and whenever the probed count changes.
func NewSubscription(ctx context.Context, interval time.Duration, probe ProbeFunc, load LoadFunc) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan *model.SubmissionSnapshot, 1)
	s := &Subscription{
		C:      ch,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx, ch, interval, probe, load)
	return s
}

func (s *Subscription) run(ctx context.Context, ch chan *model.SubmissionSnapshot, interval time.Duration, probe ProbeFunc, load LoadFunc) {
	defer close(s.done)
	defer close(ch)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1
	for {
		snap, err := probe(ctx)
		if err == nil && snap.Count != last {
			if load != nil {
				err = load(ctx, snap)
			}
			if err == nil {
				snap.TakenAt = time.Now().UTC()
				last = snap.Count
				publishLatest(ch, snap)
			}
		}
		if ctx.Err() != nil {
			return
		}
		s.setErr(err)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// publishLatest replaces an unread snapshot instead of blocking
func publishLatest(ch chan *model.SubmissionSnapshot, snap *model.SubmissionSnapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- snap
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Err returns the error of the most recent poll, nil once polling succeeds again
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops polling and waits for the poller to exit. C is closed afterwards.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has stopped
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
