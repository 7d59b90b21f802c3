package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"createform/internal/model"
)

func receive(t *testing.T, sub *Subscription) *model.SubmissionSnapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func TestSubscriptionEmitsOnChange(t *testing.T) {
	var count atomic.Int64
	var loads atomic.Int64
	probe := func(ctx context.Context) (*model.SubmissionSnapshot, error) {
		return &model.SubmissionSnapshot{SurveyID: "s1", Count: int(count.Load())}, nil
	}
	load := func(ctx context.Context, snap *model.SubmissionSnapshot) error {
		loads.Add(1)
		snap.Submissions = make([]*model.Submission, snap.Count)
		return nil
	}

	sub := NewSubscription(context.Background(), 5*time.Millisecond, probe, load)
	defer sub.Close()

	first := receive(t, sub)
	assert.Equal(t, 0, first.Count)
	assert.False(t, first.TakenAt.IsZero())

	// unchanged polls do not reload
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(1), loads.Load())

	count.Store(2)
	second := receive(t, sub)
	assert.Equal(t, 2, second.Count)
	assert.Len(t, second.Submissions, 2)
}

func TestSubscriptionCloseStopsPolling(t *testing.T) {
	var polls atomic.Int64
	probe := func(ctx context.Context) (*model.SubmissionSnapshot, error) {
		polls.Add(1)
		return &model.SubmissionSnapshot{Count: 1}, nil
	}
	sub := NewSubscription(context.Background(), time.Millisecond, probe, nil)
	receive(t, sub)
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
	after := polls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, polls.Load())

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestSubscriptionStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	probe := func(ctx context.Context) (*model.SubmissionSnapshot, error) {
		return &model.SubmissionSnapshot{}, nil
	}
	sub := NewSubscription(ctx, time.Millisecond, probe, nil)
	cancel()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop")
	}
	sub.Close()
}

func TestSubscriptionRecordsErrors(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	boom := errors.New("db down")
	probe := func(ctx context.Context) (*model.SubmissionSnapshot, error) {
		if fail.Load() {
			return nil, boom
		}
		return &model.SubmissionSnapshot{Count: 3}, nil
	}
	sub := NewSubscription(context.Background(), 2*time.Millisecond, probe, nil)
	defer sub.Close()

	require.Eventually(t, func() bool { return errors.Is(sub.Err(), boom) }, time.Second, time.Millisecond)

	fail.Store(false)
	snap := receive(t, sub)
	assert.Equal(t, 3, snap.Count)
	require.Eventually(t, func() bool { return sub.Err() == nil }, time.Second, time.Millisecond)
}

func TestPublishLatestKeepsNewest(t *testing.T) {
	ch := make(chan *model.SubmissionSnapshot, 1)
	publishLatest(ch, &model.SubmissionSnapshot{Count: 1})
	publishLatest(ch, &model.SubmissionSnapshot{Count: 2})
	assert.Equal(t, 2, (<-ch).Count)
}
