package generation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_LatestWins(t *testing.T) {
	tracker := NewTracker()

	first, _ := tracker.Begin(context.Background())
	second, _ := tracker.Begin(context.Background())

	assert.Greater(t, second, first)
	assert.False(t, tracker.IsLatest(first))
	assert.True(t, tracker.IsLatest(second))

	// The older request finishing late must not be treated as current.
	assert.False(t, tracker.Finish(first))
	assert.True(t, tracker.Finish(second))
	assert.Equal(t, 0, tracker.InFlight())
}

func TestTracker_BeginDoesNotCancelPrevious(t *testing.T) {
	tracker := NewTracker()

	_, firstCtx := tracker.Begin(context.Background())
	_, _ = tracker.Begin(context.Background())

	assert.NoError(t, firstCtx.Err())
	assert.Equal(t, 2, tracker.InFlight())
}

func TestTracker_CancelAndFinishReleaseContext(t *testing.T) {
	tracker := NewTracker()

	token, ctx := tracker.Begin(context.Background())
	require.True(t, tracker.Cancel(token))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, tracker.Cancel(token))

	token, ctx = tracker.Begin(context.Background())
	tracker.Finish(token)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestTracker_TokensIncreaseAcrossTrackers(t *testing.T) {
	a, b := NewTracker(), NewTracker()

	t1, _ := a.Begin(context.Background())
	t2, _ := b.Begin(context.Background())
	t3, _ := a.Begin(context.Background())

	assert.Less(t, t1, t2)
	assert.Less(t, t2, t3)
	assert.Equal(t, t3, a.Latest())
}

func TestSessions_ReusesAndEvictsIdle(t *testing.T) {
	sessions := NewSessions(2)

	a, first, _ := sessions.Begin(context.Background(), "a") // a stays busy
	again, second, _ := sessions.Begin(context.Background(), "a")
	assert.Same(t, a, again)
	assert.Greater(t, second, first)

	b, token, _ := sessions.Begin(context.Background(), "b")
	b.Finish(token)
	sessions.Begin(context.Background(), "c")

	busy, _, _ := sessions.Begin(context.Background(), "a")
	assert.Same(t, a, busy)
	assert.LessOrEqual(t, sessions.Len(), 2)
}

func TestSessions_FullRegistryKeepsBusyTracker(t *testing.T) {
	sessions := NewSessions(1)

	a, first, _ := sessions.Begin(context.Background(), "a")
	sessions.Begin(context.Background(), "b")

	again, second, _ := sessions.Begin(context.Background(), "a")
	require.Same(t, a, again, "a busy tracker is never evicted")
	assert.False(t, a.Finish(first), "the earlier request is superseded")
	assert.True(t, a.Finish(second))
}

func TestSessions_ConcurrentBeginSharesTracker(t *testing.T) {
	sessions := NewSessions(1)

	var wg sync.WaitGroup
	trackers := make([]*Tracker, 50)
	for i := range trackers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trackers[i], _, _ = sessions.Begin(context.Background(), "shared")
		}(i)
	}
	wg.Wait()

	for _, tr := range trackers {
		assert.Same(t, trackers[0], tr)
	}
	assert.Equal(t, len(trackers), trackers[0].InFlight())
}

func TestTracker_ConcurrentBegin(t *testing.T) {
	tracker := NewTracker()
	tokens := make(chan Token, 50)

	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		go func() {
			token, _ := tracker.Begin(context.Background())
			tokens <- token
			done <- struct{}{}
		}()
	}
	for i := 0; i < 50; i++ {
		<-done
	}
	close(tokens)

	seen := make(map[Token]bool)
	var max Token
	for token := range tokens {
		require.False(t, seen[token], fmt.Sprintf("duplicate token %d", token))
		seen[token] = true
		if token > max {
			max = token
		}
	}
	assert.True(t, tracker.IsLatest(max))
}
