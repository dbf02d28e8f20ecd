package carousel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changes struct {
	mu      sync.Mutex
	indexes []int
}

func (c *changes) record(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes = append(c.indexes, i)
}

func (c *changes) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.indexes)
}

func newPlayer(t *testing.T, count int, interval time.Duration) (*Player, *changes) {
	t.Helper()
	cursor, err := NewCursor(count, 1)
	require.NoError(t, err)

	seen := &changes{}
	return NewPlayer(cursor, interval, seen.record), seen
}

func TestPlayer_AdvancesAndWraps(t *testing.T) {
	p, seen := newPlayer(t, 2, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	assert.Eventually(t, func() bool { return seen.len() >= 3 }, time.Second, 5*time.Millisecond)

	seen.mu.Lock()
	assert.Equal(t, []int{1, 0, 1}, seen.indexes[:3])
	seen.mu.Unlock()
}

func TestPlayer_PauseStopsAdvance(t *testing.T) {
	p, seen := newPlayer(t, 3, 10*time.Millisecond)
	p.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, seen.len())
	assert.True(t, p.Paused())

	p.Resume()
	assert.Eventually(t, func() bool { return seen.len() > 0 }, time.Second, 5*time.Millisecond)
}

func TestPlayer_ManualMoveRestartsTimer(t *testing.T) {
	p, seen := newPlayer(t, 5, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 4, p.Prev())

	// Without the restart the tick would land 80ms after the manual move.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 4, p.Index())
	assert.Equal(t, 1, seen.len())

	assert.Eventually(t, func() bool { return p.Index() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPlayer_JumpTo(t *testing.T) {
	p, seen := newPlayer(t, 4, time.Hour)

	assert.True(t, p.JumpTo(2))
	assert.False(t, p.JumpTo(9))
	assert.Equal(t, 2, p.Index())
	assert.Equal(t, 1, seen.len())
}

func TestPlayer_StopsWithContext(t *testing.T) {
	p, _ := newPlayer(t, 2, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("player did not stop")
	}
}
