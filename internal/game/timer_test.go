package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerTimerCountsDownAndExpiresOnce(t *testing.T) {
	timer := NewAnswerTimer(time.Second, nil, nil)
	assert.Equal(t, TimerIdle, timer.State())

	require.True(t, timer.Start(3, 2))
	assert.Equal(t, TimerRunning, timer.State())
	assert.Equal(t, 3, timer.PlayerID())

	remaining, expired := timer.Tick()
	assert.Equal(t, 1, remaining)
	assert.False(t, expired)

	remaining, expired = timer.Tick()
	assert.Equal(t, 0, remaining)
	assert.True(t, expired)
	assert.Equal(t, TimerExpired, timer.State())

	_, expired = timer.Tick()
	assert.False(t, expired)
}

func TestAnswerTimerStartWhileRunningIsNoop(t *testing.T) {
	timer := NewAnswerTimer(time.Second, nil, nil)
	require.True(t, timer.Start(1, 6))
	gen := timer.Generation()

	assert.False(t, timer.Start(2, 6))
	assert.Equal(t, 1, timer.PlayerID())
	assert.Equal(t, gen, timer.Generation())

	timer.Stop()
	timer.Stop()
	assert.Equal(t, TimerStopped, timer.State())

	require.True(t, timer.Start(2, 6))
	assert.Equal(t, gen+1, timer.Generation())
}

func TestAnswerTimerStoppedIgnoresTicks(t *testing.T) {
	timer := NewAnswerTimer(time.Second, nil, nil)
	timer.Start(1, 3)
	timer.Stop()

	remaining, expired := timer.Tick()
	assert.Equal(t, 3, remaining)
	assert.False(t, expired)
	assert.Equal(t, TimerStopped, timer.State())
}

func TestAnswerTimerDriverReportsGeneration(t *testing.T) {
	ticks := make(chan time.Time)
	released := make(chan struct{}, 1)
	source := func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() { released <- struct{}{} }
	}

	var mu sync.Mutex
	var seen []uint64
	timer := NewAnswerTimer(time.Second, source, func(gen uint64) {
		mu.Lock()
		seen = append(seen, gen)
		mu.Unlock()
	})

	timer.Start(1, 6)
	ticks <- time.Now()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, timer.Generation(), seen[0])
	mu.Unlock()

	timer.Stop()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("tick source was not released after stop")
	}
}
