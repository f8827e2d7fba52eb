package game

import "time"

// TimerState is the lifecycle of the answer countdown.
type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerExpired TimerState = "expired"
	TimerStopped TimerState = "stopped"
)

// TickSource produces a tick channel and a function releasing it.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

// RealTicks is a TickSource backed by time.Ticker.
func RealTicks(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// AnswerTimer counts down the active contender's answer time in whole
// seconds. It is not safe for concurrent use; the owning controller
// serializes access. When a tick source is configured, each countdown runs
// a goroutine that only reports ticks through onTick, tagged with the
// countdown generation so ticks from a stopped countdown can be discarded.
type AnswerTimer struct {
	state     TimerState
	playerID  int
	remaining int
	gen       uint64

	interval time.Duration
	ticks    TickSource
	onTick   func(gen uint64)
	halt     chan struct{}
}

// NewAnswerTimer returns an idle timer. A nil ticks or onTick leaves the
// timer to be driven manually through Tick.
func NewAnswerTimer(interval time.Duration, ticks TickSource, onTick func(gen uint64)) *AnswerTimer {
	if interval <= 0 {
		interval = time.Second
	}
	return &AnswerTimer{
		state:    TimerIdle,
		interval: interval,
		ticks:    ticks,
		onTick:   onTick,
	}
}

// Start begins a countdown for playerID. Starting while running is a no-op
// and returns false; callers stop the previous countdown first.
func (t *AnswerTimer) Start(playerID, seconds int) bool {
	if t.state == TimerRunning {
		return false
	}
	t.gen++
	t.state = TimerRunning
	t.playerID = playerID
	t.remaining = seconds
	if t.ticks != nil && t.onTick != nil {
		halt := make(chan struct{})
		t.halt = halt
		go t.drive(t.gen, halt)
	}
	return true
}

// Stop cancels a running countdown. It is idempotent.
func (t *AnswerTimer) Stop() {
	if t.state != TimerRunning {
		return
	}
	t.state = TimerStopped
	t.release()
}

// Tick advances the countdown by one step. expired is true exactly once,
// on the tick that reaches zero; the timer then stays expired.
func (t *AnswerTimer) Tick() (remaining int, expired bool) {
	if t.state != TimerRunning {
		return t.remaining, false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.state = TimerExpired
		t.release()
		return 0, true
	}
	return t.remaining, false
}

// State returns the current lifecycle state.
func (t *AnswerTimer) State() TimerState { return t.state }

// Running reports whether a countdown is active.
func (t *AnswerTimer) Running() bool { return t.state == TimerRunning }

// PlayerID returns the player of the latest countdown.
func (t *AnswerTimer) PlayerID() int { return t.playerID }

// Remaining returns the seconds left in the latest countdown.
func (t *AnswerTimer) Remaining() int { return t.remaining }

// Generation identifies the latest countdown.
func (t *AnswerTimer) Generation() uint64 { return t.gen }

func (t *AnswerTimer) release() {
	if t.halt != nil {
		close(t.halt)
		t.halt = nil
	}
}

func (t *AnswerTimer) drive(gen uint64, halt <-chan struct{}) {
	c, stop := t.ticks(t.interval)
	defer stop()
	for {
		select {
		case <-halt:
			return
		case <-c:
			select {
			case <-halt:
				return
			default:
			}
			t.onTick(gen)
		}
	}
}
