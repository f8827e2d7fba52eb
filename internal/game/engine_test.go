package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeopardy-board/internal/domain"
)

type engineFixture struct {
	roster *Roster
	timer  *AnswerTimer
	engine *Engine
	events []Event
	clock  time.Time
}

func newEngineFixture(t *testing.T, players, seconds int) *engineFixture {
	t.Helper()
	f := &engineFixture{
		roster: NewRoster(players),
		timer:  NewAnswerTimer(time.Second, nil, nil),
		clock:  time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC),
	}
	now := func() time.Time {
		f.clock = f.clock.Add(time.Millisecond)
		return f.clock
	}
	emit := func(e Event) { f.events = append(f.events, e) }
	f.engine = NewEngine(f.roster, f.timer, seconds, now, emit, zerolog.Nop())
	return f
}

func (f *engineFixture) score(id int) int {
	return f.roster.Get(id).Score
}

func (f *engineFixture) types() []EventType {
	out := make([]EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func question(value int) *Question {
	return NewQuestion(domain.Question{Prompt: "prompt", Answer: "answer", Value: value, Category: "History"})
}

func answering(q *Question) []int {
	var ids []int
	for _, e := range q.Queue() {
		if e.Status == StatusAnswering {
			ids = append(ids, e.PlayerID)
		}
	}
	return ids
}

func TestSingleWrongAnswerEndsAllIncorrect(t *testing.T) {
	f := newEngineFixture(t, 2, 6)
	q := question(300)

	require.True(t, f.engine.Buzz(q, 1))
	active, ok := q.Active()
	require.True(t, ok)
	assert.Equal(t, 1, active)

	require.True(t, f.engine.Incorrect(q))

	assert.Equal(t, -300, f.score(1))
	assert.Equal(t, 0, f.score(2))
	assert.False(t, q.Available())
	assert.True(t, q.HadIncorrectAnswers())
	assert.Equal(t, ResolvedIncorrect, q.Resolution())
	assert.Empty(t, q.Queue())
	require.Len(t, q.Eliminated(), 1)
	assert.Equal(t, StatusEliminated, q.Eliminated()[0].Status)
	assert.Equal(t, []EventType{EventBuzzAccepted, EventIncorrect, EventQuestionResolved}, f.types())
}

func TestWrongThenRightPromotesNextContender(t *testing.T) {
	f := newEngineFixture(t, 2, 6)
	q := question(300)

	require.True(t, f.engine.Buzz(q, 1))
	require.True(t, f.engine.Buzz(q, 2))
	queue := q.Queue()
	require.Len(t, queue, 2)
	assert.Equal(t, StatusAnswering, queue[0].Status)
	assert.Equal(t, StatusWaiting, queue[1].Status)
	assert.Equal(t, 2, queue[1].Position)

	require.True(t, f.engine.Incorrect(q))
	active, ok := q.Active()
	require.True(t, ok)
	assert.Equal(t, 2, active)
	assert.Equal(t, 2, f.timer.PlayerID())
	assert.True(t, f.timer.Running())
	assert.Nil(t, f.roster.Get(1).RemainingTime)

	require.True(t, f.engine.Correct(q))
	assert.Equal(t, -300, f.score(1))
	assert.Equal(t, 300, f.score(2))
	assert.True(t, q.QueueResolved())
	assert.False(t, q.Available())
	winner, ok := q.Winner()
	require.True(t, ok)
	assert.Equal(t, 2, winner)
	assert.Equal(t, TimerStopped, f.timer.State())
	assert.Nil(t, f.roster.Get(2).RemainingTime)
}

func TestNoOneKnowsWithoutBuzzes(t *testing.T) {
	f := newEngineFixture(t, 2, 6)
	q := question(300)

	require.True(t, f.engine.NoOneKnows(q))

	assert.False(t, q.Available())
	assert.Equal(t, ResolvedUnanswered, q.Resolution())
	assert.Empty(t, q.ScoreChanges())
	assert.Equal(t, 0, f.score(1))
	assert.Equal(t, 0, f.score(2))
	assert.False(t, f.engine.NoOneKnows(q))
}

func TestNoOneKnowsAfterWrongAnswerIsAllIncorrect(t *testing.T) {
	f := newEngineFixture(t, 3, 6)
	q := question(200)

	f.engine.Buzz(q, 1)
	f.engine.Buzz(q, 2)
	f.engine.Incorrect(q)
	require.True(t, f.engine.NoOneKnows(q))

	assert.Equal(t, ResolvedIncorrect, q.Resolution())
	assert.Equal(t, TimerStopped, f.timer.State())
	assert.Equal(t, 0, f.score(2))
}

func TestResetRestoresScores(t *testing.T) {
	f := newEngineFixture(t, 2, 6)
	q := question(300)

	f.engine.Buzz(q, 1)
	f.engine.Correct(q)
	require.Equal(t, 300, f.score(1))

	f.engine.Reset(q)

	assert.Equal(t, 0, f.score(1))
	assert.True(t, q.Available())
	assert.Empty(t, q.Queue())
	assert.Empty(t, q.ScoreChanges())
	assert.False(t, q.HasBuzzState())
	assert.Equal(t, EventQuestionReset, f.events[len(f.events)-1].Type)

	// Every player may buzz again after a reset.
	assert.True(t, f.engine.Buzz(q, 1))
}

func TestCorrectKeepsWinnerEntryCompleted(t *testing.T) {
	f := newEngineFixture(t, 3, 6)
	q := question(200)

	f.engine.Buzz(q, 2)
	f.engine.Buzz(q, 3)
	require.True(t, f.engine.Correct(q))

	queue := q.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, 2, queue[0].PlayerID)
	assert.Equal(t, StatusCompleted, queue[0].Status)
	_, ok := q.Active()
	assert.False(t, ok)

	f.engine.Reset(q)
	assert.Empty(t, q.Queue())
}

func TestDuplicateBuzzRejected(t *testing.T) {
	f := newEngineFixture(t, 2, 6)
	q := question(300)

	require.True(t, f.engine.Buzz(q, 1))
	assert.False(t, f.engine.Buzz(q, 1))
	assert.Len(t, q.Queue(), 1)
}

func TestTimeoutFlagsButKeepsAnswering(t *testing.T) {
	f := newEngineFixture(t, 2, 1)
	q := question(300)

	require.True(t, f.engine.Buzz(q, 1))
	require.NotNil(t, f.roster.Get(1).RemainingTime)
	assert.Equal(t, 1, *f.roster.Get(1).RemainingTime)

	f.engine.Tick(q)

	require.NotNil(t, f.roster.Get(1).RemainingTime)
	assert.Equal(t, 0, *f.roster.Get(1).RemainingTime)
	assert.Equal(t, []int{1}, q.TimeoutPlayers())
	active, ok := q.Active()
	require.True(t, ok)
	assert.Equal(t, 1, active)
	assert.Equal(t, TimerExpired, f.timer.State())

	// Further ticks do not fire a second timeout.
	f.engine.Tick(q)
	assert.Equal(t, []int{1}, q.TimeoutPlayers())

	require.True(t, f.engine.Incorrect(q))
	assert.Equal(t, -300, f.score(1))
}

func TestBuzzRejections(t *testing.T) {
	f := newEngineFixture(t, 2, 6)
	q := question(100)

	assert.False(t, f.engine.Buzz(q, 7), "unknown player")
	assert.False(t, f.engine.Correct(q), "no active contender")
	assert.False(t, f.engine.Incorrect(q), "no active contender")
	assert.Empty(t, q.ScoreChanges())

	require.True(t, f.engine.Buzz(q, 1))
	require.True(t, f.engine.Incorrect(q))
	assert.False(t, f.engine.Buzz(q, 1), "eliminated player")
}

func TestResolvedQuestionRejectsBuzzes(t *testing.T) {
	for _, end := range []struct {
		name string
		fn   func(*Engine, *Question)
	}{
		{"correct", func(e *Engine, q *Question) { e.Buzz(q, 1); e.Correct(q) }},
		{"all incorrect", func(e *Engine, q *Question) { e.Buzz(q, 1); e.Incorrect(q) }},
		{"no one knows", func(e *Engine, q *Question) { e.NoOneKnows(q) }},
	} {
		t.Run(end.name, func(t *testing.T) {
			f := newEngineFixture(t, 4, 6)
			q := question(100)
			end.fn(f.engine, q)
			require.True(t, q.QueueResolved())
			for id := 1; id <= 4; id++ {
				assert.False(t, f.engine.Buzz(q, id))
			}
			assert.False(t, f.engine.Correct(q))
			assert.False(t, f.engine.Incorrect(q))
		})
	}
}

func TestQueueOrderedByBuzzTime(t *testing.T) {
	f := newEngineFixture(t, 4, 6)
	q := question(100)
	base := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	require.True(t, f.engine.BuzzAt(q, 1, base))
	require.True(t, f.engine.BuzzAt(q, 3, base.Add(30*time.Millisecond)))
	require.True(t, f.engine.BuzzAt(q, 2, base.Add(10*time.Millisecond)))
	require.True(t, f.engine.BuzzAt(q, 4, base.Add(10*time.Millisecond)))

	var order []int
	for i, e := range q.Queue() {
		order = append(order, e.PlayerID)
		assert.Equal(t, i+1, e.Position)
	}
	assert.Equal(t, []int{1, 2, 4, 3}, order)

	var promoted []int
	for {
		id, ok := q.Active()
		if !ok {
			break
		}
		promoted = append(promoted, id)
		f.engine.Incorrect(q)
	}
	assert.Equal(t, []int{1, 2, 4, 3}, promoted)
	assert.Equal(t, ResolvedIncorrect, q.Resolution())
}

func TestAnsweringEntryStaysInFront(t *testing.T) {
	f := newEngineFixture(t, 3, 6)
	q := question(100)
	base := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	require.True(t, f.engine.BuzzAt(q, 2, base))
	// A buzz stamped earlier than the current contender waits behind them.
	require.True(t, f.engine.BuzzAt(q, 3, base.Add(-time.Second)))

	queue := q.Queue()
	require.Len(t, queue, 2)
	assert.Equal(t, 2, queue[0].PlayerID)
	assert.Equal(t, StatusAnswering, queue[0].Status)
	assert.Equal(t, 3, queue[1].PlayerID)
}

func TestEliminatedNeverAnswersAgain(t *testing.T) {
	f := newEngineFixture(t, 3, 6)
	q := question(100)

	f.engine.Buzz(q, 1)
	f.engine.Buzz(q, 2)
	f.engine.Incorrect(q)
	f.engine.Buzz(q, 1)
	f.engine.Buzz(q, 3)
	f.engine.Incorrect(q)

	active, ok := q.Active()
	require.True(t, ok)
	assert.Equal(t, 3, active)
	for _, e := range q.Queue() {
		assert.NotEqual(t, 1, e.PlayerID)
		assert.NotEqual(t, 2, e.PlayerID)
	}
}

func TestAtMostOneAnswering(t *testing.T) {
	f := newEngineFixture(t, 8, 2)
	q := question(400)

	steps := []func(){
		func() { f.engine.Buzz(q, 3) },
		func() { f.engine.Buzz(q, 5) },
		func() { f.engine.Buzz(q, 1) },
		func() { f.engine.Tick(q) },
		func() { f.engine.Incorrect(q) },
		func() { f.engine.Buzz(q, 8) },
		func() { f.engine.Tick(q) },
		func() { f.engine.Tick(q) },
		func() { f.engine.Purge(q, []int{1}) },
		func() { f.engine.Incorrect(q) },
		func() { f.engine.Buzz(q, 2) },
		func() { f.engine.Correct(q) },
		func() { f.engine.Buzz(q, 4) },
	}
	for i, step := range steps {
		step()
		ids := answering(q)
		require.LessOrEqual(t, len(ids), 1, "step %d", i)
		if len(ids) == 1 && f.timer.Running() {
			assert.Equal(t, ids[0], f.timer.PlayerID(), "step %d", i)
		}
	}
}

func TestResetRoundTripAfterMixedScoring(t *testing.T) {
	f := newEngineFixture(t, 4, 6)
	for id, s := range map[int]int{1: 500, 2: -200, 3: 0, 4: 1200} {
		f.roster.Get(id).Score = s
	}
	q := question(400)

	f.engine.Buzz(q, 2)
	f.engine.Buzz(q, 4)
	f.engine.Buzz(q, 1)
	f.engine.Incorrect(q)
	f.engine.Incorrect(q)
	f.engine.Correct(q)
	require.Len(t, q.ScoreChanges(), 3)

	f.engine.Reset(q)

	assert.Equal(t, 500, f.score(1))
	assert.Equal(t, -200, f.score(2))
	assert.Equal(t, 0, f.score(3))
	assert.Equal(t, 1200, f.score(4))

	// Resetting twice is harmless.
	f.engine.Reset(q)
	assert.Equal(t, 500, f.score(1))
}

func TestPurgeActivePromotesNext(t *testing.T) {
	f := newEngineFixture(t, 4, 6)
	q := question(100)

	f.engine.Buzz(q, 4)
	f.engine.Buzz(q, 2)
	f.roster.Resize(3)
	f.engine.Purge(q, []int{4})

	active, ok := q.Active()
	require.True(t, ok)
	assert.Equal(t, 2, active)
	assert.Equal(t, 2, f.timer.PlayerID())
	assert.Len(t, q.Queue(), 1)
	assert.Equal(t, 1, q.Queue()[0].Position)
}

func TestPurgeLastContenderLeavesQuestionOpen(t *testing.T) {
	f := newEngineFixture(t, 2, 6)
	q := question(100)

	f.engine.Buzz(q, 2)
	f.roster.Resize(1)
	f.engine.Purge(q, []int{2})

	assert.True(t, q.Available())
	assert.Empty(t, q.Queue())
	assert.False(t, f.timer.Running())
	assert.True(t, f.engine.Buzz(q, 1))
}
