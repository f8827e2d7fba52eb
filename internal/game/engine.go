package game

import (
	"time"

	"github.com/rs/zerolog"
)

// Engine arbitrates buzzes for one question at a time and applies scoring.
// Every operation is a synchronous state mutation; invalid input is rejected
// by returning false and leaves all state untouched.
type Engine struct {
	roster        *Roster
	timer         *AnswerTimer
	answerSeconds int
	now           func() time.Time
	emit          func(Event)
	log           zerolog.Logger
}

// NewEngine wires the engine to a roster and the single answer timer it owns.
func NewEngine(roster *Roster, timer *AnswerTimer, answerSeconds int, now func() time.Time, emit func(Event), log zerolog.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	if emit == nil {
		emit = func(Event) {}
	}
	if answerSeconds <= 0 {
		answerSeconds = 6
	}
	return &Engine{
		roster:        roster,
		timer:         timer,
		answerSeconds: answerSeconds,
		now:           now,
		emit:          emit,
		log:           log,
	}
}

// Buzz registers a buzz stamped with the engine clock.
func (e *Engine) Buzz(q *Question, playerID int) bool {
	return e.BuzzAt(q, playerID, e.now())
}

// BuzzAt registers a buzz with an explicit timestamp. It rejects buzzes on a
// resolved question, from players off the roster, and repeat buzzes.
func (e *Engine) BuzzAt(q *Question, playerID int, at time.Time) bool {
	switch {
	case q.QueueResolved():
		e.log.Debug().Int("player", playerID).Msg("buzz rejected: question resolved")
		return false
	case !e.roster.Has(playerID):
		e.log.Debug().Int("player", playerID).Msg("buzz rejected: unknown player")
		return false
	case q.inQueue(playerID) || q.wasEliminated(playerID):
		e.log.Debug().Int("player", playerID).Msg("buzz rejected: already buzzed")
		return false
	}

	q.enqueue(playerID, at)
	if _, ok := q.Active(); !ok {
		if id, ok := q.promoteNext(); ok {
			e.startCountdown(id)
		}
	}
	e.log.Debug().Int("player", playerID).Int("queue", len(q.queue)).Msg("buzz accepted")
	e.emit(Event{Type: EventBuzzAccepted, PlayerID: playerID, At: at})
	return true
}

// Correct awards the question value to the answering player and resolves the
// question. Without an answering player it does nothing.
func (e *Engine) Correct(q *Question) bool {
	if q.QueueResolved() {
		return false
	}
	id, ok := q.Active()
	if !ok {
		return false
	}
	e.stopCountdown(id)

	now := e.now()
	value := q.Value()
	q.ledger.Apply(e.roster, id, value, now)
	for i := range q.queue {
		if q.queue[i].PlayerID == id {
			q.queue[i].Status = StatusCompleted
		}
	}
	q.resolve(ResolvedCorrect, id)

	e.log.Debug().Int("player", id).Int("delta", value).Msg("answer correct")
	e.emit(Event{Type: EventCorrect, PlayerID: id, Delta: value, At: now})
	e.emit(Event{Type: EventQuestionResolved, PlayerID: id, Resolution: ResolvedCorrect, At: now})
	return true
}

// Incorrect deducts the question value from the answering player, removes
// them from the queue for good and moves on to the next contender.
func (e *Engine) Incorrect(q *Question) bool {
	if q.QueueResolved() {
		return false
	}
	id, ok := q.Active()
	if !ok {
		return false
	}
	e.stopCountdown(id)

	now := e.now()
	value := q.Value()
	q.ledger.Apply(e.roster, id, -value, now)
	q.hadIncorrect = true
	q.removeActive()

	e.log.Debug().Int("player", id).Int("delta", -value).Msg("answer incorrect")
	e.emit(Event{Type: EventIncorrect, PlayerID: id, Delta: -value, At: now})
	e.AdvanceQueue(q)
	return true
}

// AdvanceQueue promotes the next waiting contender, or ends the question when
// nobody is left in line.
func (e *Engine) AdvanceQueue(q *Question) {
	if q.QueueResolved() {
		return
	}
	if _, ok := q.Active(); ok {
		return
	}
	if id, ok := q.promoteNext(); ok {
		e.startCountdown(id)
		return
	}
	e.finishUnresolved(q)
}

// Timeout flags the answering player once their time has run out. The player
// keeps answering until the host judges the answer.
func (e *Engine) Timeout(q *Question) {
	id, ok := q.Active()
	if !ok {
		return
	}
	if !q.timedOut(id) {
		q.timeouts = append(q.timeouts, id)
	}
	e.log.Debug().Int("player", id).Msg("answer time expired")
	e.emit(Event{Type: EventTimeout, PlayerID: id, At: e.now()})
}

// Tick advances the answer countdown of the open question by one step.
func (e *Engine) Tick(q *Question) {
	if !e.timer.Running() {
		return
	}
	remaining, expired := e.timer.Tick()
	if p := e.roster.Get(e.timer.PlayerID()); p != nil {
		p.setRemaining(remaining)
	}
	if expired {
		e.Timeout(q)
	}
}

// NoOneKnows ends the question without a correct answer, whether or not
// anybody buzzed.
func (e *Engine) NoOneKnows(q *Question) bool {
	if q.QueueResolved() {
		return false
	}
	if id, ok := q.Active(); ok {
		e.stopCountdown(id)
	}
	e.finishUnresolved(q)
	return true
}

// Reset reverts every score change of the question and makes it available
// again with no buzz state.
func (e *Engine) Reset(q *Question) {
	if id, ok := q.Active(); ok {
		e.stopCountdown(id)
	}
	q.ledger.UndoAll(e.roster)
	q.clear()
	e.log.Debug().Str("category", q.Content.Category).Int("value", q.Value()).Msg("question reset")
	e.emit(Event{Type: EventQuestionReset, At: e.now()})
}

// Purge removes players that left the roster from the question. If the
// answering player was removed, the next waiting contender takes over; an
// emptied queue leaves the question open for new buzzes.
func (e *Engine) Purge(q *Question, removed []int) {
	if len(removed) == 0 {
		return
	}
	ids := make(map[int]bool, len(removed))
	for _, id := range removed {
		ids[id] = true
	}
	if q.purge(ids) {
		if e.timer.Running() && ids[e.timer.PlayerID()] {
			e.timer.Stop()
		}
		if q.QueueResolved() {
			return
		}
		if id, ok := q.promoteNext(); ok {
			e.startCountdown(id)
		}
	}
}

func (e *Engine) finishUnresolved(q *Question) {
	r := ResolvedUnanswered
	if q.hadIncorrect {
		r = ResolvedIncorrect
	}
	q.resolve(r, 0)
	e.log.Debug().Str("resolution", r.String()).Msg("question ended without correct answer")
	e.emit(Event{Type: EventQuestionResolved, Resolution: r, At: e.now()})
}

func (e *Engine) startCountdown(playerID int) {
	e.timer.Stop()
	e.timer.Start(playerID, e.answerSeconds)
	if p := e.roster.Get(playerID); p != nil {
		p.setRemaining(e.answerSeconds)
	}
}

func (e *Engine) stopCountdown(playerID int) {
	e.timer.Stop()
	if p := e.roster.Get(playerID); p != nil {
		p.RemainingTime = nil
	}
}
