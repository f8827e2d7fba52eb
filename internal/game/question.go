package game

import (
	"sort"
	"time"

	"jeopardy-board/internal/domain"
)

// Resolution is the terminal outcome of a question. The zero value means the
// question is still open for buzzing.
type Resolution int

const (
	Unresolved Resolution = iota
	ResolvedCorrect
	ResolvedIncorrect
	ResolvedUnanswered
)

func (r Resolution) String() string {
	switch r {
	case ResolvedCorrect:
		return "someone-correct"
	case ResolvedIncorrect:
		return "all-incorrect"
	case ResolvedUnanswered:
		return "unanswered"
	default:
		return "none"
	}
}

// MarshalText encodes the resolution by name.
func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// EntryStatus is the state of one buzz queue entry.
type EntryStatus string

const (
	StatusWaiting    EntryStatus = "waiting"
	StatusAnswering  EntryStatus = "answering"
	StatusCompleted  EntryStatus = "completed"
	StatusEliminated EntryStatus = "eliminated"
)

// BuzzEntry is a player's place in line for one question.
type BuzzEntry struct {
	PlayerID int         `json:"playerId"`
	BuzzedAt time.Time   `json:"buzzTimestamp"`
	Position int         `json:"position"`
	Status   EntryStatus `json:"status"`

	seq uint64
}

// Question is one board cell: read-only content plus the live arbitration
// state while it is open.
type Question struct {
	Content domain.Question

	resolution   Resolution
	winner       int
	hadIncorrect bool

	queue      []BuzzEntry
	eliminated []BuzzEntry
	timeouts   []int
	ledger     Ledger
	seq        uint64
}

// NewQuestion wraps content as a fresh, available cell.
func NewQuestion(content domain.Question) *Question {
	return &Question{Content: content}
}

// Value is the point value of the question.
func (q *Question) Value() int { return q.Content.Value }

// Available reports whether the question can still be answered.
func (q *Question) Available() bool { return q.resolution == Unresolved }

// QueueResolved reports whether the question reached a terminal state.
func (q *Question) QueueResolved() bool { return q.resolution != Unresolved }

// Resolution returns the terminal outcome, or Unresolved.
func (q *Question) Resolution() Resolution { return q.resolution }

// HadIncorrectAnswers reports whether any contender answered wrong.
func (q *Question) HadIncorrectAnswers() bool { return q.hadIncorrect }

// Winner returns the player who answered correctly, if any.
func (q *Question) Winner() (int, bool) {
	if q.resolution != ResolvedCorrect {
		return 0, false
	}
	return q.winner, true
}

// Queue returns a copy of the buzz queue in priority order.
func (q *Question) Queue() []BuzzEntry {
	out := make([]BuzzEntry, len(q.queue))
	copy(out, q.queue)
	return out
}

// Eliminated returns the entries removed after a wrong answer, in order.
func (q *Question) Eliminated() []BuzzEntry {
	out := make([]BuzzEntry, len(q.eliminated))
	copy(out, q.eliminated)
	return out
}

// TimeoutPlayers returns players whose answer time ran out on this question.
func (q *Question) TimeoutPlayers() []int {
	out := make([]int, len(q.timeouts))
	copy(out, q.timeouts)
	return out
}

// ScoreChanges returns the undo ledger of this question.
func (q *Question) ScoreChanges() []ScoreChange {
	return q.ledger.Changes()
}

// Active returns the player currently answering.
func (q *Question) Active() (int, bool) {
	for _, e := range q.queue {
		if e.Status == StatusAnswering {
			return e.PlayerID, true
		}
	}
	return 0, false
}

// HasBuzzState reports whether any arbitration state exists.
func (q *Question) HasBuzzState() bool {
	return len(q.queue) > 0 || len(q.eliminated) > 0 || len(q.timeouts) > 0 || q.ledger.Len() > 0
}

func (q *Question) inQueue(playerID int) bool {
	for _, e := range q.queue {
		if e.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (q *Question) wasEliminated(playerID int) bool {
	for _, e := range q.eliminated {
		if e.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (q *Question) timedOut(playerID int) bool {
	for _, id := range q.timeouts {
		if id == playerID {
			return true
		}
	}
	return false
}

// enqueue inserts a buzz. The answering entry stays in front; waiting entries
// are kept ordered by buzz time with arrival order breaking ties.
func (q *Question) enqueue(playerID int, at time.Time) {
	q.seq++
	q.queue = append(q.queue, BuzzEntry{
		PlayerID: playerID,
		BuzzedAt: at,
		Status:   StatusWaiting,
		seq:      q.seq,
	})
	sort.SliceStable(q.queue, func(i, j int) bool {
		a, b := q.queue[i], q.queue[j]
		if (a.Status == StatusAnswering) != (b.Status == StatusAnswering) {
			return a.Status == StatusAnswering
		}
		if !a.BuzzedAt.Equal(b.BuzzedAt) {
			return a.BuzzedAt.Before(b.BuzzedAt)
		}
		return a.seq < b.seq
	})
	q.renumber()
}

// removeActive drops the answering entry and records it as eliminated.
func (q *Question) removeActive() (BuzzEntry, bool) {
	for i, e := range q.queue {
		if e.Status != StatusAnswering {
			continue
		}
		q.queue = append(q.queue[:i], q.queue[i+1:]...)
		e.Status = StatusEliminated
		e.Position = 0
		q.eliminated = append(q.eliminated, e)
		q.renumber()
		return e, true
	}
	return BuzzEntry{}, false
}

// promoteNext turns the first waiting entry into the answering one.
func (q *Question) promoteNext() (int, bool) {
	for i := range q.queue {
		if q.queue[i].Status == StatusWaiting {
			q.queue[i].Status = StatusAnswering
			return q.queue[i].PlayerID, true
		}
	}
	return 0, false
}

// purge drops every reference to the given players. It reports whether the
// answering entry was among them.
func (q *Question) purge(ids map[int]bool) bool {
	activeRemoved := false
	kept := q.queue[:0]
	for _, e := range q.queue {
		if ids[e.PlayerID] {
			if e.Status == StatusAnswering {
				activeRemoved = true
			}
			continue
		}
		kept = append(kept, e)
	}
	q.queue = kept

	elim := q.eliminated[:0]
	for _, e := range q.eliminated {
		if !ids[e.PlayerID] {
			elim = append(elim, e)
		}
	}
	q.eliminated = elim

	timeouts := q.timeouts[:0]
	for _, id := range q.timeouts {
		if !ids[id] {
			timeouts = append(timeouts, id)
		}
	}
	q.timeouts = timeouts

	q.renumber()
	return activeRemoved
}

func (q *Question) resolve(r Resolution, winner int) {
	q.resolution = r
	q.winner = winner
	kept := q.queue[:0]
	for _, e := range q.queue {
		if e.Status == StatusCompleted {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	q.queue = kept
}

// clear restores the question to a fresh, available cell. The ledger must be
// undone by the caller first.
func (q *Question) clear() {
	q.resolution = Unresolved
	q.winner = 0
	q.hadIncorrect = false
	q.queue = nil
	q.eliminated = nil
	q.timeouts = nil
	q.ledger = Ledger{}
}

func (q *Question) renumber() {
	for i := range q.queue {
		q.queue[i].Position = i + 1
	}
}
