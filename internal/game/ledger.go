package game

import "time"

// ScoreChange is one entry of a question's undo ledger.
type ScoreChange struct {
	PlayerID int       `json:"playerId"`
	Delta    int       `json:"delta"`
	At       time.Time `json:"timestamp"`
}

// Ledger records every score delta applied on behalf of one question so the
// question can be reset without drift.
type Ledger struct {
	changes []ScoreChange
}

// Apply adds delta to the player's score and appends the change.
// Unknown players are ignored.
func (l *Ledger) Apply(roster *Roster, playerID, delta int, at time.Time) bool {
	p := roster.Get(playerID)
	if p == nil {
		return false
	}
	p.Score += delta
	l.changes = append(l.changes, ScoreChange{PlayerID: playerID, Delta: delta, At: at})
	return true
}

// UndoAll reverts every recorded change, newest first, and empties the ledger.
// Players no longer on the roster are skipped.
func (l *Ledger) UndoAll(roster *Roster) {
	for i := len(l.changes) - 1; i >= 0; i-- {
		c := l.changes[i]
		if p := roster.Get(c.PlayerID); p != nil {
			p.Score -= c.Delta
		}
	}
	l.changes = nil
}

// drop forgets the changes of players that left the roster so a later undo
// cannot reach a new player reusing the id.
func (l *Ledger) drop(ids map[int]bool) {
	kept := l.changes[:0]
	for _, c := range l.changes {
		if !ids[c.PlayerID] {
			kept = append(kept, c)
		}
	}
	l.changes = kept
}

// Changes returns a copy of the ledger entries in application order.
func (l *Ledger) Changes() []ScoreChange {
	out := make([]ScoreChange, len(l.changes))
	copy(out, l.changes)
	return out
}

// Len returns the number of recorded changes.
func (l *Ledger) Len() int {
	return len(l.changes)
}

// Net returns the sum of deltas recorded for a player.
func (l *Ledger) Net(playerID int) int {
	total := 0
	for _, c := range l.changes {
		if c.PlayerID == playerID {
			total += c.Delta
		}
	}
	return total
}
