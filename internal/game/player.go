package game

import (
	"time"

	"jeopardy-board/internal/domain"
)

// Player is one roster slot. Score and name survive question and round
// changes; the remaining fields are transient per-question state.
type Player struct {
	ID    int
	Name  string
	Color domain.PlayerColor
	Score int

	// RemainingTime is nil unless the player is the active contender.
	RemainingTime      *int
	Highlighted        bool
	SelectionBuzzCount int

	highlightUntil time.Time
}

func newPlayer(color domain.PlayerColor) *Player {
	return &Player{
		ID:    color.ID,
		Name:  color.Button,
		Color: color,
	}
}

func (p *Player) setRemaining(seconds int) {
	v := seconds
	p.RemainingTime = &v
}

// Roster is the ordered player registry of a session.
type Roster struct {
	players []*Player
}

// NewRoster creates count default players (clamped to 1..8).
func NewRoster(count int) *Roster {
	r := &Roster{}
	r.Reset(count)
	return r
}

// ValidPlayerCount reports whether n can be used as a roster size.
func ValidPlayerCount(n int) bool {
	return n >= 1 && n <= domain.MaxPlayers
}

// Reset recreates the roster wholesale; scores and names are lost.
func (r *Roster) Reset(count int) {
	count = clampCount(count)
	r.players = make([]*Player, 0, count)
	for i := 0; i < count; i++ {
		r.players = append(r.players, newPlayer(domain.PlayerPalette[i]))
	}
}

// Resize truncates or extends the roster, keeping existing players intact.
// It returns the ids of removed players.
func (r *Roster) Resize(count int) []int {
	count = clampCount(count)
	var removed []int
	if count < len(r.players) {
		for _, p := range r.players[count:] {
			removed = append(removed, p.ID)
		}
		r.players = r.players[:count]
		return removed
	}
	for i := len(r.players); i < count; i++ {
		r.players = append(r.players, newPlayer(domain.PlayerPalette[i]))
	}
	return nil
}

// Get returns the player with the given id, or nil.
func (r *Roster) Get(id int) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Has reports whether id is on the roster.
func (r *Roster) Has(id int) bool {
	return r.Get(id) != nil
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.players)
}

// Players returns the roster in id order. The slice is a copy; the players are not.
func (r *Roster) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// ResetScores zeroes every score and selection buzz counter.
func (r *Roster) ResetScores() {
	for _, p := range r.players {
		p.Score = 0
		p.SelectionBuzzCount = 0
	}
}

// ResetSelectionBuzzes zeroes selection buzz counters only.
func (r *Roster) ResetSelectionBuzzes() {
	for _, p := range r.players {
		p.SelectionBuzzCount = 0
	}
}

// highlight marks a player until the deadline and counts the selection buzz.
func (r *Roster) highlight(id int, until time.Time) (*Player, bool) {
	p := r.Get(id)
	if p == nil {
		return nil, false
	}
	p.Highlighted = true
	p.highlightUntil = until
	p.SelectionBuzzCount++
	return p, true
}

// expireHighlights clears highlights whose deadline has passed.
// It reports whether anything changed.
func (r *Roster) expireHighlights(now time.Time) bool {
	changed := false
	for _, p := range r.players {
		if p.Highlighted && !now.Before(p.highlightUntil) {
			p.Highlighted = false
			changed = true
		}
	}
	return changed
}

func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > domain.MaxPlayers {
		return domain.MaxPlayers
	}
	return n
}
