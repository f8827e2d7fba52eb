package game

import "time"

// EventType names a discrete notification for audio and visual feedback.
type EventType string

const (
	EventBuzzAccepted     EventType = "buzz_accepted"
	EventCorrect          EventType = "correct"
	EventIncorrect        EventType = "incorrect"
	EventTimeout          EventType = "timeout"
	EventQuestionResolved EventType = "question_resolved"
	EventQuestionReset    EventType = "question_reset"
	EventSelectionBuzz    EventType = "selection_buzz"
	EventSelectionPenalty EventType = "selection_penalty"
)

// Event is emitted once per accepted state change.
type Event struct {
	Type       EventType  `json:"type"`
	PlayerID   int        `json:"playerId,omitempty"`
	Delta      int        `json:"delta,omitempty"`
	Resolution Resolution `json:"resolution,omitempty"`
	At         time.Time  `json:"at"`
}

// Update is what subscribers receive: the events of one operation and the
// state after it.
type Update struct {
	Events []Event   `json:"events,omitempty"`
	State  *Snapshot `json:"state"`
}
