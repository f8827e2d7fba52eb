package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a board session has not been created.
	ErrSessionNotFound = errors.New("board session not found")
	// ErrRoundNotFound indicates no content loader could provide the round.
	ErrRoundNotFound = errors.New("round not found")
	// ErrCategoryNotFound indicates a round references category content that is missing.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidRound indicates round content failed validation.
	ErrInvalidRound = errors.New("invalid round content")
	// ErrNoRoundLoaded is returned for board actions while the session is in round selection.
	ErrNoRoundLoaded = errors.New("no round loaded")
	// ErrQuestionNotFound indicates board coordinates outside the loaded round.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionUnavailable is returned when opening a cell that was already resolved.
	ErrQuestionUnavailable = errors.New("question already resolved")
	// ErrQuestionOpen is returned when a second question is opened on top of another.
	ErrQuestionOpen = errors.New("another question is open")
	// ErrNoQuestionOpen is returned for host actions that need an open question.
	ErrNoQuestionOpen = errors.New("no question open")
	// ErrCannotCancel is returned when the host closes a question that already has buzzes.
	ErrCannotCancel = errors.New("question can no longer be canceled")
	// ErrInvalidPlayerCount rejects player counts outside 1..8.
	ErrInvalidPlayerCount = errors.New("player count must be between 1 and 8")
	// ErrUnknownPlayer is returned for roster edits that name a missing player.
	ErrUnknownPlayer = errors.New("unknown player")
)
