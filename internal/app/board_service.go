package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jeopardy-board/internal/domain"
	"jeopardy-board/internal/game"
)

// SessionRepository abstracts where live board sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Save(session *game.Controller)
	Get(sessionID string) (*game.Controller, bool)
	Touch(sessionID string)
	Delete(sessionID string)
}

// RoundRepository loads round content (from cache/backing stores).
type RoundRepository interface {
	GetRound(ctx context.Context, roundID string) (domain.Round, error)
	ListRounds(ctx context.Context) ([]domain.RoundMetadata, error)
}

// BoardService contains the board use cases: it owns session lifecycle and
// routes decoded input events into the session controller.
type BoardService struct {
	sessions SessionRepository
	rounds   RoundRepository
	opts     game.Options
	log      zerolog.Logger
}

func NewBoardService(sessions SessionRepository, rounds RoundRepository, opts game.Options) *BoardService {
	return &BoardService{
		sessions: sessions,
		rounds:   rounds,
		opts:     opts,
		log:      opts.Logger,
	}
}

// CreateSession starts a new board in round selection.
func (s *BoardService) CreateSession(_ context.Context) (game.Snapshot, error) {
	id := uuid.NewString()
	session := game.NewController(id, s.opts)
	s.sessions.Save(session)
	s.log.Info().Str("session", id).Msg("session created")
	return session.Snapshot(), nil
}

// CloseSession stops the session timer, disconnects subscribers and forgets it.
func (s *BoardService) CloseSession(_ context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.log.Info().Str("session", sessionID).Msg("session closed")
	return nil
}

// Snapshot returns the current state of a session.
func (s *BoardService) Snapshot(_ context.Context, sessionID string) (game.Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives state updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *BoardService) Subscribe(_ context.Context, sessionID string) (<-chan game.Update, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// ListRounds returns the rounds offered in round selection.
func (s *BoardService) ListRounds(ctx context.Context) ([]domain.RoundMetadata, error) {
	return s.rounds.ListRounds(ctx)
}

// LoadRound fetches round content and puts it on the session board.
func (s *BoardService) LoadRound(ctx context.Context, sessionID, roundID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	round, err := s.rounds.GetRound(ctx, roundID)
	if err != nil {
		return fmt.Errorf("load round %s: %w", roundID, err)
	}
	session.LoadRound(round)
	return nil
}

func (s *BoardService) OpenQuestion(_ context.Context, sessionID string, cell game.Cell) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.OpenQuestion(cell)
}

// Buzz reports whether the buzz entered the open question's queue. Rejected
// buzzes are not errors.
func (s *BoardService) Buzz(_ context.Context, sessionID string, playerID int) (bool, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	return session.Buzz(playerID), nil
}

func (s *BoardService) HostAction(_ context.Context, sessionID string, action game.HostAction) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.HostAction(action)
}

func (s *BoardService) ResetQuestion(_ context.Context, sessionID string, cell game.Cell) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.ResetQuestion(cell)
}

func (s *BoardService) SetPlayerCount(_ context.Context, sessionID string, count int) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.SetPlayerCount(count)
}

func (s *BoardService) Rename(_ context.Context, sessionID string, playerID int, name string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.Rename(playerID, name)
}

func (s *BoardService) AdjustScore(_ context.Context, sessionID string, playerID, delta int) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.AdjustScore(playerID, delta)
}

func (s *BoardService) session(sessionID string) (*game.Controller, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.sessions.Touch(sessionID)
	return session, nil
}
