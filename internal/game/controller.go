package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jeopardy-board/internal/domain"
)

// Phase is the round-level state of a session.
type Phase string

const (
	PhaseRoundSelection Phase = "round_selection"
	PhaseBoard          Phase = "board"
	PhaseQuestionOpen   Phase = "question_open"
)

// HostAction is a logical host button.
type HostAction string

const (
	ActionCorrect       HostAction = "correct"
	ActionIncorrect     HostAction = "incorrect"
	ActionNoOneKnows    HostAction = "noOneKnows"
	ActionClose         HostAction = "close"
	ActionResetQuestion HostAction = "resetQuestion"
	ActionResetScores   HostAction = "resetScores"
	ActionBackToRounds  HostAction = "backToRounds"
)

// Options configures a Controller. Zero values fall back to the defaults of
// the original board: six seconds to answer, four players.
type Options struct {
	AnswerTimeout      time.Duration
	Players            int
	MaxSelectionBuzzes int
	ScoreIncrement     int
	Highlight          time.Duration
	TickInterval       time.Duration
	Now                func() time.Time
	Ticks              TickSource
	Logger             zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.AnswerTimeout <= 0 {
		o.AnswerTimeout = 6 * time.Second
	}
	if o.Players == 0 {
		o.Players = 4
	}
	if o.MaxSelectionBuzzes <= 0 {
		o.MaxSelectionBuzzes = 20
	}
	if o.ScoreIncrement <= 0 {
		o.ScoreIncrement = 100
	}
	if o.Highlight <= 0 {
		o.Highlight = 3 * time.Second
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Controller owns one board session: the roster, the loaded round, the open
// question and the single answer timer. All operations serialize on one
// mutex, including timer ticks, so every input event runs to completion
// before the next one is looked at.
type Controller struct {
	id   string
	opts Options
	now  func() time.Time
	log  zerolog.Logger

	mu          sync.Mutex
	roster      *Roster
	timer       *AnswerTimer
	engine      *Engine
	phase       Phase
	roundID     string
	roundName   string
	board       [][]*Question
	open        *Question
	openCell    Cell
	canCancel   bool
	pending     []Event
	version     uint64
	updatedAt   time.Time
	subscribers map[chan Update]struct{}
	closed      bool
}

// NewController creates a session in round selection with a default roster.
func NewController(id string, opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{
		id:          id,
		opts:        opts,
		now:         opts.Now,
		log:         opts.Logger.With().Str("session", id).Logger(),
		roster:      NewRoster(opts.Players),
		phase:       PhaseRoundSelection,
		subscribers: make(map[chan Update]struct{}),
	}
	c.updatedAt = c.now()
	var onTick func(uint64)
	if opts.Ticks != nil {
		onTick = c.tick
	}
	c.timer = NewAnswerTimer(opts.TickInterval, opts.Ticks, onTick)
	seconds := int((opts.AnswerTimeout + time.Second - 1) / time.Second)
	c.engine = NewEngine(c.roster, c.timer, seconds, c.now, c.record, c.log)
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// LoadRound builds a fresh board from round content and shows it.
func (c *Controller) LoadRound(round domain.Round) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer.Stop()
	c.clearRemaining()
	c.board = make([][]*Question, 0, len(round.Categories))
	for _, cat := range round.Categories {
		col := make([]*Question, 0, len(cat.Questions))
		for i, content := range cat.Questions {
			if content.Value <= 0 {
				content.Value = (i + 1) * 100
			}
			if content.Category == "" {
				content.Category = cat.Name
			}
			col = append(col, NewQuestion(content))
		}
		c.board = append(c.board, col)
	}
	c.roundID = round.ID
	c.roundName = round.Name
	c.open = nil
	c.canCancel = false
	c.phase = PhaseBoard
	c.roster.ResetSelectionBuzzes()
	c.log.Info().Str("round", round.ID).Int("categories", len(c.board)).Msg("round loaded")
	c.publishLocked()
}

// BackToRounds discards the board and returns to round selection.
func (c *Controller) BackToRounds() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backToRoundsLocked()
	c.publishLocked()
}

func (c *Controller) backToRoundsLocked() {
	c.timer.Stop()
	c.clearRemaining()
	c.board = nil
	c.roundID = ""
	c.roundName = ""
	c.open = nil
	c.canCancel = false
	c.phase = PhaseRoundSelection
}

// OpenQuestion shows a question. No buzz state exists until the first buzz.
func (c *Controller) OpenQuestion(cell Cell) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseRoundSelection {
		return domain.ErrNoRoundLoaded
	}
	if c.phase == PhaseQuestionOpen {
		return domain.ErrQuestionOpen
	}
	q, err := c.questionLocked(cell)
	if err != nil {
		return err
	}
	if !q.Available() {
		return domain.ErrQuestionUnavailable
	}
	c.open = q
	c.openCell = cell
	c.canCancel = true
	c.phase = PhaseQuestionOpen
	c.publishLocked()
	return nil
}

// CloseQuestion returns to the board. An unresolved question can only be
// closed before anyone buzzed; it then stays available and unscored.
func (c *Controller) CloseQuestion() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open == nil {
		return domain.ErrNoQuestionOpen
	}
	if c.open.Available() && !c.canCancel {
		return domain.ErrCannotCancel
	}
	c.timer.Stop()
	c.clearRemaining()
	c.open = nil
	c.canCancel = false
	c.phase = PhaseBoard
	c.publishLocked()
	return nil
}

// Buzz routes a player's buzz. With a question open it goes to the engine;
// on the board it counts as a selection buzz and only highlights the player.
// The result reports whether the buzz entered a buzz queue.
func (c *Controller) Buzz(playerID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open == nil {
		c.selectionBuzzLocked(playerID)
		return false
	}
	accepted := c.engine.Buzz(c.open, playerID)
	if accepted {
		c.canCancel = false
		c.publishLocked()
	}
	return accepted
}

func (c *Controller) selectionBuzzLocked(playerID int) {
	now := c.now()
	p, ok := c.roster.highlight(playerID, now.Add(c.opts.Highlight))
	if !ok {
		return
	}
	typ := EventSelectionBuzz
	if p.SelectionBuzzCount > c.opts.MaxSelectionBuzzes {
		typ = EventSelectionPenalty
	}
	c.record(Event{Type: typ, PlayerID: playerID, At: now})
	c.publishLocked()
	time.AfterFunc(c.opts.Highlight, c.expireHighlights)
}

func (c *Controller) expireHighlights() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.roster.expireHighlights(c.now()) {
		c.publishLocked()
	}
}

// Correct judges the active contender right.
func (c *Controller) Correct() bool {
	return c.judge(c.engine.Correct)
}

// Incorrect judges the active contender wrong.
func (c *Controller) Incorrect() bool {
	return c.judge(c.engine.Incorrect)
}

// NoOneKnows ends the open question without a correct answer.
func (c *Controller) NoOneKnows() bool {
	return c.judge(c.engine.NoOneKnows)
}

func (c *Controller) judge(fn func(*Question) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil {
		return false
	}
	if !fn(c.open) {
		return false
	}
	c.canCancel = false
	c.publishLocked()
	return true
}

// ResetOpenQuestion undoes all scoring of the open question and reopens it
// for buzzing.
func (c *Controller) ResetOpenQuestion() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil {
		return domain.ErrNoQuestionOpen
	}
	c.engine.Reset(c.open)
	c.canCancel = true
	c.publishLocked()
	return nil
}

// ResetQuestion undoes all scoring of any board cell and makes it available.
func (c *Controller) ResetQuestion(cell Cell) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseRoundSelection {
		return domain.ErrNoRoundLoaded
	}
	q, err := c.questionLocked(cell)
	if err != nil {
		return err
	}
	c.engine.Reset(q)
	if q == c.open {
		c.canCancel = true
	}
	c.publishLocked()
	return nil
}

// ResetScores zeroes all scores and selection buzz counters.
func (c *Controller) ResetScores() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster.ResetScores()
	c.publishLocked()
}

// SetPlayerCount changes the roster size. Without a round the roster is
// recreated; during a round existing players keep their scores and removed
// players are purged from the open question.
func (c *Controller) SetPlayerCount(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !ValidPlayerCount(n) {
		return domain.ErrInvalidPlayerCount
	}
	if c.phase == PhaseRoundSelection {
		c.roster.Reset(n)
		c.backToRoundsLocked()
		c.publishLocked()
		return nil
	}
	removed := c.roster.Resize(n)
	if c.open != nil {
		c.engine.Purge(c.open, removed)
	}
	if len(removed) > 0 {
		gone := make(map[int]bool, len(removed))
		for _, id := range removed {
			gone[id] = true
		}
		for _, col := range c.board {
			for _, q := range col {
				q.ledger.drop(gone)
			}
		}
	}
	c.log.Info().Int("players", n).Ints("removed", removed).Msg("player count changed")
	c.publishLocked()
	return nil
}

// Rename changes a player's display name.
func (c *Controller) Rename(playerID int, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.roster.Get(playerID)
	if p == nil {
		return domain.ErrUnknownPlayer
	}
	p.Name = name
	c.publishLocked()
	return nil
}

// AdjustScore applies a manual host correction outside any question ledger.
// A zero delta uses the configured increment.
func (c *Controller) AdjustScore(playerID, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.roster.Get(playerID)
	if p == nil {
		return domain.ErrUnknownPlayer
	}
	if delta == 0 {
		delta = c.opts.ScoreIncrement
	}
	p.Score += delta
	c.publishLocked()
	return nil
}

// HostAction dispatches a logical host button. Actions that do not apply in
// the current state are ignored.
func (c *Controller) HostAction(action HostAction) error {
	switch action {
	case ActionCorrect:
		c.Correct()
	case ActionIncorrect:
		c.Incorrect()
	case ActionNoOneKnows:
		c.NoOneKnows()
	case ActionClose:
		return c.CloseQuestion()
	case ActionResetQuestion:
		return c.ResetOpenQuestion()
	case ActionResetScores:
		c.ResetScores()
	case ActionBackToRounds:
		c.BackToRounds()
	}
	return nil
}

// Snapshot returns a consistent copy of the session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster.expireHighlights(c.now())
	return c.snapshotLocked()
}

// Subscribe returns a channel of updates, starting with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (c *Controller) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	c.mu.Lock()
	state := c.snapshotLocked()
	ch <- Update{State: &state}
	if c.closed {
		close(ch)
		c.mu.Unlock()
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the timer and disconnects all subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.timer.Stop()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

// tick is called by the timer goroutine once per interval.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.open == nil || gen != c.timer.Generation() || !c.timer.Running() {
		return
	}
	c.engine.Tick(c.open)
	c.roster.expireHighlights(c.now())
	c.publishLocked()
}

func (c *Controller) record(e Event) {
	c.pending = append(c.pending, e)
}

func (c *Controller) clearRemaining() {
	for _, p := range c.roster.players {
		p.RemainingTime = nil
	}
}

func (c *Controller) questionLocked(cell Cell) (*Question, error) {
	if cell.Category < 0 || cell.Category >= len(c.board) {
		return nil, domain.ErrQuestionNotFound
	}
	col := c.board[cell.Category]
	if cell.Index < 0 || cell.Index >= len(col) {
		return nil, domain.ErrQuestionNotFound
	}
	return col[cell.Index], nil
}

func (c *Controller) publishLocked() {
	c.version++
	c.updatedAt = c.now()
	events := c.pending
	c.pending = nil
	if c.closed || len(c.subscribers) == 0 {
		return
	}
	state := c.snapshotLocked()
	update := Update{Events: events, State: &state}
	for ch := range c.subscribers {
		select {
		case ch <- update:
		default:
			// Slow subscriber: drop its oldest update so the newest state gets through.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	activeID := 0
	if c.open != nil {
		activeID, _ = c.open.Active()
	}
	s := Snapshot{
		SessionID:       c.id,
		Version:         c.version,
		Phase:           c.phase,
		RoundID:         c.roundID,
		RoundName:       c.roundName,
		Players:         make([]PlayerView, 0, c.roster.Len()),
		Board:           make([]CategoryView, 0, len(c.board)),
		CouldBeCanceled: c.canCancel,
		Timer: TimerView{
			State:     c.timer.State(),
			PlayerID:  c.timer.PlayerID(),
			Remaining: c.timer.Remaining(),
		},
		UpdatedAt: c.updatedAt,
	}
	for _, p := range c.roster.players {
		s.Players = append(s.Players, playerView(p, activeID))
	}
	for _, col := range c.board {
		view := CategoryView{Cells: make([]CellView, 0, len(col))}
		for _, q := range col {
			if view.Name == "" {
				view.Name = q.Content.Category
			}
			cell := CellView{Value: q.Value(), Status: cellStatus(q, q == c.open)}
			if id, ok := q.Winner(); ok {
				cell.Winner = id
			}
			view.Cells = append(view.Cells, cell)
		}
		s.Board = append(s.Board, view)
	}
	if c.open != nil {
		s.Open = questionView(c.open, c.openCell)
	}
	return s
}
