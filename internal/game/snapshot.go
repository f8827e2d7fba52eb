package game

import "time"

// CellStatus is how a board cell should be rendered.
type CellStatus string

const (
	CellAvailable  CellStatus = "available"
	CellSelected   CellStatus = "selected"
	CellActive     CellStatus = "active"
	CellCorrect    CellStatus = "correct"
	CellIncorrect  CellStatus = "incorrect"
	CellUnanswered CellStatus = "unanswered"
)

// Cell addresses a question on the board.
type Cell struct {
	Category int `json:"category"`
	Index    int `json:"index"`
}

// PlayerView is a read-only copy of a player.
type PlayerView struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Button             string `json:"btn"`
	BgColor            string `json:"bgcolor"`
	FgColor            string `json:"fgcolor"`
	Key                string `json:"key"`
	Score              int    `json:"score"`
	RemainingTime      *int   `json:"remainingTime"`
	Highlighted        bool   `json:"highlighted"`
	SelectionBuzzCount int    `json:"selectionBuzzCount"`
	Active             bool   `json:"active"`
}

// CellView is one board cell in a snapshot.
type CellView struct {
	Value  int        `json:"value"`
	Status CellStatus `json:"status"`
	Winner int        `json:"winner,omitempty"`
}

// CategoryView is one board column in a snapshot.
type CategoryView struct {
	Name  string     `json:"name"`
	Cells []CellView `json:"cells"`
}

// QuestionView is the open question with its arbitration state.
type QuestionView struct {
	Cell                Cell          `json:"cell"`
	Category            string        `json:"category"`
	Prompt              string        `json:"question"`
	Answer              string        `json:"answer,omitempty"`
	Image               string        `json:"image,omitempty"`
	Value               int           `json:"value"`
	Available           bool          `json:"available"`
	Resolution          Resolution    `json:"resolution"`
	Winner              int           `json:"winner,omitempty"`
	HadIncorrectAnswers bool          `json:"hadIncorrectAnswers"`
	ActivePlayer        int           `json:"activePlayer,omitempty"`
	Queue               []BuzzEntry   `json:"buzzQueue"`
	Eliminated          []BuzzEntry   `json:"eliminated"`
	TimeoutPlayers      []int         `json:"timeoutPlayers"`
	ScoreChanges        []ScoreChange `json:"scoreChanges"`
}

// TimerView exposes the answer countdown.
type TimerView struct {
	State     TimerState `json:"state"`
	PlayerID  int        `json:"playerId,omitempty"`
	Remaining int        `json:"remaining"`
}

// Snapshot is a consistent read-only view of a session.
type Snapshot struct {
	SessionID       string         `json:"sessionId"`
	Version         uint64         `json:"version"`
	Phase           Phase          `json:"phase"`
	RoundID         string         `json:"roundId,omitempty"`
	RoundName       string         `json:"roundName,omitempty"`
	Players         []PlayerView   `json:"players"`
	Board           []CategoryView `json:"board"`
	Open            *QuestionView  `json:"open,omitempty"`
	CouldBeCanceled bool           `json:"couldBeCanceled"`
	Timer           TimerView      `json:"timer"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func cellStatus(q *Question, open bool) CellStatus {
	switch q.Resolution() {
	case ResolvedCorrect:
		return CellCorrect
	case ResolvedIncorrect:
		return CellIncorrect
	case ResolvedUnanswered:
		return CellUnanswered
	}
	if _, ok := q.Active(); ok {
		return CellActive
	}
	if open {
		return CellSelected
	}
	return CellAvailable
}

func playerView(p *Player, activeID int) PlayerView {
	v := PlayerView{
		ID:                 p.ID,
		Name:               p.Name,
		Button:             p.Color.Button,
		BgColor:            p.Color.BgColor,
		FgColor:            p.Color.FgColor,
		Key:                p.Color.Key,
		Score:              p.Score,
		Highlighted:        p.Highlighted,
		SelectionBuzzCount: p.SelectionBuzzCount,
		Active:             p.ID == activeID,
	}
	if p.RemainingTime != nil {
		r := *p.RemainingTime
		v.RemainingTime = &r
	}
	return v
}

func questionView(q *Question, cell Cell) *QuestionView {
	v := &QuestionView{
		Cell:                cell,
		Category:            q.Content.Category,
		Prompt:              q.Content.Prompt,
		Answer:              q.Content.Answer,
		Image:               q.Content.Image,
		Value:               q.Value(),
		Available:           q.Available(),
		Resolution:          q.Resolution(),
		HadIncorrectAnswers: q.HadIncorrectAnswers(),
		Queue:               q.Queue(),
		Eliminated:          q.Eliminated(),
		TimeoutPlayers:      q.TimeoutPlayers(),
		ScoreChanges:        q.ScoreChanges(),
	}
	if id, ok := q.Winner(); ok {
		v.Winner = id
	}
	if id, ok := q.Active(); ok {
		v.ActivePlayer = id
	}
	return v
}
