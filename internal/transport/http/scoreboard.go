package http

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"jeopardy-board/internal/game"
)

const scoreSheet = "Scores"

// writeScoreboard renders the players ranked by score as an xlsx workbook.
func writeScoreboard(w io.Writer, state game.Snapshot) error {
	players := make([]game.PlayerView, len(state.Players))
	copy(players, state.Players)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Score > players[j].Score })

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scoreSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(scoreSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	if err := sw.SetRow("A1", []interface{}{"Rank", "Player", "Score", "Selection buzzes"}); err != nil {
		return err
	}
	rank := 0
	for i, p := range players {
		if i == 0 || p.Score != players[i-1].Score {
			rank = i + 1
		}
		row := []interface{}{rank, sanitizeForExcel(p.Name), p.Score, p.SelectionBuzzCount}
		if err := sw.SetRow(fmt.Sprintf("A%d", i+2), row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// sanitizeForExcel keeps player names from being evaluated as formulas.
func sanitizeForExcel(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
