package files

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"jeopardy-board/internal/domain"
)

// roundFile is <round>/round.json: the round header and its category directories.
type roundFile struct {
	Name       string   `json:"name"`
	Comment    string   `json:"comment"`
	Language   string   `json:"language"`
	Difficulty string   `json:"difficulty"`
	Author     string   `json:"author"`
	Categories []string `json:"categories"`
}

// RoundLoader reads bundled rounds laid out as
// <round>/round.json and <round>/<category>/cat.json.
type RoundLoader struct {
	fsys fs.FS
}

func NewRoundLoader(fsys fs.FS) *RoundLoader {
	return &RoundLoader{fsys: fsys}
}

func (l *RoundLoader) LoadRound(ctx context.Context, roundID string) (domain.Round, error) {
	if !fs.ValidPath(roundID) || roundID == "." {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	header, err := l.readRound(roundID)
	if err != nil {
		return domain.Round{}, err
	}

	round := domain.Round{
		ID:         roundID,
		Name:       header.Name,
		Comment:    header.Comment,
		Categories: make([]domain.Category, 0, len(header.Categories)),
	}
	for _, dir := range header.Categories {
		if err := ctx.Err(); err != nil {
			return domain.Round{}, err
		}
		var cat domain.Category
		if err := l.readJSON(path.Join(roundID, dir, "cat.json"), &cat); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return domain.Round{}, fmt.Errorf("%w: %s/%s", domain.ErrCategoryNotFound, roundID, dir)
			}
			return domain.Round{}, err
		}
		if cat.Path == "" {
			cat.Path = dir
		}
		if cat.Name == "" {
			cat.Name = dir
		}
		round.Categories = append(round.Categories, cat)
	}
	return round, nil
}

// ListRounds lists every top-level directory carrying a round.json.
func (l *RoundLoader) ListRounds(_ context.Context) ([]domain.RoundMetadata, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	var out []domain.RoundMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		header, err := l.readRound(entry.Name())
		if err != nil {
			continue
		}
		name := header.Name
		if name == "" {
			name = entry.Name()
		}
		out = append(out, domain.RoundMetadata{
			ID:         entry.Name(),
			Name:       name,
			Language:   header.Language,
			Difficulty: header.Difficulty,
			Categories: header.Categories,
			Author:     header.Author,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *RoundLoader) readRound(roundID string) (roundFile, error) {
	var header roundFile
	if err := l.readJSON(path.Join(roundID, "round.json"), &header); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return header, domain.ErrRoundNotFound
		}
		return header, err
	}
	return header, nil
}

func (l *RoundLoader) readJSON(name string, v any) error {
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
