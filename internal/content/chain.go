package content

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"jeopardy-board/internal/domain"
)

// Loader fetches a fully resolved round from one content source.
type Loader interface {
	LoadRound(ctx context.Context, roundID string) (domain.Round, error)
}

// Lister is implemented by loaders that can enumerate their rounds.
type Lister interface {
	ListRounds(ctx context.Context) ([]domain.RoundMetadata, error)
}

// Source is a named loader in a Chain.
type Source struct {
	Name   string
	Loader Loader
}

// Chain asks each source in order and returns the first round that passes
// validation. Failures fall through to the next source.
type Chain struct {
	sources []Source
	log     zerolog.Logger
}

func NewChain(log zerolog.Logger, sources ...Source) *Chain {
	return &Chain{sources: sources, log: log}
}

func (c *Chain) LoadRound(ctx context.Context, roundID string) (domain.Round, error) {
	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return domain.Round{}, err
		}
		round, err := src.Loader.LoadRound(ctx, roundID)
		if err != nil {
			c.log.Debug().Err(err).Str("source", src.Name).Str("round", roundID).Msg("content source failed")
			continue
		}
		if round.ID == "" {
			round.ID = roundID
		}
		warnings, err := Validate(round)
		if err != nil {
			c.log.Warn().Err(err).Str("source", src.Name).Str("round", roundID).Msg("round rejected")
			continue
		}
		for _, w := range warnings {
			c.log.Debug().Str("source", src.Name).Str("round", roundID).Msg(w)
		}
		return Normalize(round), nil
	}
	return domain.Round{}, fmt.Errorf("%w: %s", domain.ErrRoundNotFound, roundID)
}

// ListRounds merges the round lists of every source that can list, keeping
// the first entry per id.
func (c *Chain) ListRounds(ctx context.Context) ([]domain.RoundMetadata, error) {
	seen := make(map[string]bool)
	var out []domain.RoundMetadata
	var errs []error
	listed := false
	for _, src := range c.sources {
		lister, ok := src.Loader.(Lister)
		if !ok {
			continue
		}
		rounds, err := lister.ListRounds(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		listed = true
		for _, r := range rounds {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	if !listed && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Normalize fills in values and category names and rewrites image
// references relative to the round: <round>/<category path or name>/<image>.
func Normalize(round domain.Round) domain.Round {
	out := round
	out.Categories = make([]domain.Category, len(round.Categories))
	for ci, cat := range round.Categories {
		dir := cat.Path
		if dir == "" {
			dir = cat.Name
		}
		qs := make([]domain.Question, len(cat.Questions))
		for qi, q := range cat.Questions {
			if q.Value <= 0 {
				q.Value = (qi + 1) * 100
			}
			if q.Category == "" {
				q.Category = cat.Name
			}
			if q.Image != "" {
				q.Image = imagePath(round.ID, dir, q.Image)
			}
			qs[qi] = q
		}
		cat.Questions = qs
		out.Categories[ci] = cat
	}
	return out
}

func imagePath(roundID, dir, image string) string {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	prefix := path.Join(roundID, dir) + "/"
	if strings.HasPrefix(image, prefix) {
		return image
	}
	return prefix + image
}
