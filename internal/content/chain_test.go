package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"jeopardy-board/internal/content"
	"jeopardy-board/internal/domain"
)

type fakeLoader struct {
	rounds map[string]domain.Round
	list   []domain.RoundMetadata
	err    error
	calls  int
}

func (f *fakeLoader) LoadRound(_ context.Context, id string) (domain.Round, error) {
	f.calls++
	if f.err != nil {
		return domain.Round{}, f.err
	}
	r, ok := f.rounds[id]
	if !ok {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	return r, nil
}

func (f *fakeLoader) ListRounds(context.Context) ([]domain.RoundMetadata, error) {
	return f.list, f.err
}

func validRound(id string) domain.Round {
	return domain.Round{
		ID:   id,
		Name: "Round " + id,
		Categories: []domain.Category{
			{Name: "Flags", Path: "flags", Questions: []domain.Question{
				{Prompt: "Which flag?", Image: "ch.png"},
				{Prompt: "Which flag?", Image: "https://example.org/fr.png"},
			}},
			{Name: "Ports", Questions: []domain.Question{
				{Prompt: "SSH?", Answer: "22"},
				{Prompt: "HTTPS?", Answer: "443", Value: 1000},
			}},
		},
	}
}

func TestChainFallsThroughToNextSource(t *testing.T) {
	broken := &fakeLoader{err: errors.New("connection refused")}
	invalid := &fakeLoader{rounds: map[string]domain.Round{"r1": {ID: "r1"}}}
	files := &fakeLoader{rounds: map[string]domain.Round{"r1": validRound("r1")}}

	chain := content.NewChain(zerolog.Nop(),
		content.Source{Name: "postgres", Loader: broken},
		content.Source{Name: "remote", Loader: invalid},
		content.Source{Name: "files", Loader: files},
	)

	round, err := chain.LoadRound(context.Background(), "r1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if broken.calls != 1 || invalid.calls != 1 || files.calls != 1 {
		t.Fatalf("expected every source to be asked once, got %d/%d/%d", broken.calls, invalid.calls, files.calls)
	}

	flags := round.Categories[0].Questions
	if flags[0].Image != "r1/flags/ch.png" {
		t.Fatalf("expected image rewritten under category path, got %q", flags[0].Image)
	}
	if flags[1].Image != "https://example.org/fr.png" {
		t.Fatalf("absolute image url must be kept, got %q", flags[1].Image)
	}
	ports := round.Categories[1].Questions
	if ports[0].Value != 100 || ports[1].Value != 1000 {
		t.Fatalf("unexpected values %d, %d", ports[0].Value, ports[1].Value)
	}
	if ports[0].Category != "Ports" {
		t.Fatalf("expected category name on question, got %q", ports[0].Category)
	}
}

func TestChainRoundNotFound(t *testing.T) {
	chain := content.NewChain(zerolog.Nop(), content.Source{Name: "files", Loader: &fakeLoader{}})
	_, err := chain.LoadRound(context.Background(), "missing")
	if !errors.Is(err, domain.ErrRoundNotFound) {
		t.Fatalf("expected round not found, got %v", err)
	}
}

func TestChainListRoundsDedupes(t *testing.T) {
	a := &fakeLoader{list: []domain.RoundMetadata{{ID: "r1", Name: "from db"}, {ID: "r2"}}}
	b := &fakeLoader{list: []domain.RoundMetadata{{ID: "r1", Name: "from files"}, {ID: "r3"}}}
	chain := content.NewChain(zerolog.Nop(),
		content.Source{Name: "db", Loader: a},
		content.Source{Name: "files", Loader: b},
	)

	rounds, err := chain.ListRounds(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rounds) != 3 {
		t.Fatalf("expected 3 rounds, got %+v", rounds)
	}
	if rounds[0].Name != "from db" {
		t.Fatalf("expected first source to win, got %q", rounds[0].Name)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := content.Normalize(validRound("r1"))
	twice := content.Normalize(once)
	if once.Categories[0].Questions[0].Image != twice.Categories[0].Questions[0].Image {
		t.Fatalf("image rewritten twice: %q", twice.Categories[0].Questions[0].Image)
	}
}
