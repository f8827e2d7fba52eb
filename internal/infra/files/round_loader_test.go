package files

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"jeopardy-board/internal/domain"
)

func bundledRounds() fstest.MapFS {
	return fstest.MapFS{
		"xmas/round.json": {Data: []byte(`{"name":"Christmas","language":"de","categories":["Songs","flags"]}`)},
		"xmas/Songs/cat.json": {Data: []byte(`{"name":"Songs","lang":"de","questions":[
			{"question":"Last Christmas?","answer":"Wham!"},
			{"question":"Jingle?","answer":"Bells"}]}`)},
		"xmas/flags/cat.json": {Data: []byte(`{"name":"Flaggen","questions":[{"question":"Welches Land?","image":"ch.png"}]}`)},
		"broken/round.json":   {Data: []byte(`{"name":"Broken","categories":["missing"]}`)},
		"notes.txt":           {Data: []byte("not a round")},
	}
}

func TestLoadRoundReadsCategories(t *testing.T) {
	loader := NewRoundLoader(bundledRounds())

	round, err := loader.LoadRound(context.Background(), "xmas")
	if err != nil {
		t.Fatalf("load round: %v", err)
	}
	if round.ID != "xmas" || round.Name != "Christmas" {
		t.Fatalf("unexpected header %+v", round)
	}
	if len(round.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(round.Categories))
	}
	if round.Categories[0].Questions[1].Answer != "Bells" {
		t.Fatalf("unexpected question %+v", round.Categories[0].Questions[1])
	}
	flags := round.Categories[1]
	if flags.Name != "Flaggen" || flags.Path != "flags" {
		t.Fatalf("expected path from directory, got %+v", flags)
	}
}

func TestLoadRoundErrors(t *testing.T) {
	loader := NewRoundLoader(bundledRounds())

	if _, err := loader.LoadRound(context.Background(), "nope"); !errors.Is(err, domain.ErrRoundNotFound) {
		t.Fatalf("expected round not found, got %v", err)
	}
	if _, err := loader.LoadRound(context.Background(), "../etc"); !errors.Is(err, domain.ErrRoundNotFound) {
		t.Fatalf("expected round not found for invalid path, got %v", err)
	}
	if _, err := loader.LoadRound(context.Background(), "broken"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
}

func TestListRounds(t *testing.T) {
	loader := NewRoundLoader(bundledRounds())

	rounds, err := loader.ListRounds(context.Background())
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %+v", rounds)
	}
	if rounds[1].ID != "xmas" || rounds[1].Language != "de" || len(rounds[1].Categories) != 2 {
		t.Fatalf("unexpected metadata %+v", rounds[1])
	}
}
