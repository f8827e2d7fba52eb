package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"jeopardy-board/internal/config"
)

func TestEnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("JEOPARDY_PORT", "9999")
	t.Setenv("JEOPARDY_CONFIG", "/etc/board.yaml")

	cmd := newRootCmd()
	fs := cmd.PersistentFlags()

	if got, _ := fs.GetString("port"); got != "9999" {
		t.Fatalf("expected port from env, got %q", got)
	}
	if got, _ := fs.GetString("config"); got != "/etc/board.yaml" {
		t.Fatalf("expected config from env, got %q", got)
	}
	if got, _ := fs.GetBool("verbose"); got {
		t.Fatalf("expected verbose off")
	}
}

func TestSetupLoggingJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer
	setupLogging(&buf, true, true)

	zerologlog.Debug().Str("session", "s1").Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte(`"session":"s1"`)) {
		t.Fatalf("expected json log line, got %q", buf.String())
	}
}

func TestGameOptionsFromConfig(t *testing.T) {
	g := config.Default().Game
	g.AnswerTimeout = "10s"
	opts := gameOptions(g, zerolog.Nop())
	if opts.AnswerTimeout.Seconds() != 10 || opts.Players != 4 || opts.Ticks == nil {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := runMigrationsWithConfig(ctx, config.Default()); err != errNoPostgres {
		t.Fatalf("expected missing postgres error, got %v", err)
	}
}
