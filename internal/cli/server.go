package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"jeopardy-board/internal/app"
	"jeopardy-board/internal/config"
	"jeopardy-board/internal/content"
	"jeopardy-board/internal/game"
	"jeopardy-board/internal/infra/files"
	"jeopardy-board/internal/infra/memory"
	pgloader "jeopardy-board/internal/infra/postgres"
	redisstore "jeopardy-board/internal/infra/redis"
	transport "jeopardy-board/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the board server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := zerologlog.Logger

	cfg, found, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !found {
		log.Info().Str("path", configPath).Msg("config file not found, using defaults")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable, continuing")
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	sources := []content.Source{}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sources = append(sources, content.Source{Name: "postgres", Loader: pgloader.NewRoundLoader(pool)})
	}
	if cfg.Content.Dir != "" {
		sources = append(sources, content.Source{Name: "files", Loader: files.NewRoundLoader(os.DirFS(cfg.Content.Dir))})
	}
	chain := content.NewChain(log.With().Str("component", "content").Logger(), sources...)

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var rounds app.RoundRepository
	if redisClient != nil {
		rounds = redisstore.NewRoundCache(redisClient, chain, contentTTL, log)
	} else {
		rounds = memory.NewRoundCache(chain, contentTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		redisSessions := redisstore.NewSessionStore(redisClient, redisTTL)
		go reapSessions(ctx, redisSessions, redisTTL/2, log)
		store = redisSessions
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewBoardService(store, rounds, gameOptions(cfg.Game, log))
	handler := transport.NewRouter(service, cfg.Server.PublicURL, log.With().Str("component", "http").Logger())

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.WithRequestLog(handler, log),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting board server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func gameOptions(g config.Game, log zerolog.Logger) game.Options {
	return game.Options{
		AnswerTimeout:      config.TTLDuration(g.AnswerTimeout, 6*time.Second),
		Players:            g.Players,
		MaxSelectionBuzzes: g.MaxSelectionBuzzes,
		ScoreIncrement:     g.ScoreIncrement,
		Highlight:          config.TTLDuration(g.Highlight, 3*time.Second),
		Ticks:              game.RealTicks,
		Logger:             log.With().Str("component", "game").Logger(),
	}
}

// reapSessions closes sessions whose Redis liveness marker expired.
func reapSessions(ctx context.Context, store *redisstore.SessionStore, every time.Duration, log zerolog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Expired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session reaper failed")
				continue
			}
			for _, id := range removed {
				log.Info().Str("session", id).Msg("idle session closed")
			}
		}
	}
}
