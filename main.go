// main.go
//
// Entry point of the minesweeper client.
// Responsibilities:
//   - Load .env and configuration, set up zerolog.
//   - Pick the resume store (in-memory or SQLite).
//   - Build the game API client and the session, resume any saved game.
//   - Serve the view API and websocket feed.

package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MediaComem/minesweeper/internal/api"
	"github.com/MediaComem/minesweeper/internal/config"
	"github.com/MediaComem/minesweeper/internal/httpserver"
	"github.com/MediaComem/minesweeper/internal/session"
	"github.com/MediaComem/minesweeper/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	kv, closeStore := openStore(cfg.StorePath)
	defer closeStore()

	client := api.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout})
	sess := session.New(client, kv, session.Options{
		MoveTimeout: cfg.MoveTimeout,
		TickPeriod:  cfg.TickPeriod,
	})
	defer sess.Close()

	if err := sess.Resume(context.Background()); err != nil {
		log.Warn().Err(err).Msg("resume skipped")
	}

	srv := httpserver.New(sess, cfg.Origin)
	defer srv.Close()
	log.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Str("store", cfg.StorePath).Msg("starting minesweeper client")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore returns the resume store for path and a function releasing it.
func openStore(path string) (store.KV, func()) {
	if path == config.MemoryStore {
		return store.NewMemoryKV(), func() {}
	}
	db, err := openDB(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("open store")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate store")
	}
	return store.NewSQLiteKV(db), func() { _ = db.Close() }
}
