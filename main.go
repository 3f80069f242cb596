package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/internal/auth"
	"github.com/robalobadob/bowling/internal/config"
	"github.com/robalobadob/bowling/internal/httpserver"
	"github.com/robalobadob/bowling/internal/metrics"
	"github.com/robalobadob/bowling/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Accounts always live in SQLite; STORE only picks where games go.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	var games store.Store
	switch cfg.Store {
	case "memory":
		games = store.NewMemoryStore()
	default:
		games = store.NewSQLiteStore(db)
	}

	sessions := &auth.Sessions{
		Users:      auth.NewUsers(db),
		Tokens:     auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL()),
		CookieName: cfg.CookieName,
		Secure:     cfg.Production,
	}

	srv := httpserver.New(games, sessions, metrics.New(), httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
		SpareRule:      cfg.Rule(),
		MaxBowlers:     cfg.MaxBowlers,
	})
	log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Str("spareRule", string(cfg.Rule())).Msg("starting bowling server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
