package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cwsimon/internal/auth"
	"github.com/robalobadob/cwsimon/internal/config"
	"github.com/robalobadob/cwsimon/internal/db"
	"github.com/robalobadob/cwsimon/internal/httpserver"
	"github.com/robalobadob/cwsimon/internal/keying"
	"github.com/robalobadob/cwsimon/internal/settings"
	"github.com/robalobadob/cwsimon/internal/store"
)

const (
	sessionTTL    = 2 * time.Hour
	sweepInterval = 10 * time.Minute
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	sqlDB, err := db.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go mem.RunSweeper(ctx, sweepInterval, sessionTTL, func(n int) {
		log.Info().Int("sessions", n).Msg("swept idle games")
	})

	srv := httpserver.New(httpserver.Deps{
		Config: cfg,
		Store:  mem,
		Auth: auth.New(sqlDB, auth.Options{
			Secret:      cfg.JWTSecret,
			ExpiresDays: cfg.JWTExpiresDays,
			CookieName:  cfg.CookieName,
			Secure:      cfg.Production,
		}),
		Settings: settings.NewStore(sqlDB),
		Keying:   keying.NewStore(sqlDB),
	})

	log.Info().
		Str("port", cfg.Port).
		Float64("letterWpm", cfg.Timing.LetterWPM).
		Int64("noInputTimeoutMs", cfg.Timing.NoInputTimeoutMs).
		Msg("starting cwsimon server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
