package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"casino/internal/account"
	"casino/internal/bot"
	"casino/internal/config"
	"casino/internal/database"
	"casino/internal/logging"
	"casino/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if err := cfg.RequireBotToken(); err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("failed to create logger", "err", err)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to connect to database", "err", err)
	}
	defer db.Close()

	logger.Info("database connected", "path", cfg.DatabasePath)

	repo := account.NewRepository(db.DB)
	accounts := account.NewService(repo, cfg.StartBalance)
	sessions := session.NewManager(repo,
		session.WithLimits(cfg.MinBet, cfg.MaxBet),
		session.WithSeed(cfg.ShuffleSeed),
		session.WithLogger(logger),
		session.WithIdleTimeout(cfg.SessionIdleTimeout),
	)

	b, err := bot.New(cfg, accounts, sessions, logger)
	if err != nil {
		logger.Fatal("failed to create bot", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessions.Run(ctx, time.Minute)

	if err := b.Run(ctx); err != nil {
		logger.Error("bot error", "err", err)
	}
}
