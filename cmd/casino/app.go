package main

import (
	"os"

	"github.com/charmbracelet/log"

	"casino/internal/account"
	"casino/internal/config"
	"casino/internal/database"
	"casino/internal/logging"
	"casino/internal/session"
)

// Globals are flags shared by every command. Empty values fall back to the
// environment.
type Globals struct {
	Env      string `help:"Path to a .env file" default:".env"`
	Database string `help:"SQLite database path (overrides DATABASE_PATH)"`
	LogLevel string `help:"Log level (overrides LOG_LEVEL)"`
}

type app struct {
	cfg      *config.Config
	logger   *log.Logger
	db       *database.DB
	accounts *account.Service
	sessions *session.Manager
}

func (g *Globals) open() (*app, error) {
	cfg, err := config.Load(g.Env)
	if err != nil {
		return nil, err
	}
	if g.Database != "" {
		cfg.DatabasePath = g.Database
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("database connected", "path", cfg.DatabasePath)

	repo := account.NewRepository(db.DB)
	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		accounts: account.NewService(repo, cfg.StartBalance),
		sessions: session.NewManager(repo,
			session.WithLimits(cfg.MinBet, cfg.MaxBet),
			session.WithSeed(cfg.ShuffleSeed),
			session.WithLogger(logger),
		),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "err", err)
	}
}
