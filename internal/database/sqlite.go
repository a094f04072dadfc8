package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

// New opens the SQLite file at path and applies the schema.
func New(path string) (*DB, error) {
	// Write transactions take the lock at BEGIN so processes sharing the
	// file queue on the busy timeout instead of failing the lock upgrade.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)

	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		balance INTEGER NOT NULL DEFAULT 1000 CHECK (balance >= 0),
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		pushes INTEGER NOT NULL DEFAULT 0,
		games INTEGER NOT NULL DEFAULT 0,
		last_bet INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_balance ON users(balance);
	CREATE INDEX IF NOT EXISTS idx_users_games ON users(games);
	`

	_, err := db.Exec(schema)
	return err
}
