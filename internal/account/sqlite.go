package account

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"casino/internal/game"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// exec runs a single write in its own immediate transaction.
func (r *SQLiteRepository) exec(query string, args ...any) (sql.Result, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	return res, tx.Commit()
}

const userColumns = `id, username, password_hash, balance, wins, losses, pushes, games, last_bet`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Balance,
		&u.Wins, &u.Losses, &u.Pushes, &u.Games, &u.LastBet)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *SQLiteRepository) Create(username, passwordHash string, balance int) (*User, error) {
	res, err := r.exec(`
		INSERT INTO users (username, password_hash, balance)
		VALUES (?, ?, ?)
	`, username, passwordHash, balance)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	return &User{ID: id, Username: username, PasswordHash: passwordHash, Balance: balance}, nil
}

func (r *SQLiteRepository) GetByID(id int64) (*User, error) {
	u, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetByUsername(username string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, game.ErrUnknownUser)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) Balance(id int64) (int, error) {
	var balance int
	err := r.db.QueryRow(`SELECT balance FROM users WHERE id = ?`, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *SQLiteRepository) AdjustBalance(id int64, delta int) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE users SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND balance + ? >= 0
	`, delta, id, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}

	var balance int
	err = tx.QueryRow(`SELECT balance FROM users WHERE id = ?`, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	if n == 0 {
		return balance, fmt.Errorf("%w: balance %d, adjustment %d", game.ErrInsufficientFunds, balance, delta)
	}

	if err := tx.Commit(); err != nil {
		return balance - delta, fmt.Errorf("failed to commit balance: %w", err)
	}
	return balance, nil
}

func (r *SQLiteRepository) RecordRound(id int64, outcome game.Outcome, stake int) error {
	wins, losses, pushes := tally(outcome)

	res, err := r.exec(`
		UPDATE users SET
			wins = wins + ?, losses = losses + ?, pushes = pushes + ?,
			games = games + 1, last_bet = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, wins, losses, pushes, stake, id)
	if err != nil {
		return fmt.Errorf("failed to record round: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to record round: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	return nil
}

func (r *SQLiteRepository) Top(limit int) ([]Stats, error) {
	rows, err := r.db.Query(`
		SELECT id, username, balance, wins, games
		FROM users
		WHERE games > 0
		ORDER BY balance DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []Stats
	for rows.Next() {
		var s Stats
		if err := rows.Scan(&s.UserID, &s.Username, &s.Balance, &s.Wins, &s.Games); err != nil {
			return nil, err
		}
		if s.Games > 0 {
			s.WinRate = float64(s.Wins) / float64(s.Games) * 100
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
