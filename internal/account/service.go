package account

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"casino/internal/game"
)

// telegramPrefix marks accounts created for Telegram chats. They have no
// password and cannot log in over HTTP.
const telegramPrefix = "tg:"

// Service registers and authenticates users.
type Service struct {
	repo         Repository
	startBalance int

	// HashCost is the bcrypt cost for new passwords.
	HashCost int
}

func NewService(repo Repository, startBalance int) *Service {
	return &Service{
		repo:         repo,
		startBalance: startBalance,
		HashCost:     bcrypt.DefaultCost,
	}
}

func (s *Service) Repository() Repository {
	return s.repo
}

// Register creates a user with the starting balance.
func (s *Service) Register(username, password, confirm string) (*User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 32 || strings.HasPrefix(username, telegramPrefix) {
		return nil, ErrInvalidUsername
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(username, string(hash), s.startBalance)
}

// Login checks the password and returns the stored user.
func (s *Service) Login(username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(strings.TrimSpace(username))
	if errors.Is(err, game.ErrUnknownUser) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetOrCreateTelegram returns the account bound to a Telegram chat,
// creating it with the starting balance on first contact.
func (s *Service) GetOrCreateTelegram(chatID int64) (*User, error) {
	name := telegramPrefix + strconv.FormatInt(chatID, 10)

	u, err := s.repo.GetByUsername(name)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, game.ErrUnknownUser) {
		return nil, err
	}

	u, err = s.repo.Create(name, "", s.startBalance)
	if errors.Is(err, ErrUsernameTaken) {
		return s.repo.GetByUsername(name)
	}
	return u, err
}
