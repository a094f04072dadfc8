package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"casino/internal/account"
	"casino/internal/game"
	"casino/internal/session"
)

const (
	maxBodyBytes = 1 << 20
	defaultTop   = 10
	maxTop       = 100
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  *account.User `json:"user"`
}

type betRequest struct {
	Amount int `json:"amount"`
}

type diceRequest struct {
	BetType string `json:"bet_type"`
	Amount  int    `json:"amount"`
}

type roundResponse struct {
	Round   game.View `json:"round"`
	Balance int       `json:"balance"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorStatus maps domain errors to an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidBet):
		return http.StatusBadRequest, "invalid_bet"
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, game.ErrIllegalAction):
		return http.StatusConflict, "illegal_action"
	case errors.Is(err, game.ErrUnknownUser):
		return http.StatusNotFound, "unknown_user"
	case errors.Is(err, account.ErrInvalidCredentials), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, account.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	case errors.Is(err, account.ErrPasswordMismatch),
		errors.Is(err, account.ErrInvalidUsername),
		errors.Is(err, account.ErrWeakPassword),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

func decode(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, err)
		return
	}

	u, err := s.accounts.Register(req.Username, req.Password, req.Confirm)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.sessions.Open(u)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("user registered", "user", u.Username)
	writeJSON(w, http.StatusCreated, authResponse{Token: sess.ID, User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, err)
		return
	}

	u, err := s.accounts.Login(req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.sessions.Open(u)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: sess.ID, User: u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(sessionFrom(r.Context()).ID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.accounts.Repository().GetByID(sessionFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	limit := defaultTop
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxTop {
			s.writeError(w, fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, maxTop))
			return
		}
		limit = n
	}

	stats, err := s.accounts.Repository().Top(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if stats == nil {
		stats = []account.Stats{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": stats})
}

func (s *Server) writeRound(w http.ResponseWriter, sess *session.Session, v game.View) {
	bal, err := sess.Balance()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundResponse{Round: v, Balance: bal})
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.writeRound(w, sess, sess.View())
}

// roundAction runs action on the caller's round and responds with the new view.
func (s *Server) roundAction(action func(*game.Round) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())

		var v game.View
		err := sess.Blackjack(func(round *game.Round) error {
			if err := action(round); err != nil {
				return err
			}
			v = round.View()
			return nil
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeRound(w, sess, v)
	}
}

func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.roundAction(func(round *game.Round) error {
		return round.PlaceBet(req.Amount)
	})(w, r)
}

func (s *Server) handleDiceRoll(w http.ResponseWriter, r *http.Request) {
	var req diceRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, err)
		return
	}

	betType, err := game.ParseBetType(req.BetType)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := sessionFrom(r.Context()).RollDice(betType, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
