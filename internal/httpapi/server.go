// Package httpapi exposes accounts, blackjack and dice as a JSON API with a
// websocket feed of round events.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"casino/internal/account"
	"casino/internal/game"
	"casino/internal/session"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	accounts *account.Service
	sessions *session.Manager
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func New(accounts *account.Service, sessions *session.Manager, logger *log.Logger) *Server {
	return &Server{
		accounts: accounts,
		sessions: sessions,
		logger:   logger.WithPrefix("http"),
		upgrader: websocket.Upgrader{
			// The API is token authenticated, any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Get("/top", s.handleTop)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.Get("/events", s.handleEvents)

			r.Get("/blackjack", s.handleRound)
			r.Post("/blackjack/bet", s.handleBet)
			r.Post("/blackjack/hit", s.roundAction((*game.Round).Hit))
			r.Post("/blackjack/stand", s.roundAction((*game.Round).Stand))
			r.Post("/blackjack/double", s.roundAction((*game.Round).DoubleDown))
			r.Post("/blackjack/reset", s.roundAction((*game.Round).Reset))

			r.Post("/dice/roll", s.handleDiceRoll)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type ctxKey struct{}

// requireSession resolves the bearer token (or ?token= for browsers that
// cannot set headers on websocket upgrades) to an open session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			s.writeError(w, session.ErrSessionNotFound)
			return
		}

		sess, err := s.sessions.Get(token)
		if err != nil {
			s.writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ctxKey{}).(*session.Session)
	return sess
}
