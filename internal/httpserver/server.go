// internal/httpserver/server.go
//
// HTTP server wiring for the bowling backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, metrics).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints (optional auth): POST /games, GET /games/{id}, POST /games/{id}/bowl.
//   - Account endpoints when a session manager is configured: /auth/*, /games/mine.
//
// Notes:
//   - A game created by a signed-in user only accepts throws from that user;
//     guest games accept throws from anyone holding the ID.
//   - Throws for one game are serialised with a per-game lock around the
//     load → bowl → save sequence. Different games never contend. Readers
//     need no lock: every store hands out a private copy from Get.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/internal/auth"
	"github.com/robalobadob/bowling/internal/frame"
	"github.com/robalobadob/bowling/internal/game"
	"github.com/robalobadob/bowling/internal/metrics"
	"github.com/robalobadob/bowling/internal/store"
)

// Options carries the settings the server needs from config.
type Options struct {
	ClientOrigin   string
	RequestTimeout time.Duration
	SpareRule      frame.SpareRule
	MaxBowlers     int
}

// Server bundles router, game store, sessions and metrics.
type Server struct {
	r        *chi.Mux
	store    store.Store
	sessions *auth.Sessions // nil disables accounts
	metrics  *metrics.Metrics
	opts     Options

	mu    sync.Mutex
	locks map[string]*gameLock
}

// gameLock is a per-game mutex shared by the requests currently using it.
type gameLock struct {
	sync.Mutex
	refs int
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, sessions *auth.Sessions, m *metrics.Metrics, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.SpareRule == "" {
		opts.SpareRule = frame.SpareStandard
	}
	if opts.MaxBowlers <= 0 {
		opts.MaxBowlers = game.DefaultMaxBowlers
	}
	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		sessions: sessions,
		metrics:  m,
		opts:     opts,
		locks:    make(map[string]*gameLock),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(m.Middleware)                       // latency per route
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "bowling-go",
			"endpoints": []string{"/health", "/metrics", "POST /games", "GET /games/{id}", "POST /games/{id}/bowl", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", m.Handler())

	// Game endpoints, optional auth (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.optionalAuth)
		r.Post("/games", s.handleNewGame)
		r.Get("/games/{id}", s.handleGetGame)
		r.Post("/games/{id}/bowl", s.handleBowl)
	})

	if sessions != nil {
		s.mountAuthRoutes()
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// optionalAuth attaches the caller's identity when accounts are enabled.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	if s.sessions == nil {
		return next
	}
	return s.sessions.Optional(next)
}

// lockGame serialises mutations of one game. The entry is dropped once no
// request holds or waits on it, so the map only tracks games in use.
func (s *Server) lockGame(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &gameLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /games.
type newGameReq struct {
	Bowlers   []string `json:"bowlers"`
	SpareRule string   `json:"spareRule"` // optional; server default when empty
}
type newGameRes struct {
	GameID string    `json:"gameId"`
	Card   game.Card `json:"card"`
}

// handleNewGame creates a game owned by the caller (or by nobody for guests).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	rule := s.opts.SpareRule
	if req.SpareRule != "" {
		parsed, err := frame.ParseSpareRule(req.SpareRule)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown_spare_rule")
			return
		}
		rule = parsed
	}

	g, err := game.New(req.Bowlers, game.WithSpareRule(rule), game.WithMaxBowlers(s.opts.MaxBowlers))
	if err != nil {
		writeError(w, http.StatusBadRequest, newGameErrorCode(err))
		return
	}

	owner := ""
	if me := auth.FromContext(r.Context()); me != nil {
		owner = me.ID
	}
	if err := s.store.Create(r.Context(), g, owner); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("create game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.metrics.GameStarted()
	log.Info().Str("gameId", g.ID).Int("bowlers", len(g.Bowlers)).Str("owner", owner).Msg("game created")

	writeJSON(w, http.StatusCreated, newGameRes{GameID: g.ID, Card: g.Card()})
}

func newGameErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrNoBowlers):
		return "no_bowlers"
	case errors.Is(err, game.ErrTooManyBowlers):
		return "too_many_bowlers"
	case errors.Is(err, game.ErrInvalidBowlerName):
		return "invalid_bowler_name"
	case errors.Is(err, frame.ErrUnknownSpareRule):
		return "unknown_spare_rule"
	}
	return "invalid_game"
}

// handleGetGame returns the scorecard of a game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Card())
}

// bowlReq/Res payloads for POST /games/{id}/bowl.
type bowlReq struct {
	Pins *int `json:"pins"`
}
type bowlRes struct {
	Result game.Result `json:"result"`
	Card   game.Card   `json:"card"`
}

// handleBowl records one throw for the bowler at the line.
func (s *Server) handleBowl(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req bowlReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pins == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	owner, err := s.store.Owner(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if owner != "" {
		if me := auth.FromContext(r.Context()); me == nil || me.ID != owner {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
	}

	unlock := s.lockGame(id)
	defer unlock()

	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	res, err := g.Bowl(*req.Pins)
	switch {
	case errors.Is(err, game.ErrInvalidPinCount):
		s.metrics.Throw(metrics.OutcomeInvalidPin)
		writeError(w, http.StatusBadRequest, "invalid_pin_count")
		return
	case errors.Is(err, game.ErrGameAlreadyComplete):
		s.metrics.Throw(metrics.OutcomeGameOver)
		writeError(w, http.StatusConflict, "game_over")
		return
	case err != nil:
		log.Error().Err(err).Str("gameId", id).Msg("bowl")
		writeError(w, http.StatusInternalServerError, "bowl_failed")
		return
	}

	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", id).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.metrics.Throw(metrics.OutcomeAccepted)
	log.Debug().Str("gameId", id).Int("bowler", res.Bowler).Int("frame", res.Frame+1).Int("pins", res.Pins).Msg("throw recorded")
	if res.Finished {
		s.metrics.GameFinished()
		log.Info().Str("gameId", id).Msg("game finished")
	}

	writeJSON(w, http.StatusOK, bowlRes{Result: res, Card: g.Card()})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	log.Error().Err(err).Msg("store")
	writeError(w, http.StatusInternalServerError, "store_failed")
}

// ------------------------------- util --------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
