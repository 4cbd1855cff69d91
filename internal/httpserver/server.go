// internal/httpserver/server.go
//
// HTTP server wiring for the view API, the rendering boundary between the game
// session and the presentation page.
// Responsibilities:
//   - Router + middleware (JSON, page-origin CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: GET /api/state, POST /api/configure, /api/play, /api/flag, /api/reset.
//   - Live feed: GET /ws (see ws.go).
//
// Notes:
//   - Every game endpoint answers with the full view so the page can redraw
//     from a single response.
//   - Session errors map to stable JSON error codes (see writeSessionError).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/MediaComem/minesweeper/internal/game"
	"github.com/MediaComem/minesweeper/internal/session"
)

// Game is the part of *session.Session the server drives.
type Game interface {
	View() session.View
	Configure(ctx context.Context, params game.Params) error
	Play(ctx context.Context, col, row int) error
	ToggleFlag(ctx context.Context, col, row int) error
	Reset(ctx context.Context)
	Subscribe(o session.Observer) (cancel func())
}

// Server bundles router, game session and websocket hub.
type Server struct {
	r           *chi.Mux
	game        Game
	hub         *hub
	upgrader    websocket.Upgrader
	unsubscribe func()
}

// New constructs a Server, installs middleware, and registers routes.
// origin is the presentation page allowed to call the API and open the
// websocket; empty means DefaultOrigin.
func New(g Game, origin string) *Server {
	if origin == "" {
		origin = DefaultOrigin
	}
	s := &Server{r: chi.NewRouter(), game: g, hub: newHub(), upgrader: newUpgrader(origin)}
	s.unsubscribe = g.Subscribe(s.hub)

	// --- middleware ---
	s.r.Use(chimw.RequestID)  // add X-Request-ID
	s.r.Use(chimw.RealIP)     // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)    // one log line per request
	s.r.Use(chimw.Recoverer)  // recover from panics
	s.r.Use(pageCORS(origin)) // page origin only

	// Long-lived websocket; no handler timeout, no JSON content type.
	s.r.Get("/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second)) // bound handler time
		r.Use(viewJSON)                        // JSON bodies

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"minesweeper-client","endpoints":["/health","GET /api/state","POST /api/configure","POST /api/play","POST /api/flag","POST /api/reset","/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", s.handleState)
			r.Post("/configure", s.handleConfigure)
			r.Post("/play", s.handlePlay)
			r.Post("/flag", s.handleFlag)
			r.Post("/reset", s.handleReset)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests and for embedding in an http.Server).
func (s *Server) Router() chi.Router { return s.r }

// Close detaches from the session and drops all websocket clients.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.closeAll()
}

// ------------------------------ GAME ---------------------------------------

// positionReq is the body of /api/play and /api/flag (1-based coordinates).
type positionReq struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.game.View())
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req game.Params
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.game.Configure(r.Context(), req); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.game.View())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req positionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.game.Play(r.Context(), req.Col, req.Row); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.game.View())
}

func (s *Server) handleFlag(w http.ResponseWriter, r *http.Request) {
	var req positionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.game.ToggleFlag(r.Context(), req.Col, req.Row); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.game.View())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.game.Reset(r.Context())
	writeJSON(w, http.StatusOK, s.game.View())
}

// ------------------------------- helpers -----------------------------------

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

// writeSessionError maps session errors to status codes and error codes.
func writeSessionError(w http.ResponseWriter, err error) {
	var mf *session.MoveFailedError
	switch {
	case errors.Is(err, session.ErrMoveInFlight):
		writeError(w, http.StatusConflict, "move_in_flight")
	case errors.Is(err, session.ErrNotPlayable):
		writeError(w, http.StatusConflict, "not_playable")
	case errors.Is(err, session.ErrAlreadyRevealed):
		writeError(w, http.StatusConflict, "already_revealed")
	case errors.Is(err, session.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state")
	case errors.Is(err, session.ErrAbandoned):
		writeError(w, http.StatusConflict, "abandoned")
	case errors.Is(err, session.ErrOutOfBounds):
		writeError(w, http.StatusBadRequest, "out_of_bounds")
	case errors.Is(err, session.ErrInvalidParams):
		writeError(w, http.StatusBadRequest, "invalid_params")
	case errors.As(err, &mf):
		writeError(w, http.StatusBadGateway, "move_failed")
	default:
		log.Error().Err(err).Msg("unexpected session error")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
