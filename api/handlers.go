package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"striker-stats-server/auth"
	"striker-stats-server/config"
	"striker-stats-server/ingest"
	"striker-stats-server/matcherrors"
	"striker-stats-server/stats"
	"striker-stats-server/storage"
)

// maxBodyBytes bounds request bodies of write endpoints.
const maxBodyBytes = 64 << 10

// PlayerStore lists registered players.
type PlayerStore interface {
	ListPlayers(ctx context.Context) ([]storage.PlayerSummary, error)
}

// FeedServer upgrades requests to the invalidation feed.
type FeedServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Config  *config.Config
	Players PlayerStore
	Stats   *stats.Engine
	Ingest  *ingest.Service
	Auth    *auth.Authenticator
	Feed    FeedServer
}

// NewHandler creates a new API handler with the given dependencies. feed may be nil.
func NewHandler(cfg *config.Config, players PlayerStore, engine *stats.Engine, svc *ingest.Service,
	authenticator *auth.Authenticator, feed FeedServer) *Handler {
	return &Handler{
		Config:  cfg,
		Players: players,
		Stats:   engine,
		Ingest:  svc,
		Auth:    authenticator,
		Feed:    feed,
	}
}

// Routes returns the API mux wrapped with CORS handling.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/catalog", h.Catalog)

	mux.HandleFunc("GET /api/players", h.ListPlayers)
	mux.HandleFunc("GET /api/players/{id}", h.Player)

	mux.HandleFunc("GET /api/matches", h.ListMatches)
	mux.HandleFunc("GET /api/matches/search", h.SearchMatches)
	mux.HandleFunc("GET /api/matches/{id}", h.Match)
	mux.HandleFunc("POST /api/matches", h.requireAuth(h.SubmitMatch))
	mux.HandleFunc("POST /api/matches/duration", h.requireAuth(h.UpdateDuration))
	mux.HandleFunc("DELETE /api/matches/{id}", h.requireAuth(h.DeleteMatch))

	mux.HandleFunc("GET /api/strikers", h.Strikers)
	mux.HandleFunc("GET /api/compositions", h.Compositions)
	mux.HandleFunc("GET /api/counters", h.CounterPicks)
	mux.HandleFunc("GET /api/counters/solo", h.SoloCounters)
	mux.HandleFunc("GET /api/arena-counters", h.ArenaCounters)
	mux.HandleFunc("GET /api/estimate", h.Estimate)

	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/session", h.Session)

	if h.Feed != nil {
		mux.HandleFunc("GET /ws", h.Feed.ServeWS)
	}
	return h.cors(mux)
}

// cors sets CORS headers on every response and answers preflight requests.
// Credentials are only allowed for an explicit origin.
func (h *Handler) cors(next http.Handler) http.Handler {
	origin := h.Config.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if origin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a valid session with 401.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.Auth == nil {
			h.writeError(w, r, matcherrors.ErrUnauthorized)
			return
		}
		if _, err := h.Auth.Authenticate(r); err != nil {
			h.writeError(w, r, matcherrors.ErrUnauthorized)
			return
		}
		next(w, r)
	}
}

// Result is the response body of writes and errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "tag", "api", "err", err)
	}
}

// writeError maps err to a status code. Store faults are logged and hidden from the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := matcherrors.IsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, Result{Message: ve.Message})
		return
	}
	switch {
	case errors.Is(err, matcherrors.ErrMatchNotFound):
		writeJSON(w, http.StatusNotFound, Result{Message: "Match not found"})
	case errors.Is(err, matcherrors.ErrPlayerNotFound):
		writeJSON(w, http.StatusNotFound, Result{Message: "Player not found"})
	case errors.Is(err, matcherrors.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, Result{Message: "Authentication required"})
	default:
		slog.Error("request failed", "tag", "api", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, Result{Message: "Internal server error"})
	}
}

// decodeBody decodes a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return matcherrors.Invalid("Invalid request body")
	}
	return nil
}
