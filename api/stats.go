package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"striker-stats-server/catalog"
	"striker-stats-server/matcherrors"
	"striker-stats-server/stats"
)

// CatalogResponse lists the values accepted by the match form.
type CatalogResponse struct {
	Arenas    []string `json:"arenas"`
	Strikers  []string `json:"strikers"`
	RankTiers []string `json:"rankTiers"`
	SetsToWin int      `json:"setsToWin"`
}

// Catalog returns arenas, strikers and rank tiers.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Arenas:    catalog.Arenas,
		Strikers:  catalog.Strikers,
		RankTiers: catalog.RankTiers,
		SetsToWin: h.Config.SetsToWin,
	})
}

// ListPlayers returns the roster with each player's top strikers.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Players.ListPlayers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Player returns one player's career statistics.
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		h.writeError(w, r, matcherrors.ErrPlayerNotFound)
		return
	}
	career, err := h.Stats.PlayerCareer(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, career)
}

// Strikers returns the striker leaderboard. ?excludeFriendlies=true skips matches
// with registered players on both sides.
func (h *Handler) Strikers(w http.ResponseWriter, r *http.Request) {
	exclude, _ := strconv.ParseBool(r.URL.Query().Get("excludeFriendlies"))
	lb, err := h.Stats.StrikerLeaderboard(r.Context(), exclude)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// Compositions returns duo and trio win rates, optionally for one ?arena.
func (h *Handler) Compositions(w http.ResponseWriter, r *http.Request) {
	arena := strings.TrimSpace(r.URL.Query().Get("arena"))
	if arena != "" && arena != catalog.AllMaps && !catalog.IsArena(arena) {
		h.writeError(w, r, matcherrors.Invalid(fmt.Sprintf("Unknown arena %q", arena)))
		return
	}
	c, err := h.Stats.Compositions(r.Context(), arena)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CounterPicks ranks counters to striker1 (and optionally striker2).
// Query: striker1, role1, striker2, role2; roles are forward, goalie or empty.
func (h *Handler) CounterPicks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first, err := parsePick(q.Get("striker1"), q.Get("role1"), true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	second, err := parsePick(q.Get("striker2"), q.Get("role2"), false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.Stats.CounterPicks(r.Context(), first, second)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func parsePick(striker, role string, required bool) (stats.Pick, error) {
	striker = strings.TrimSpace(striker)
	if striker == "" {
		if required {
			return stats.Pick{}, matcherrors.Invalid("A striker is required")
		}
		return stats.Pick{}, nil
	}
	if !catalog.IsStriker(striker) {
		return stats.Pick{}, matcherrors.Invalid(fmt.Sprintf("Unknown striker %q", striker))
	}
	goalie, ok := catalog.ParseRole(role)
	if !ok {
		return stats.Pick{}, matcherrors.Invalid(fmt.Sprintf("Unknown role %q", role))
	}
	return stats.Pick{Striker: striker, Goalie: goalie}, nil
}

// SoloCounters returns every striker-versus-striker win rate.
func (h *Handler) SoloCounters(w http.ResponseWriter, r *http.Request) {
	list, err := h.Stats.SoloCounters(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ArenaCounters returns the best counters to ?striker on ?arena.
func (h *Handler) ArenaCounters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	striker := strings.TrimSpace(q.Get("striker"))
	arena := strings.TrimSpace(q.Get("arena"))
	if !catalog.IsStriker(striker) {
		h.writeError(w, r, matcherrors.Invalid(fmt.Sprintf("Unknown striker %q", striker)))
		return
	}
	if !catalog.IsArena(arena) {
		h.writeError(w, r, matcherrors.Invalid(fmt.Sprintf("Unknown arena %q", arena)))
		return
	}
	list, err := h.Stats.ArenaCounters(r.Context(), striker, arena)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Estimate returns the win estimate for repeated ?a and ?b strikers on ?arena.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	est, err := h.Stats.EstimateWin(r.Context(), strings.TrimSpace(q.Get("arena")), q["a"], q["b"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}
