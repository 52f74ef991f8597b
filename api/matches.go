package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"striker-stats-server/catalog"
	"striker-stats-server/ingest"
	"striker-stats-server/matcherrors"
	"striker-stats-server/stats"
)

// ListMatches returns every live match, newest first.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	list, err := h.Stats.ListMatches(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Match returns one match with its participants.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		h.writeError(w, r, matcherrors.ErrMatchNotFound)
		return
	}
	m, err := h.Stats.Match(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// SearchMatches finds matches by arena and team composition.
// Query: arena, repeated a and b parameters of the form Striker[:forward|goalie].
func (h *Handler) SearchMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	teamA, err := parseSlots(q["a"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	teamB, err := parseSlots(q["b"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	results, err := h.Stats.SearchMatches(r.Context(), stats.SearchQuery{
		Arena: strings.TrimSpace(q.Get("arena")),
		TeamA: teamA,
		TeamB: teamB,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// parseSlots parses "Striker", "Striker:goalie", ":goalie" or "" into slot filters.
func parseSlots(values []string) ([]stats.SlotFilter, error) {
	var out []stats.SlotFilter
	for _, v := range values {
		striker, role, _ := strings.Cut(v, ":")
		goalie, ok := catalog.ParseRole(role)
		if !ok {
			return nil, matcherrors.Invalid(fmt.Sprintf("Unknown role %q", role))
		}
		out = append(out, stats.SlotFilter{Striker: strings.TrimSpace(striker), Goalie: goalie})
	}
	return out, nil
}

// SubmitMatch validates and records a match.
func (h *Handler) SubmitMatch(w http.ResponseWriter, r *http.Request) {
	var in ingest.MatchInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.Ingest.Submit(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Result{Success: true, Message: "Match recorded", ID: id})
}

// UpdateDuration backfills the duration of a recorded match.
func (h *Handler) UpdateDuration(w http.ResponseWriter, r *http.Request) {
	var in ingest.DurationInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Ingest.UpdateDuration(r.Context(), in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Message: "Duration updated"})
}

// DeleteMatch soft-deletes a match.
func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Ingest.DeleteMatch(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Message: "Match deleted", ID: id})
}
