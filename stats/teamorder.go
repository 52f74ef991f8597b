package stats

import (
	"context"
	"fmt"
	"time"

	"striker-stats-server/catalog"
	"striker-stats-server/matcherrors"
	"striker-stats-server/storage"
)

// maxSlots is the number of participants per side.
const maxSlots = 3

// SlotFilter constrains one participant of a side. An empty Striker matches any
// striker; a nil Goalie matches either role.
type SlotFilter struct {
	Striker string `json:"striker"`
	Goalie  *bool  `json:"goalie,omitempty"`
}

func (f SlotFilter) accepts(s storage.RosterSlot) bool {
	if f.Striker != "" && f.Striker != s.Striker {
		return false
	}
	return f.Goalie == nil || *f.Goalie == s.IsGoalie
}

// SearchQuery finds matches by arena and by the strikers of two user-labeled teams.
// Team A and Team B carry no side: a stored match can satisfy them in either order.
// Limit caps the number of results; 0 returns every matching match.
type SearchQuery struct {
	Arena string
	TeamA []SlotFilter
	TeamB []SlotFilter
	Limit uint64
}

// Validate rejects filters that cannot describe a real side.
func (q SearchQuery) Validate() error {
	if q.Arena != "" && q.Arena != catalog.AllMaps && !catalog.IsArena(q.Arena) {
		return matcherrors.Invalid(fmt.Sprintf("Unknown arena %q", q.Arena))
	}
	for i, team := range [][]SlotFilter{q.TeamA, q.TeamB} {
		label := [2]string{"Team A", "Team B"}[i]
		if len(team) > maxSlots {
			return matcherrors.Invalid(fmt.Sprintf("%s has more than %d strikers", label, maxSlots))
		}
		for _, f := range team {
			if f.Striker != "" && !catalog.IsStriker(f.Striker) {
				return matcherrors.Invalid(fmt.Sprintf("Unknown striker %q", f.Striker))
			}
		}
	}
	return nil
}

// SearchResult is a stored match presented from the searcher's point of view:
// Team1 fields describe the side matching Team A. IsReversed is true when that
// is stored side 2.
type SearchResult struct {
	ID         string               `json:"id"`
	Arena      string               `json:"arena"`
	Team1Score int                  `json:"team1Score"`
	Team2Score int                  `json:"team2Score"`
	Team1Won   bool                 `json:"team1Won"`
	Team1      []storage.RosterSlot `json:"team1"`
	Team2      []storage.RosterSlot `json:"team2"`
	IsReversed bool                 `json:"is_reversed"`
	Duration   int                  `json:"duration"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// TeamMatches reports whether every filter can be assigned to a distinct participant
// of side that it accepts. An empty filter list matches any side.
func TeamMatches(filters []SlotFilter, side []storage.RosterSlot) bool {
	if len(filters) > len(side) {
		return false
	}
	used := make([]bool, len(side))
	var assign func(i int) bool
	assign = func(i int) bool {
		if i == len(filters) {
			return true
		}
		for j, slot := range side {
			if used[j] || !filters[i].accepts(slot) {
				continue
			}
			used[j] = true
			if assign(i + 1) {
				return true
			}
			used[j] = false
		}
		return false
	}
	return assign(0)
}

// Normalize tests the stored match against Team A on side 1 and Team B on side 2,
// then the reverse. The first hypothesis that holds decides the orientation, so a
// match satisfying both is presented as stored. ok is false when neither holds.
func Normalize(m storage.MatchRoster, teamA, teamB []SlotFilter) (SearchResult, bool) {
	r := SearchResult{
		ID:         m.ID,
		Arena:      m.Arena,
		Team1Score: m.Team1Score,
		Team2Score: m.Team2Score,
		Team1Won:   m.Team1Won,
		Team1:      m.Team1,
		Team2:      m.Team2,
		Duration:   m.Duration,
		CreatedAt:  m.CreatedAt,
	}
	if TeamMatches(teamA, m.Team1) && TeamMatches(teamB, m.Team2) {
		return r, true
	}
	if TeamMatches(teamA, m.Team2) && TeamMatches(teamB, m.Team1) {
		r.Team1Score, r.Team2Score = r.Team2Score, r.Team1Score
		r.Team1, r.Team2 = r.Team2, r.Team1
		r.Team1Won = !r.Team1Won
		r.IsReversed = true
		return r, true
	}
	return SearchResult{}, false
}

// searchPageSize is the number of candidates read from the store per round trip.
const searchPageSize = 200

// SearchMatches narrows candidates in the store by arena and striker presence,
// then keeps and orients the matches whose sides satisfy the query. Candidates are
// read page by page until q.Limit results are found or the store runs out, so a
// qualifying match is never hidden behind newer candidates that fail the side test.
func (e *Engine) SearchMatches(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	filter := storage.SearchFilter{Limit: searchPageSize}
	if q.Arena != catalog.AllMaps {
		filter.Arena = q.Arena
	}
	for _, f := range append(append([]SlotFilter{}, q.TeamA...), q.TeamB...) {
		if f.Striker != "" {
			filter.Strikers = append(filter.Strikers, f.Striker)
		}
	}
	out := []SearchResult{}
	for {
		page, err := e.store.SearchMatches(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			if r, ok := Normalize(m, q.TeamA, q.TeamB); ok {
				out = append(out, r)
				if q.Limit > 0 && uint64(len(out)) == q.Limit {
					return out, nil
				}
			}
		}
		if uint64(len(page)) < filter.Limit {
			return out, nil
		}
		filter.Offset += filter.Limit
	}
}
