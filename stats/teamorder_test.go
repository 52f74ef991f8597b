package stats

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"striker-stats-server/matcherrors"
	"striker-stats-server/storage"
)

func slots(goalieIdx int, strikers ...string) []storage.RosterSlot {
	out := make([]storage.RosterSlot, len(strikers))
	for i, s := range strikers {
		out[i] = storage.RosterSlot{Striker: s, IsGoalie: i == goalieIdx}
	}
	return out
}

// storedMatch has side 1 = {Ai.Mi, Kai (G), Juno} winning 3-1 over side 2 = {Drek'ar, X (G), Era}.
func storedMatch() storage.MatchRoster {
	return storage.MatchRoster{
		ID:         "m1",
		Arena:      "Ahten City",
		Team1Score: 3,
		Team2Score: 1,
		Team1Won:   true,
		Team1:      slots(1, "Ai.Mi", "Kai", "Juno"),
		Team2:      slots(1, "Drek'ar", "X", "Era"),
	}
}

func TestNormalize_ReversesWhenTeamAIsSideTwo(t *testing.T) {
	r, ok := Normalize(storedMatch(), []SlotFilter{{Striker: "Drek'ar"}}, []SlotFilter{{Striker: "Ai.Mi"}})
	if !ok {
		t.Fatal("expected the match to be found")
	}
	if !r.IsReversed {
		t.Error("expected is_reversed")
	}
	if r.Team1Score != 1 || r.Team2Score != 3 || r.Team1Won {
		t.Errorf("scores not swapped: %d-%d won=%v", r.Team1Score, r.Team2Score, r.Team1Won)
	}
	if r.Team1[0].Striker != "Drek'ar" || r.Team2[0].Striker != "Ai.Mi" {
		t.Errorf("rosters not swapped: %+v / %+v", r.Team1, r.Team2)
	}
}

func TestNormalize_BothOrientationsHoldKeepsStoredOrder(t *testing.T) {
	m := storedMatch()
	m.Team2 = slots(1, "Ai.Mi", "X", "Era")

	r, ok := Normalize(m, []SlotFilter{{Striker: "Ai.Mi"}}, []SlotFilter{{Striker: "Ai.Mi"}})
	if !ok || r.IsReversed {
		t.Errorf("expected an unreversed match, got ok=%v reversed=%v", ok, r.IsReversed)
	}
	if r.Team1Score != 3 {
		t.Errorf("Team1Score = %d, want 3", r.Team1Score)
	}
}

func TestNormalize_RoleAndNoMatch(t *testing.T) {
	m := storedMatch()
	if _, ok := Normalize(m, []SlotFilter{{Striker: "Kai", Goalie: boolPtr(false)}}, nil); ok {
		t.Error("Kai played goalie, a forward filter must not match")
	}
	r, ok := Normalize(m, nil, []SlotFilter{{Striker: "Kai", Goalie: boolPtr(true)}})
	if !ok || !r.IsReversed {
		t.Errorf("Team B = Kai (goalie) is side 1, expected reversed, got ok=%v reversed=%v", ok, r.IsReversed)
	}
	if _, ok := Normalize(m, []SlotFilter{{Striker: "Kai"}}, []SlotFilter{{Striker: "Juno"}}); ok {
		t.Error("Kai and Juno are teammates and cannot be opponents")
	}
}

func TestTeamMatches_DistinctParticipants(t *testing.T) {
	side := slots(0, "Kai", "Juno", "Era")
	tests := []struct {
		name    string
		filters []SlotFilter
		want    bool
	}{
		{"empty matches anything", nil, true},
		{"single striker", []SlotFilter{{Striker: "Juno"}}, true},
		{"same striker twice", []SlotFilter{{Striker: "Kai"}, {Striker: "Kai"}}, false},
		{"wildcard goalie and named forward", []SlotFilter{{Goalie: boolPtr(true)}, {Striker: "Era"}}, true},
		{"wildcard needs a free slot", []SlotFilter{{Striker: "Kai"}, {Goalie: boolPtr(true)}}, false},
		{"order needing backtracking", []SlotFilter{{}, {Striker: "Kai"}}, true},
		{"too many filters", []SlotFilter{{}, {}, {}, {}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TeamMatches(tt.filters, side); got != tt.want {
				t.Errorf("TeamMatches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchMatches_PrefiltersAndOrients(t *testing.T) {
	other := storedMatch()
	other.ID = "m2"
	other.Team2 = slots(1, "Rune", "X", "Era")
	store := &fakeStore{rosters: []storage.MatchRoster{storedMatch(), other}}
	e := NewEngine(store)

	got, err := e.SearchMatches(context.Background(), SearchQuery{
		Arena: "All Maps",
		TeamA: []SlotFilter{{Striker: "Drek'ar"}},
		TeamB: []SlotFilter{{Striker: "Ai.Mi"}, {}},
	})
	if err != nil {
		t.Fatalf("SearchMatches: %v", err)
	}
	if store.lastSearch.Arena != "" {
		t.Errorf("All Maps should not narrow by arena, got %q", store.lastSearch.Arena)
	}
	if !slices.Equal(store.lastSearch.Strikers, []string{"Drek'ar", "Ai.Mi"}) {
		t.Errorf("unexpected prefilter strikers %v", store.lastSearch.Strikers)
	}
	if len(got) != 1 || got[0].ID != "m1" || !got[0].IsReversed || got[0].Team1Score != 1 {
		t.Errorf("unexpected results %+v", got)
	}
}

func TestSearchMatches_PagesPastNonQualifyingCandidates(t *testing.T) {
	// Newer candidates all have Kai in front; only the oldest has Kai in goal.
	var rosters []storage.MatchRoster
	for i := 0; i < searchPageSize+50; i++ {
		m := storedMatch()
		m.ID = fmt.Sprintf("forward-%d", i)
		m.Team1 = slots(0, "Ai.Mi", "Kai", "Juno")
		rosters = append(rosters, m)
	}
	rosters = append(rosters, storedMatch())
	store := &fakeStore{rosters: rosters}
	e := NewEngine(store)

	got, err := e.SearchMatches(context.Background(), SearchQuery{
		TeamA: []SlotFilter{{Striker: "Kai", Goalie: boolPtr(true)}},
	})
	if err != nil {
		t.Fatalf("SearchMatches: %v", err)
	}
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("expected the goalie match behind %d forward matches, got %d results", searchPageSize+50, len(got))
	}
	if store.searchCalls != 2 {
		t.Errorf("expected 2 pages, got %d", store.searchCalls)
	}
}

func TestSearchMatches_StopsAtLimit(t *testing.T) {
	var rosters []storage.MatchRoster
	for i := 0; i < 3*searchPageSize; i++ {
		m := storedMatch()
		m.ID = fmt.Sprintf("m-%d", i)
		rosters = append(rosters, m)
	}
	store := &fakeStore{rosters: rosters}

	got, err := NewEngine(store).SearchMatches(context.Background(), SearchQuery{
		TeamA: []SlotFilter{{Striker: "Kai"}},
		Limit: 5,
	})
	if err != nil {
		t.Fatalf("SearchMatches: %v", err)
	}
	if len(got) != 5 || store.searchCalls != 1 {
		t.Errorf("got %d results over %d pages, want 5 over 1", len(got), store.searchCalls)
	}
}

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name string
		q    SearchQuery
		ok   bool
	}{
		{"empty", SearchQuery{}, true},
		{"all maps", SearchQuery{Arena: "All Maps"}, true},
		{"unknown arena", SearchQuery{Arena: "Moon Base"}, false},
		{"unknown striker", SearchQuery{TeamA: []SlotFilter{{Striker: "Nobody"}}}, false},
		{"four slots", SearchQuery{TeamB: []SlotFilter{{}, {}, {}, {}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if !tt.ok {
				if _, isValidation := matcherrors.IsValidation(err); !isValidation {
					t.Errorf("expected a validation error, got %v", err)
				}
			}
		})
	}
}
