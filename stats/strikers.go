package stats

import (
	"cmp"
	"context"
	"slices"

	"striker-stats-server/catalog"
	"striker-stats-server/storage"
)

// StrikerStat is a win rate for one striker, optionally narrowed to a role or an arena.
type StrikerStat struct {
	Striker string   `json:"striker"`
	Role    string   `json:"role,omitempty"`
	Arena   string   `json:"arena,omitempty"`
	Wins    int      `json:"wins"`
	Matches int      `json:"matches"`
	WinRate *float64 `json:"winRate"`
}

// StrikerLeaderboard holds the three striker rollups.
type StrikerLeaderboard struct {
	Overall []StrikerStat `json:"overall"`
	ByRole  []StrikerStat `json:"byRole"`
	ByArena []StrikerStat `json:"byArena"`
}

type tally struct {
	wins, matches int
}

func (t *tally) add(wins, matches int) {
	t.wins += wins
	t.matches += matches
}

// StrikerLeaderboard rolls per (striker, role, arena) records up into overall,
// per-role and per-arena win rates.
func (e *Engine) StrikerLeaderboard(ctx context.Context, excludeFriendlies bool) (*StrikerLeaderboard, error) {
	records, err := e.store.StrikerRecords(ctx, excludeFriendlies)
	if err != nil {
		return nil, err
	}
	return buildStrikerLeaderboard(records), nil
}

func buildStrikerLeaderboard(records []storage.StrikerRecord) *StrikerLeaderboard {
	type roleKey struct {
		striker string
		goalie  bool
	}
	type arenaKey struct {
		striker, arena string
	}
	overall := map[string]*tally{}
	byRole := map[roleKey]*tally{}
	byArena := map[arenaKey]*tally{}
	for _, r := range records {
		bump(overall, r.Striker).add(r.Wins, r.Matches)
		bump(byRole, roleKey{r.Striker, r.IsGoalie}).add(r.Wins, r.Matches)
		bump(byArena, arenaKey{r.Striker, r.Arena}).add(r.Wins, r.Matches)
	}

	lb := &StrikerLeaderboard{
		Overall: make([]StrikerStat, 0, len(overall)),
		ByRole:  make([]StrikerStat, 0, len(byRole)),
		ByArena: make([]StrikerStat, 0, len(byArena)),
	}
	for s, t := range overall {
		lb.Overall = append(lb.Overall, StrikerStat{Striker: s, Wins: t.wins, Matches: t.matches, WinRate: WinRate(t.wins, t.matches)})
	}
	for k, t := range byRole {
		lb.ByRole = append(lb.ByRole, StrikerStat{Striker: k.striker, Role: catalog.RoleName(k.goalie),
			Wins: t.wins, Matches: t.matches, WinRate: WinRate(t.wins, t.matches)})
	}
	for k, t := range byArena {
		lb.ByArena = append(lb.ByArena, StrikerStat{Striker: k.striker, Arena: k.arena,
			Wins: t.wins, Matches: t.matches, WinRate: WinRate(t.wins, t.matches)})
	}
	slices.SortFunc(lb.Overall, compareStrikerStats)
	slices.SortFunc(lb.ByRole, compareStrikerStats)
	slices.SortFunc(lb.ByArena, compareStrikerStats)
	return lb
}

// compareStrikerStats groups by arena then role, and ranks by win rate, matches and name.
func compareStrikerStats(a, b StrikerStat) int {
	if c := cmp.Compare(a.Arena, b.Arena); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Role, b.Role); c != 0 {
		return c
	}
	if c := byRateDesc(a.WinRate, b.WinRate); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Matches, a.Matches); c != 0 {
		return c
	}
	return cmp.Compare(a.Striker, b.Striker)
}

func bump[K comparable](m map[K]*tally, k K) *tally {
	t, ok := m[k]
	if !ok {
		t = &tally{}
		m[k] = t
	}
	return t
}
