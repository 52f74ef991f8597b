package stats

import (
	"cmp"
	"context"
	"slices"

	"striker-stats-server/catalog"
	"striker-stats-server/storage"
)

// CounterAverages holds an average for each of the eight counters.
// Fields are nil when the denominator is zero.
type CounterAverages struct {
	Goals     *float64 `json:"goals"`
	Assists   *float64 `json:"assists"`
	Saves     *float64 `json:"saves"`
	Knockouts *float64 `json:"knockouts"`
	Damage    *float64 `json:"damage"`
	Shots     *float64 `json:"shots"`
	Redirects *float64 `json:"redirects"`
	Orbs      *float64 `json:"orbs"`
}

func averages(sums storage.Counters, n int) CounterAverages {
	return CounterAverages{
		Goals:     ratio(sums.Goals, n),
		Assists:   ratio(sums.Assists, n),
		Saves:     ratio(sums.Saves, n),
		Knockouts: ratio(sums.Knockouts, n),
		Damage:    ratio(sums.Damage, n),
		Shots:     ratio(sums.Shots, n),
		Redirects: ratio(sums.Redirects, n),
		Orbs:      ratio(sums.Orbs, n),
	}
}

// WinLossStat is a win rate keyed by a striker, arena or role name.
type WinLossStat struct {
	Name    string   `json:"name"`
	Wins    int      `json:"wins"`
	Losses  int      `json:"losses"`
	Matches int      `json:"matches"`
	WinRate *float64 `json:"winRate"`
}

func newWinLoss(name string, wins, matches int) WinLossStat {
	return WinLossStat{Name: name, Wins: wins, Losses: matches - wins, Matches: matches, WinRate: WinRate(wins, matches)}
}

// PlayerCareer is the career summary shown on a player page.
type PlayerCareer struct {
	Player        storage.Player  `json:"player"`
	MatchesPlayed int             `json:"matchesPlayed"`
	Wins          int             `json:"wins"`
	Losses        int             `json:"losses"`
	WinRate       *float64        `json:"winRate"`
	SetsPlayed    int             `json:"setsPlayed"`
	Roles         []WinLossStat   `json:"roles"`
	TopStrikers   []WinLossStat   `json:"topStrikers"`
	Arenas        []WinLossStat   `json:"arenas"`
	PerMatch      CounterAverages `json:"perMatch"`
	PerSet        CounterAverages `json:"perSet"`
}

// PlayerCareer aggregates one player's matches. An unknown player yields
// matcherrors.ErrPlayerNotFound from the store.
func (e *Engine) PlayerCareer(ctx context.Context, playerID string) (*PlayerCareer, error) {
	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	totals, err := e.store.PlayerTotals(ctx, playerID)
	if err != nil {
		return nil, err
	}
	strikers, err := e.store.PlayerStrikerRecords(ctx, playerID)
	if err != nil {
		return nil, err
	}
	arenas, err := e.store.PlayerArenaRecords(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return buildCareer(*player, *totals, strikers, arenas), nil
}

func buildCareer(player storage.Player, t storage.PlayerTotals, strikers, arenas []storage.WinLossRecord) *PlayerCareer {
	c := &PlayerCareer{
		Player:        player,
		MatchesPlayed: t.Matches,
		Wins:          t.Wins,
		Losses:        t.Matches - t.Wins,
		WinRate:       WinRate(t.Wins, t.Matches),
		SetsPlayed:    t.SetsPlayed,
		Roles: []WinLossStat{
			newWinLoss(catalog.RoleName(false), t.Wins-t.GoalieWins, t.Matches-t.GoalieMatches),
			newWinLoss(catalog.RoleName(true), t.GoalieWins, t.GoalieMatches),
		},
		TopStrikers: make([]WinLossStat, 0, len(strikers)),
		Arenas:      make([]WinLossStat, 0, len(arenas)),
		PerMatch:    averages(t.Sums, t.Matches),
		PerSet:      averages(t.Sums, t.SetsPlayed),
	}
	for _, r := range strikers {
		c.TopStrikers = append(c.TopStrikers, newWinLoss(r.Key, r.Wins, r.Matches))
	}
	for _, r := range arenas {
		c.Arenas = append(c.Arenas, newWinLoss(r.Key, r.Wins, r.Matches))
	}
	slices.SortFunc(c.TopStrikers, compareWinLoss)
	slices.SortFunc(c.Arenas, compareWinLoss)
	return c
}

// compareWinLoss ranks by win rate, then times played, then name.
func compareWinLoss(a, b WinLossStat) int {
	if c := byRateDesc(a.WinRate, b.WinRate); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Matches, a.Matches); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}
