package stats

import (
	"cmp"
	"context"
	"math"
	"slices"

	"striker-stats-server/storage"
)

// SoloCounterStat is how Striker fares when Opponent is on the other side.
type SoloCounterStat struct {
	Striker  string   `json:"striker"`
	Opponent string   `json:"opponent"`
	Wins     int      `json:"wins"`
	Matches  int      `json:"matches"`
	WinRate  *float64 `json:"winRate"`
}

// SoloCounters returns every (striker, opponent) win rate, grouped by striker
// with the best matchups first.
func (e *Engine) SoloCounters(ctx context.Context) ([]SoloCounterStat, error) {
	records, err := e.store.SoloCounterRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SoloCounterStat, 0, len(records))
	for _, r := range records {
		out = append(out, SoloCounterStat{
			Striker:  r.Striker,
			Opponent: r.Opponent,
			Wins:     r.Wins,
			Matches:  r.Matches,
			WinRate:  WinRate(r.Wins, r.Matches),
		})
	}
	slices.SortFunc(out, func(a, b SoloCounterStat) int {
		if c := cmp.Compare(a.Striker, b.Striker); c != 0 {
			return c
		}
		if c := byRateDesc(a.WinRate, b.WinRate); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Matches, a.Matches); c != 0 {
			return c
		}
		return cmp.Compare(a.Opponent, b.Opponent)
	})
	return out, nil
}

// Pick is an opposing striker, optionally in a specific role (nil means either).
type Pick struct {
	Striker string
	Goalie  *bool
}

// CounterPickStat rates a striker as a counter to one or two opposing picks.
type CounterPickStat struct {
	Striker        string   `json:"striker"`
	WinRateVs1     *float64 `json:"winRateVs1"`
	MatchesVs1     int      `json:"matchesVs1"`
	WinRateVs2     *float64 `json:"winRateVs2"`
	MatchesVs2     int      `json:"matchesVs2"`
	AverageWinRate *float64 `json:"averageWinRate"`
	TotalMatches   int      `json:"totalMatches"`
}

// CounterPicks ranks every striker that has faced first or second by its win rate
// against them. Both input strikers are excluded from the result. second may be empty;
// when it is set, the average is only known for opponents that faced both, and the
// rest sort after them.
func (e *Engine) CounterPicks(ctx context.Context, first, second Pick) ([]CounterPickStat, error) {
	vs1, err := e.store.MatchupRecords(ctx, storage.MatchupFilter{Striker: first.Striker, Goalie: first.Goalie})
	if err != nil {
		return nil, err
	}
	var vs2 []storage.MatchupRecord
	if second.Striker != "" {
		vs2, err = e.store.MatchupRecords(ctx, storage.MatchupFilter{Striker: second.Striker, Goalie: second.Goalie})
		if err != nil {
			return nil, err
		}
	}
	return buildCounterPicks(first.Striker, second.Striker, vs1, vs2), nil
}

func buildCounterPicks(first, second string, vs1, vs2 []storage.MatchupRecord) []CounterPickStat {
	byName := map[string]*CounterPickStat{}
	get := func(name string) *CounterPickStat {
		s, ok := byName[name]
		if !ok {
			s = &CounterPickStat{Striker: name}
			byName[name] = s
		}
		return s
	}
	for _, r := range vs1 {
		s := get(r.Opponent)
		s.MatchesVs1 = r.Matches
		s.WinRateVs1 = WinRate(r.Wins, r.Matches)
	}
	for _, r := range vs2 {
		s := get(r.Opponent)
		s.MatchesVs2 = r.Matches
		s.WinRateVs2 = WinRate(r.Wins, r.Matches)
	}
	delete(byName, first)
	delete(byName, second)

	out := make([]CounterPickStat, 0, len(byName))
	for _, s := range byName {
		s.TotalMatches = s.MatchesVs1 + s.MatchesVs2
		if second == "" {
			s.AverageWinRate = s.WinRateVs1
		} else {
			s.AverageWinRate = averageRate(s.WinRateVs1, s.WinRateVs2)
		}
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b CounterPickStat) int {
		if c := byRateDesc(a.AverageWinRate, b.AverageWinRate); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalMatches, a.TotalMatches); c != 0 {
			return c
		}
		return cmp.Compare(a.Striker, b.Striker)
	})
	return out
}

// averageRate is the mean of two rates rounded half up, or nil unless both are known.
// Rates carry 2 decimals, so the mean is taken in whole hundredths.
func averageRate(r1, r2 *float64) *float64 {
	if r1 == nil || r2 == nil {
		return nil
	}
	sum := int64(math.Round(*r1*100)) + int64(math.Round(*r2*100))
	avg := roundQuotient(sum, 200)
	return &avg
}

// ArenaCounterStat rates an opponent against a striker globally and on one arena,
// next to the opponent's own baseline on that arena.
type ArenaCounterStat struct {
	Striker         string   `json:"striker"`
	GlobalWinRate   *float64 `json:"globalWinRate"`
	GlobalMatches   int      `json:"globalMatches"`
	ArenaWinRate    *float64 `json:"arenaWinRate"`
	ArenaMatches    int      `json:"arenaMatches"`
	BaselineWinRate *float64 `json:"baselineWinRate"`
	BaselineMatches int      `json:"baselineMatches"`
}

// ArenaCounters returns the best counters to striker on arena, sorted by arena
// win rate (no data last), then arena matches.
func (e *Engine) ArenaCounters(ctx context.Context, striker, arena string) ([]ArenaCounterStat, error) {
	global, err := e.store.MatchupRecords(ctx, storage.MatchupFilter{Striker: striker})
	if err != nil {
		return nil, err
	}
	onArena, err := e.store.MatchupRecords(ctx, storage.MatchupFilter{Striker: striker, Arena: arena})
	if err != nil {
		return nil, err
	}
	records, err := e.store.StrikerRecords(ctx, false)
	if err != nil {
		return nil, err
	}
	return buildArenaCounters(striker, arena, global, onArena, records), nil
}

func buildArenaCounters(striker, arena string, global, onArena []storage.MatchupRecord, records []storage.StrikerRecord) []ArenaCounterStat {
	baseline := map[string]*tally{}
	for _, r := range records {
		if r.Arena == arena {
			bump(baseline, r.Striker).add(r.Wins, r.Matches)
		}
	}
	arenaByName := make(map[string]storage.MatchupRecord, len(onArena))
	for _, r := range onArena {
		arenaByName[r.Opponent] = r
	}

	out := make([]ArenaCounterStat, 0, len(global))
	for _, g := range global {
		if g.Opponent == striker {
			continue
		}
		s := ArenaCounterStat{
			Striker:       g.Opponent,
			GlobalWinRate: WinRate(g.Wins, g.Matches),
			GlobalMatches: g.Matches,
		}
		if a, ok := arenaByName[g.Opponent]; ok {
			s.ArenaWinRate = WinRate(a.Wins, a.Matches)
			s.ArenaMatches = a.Matches
		}
		if b, ok := baseline[g.Opponent]; ok {
			s.BaselineWinRate = WinRate(b.wins, b.matches)
			s.BaselineMatches = b.matches
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b ArenaCounterStat) int {
		if c := byRateDesc(a.ArenaWinRate, b.ArenaWinRate); c != 0 {
			return c
		}
		if c := cmp.Compare(b.ArenaMatches, a.ArenaMatches); c != 0 {
			return c
		}
		return cmp.Compare(a.Striker, b.Striker)
	})
	return out
}
