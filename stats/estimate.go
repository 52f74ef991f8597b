package stats

import (
	"context"
	"fmt"

	"striker-stats-server/catalog"
	"striker-stats-server/matcherrors"
)

// priorWinRate is assumed for a striker with no recorded matches.
const priorWinRate = 50.0

// StrikerRate is the win rate used for one striker in an estimate.
type StrikerRate struct {
	Striker string  `json:"striker"`
	WinRate float64 `json:"winRate"`
	Matches int     `json:"matches"`
}

// WinEstimate is the estimated chance of each team winning, in percent.
type WinEstimate struct {
	Arena  string        `json:"arena"`
	TeamA  float64       `json:"teamA"`
	TeamB  float64       `json:"teamB"`
	RatesA []StrikerRate `json:"ratesA"`
	RatesB []StrikerRate `json:"ratesB"`
}

// EstimateWin compares the mean striker win rates of two teams on arena
// (every arena when empty or catalog.AllMaps): A = 50 + (meanA - meanB) / 2.
func (e *Engine) EstimateWin(ctx context.Context, arena string, teamA, teamB []string) (*WinEstimate, error) {
	if arena == catalog.AllMaps {
		arena = ""
	}
	if arena != "" && !catalog.IsArena(arena) {
		return nil, matcherrors.Invalid(fmt.Sprintf("Unknown arena %q", arena))
	}
	for _, s := range append(append([]string{}, teamA...), teamB...) {
		if !catalog.IsStriker(s) {
			return nil, matcherrors.Invalid(fmt.Sprintf("Unknown striker %q", s))
		}
	}
	records, err := e.store.StrikerRecords(ctx, false)
	if err != nil {
		return nil, err
	}
	byStriker := map[string]*tally{}
	for _, r := range records {
		if arena == "" || r.Arena == arena {
			bump(byStriker, r.Striker).add(r.Wins, r.Matches)
		}
	}

	est := &WinEstimate{Arena: arena, RatesA: rates(byStriker, teamA), RatesB: rates(byStriker, teamB)}
	if est.Arena == "" {
		est.Arena = catalog.AllMaps
	}
	a := priorWinRate + (meanRate(est.RatesA)-meanRate(est.RatesB))/2
	a = min(max(a, 0), 100)
	est.TeamA = Round2(a)
	est.TeamB = Round2(100 - a)
	return est, nil
}

func rates(byStriker map[string]*tally, team []string) []StrikerRate {
	out := make([]StrikerRate, 0, len(team))
	for _, s := range team {
		r := StrikerRate{Striker: s, WinRate: priorWinRate}
		if t, ok := byStriker[s]; ok && t.matches > 0 {
			r.WinRate = *WinRate(t.wins, t.matches)
			r.Matches = t.matches
		}
		out = append(out, r)
	}
	return out
}

func meanRate(rs []StrikerRate) float64 {
	if len(rs) == 0 {
		return priorWinRate
	}
	var sum float64
	for _, r := range rs {
		sum += r.WinRate
	}
	return sum / float64(len(rs))
}
