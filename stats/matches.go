package stats

import (
	"context"
	"math"
	"time"

	"striker-stats-server/catalog"
	"striker-stats-server/storage"
)

// Balance levels, from most to least even.
const (
	BalancePerfect       = "Perfectly Balanced"
	BalanceSlight        = "Slightly Uneven"
	BalanceModerate      = "Moderately Uneven"
	BalanceVery          = "Very Uneven"
	BalanceNotEnoughData = "Not enough data"
)

// minRankedForBalance is the number of ranked participants a match needs
// before its balance is classified.
const minRankedForBalance = 4

// ClassifyBalance compares the average rank of both sides. rankedCount is the number
// of participants with a rank above placements; team averages are nil for a side
// with none.
func ClassifyBalance(team1Avg, team2Avg *float64, rankedCount int) string {
	if rankedCount < minRankedForBalance || team1Avg == nil || team2Avg == nil {
		return BalanceNotEnoughData
	}
	diff := Round2(math.Abs(*team1Avg - *team2Avg))
	switch {
	case diff <= 0.34:
		return BalancePerfect
	case diff <= 1:
		return BalanceSlight
	case diff <= 1.5:
		return BalanceModerate
	}
	return BalanceVery
}

// MatchSummary is a row of the match list.
type MatchSummary struct {
	ID           string    `json:"id"`
	Arena        string    `json:"arena"`
	Team1Score   int       `json:"team1Score"`
	Team2Score   int       `json:"team2Score"`
	Team1Won     bool      `json:"team1Won"`
	AvgMatchRank *float64  `json:"avg_match_rank"`
	AvgRankName  string    `json:"avgRankName,omitempty"`
	BalanceLevel string    `json:"balance_level"`
	Duration     int       `json:"duration"`
	CreatedAt    time.Time `json:"createdAt"`
}

func summarize(r storage.MatchRow) MatchSummary {
	s := MatchSummary{
		ID:           r.ID,
		Arena:        r.Arena,
		Team1Score:   r.Team1Score,
		Team2Score:   r.Team2Score,
		Team1Won:     r.Team1Won,
		BalanceLevel: ClassifyBalance(r.Team1AvgRank, r.Team2AvgRank, r.RankedCount),
		Duration:     r.Duration,
		CreatedAt:    r.CreatedAt,
	}
	if r.AvgRank != nil {
		avg := Round2(*r.AvgRank)
		s.AvgMatchRank = &avg
		s.AvgRankName = catalog.RankName(int(math.Round(avg)))
	}
	return s
}

// ListMatches returns every live match, newest first, with its balance classification.
func (e *Engine) ListMatches(ctx context.Context) ([]MatchSummary, error) {
	rows, err := e.store.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MatchSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, summarize(r))
	}
	return out, nil
}

// ParticipantView is one participant on the match page.
type ParticipantView struct {
	storage.ParticipantRow
	Role     string `json:"role"`
	RankName string `json:"rankName"`
}

// MatchView is a match with its six participants, side 1 first.
type MatchView struct {
	MatchSummary
	Team1 []ParticipantView `json:"team1"`
	Team2 []ParticipantView `json:"team2"`
}

// Match returns one live match, or matcherrors.ErrMatchNotFound.
func (e *Engine) Match(ctx context.Context, matchID string) (*MatchView, error) {
	d, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	v := &MatchView{
		MatchSummary: summarize(d.MatchRow),
		Team1:        []ParticipantView{},
		Team2:        []ParticipantView{},
	}
	for _, p := range d.Participants {
		pv := ParticipantView{ParticipantRow: p, Role: catalog.RoleName(p.IsGoalie), RankName: catalog.RankName(p.Rank)}
		if p.Team == 1 {
			v.Team1 = append(v.Team1, pv)
		} else {
			v.Team2 = append(v.Team2, pv)
		}
	}
	return v, nil
}
