package storage

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SearchMatches returns live matches on f.Arena (any arena when empty) in which every
// striker of f.Strikers took part on either side, newest first. Ties on creation
// time are ordered by id so pages do not overlap.
func (s *Store) SearchMatches(ctx context.Context, f SearchFilter) ([]MatchRoster, error) {
	builder := psql.
		Select(
			"m.id",
			"m.arena",
			"m.team1_score",
			"m.team2_score",
			"m.team1_won",
			"m.duration",
			"m.created_at",
			"array_agg(mp.striker ORDER BY mp.id) FILTER (WHERE mp.team = 1)",
			"array_agg(mp.is_goalie ORDER BY mp.id) FILTER (WHERE mp.team = 1)",
			"array_agg(mp.striker ORDER BY mp.id) FILTER (WHERE mp.team = 2)",
			"array_agg(mp.is_goalie ORDER BY mp.id) FILTER (WHERE mp.team = 2)").
		From("live_matches m").
		Join("live_match_players mp ON mp.match_id = m.id")

	if f.Arena != "" {
		builder = builder.Where(sq.Eq{"m.arena": f.Arena})
	}
	seen := make(map[string]bool, len(f.Strikers))
	for _, striker := range f.Strikers {
		if striker == "" || seen[striker] {
			continue
		}
		seen[striker] = true
		builder = builder.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM live_match_players x WHERE x.match_id = m.id AND x.striker = ?)", striker))
	}

	builder = builder.
		GroupBy("m.id", "m.arena", "m.team1_score", "m.team2_score", "m.team1_won", "m.duration", "m.created_at").
		OrderBy("m.created_at DESC", "m.id")
	if f.Limit > 0 {
		builder = builder.Limit(f.Limit)
	}
	if f.Offset > 0 {
		builder = builder.Offset(f.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, storeErr("build search query", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("search matches", err)
	}
	defer rows.Close()

	out := []MatchRoster{}
	for rows.Next() {
		var (
			r                    MatchRoster
			strikers1, strikers2 []string
			goalies1, goalies2   []bool
		)
		if err := rows.Scan(&r.ID, &r.Arena, &r.Team1Score, &r.Team2Score, &r.Team1Won, &r.Duration, &r.CreatedAt,
			&strikers1, &goalies1, &strikers2, &goalies2); err != nil {
			return nil, storeErr("scan search result", err)
		}
		r.Team1 = rosterSlots(strikers1, goalies1)
		r.Team2 = rosterSlots(strikers2, goalies2)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("search matches", err)
	}
	return out, nil
}

func rosterSlots(strikers []string, goalies []bool) []RosterSlot {
	slots := make([]RosterSlot, 0, len(strikers))
	for i, striker := range strikers {
		slots = append(slots, RosterSlot{Striker: striker, IsGoalie: i < len(goalies) && goalies[i]})
	}
	return slots
}
