package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"striker-stats-server/matcherrors"
)

// matchRowSelect yields the columns scanned by scanMatchRow. Callers append WHERE/GROUP BY.
const matchRowSelect = `
	SELECT m.id, m.arena, m.team1_score, m.team2_score, m.team1_won, m.duration, m.created_at,
		(AVG(mp.rank) FILTER (WHERE mp.rank > 0 AND mp.team = 1))::float8,
		(AVG(mp.rank) FILTER (WHERE mp.rank > 0 AND mp.team = 2))::float8,
		(AVG(mp.rank) FILTER (WHERE mp.rank > 0))::float8,
		COUNT(mp.id) FILTER (WHERE mp.rank > 0)
	FROM live_matches m
	LEFT JOIN live_match_players mp ON mp.match_id = m.id`

const matchRowGroupBy = `
	GROUP BY m.id, m.arena, m.team1_score, m.team2_score, m.team1_won, m.duration, m.created_at`

func scanMatchRow(row pgx.Row, r *MatchRow) error {
	return row.Scan(&r.ID, &r.Arena, &r.Team1Score, &r.Team2Score, &r.Team1Won, &r.Duration, &r.CreatedAt,
		&r.Team1AvgRank, &r.Team2AvgRank, &r.AvgRank, &r.RankedCount)
}

// ListPlayers returns live players with their three most played strikers and match count,
// ordered by match count DESC then name.
func (s *Store) ListPlayers(ctx context.Context) ([]PlayerSummary, error) {
	rows, err := s.pool.Query(ctx, `
		WITH picks AS (
			SELECT mp.player_id, mp.striker, COUNT(*) AS n,
				ROW_NUMBER() OVER (PARTITION BY mp.player_id ORDER BY COUNT(*) DESC, mp.striker) AS rn
			FROM live_match_players mp
			WHERE mp.player_id IS NOT NULL
			GROUP BY mp.player_id, mp.striker
		)
		SELECT p.id, p.name,
			COALESCE(array_agg(c.striker ORDER BY c.rn) FILTER (WHERE c.rn <= 3), '{}') AS top_strikers,
			COALESCE(SUM(c.n), 0)::int AS match_count
		FROM live_players p
		LEFT JOIN picks c ON c.player_id = p.id
		GROUP BY p.id, p.name
		ORDER BY match_count DESC, p.name`)
	if err != nil {
		return nil, storeErr("list players", err)
	}
	defer rows.Close()
	out := []PlayerSummary{}
	for rows.Next() {
		var p PlayerSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.TopStrikers, &p.MatchCount); err != nil {
			return nil, storeErr("scan player", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list players", err)
	}
	return out, nil
}

// ListMatches returns every live match, newest first.
func (s *Store) ListMatches(ctx context.Context) ([]MatchRow, error) {
	rows, err := s.pool.Query(ctx, matchRowSelect+matchRowGroupBy+`
	ORDER BY m.created_at DESC`)
	if err != nil {
		return nil, storeErr("list matches", err)
	}
	defer rows.Close()
	out := []MatchRow{}
	for rows.Next() {
		var r MatchRow
		if err := scanMatchRow(rows, &r); err != nil {
			return nil, storeErr("scan match", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list matches", err)
	}
	return out, nil
}

// GetMatch returns a live match and its participants, or matcherrors.ErrMatchNotFound.
// Participants are ordered by team, then submission order.
func (s *Store) GetMatch(ctx context.Context, matchID string) (*MatchDetail, error) {
	var d MatchDetail
	err := scanMatchRow(s.pool.QueryRow(ctx, matchRowSelect+`
	WHERE m.id = $1`+matchRowGroupBy, matchID), &d.MatchRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, matcherrors.ErrMatchNotFound
		}
		return nil, storeErr("get match", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(p.name, 'Anonymous'), mp.player_id, mp.team, mp.striker, mp.is_goalie, mp.rank,
			mp.goals, mp.assists, mp.saves, mp.knockouts, mp.damage, mp.shots, mp.redirects, mp.orbs
		FROM live_match_players mp
		LEFT JOIN players p ON p.id = mp.player_id
		WHERE mp.match_id = $1
		ORDER BY mp.team, mp.id`, matchID)
	if err != nil {
		return nil, storeErr("get participants", err)
	}
	defer rows.Close()
	d.Participants = []ParticipantRow{}
	for rows.Next() {
		var p ParticipantRow
		if err := rows.Scan(&p.Name, &p.PlayerID, &p.Team, &p.Striker, &p.IsGoalie, &p.Rank,
			&p.Goals, &p.Assists, &p.Saves, &p.Knockouts, &p.Damage, &p.Shots, &p.Redirects, &p.Orbs); err != nil {
			return nil, storeErr("scan participant", err)
		}
		d.Participants = append(d.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get participants", err)
	}
	return &d, nil
}

// StrikerRecords returns wins/matches per (striker, role, arena).
// With excludeFriendlies, matches with registered players on both sides are skipped.
func (s *Store) StrikerRecords(ctx context.Context, excludeFriendlies bool) ([]StrikerRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT mp.striker, mp.is_goalie, m.arena,
			SUM((m.team1_won = (mp.team = 1))::int) AS wins,
			COUNT(*) AS matches
		FROM live_match_players mp
		JOIN live_matches m ON m.id = mp.match_id
		WHERE $1 = false OR NOT EXISTS (
			SELECT 1
			FROM live_match_players a
			JOIN live_match_players b ON b.match_id = a.match_id AND b.team <> a.team
			WHERE a.match_id = m.id AND a.player_id IS NOT NULL AND b.player_id IS NOT NULL
		)
		GROUP BY mp.striker, mp.is_goalie, m.arena
		ORDER BY mp.striker, mp.is_goalie, m.arena`, excludeFriendlies)
	if err != nil {
		return nil, storeErr("striker records", err)
	}
	defer rows.Close()
	var out []StrikerRecord
	for rows.Next() {
		var r StrikerRecord
		if err := rows.Scan(&r.Striker, &r.IsGoalie, &r.Arena, &r.Wins, &r.Matches); err != nil {
			return nil, storeErr("scan striker record", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("striker records", err)
	}
	return out, nil
}

// DuoRecords returns wins/matches per arena for every unordered pair of same-side rows.
// Pairs are formed by row identity, so two anonymous participants still count as a pair.
func (s *Store) DuoRecords(ctx context.Context) ([]DuoRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.arena, a.striker, a.is_goalie, b.striker, b.is_goalie,
			SUM((m.team1_won = (a.team = 1))::int) AS wins,
			COUNT(*) AS matches
		FROM live_match_players a
		JOIN live_match_players b ON b.match_id = a.match_id AND b.team = a.team AND b.id > a.id
		JOIN live_matches m ON m.id = a.match_id
		GROUP BY m.arena, a.striker, a.is_goalie, b.striker, b.is_goalie`)
	if err != nil {
		return nil, storeErr("duo records", err)
	}
	defer rows.Close()
	var out []DuoRecord
	for rows.Next() {
		var r DuoRecord
		if err := rows.Scan(&r.Arena, &r.StrikerA, &r.GoalieA, &r.StrikerB, &r.GoalieB, &r.Wins, &r.Matches); err != nil {
			return nil, storeErr("scan duo record", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("duo records", err)
	}
	return out, nil
}

// TrioRecords returns wins/matches per arena for every full same-side triple.
func (s *Store) TrioRecords(ctx context.Context) ([]TrioRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.arena, a.striker, a.is_goalie, b.striker, b.is_goalie, c.striker, c.is_goalie,
			SUM((m.team1_won = (a.team = 1))::int) AS wins,
			COUNT(*) AS matches
		FROM live_match_players a
		JOIN live_match_players b ON b.match_id = a.match_id AND b.team = a.team AND b.id > a.id
		JOIN live_match_players c ON c.match_id = a.match_id AND c.team = a.team AND c.id > b.id
		JOIN live_matches m ON m.id = a.match_id
		GROUP BY m.arena, a.striker, a.is_goalie, b.striker, b.is_goalie, c.striker, c.is_goalie`)
	if err != nil {
		return nil, storeErr("trio records", err)
	}
	defer rows.Close()
	var out []TrioRecord
	for rows.Next() {
		var r TrioRecord
		if err := rows.Scan(&r.Arena, &r.Strikers[0], &r.Goalies[0], &r.Strikers[1], &r.Goalies[1],
			&r.Strikers[2], &r.Goalies[2], &r.Wins, &r.Matches); err != nil {
			return nil, storeErr("scan trio record", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("trio records", err)
	}
	return out, nil
}

// MatchupRecords returns, for every striker that faced f.Striker, how often the
// opponent's side won.
func (s *Store) MatchupRecords(ctx context.Context, f MatchupFilter) ([]MatchupRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT opp.striker,
			SUM((m.team1_won = (opp.team = 1))::int) AS wins,
			COUNT(*) AS matches
		FROM live_match_players me
		JOIN live_match_players opp ON opp.match_id = me.match_id AND opp.team <> me.team
		JOIN live_matches m ON m.id = me.match_id
		WHERE me.striker = $1
			AND ($2::boolean IS NULL OR me.is_goalie = $2)
			AND ($3 = '' OR m.arena = $3)
		GROUP BY opp.striker
		ORDER BY opp.striker`, f.Striker, f.Goalie, f.Arena)
	if err != nil {
		return nil, storeErr("matchup records", err)
	}
	defer rows.Close()
	var out []MatchupRecord
	for rows.Next() {
		var r MatchupRecord
		if err := rows.Scan(&r.Opponent, &r.Wins, &r.Matches); err != nil {
			return nil, storeErr("scan matchup record", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("matchup records", err)
	}
	return out, nil
}

// SoloCounterRecords returns wins/matches for every (striker, opposing striker) pair.
func (s *Store) SoloCounterRecords(ctx context.Context) ([]SoloCounterRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT me.striker, opp.striker,
			SUM((m.team1_won = (me.team = 1))::int) AS wins,
			COUNT(*) AS matches
		FROM live_match_players me
		JOIN live_match_players opp ON opp.match_id = me.match_id AND opp.team <> me.team
		JOIN live_matches m ON m.id = me.match_id
		GROUP BY me.striker, opp.striker
		ORDER BY me.striker, opp.striker`)
	if err != nil {
		return nil, storeErr("solo counter records", err)
	}
	defer rows.Close()
	var out []SoloCounterRecord
	for rows.Next() {
		var r SoloCounterRecord
		if err := rows.Scan(&r.Striker, &r.Opponent, &r.Wins, &r.Matches); err != nil {
			return nil, storeErr("scan solo counter record", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("solo counter records", err)
	}
	return out, nil
}

// PlayerTotals returns career sums for one player. A player with no matches gets zeros.
func (s *Store) PlayerTotals(ctx context.Context, playerID string) (*PlayerTotals, error) {
	var t PlayerTotals
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM((m.team1_won = (mp.team = 1))::int), 0),
			COALESCE(SUM(m.team1_score + m.team2_score), 0),
			COUNT(*) FILTER (WHERE mp.is_goalie),
			COALESCE(SUM((m.team1_won = (mp.team = 1))::int) FILTER (WHERE mp.is_goalie), 0),
			COALESCE(SUM(mp.goals), 0), COALESCE(SUM(mp.assists), 0),
			COALESCE(SUM(mp.saves), 0), COALESCE(SUM(mp.knockouts), 0),
			COALESCE(SUM(mp.damage), 0), COALESCE(SUM(mp.shots), 0),
			COALESCE(SUM(mp.redirects), 0), COALESCE(SUM(mp.orbs), 0)
		FROM live_match_players mp
		JOIN live_matches m ON m.id = mp.match_id
		WHERE mp.player_id = $1`, playerID).
		Scan(&t.Matches, &t.Wins, &t.SetsPlayed, &t.GoalieMatches, &t.GoalieWins,
			&t.Sums.Goals, &t.Sums.Assists, &t.Sums.Saves, &t.Sums.Knockouts,
			&t.Sums.Damage, &t.Sums.Shots, &t.Sums.Redirects, &t.Sums.Orbs)
	if err != nil {
		return nil, storeErr("player totals", err)
	}
	return &t, nil
}

// PlayerStrikerRecords returns one player's wins/matches per striker.
func (s *Store) PlayerStrikerRecords(ctx context.Context, playerID string) ([]WinLossRecord, error) {
	return s.playerWinLoss(ctx, "mp.striker", playerID)
}

// PlayerArenaRecords returns one player's wins/matches per arena.
func (s *Store) PlayerArenaRecords(ctx context.Context, playerID string) ([]WinLossRecord, error) {
	return s.playerWinLoss(ctx, "m.arena", playerID)
}

// playerWinLoss groups a player's matches by keyColumn, which must be a trusted column name.
func (s *Store) playerWinLoss(ctx context.Context, keyColumn, playerID string) ([]WinLossRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+keyColumn+`,
			SUM((m.team1_won = (mp.team = 1))::int) AS wins,
			COUNT(*) AS matches
		FROM live_match_players mp
		JOIN live_matches m ON m.id = mp.match_id
		WHERE mp.player_id = $1
		GROUP BY `+keyColumn+`
		ORDER BY `+keyColumn, playerID)
	if err != nil {
		return nil, storeErr("player records", err)
	}
	defer rows.Close()
	var out []WinLossRecord
	for rows.Next() {
		var r WinLossRecord
		if err := rows.Scan(&r.Key, &r.Wins, &r.Matches); err != nil {
			return nil, storeErr("scan player record", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("player records", err)
	}
	return out, nil
}
