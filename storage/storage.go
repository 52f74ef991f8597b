package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"striker-stats-server/matcherrors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS players (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS matches (
	id          UUID PRIMARY KEY,
	arena       TEXT NOT NULL,
	team1_score SMALLINT NOT NULL,
	team2_score SMALLINT NOT NULL,
	team1_won   BOOLEAN NOT NULL,
	duration    INT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_matches_arena ON matches(arena);
CREATE INDEX IF NOT EXISTS idx_matches_created_at ON matches(created_at DESC);
CREATE TABLE IF NOT EXISTS match_players (
	id         BIGSERIAL PRIMARY KEY,
	match_id   UUID NOT NULL REFERENCES matches(id),
	player_id  UUID REFERENCES players(id),
	team       SMALLINT NOT NULL CHECK (team IN (1, 2)),
	striker    TEXT NOT NULL,
	is_goalie  BOOLEAN NOT NULL DEFAULT false,
	rank       SMALLINT NOT NULL DEFAULT 0,
	goals      INT NOT NULL DEFAULT 0,
	assists    INT NOT NULL DEFAULT 0,
	saves      INT NOT NULL DEFAULT 0,
	knockouts  INT NOT NULL DEFAULT 0,
	damage     INT NOT NULL DEFAULT 0,
	shots      INT NOT NULL DEFAULT 0,
	redirects  INT NOT NULL DEFAULT 0,
	orbs       INT NOT NULL DEFAULT 0,
	deleted_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_match_players_match_id ON match_players(match_id);
CREATE INDEX IF NOT EXISTS idx_match_players_player_id ON match_players(player_id);
CREATE INDEX IF NOT EXISTS idx_match_players_striker ON match_players(striker);
`

// Every read path goes through these views so soft-deleted rows are filtered in one place.
// A participation row is live only while its match is live.
const createViewsSQL = `
CREATE OR REPLACE VIEW live_players AS
	SELECT id, name, created_at FROM players WHERE deleted_at IS NULL;
CREATE OR REPLACE VIEW live_matches AS
	SELECT id, arena, team1_score, team2_score, team1_won, duration, created_at
	FROM matches WHERE deleted_at IS NULL;
CREATE OR REPLACE VIEW live_match_players AS
	SELECT mp.id, mp.match_id, mp.player_id, mp.team, mp.striker, mp.is_goalie, mp.rank,
		mp.goals, mp.assists, mp.saves, mp.knockouts, mp.damage, mp.shots, mp.redirects, mp.orbs
	FROM match_players mp
	JOIN matches m ON m.id = mp.match_id
	WHERE mp.deleted_at IS NULL AND m.deleted_at IS NULL;
`

// Postgres error codes mapped to validation errors.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Store persists and aggregates matches, participants and players.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the schema and views exist.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, stmt := range []string{createTableSQL, createViewsSQL} {
		if _, err := pool.Exec(ctx, strings.TrimSpace(stmt)); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// storeErr tags err as a store fault so callers can tell it apart from validation and lookups.
func storeErr(op string, err error) error {
	return errors.Join(fmt.Errorf("%s: %w", op, err), matcherrors.ErrStore)
}

// InsertMatch persists a match and its participants in one transaction and returns the new match id.
// Nothing is visible to readers unless every row was inserted.
func (s *Store) InsertMatch(ctx context.Context, m NewMatch) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", storeErr("begin insert match", err)
	}
	defer tx.Rollback(ctx)

	var matchID string
	err = tx.QueryRow(ctx, `
		INSERT INTO matches (id, arena, team1_score, team2_score, team1_won)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		uuid.NewString(), m.Arena, m.Team1Score, m.Team2Score, m.Team1Won()).Scan(&matchID)
	if err != nil {
		return "", storeErr("insert match", err)
	}

	for i, p := range m.Participants {
		_, err := tx.Exec(ctx, `
			INSERT INTO match_players (match_id, player_id, team, striker, is_goalie, rank,
				goals, assists, saves, knockouts, damage, shots, redirects, orbs)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			matchID, p.PlayerID, p.Team, p.Striker, p.IsGoalie, p.Rank,
			p.Counters.Goals, p.Counters.Assists, p.Counters.Saves, p.Counters.Knockouts,
			p.Counters.Damage, p.Counters.Shots, p.Counters.Redirects, p.Counters.Orbs)
		if err != nil {
			if isPgCode(err, pgForeignKeyViolation) {
				return "", matcherrors.Invalid(fmt.Sprintf("Player %d references an unknown player", i+1))
			}
			return "", storeErr("insert participant", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", storeErr("commit insert match", err)
	}
	return matchID, nil
}

// UpdateMatchDuration sets the duration of the most recent live match matching fp.
// Returns matcherrors.ErrMatchNotFound when nothing matches.
func (s *Store) UpdateMatchDuration(ctx context.Context, fp DurationFingerprint, duration int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE matches SET duration = $1
		WHERE id = (
			SELECT m.id
			FROM live_matches m
			JOIN live_match_players mp ON mp.match_id = m.id
			WHERE m.arena = $2 AND m.team1_score = $3 AND m.team2_score = $4
				AND mp.striker = $5
				AND ($6::uuid IS NULL OR mp.player_id = $6)
				AND (NOT $11::boolean OR mp.player_id IS NULL)
				AND mp.goals = $7 AND mp.assists = $8 AND mp.saves = $9 AND mp.knockouts = $10
			ORDER BY m.created_at DESC
			LIMIT 1
		)`,
		duration, fp.Arena, fp.Team1Score, fp.Team2Score, fp.Striker, fp.PlayerID,
		fp.Goals, fp.Assists, fp.Saves, fp.Knockouts, fp.Anonymous)
	if err != nil {
		return storeErr("update match duration", err)
	}
	if tag.RowsAffected() == 0 {
		return matcherrors.ErrMatchNotFound
	}
	return nil
}

// SoftDeleteMatch marks a live match and its participants deleted.
// It returns the registered players who took part so their views can be refreshed.
func (s *Store) SoftDeleteMatch(ctx context.Context, matchID string) ([]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin delete match", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE matches SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, matchID)
	if err != nil {
		return nil, storeErr("delete match", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, matcherrors.ErrMatchNotFound
	}

	rows, err := tx.Query(ctx, `
		UPDATE match_players SET deleted_at = now()
		WHERE match_id = $1 AND deleted_at IS NULL
		RETURNING player_id`, matchID)
	if err != nil {
		return nil, storeErr("delete participants", err)
	}
	var playerIDs []string
	for rows.Next() {
		var id *string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, storeErr("scan deleted participant", err)
		}
		if id != nil {
			playerIDs = append(playerIDs, *id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr("delete participants", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit delete match", err)
	}
	return playerIDs, nil
}

// CreatePlayer registers a named player.
func (s *Store) CreatePlayer(ctx context.Context, name string) (*Player, error) {
	p := Player{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if p.Name == "" {
		return nil, matcherrors.Invalid("Player name is required")
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO players (id, name) VALUES ($1, $2)
		RETURNING created_at`, p.ID, p.Name).Scan(&p.CreatedAt)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return nil, matcherrors.Invalid(fmt.Sprintf("Player %q already exists", p.Name))
		}
		return nil, storeErr("insert player", err)
	}
	return &p, nil
}

// GetPlayer returns a live player by id, or matcherrors.ErrPlayerNotFound.
func (s *Store) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	var p Player
	err := s.pool.QueryRow(ctx, `SELECT id, name, created_at FROM live_players WHERE id = $1`, playerID).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, matcherrors.ErrPlayerNotFound
		}
		return nil, storeErr("get player", err)
	}
	return &p, nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
