package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"striker-stats-server/matcherrors"
	"striker-stats-server/storage"
)

// Views refreshed after a write. A player's page is "player:<id>".
const (
	ViewHome   = "home"
	ViewRoster = "roster"
)

// PlayerView returns the view name of a player's page.
func PlayerView(playerID string) string {
	return "player:" + playerID
}

// Store is the write half of storage.FactStore.
type Store interface {
	InsertMatch(ctx context.Context, m storage.NewMatch) (string, error)
	UpdateMatchDuration(ctx context.Context, fp storage.DurationFingerprint, duration int) error
	SoftDeleteMatch(ctx context.Context, matchID string) ([]string, error)
}

var _ Store = storage.FactStore(nil)

// Invalidator is notified of views whose data changed.
type Invalidator interface {
	Invalidate(views ...string)
}

// DurationInput backfills the duration of a stored match identified by a fingerprint.
type DurationInput struct {
	storage.DurationFingerprint
	Duration int `json:"duration"`
}

// Service validates and records matches. It is safe for concurrent use.
type Service struct {
	store     Store
	inv       Invalidator
	setsToWin int
}

// NewService returns a service writing to store and notifying inv (which may be nil).
func NewService(store Store, inv Invalidator, setsToWin int) *Service {
	return &Service{store: store, inv: inv, setsToWin: setsToWin}
}

// Submit validates in, stores the match and its six participants, and returns the match id.
// Nothing is stored when validation fails.
func (s *Service) Submit(ctx context.Context, in MatchInput) (string, error) {
	m, err := Validate(in, s.setsToWin)
	if err != nil {
		return "", err
	}
	id, err := s.store.InsertMatch(ctx, m)
	if err != nil {
		return "", err
	}
	var players []string
	for _, p := range m.Participants {
		if p.PlayerID != nil {
			players = append(players, *p.PlayerID)
		}
	}
	slog.Info("match recorded", "tag", "ingest", "match", id, "arena", m.Arena,
		"score", fmt.Sprintf("%d-%d", m.Team1Score, m.Team2Score))
	s.invalidate(players)
	return id, nil
}

// UpdateDuration sets the duration of the most recent match matching the fingerprint.
// A player reference of "anonymous" only matches unregistered participants; an
// omitted reference matches any participant.
func (s *Service) UpdateDuration(ctx context.Context, in DurationInput) error {
	if in.Duration <= 0 {
		return matcherrors.Invalid("Duration must be positive")
	}
	fp := in.DurationFingerprint
	fp.Anonymous = false
	if fp.PlayerID != nil {
		ref := strings.TrimSpace(*fp.PlayerID)
		switch {
		case ref == "":
			fp.PlayerID = nil
		case strings.EqualFold(ref, Anonymous):
			fp.PlayerID = nil
			fp.Anonymous = true
		default:
			id, err := uuid.Parse(ref)
			if err != nil {
				return matcherrors.Invalid("Invalid player id")
			}
			pid := id.String()
			fp.PlayerID = &pid
		}
	}
	if err := s.store.UpdateMatchDuration(ctx, fp, in.Duration); err != nil {
		return err
	}
	slog.Info("match duration updated", "tag", "ingest", "arena", fp.Arena, "duration", in.Duration)
	s.invalidate(nil)
	return nil
}

// DeleteMatch soft-deletes a match. Unknown ids yield matcherrors.ErrMatchNotFound.
func (s *Service) DeleteMatch(ctx context.Context, matchID string) error {
	if _, err := uuid.Parse(matchID); err != nil {
		return matcherrors.ErrMatchNotFound
	}
	players, err := s.store.SoftDeleteMatch(ctx, matchID)
	if err != nil {
		return err
	}
	slog.Info("match deleted", "tag", "ingest", "match", matchID)
	s.invalidate(players)
	return nil
}

func (s *Service) invalidate(playerIDs []string) {
	if s.inv == nil {
		return
	}
	views := []string{ViewHome, ViewRoster}
	for _, id := range playerIDs {
		views = append(views, PlayerView(id))
	}
	s.inv.Invalidate(views...)
}
