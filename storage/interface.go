package storage

import "context"

// FactStore abstracts persistence of the match fact log and the aggregation queries over it.
// Implementations can be swapped for testing (fakes) or a different backend.
type FactStore interface {
	// Read
	ListPlayers(ctx context.Context) ([]PlayerSummary, error)
	GetPlayer(ctx context.Context, playerID string) (*Player, error)
	ListMatches(ctx context.Context) ([]MatchRow, error)
	GetMatch(ctx context.Context, matchID string) (*MatchDetail, error)
	SearchMatches(ctx context.Context, f SearchFilter) ([]MatchRoster, error)
	StrikerRecords(ctx context.Context, excludeFriendlies bool) ([]StrikerRecord, error)
	DuoRecords(ctx context.Context) ([]DuoRecord, error)
	TrioRecords(ctx context.Context) ([]TrioRecord, error)
	MatchupRecords(ctx context.Context, f MatchupFilter) ([]MatchupRecord, error)
	SoloCounterRecords(ctx context.Context) ([]SoloCounterRecord, error)
	PlayerTotals(ctx context.Context, playerID string) (*PlayerTotals, error)
	PlayerStrikerRecords(ctx context.Context, playerID string) ([]WinLossRecord, error)
	PlayerArenaRecords(ctx context.Context, playerID string) ([]WinLossRecord, error)

	// Write
	InsertMatch(ctx context.Context, m NewMatch) (string, error)
	UpdateMatchDuration(ctx context.Context, fp DurationFingerprint, duration int) error
	SoftDeleteMatch(ctx context.Context, matchID string) ([]string, error)
	CreatePlayer(ctx context.Context, name string) (*Player, error)

	// Lifecycle
	Close()
}

// Ensure *Store implements FactStore at compile time.
var _ FactStore = (*Store)(nil)
