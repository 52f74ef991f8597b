// Package stats turns the match fact log into derived statistics: win rates by striker,
// role, arena and composition, counter picks, player careers, match balance and search.
package stats

import (
	"context"
	"math/big"
	"strconv"

	"striker-stats-server/storage"
)

// Store is the read half of storage.FactStore that the engine aggregates over.
type Store interface {
	ListMatches(ctx context.Context) ([]storage.MatchRow, error)
	GetMatch(ctx context.Context, matchID string) (*storage.MatchDetail, error)
	SearchMatches(ctx context.Context, f storage.SearchFilter) ([]storage.MatchRoster, error)
	StrikerRecords(ctx context.Context, excludeFriendlies bool) ([]storage.StrikerRecord, error)
	DuoRecords(ctx context.Context) ([]storage.DuoRecord, error)
	TrioRecords(ctx context.Context) ([]storage.TrioRecord, error)
	MatchupRecords(ctx context.Context, f storage.MatchupFilter) ([]storage.MatchupRecord, error)
	SoloCounterRecords(ctx context.Context) ([]storage.SoloCounterRecord, error)
	GetPlayer(ctx context.Context, playerID string) (*storage.Player, error)
	PlayerTotals(ctx context.Context, playerID string) (*storage.PlayerTotals, error)
	PlayerStrikerRecords(ctx context.Context, playerID string) ([]storage.WinLossRecord, error)
	PlayerArenaRecords(ctx context.Context, playerID string) ([]storage.WinLossRecord, error)
}

var _ Store = storage.FactStore(nil)

// Engine computes derived statistics. It holds no state besides the store,
// so every result is recomputed from the fact log.
type Engine struct {
	store Store
}

// NewEngine returns an engine reading from store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// WinRate returns wins/matches as a percentage rounded half up to 2 decimals,
// or nil when matches is 0.
func WinRate(wins, matches int) *float64 {
	if matches <= 0 {
		return nil
	}
	r := roundQuotient(int64(wins)*100, int64(matches))
	return &r
}

// roundQuotient returns num/den rounded half up to 2 decimals using integer
// arithmetic. num must be non-negative and den positive.
func roundQuotient(num, den int64) float64 {
	hundredths := (num*200 + den) / (2 * den)
	return float64(hundredths) / 100
}

// Round2 rounds v to 2 decimals, halves away from zero. The half is judged on the
// shortest decimal form of v, so 14.375 rounds to 14.38.
func Round2(v float64) float64 {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', -1, 64))
	if !ok {
		return v
	}
	r.Mul(r, big.NewRat(100, 1))
	if r.Sign() < 0 {
		r.Sub(r, big.NewRat(1, 2))
	} else {
		r.Add(r, big.NewRat(1, 2))
	}
	q := new(big.Int).Quo(r.Num(), r.Denom())
	f, _ := new(big.Rat).SetFrac(q, big.NewInt(100)).Float64()
	return f
}

func ratio(sum, n int) *float64 {
	if n <= 0 {
		return nil
	}
	r := roundQuotient(int64(sum), int64(n))
	return &r
}

// byRateDesc orders win rates descending with nil last. It returns 0 on a tie.
func byRateDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}
