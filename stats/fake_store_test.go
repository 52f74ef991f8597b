package stats

import (
	"context"
	"errors"

	"striker-stats-server/matcherrors"
	"striker-stats-server/storage"
)

// fakeStore serves canned records. MatchupRecords filters matchups by the
// filter's striker, role and arena.
type fakeStore struct {
	matches    []storage.MatchRow
	details    map[string]*storage.MatchDetail
	rosters    []storage.MatchRoster
	strikers   []storage.StrikerRecord
	duos       []storage.DuoRecord
	trios      []storage.TrioRecord
	matchups   []fakeMatchup
	solo       []storage.SoloCounterRecord
	players    map[string]storage.Player
	totals     map[string]storage.PlayerTotals
	byStriker  map[string][]storage.WinLossRecord
	byArena    map[string][]storage.WinLossRecord
	err         error
	lastSearch  storage.SearchFilter
	searchCalls int
}

type fakeMatchup struct {
	striker string
	goalie  bool
	arena   string
	storage.MatchupRecord
}

var errBoom = errors.New("boom")

func (f *fakeStore) ListMatches(context.Context) ([]storage.MatchRow, error) {
	return f.matches, f.err
}

func (f *fakeStore) GetMatch(_ context.Context, id string) (*storage.MatchDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, matcherrors.ErrMatchNotFound
	}
	return d, nil
}

func (f *fakeStore) SearchMatches(_ context.Context, filter storage.SearchFilter) ([]storage.MatchRoster, error) {
	f.lastSearch = filter
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	rosters := f.rosters
	if filter.Offset >= uint64(len(rosters)) {
		return nil, nil
	}
	rosters = rosters[filter.Offset:]
	if filter.Limit > 0 && uint64(len(rosters)) > filter.Limit {
		rosters = rosters[:filter.Limit]
	}
	return rosters, nil
}

func (f *fakeStore) StrikerRecords(context.Context, bool) ([]storage.StrikerRecord, error) {
	return f.strikers, f.err
}

func (f *fakeStore) DuoRecords(context.Context) ([]storage.DuoRecord, error) {
	return f.duos, f.err
}

func (f *fakeStore) TrioRecords(context.Context) ([]storage.TrioRecord, error) {
	return f.trios, f.err
}

func (f *fakeStore) MatchupRecords(_ context.Context, filter storage.MatchupFilter) ([]storage.MatchupRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	sums := map[string]*storage.MatchupRecord{}
	var order []string
	for _, m := range f.matchups {
		if m.striker != filter.Striker {
			continue
		}
		if filter.Goalie != nil && *filter.Goalie != m.goalie {
			continue
		}
		if filter.Arena != "" && filter.Arena != m.arena {
			continue
		}
		s, ok := sums[m.Opponent]
		if !ok {
			s = &storage.MatchupRecord{Opponent: m.Opponent}
			sums[m.Opponent] = s
			order = append(order, m.Opponent)
		}
		s.Wins += m.Wins
		s.Matches += m.Matches
	}
	out := make([]storage.MatchupRecord, 0, len(order))
	for _, name := range order {
		out = append(out, *sums[name])
	}
	return out, nil
}

func (f *fakeStore) SoloCounterRecords(context.Context) ([]storage.SoloCounterRecord, error) {
	return f.solo, f.err
}

func (f *fakeStore) GetPlayer(_ context.Context, id string) (*storage.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, matcherrors.ErrPlayerNotFound
	}
	return &p, nil
}

func (f *fakeStore) PlayerTotals(_ context.Context, id string) (*storage.PlayerTotals, error) {
	t := f.totals[id]
	return &t, f.err
}

func (f *fakeStore) PlayerStrikerRecords(_ context.Context, id string) ([]storage.WinLossRecord, error) {
	return f.byStriker[id], f.err
}

func (f *fakeStore) PlayerArenaRecords(_ context.Context, id string) ([]storage.WinLossRecord, error) {
	return f.byArena[id], f.err
}

var _ Store = (*fakeStore)(nil)

func ptr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }
