package stats

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"striker-stats-server/catalog"
)

// Member is one striker of a composition with its role.
type Member struct {
	Striker  string `json:"striker"`
	IsGoalie bool   `json:"isGoalie"`
}

// CompositionStat is the win rate of a same-side duo or trio on one arena,
// or across every arena when Arena is catalog.AllMaps.
type CompositionStat struct {
	Arena   string   `json:"arena"`
	Key     string   `json:"key"`
	Members []Member `json:"members"`
	Wins    int      `json:"wins"`
	Matches int      `json:"matches"`
	WinRate *float64 `json:"winRate"`
}

// Compositions holds duo and trio win rates.
type Compositions struct {
	Duos  []CompositionStat `json:"duos"`
	Trios []CompositionStat `json:"trios"`
}

// Canonical orders members by striker name, goalie first on equal names.
// Any permutation of the same members yields the same slice.
func Canonical(members ...Member) []Member {
	out := slices.Clone(members)
	slices.SortFunc(out, func(a, b Member) int {
		if c := cmp.Compare(a.Striker, b.Striker); c != 0 {
			return c
		}
		switch {
		case a.IsGoalie == b.IsGoalie:
			return 0
		case a.IsGoalie:
			return -1
		}
		return 1
	})
	return out
}

// CompositionKey returns the canonical key of a composition, e.g. "Ai.Mi (Forward) + Kai (Goalie)".
func CompositionKey(members ...Member) string {
	parts := make([]string, 0, len(members))
	for _, m := range Canonical(members...) {
		parts = append(parts, m.Striker+" ("+catalog.RoleName(m.IsGoalie)+")")
	}
	return strings.Join(parts, " + ")
}

// Compositions returns duo and trio win rates per arena plus the All Maps rollup.
// A non-empty arena (which may be catalog.AllMaps) keeps only that arena's groups.
func (e *Engine) Compositions(ctx context.Context, arena string) (*Compositions, error) {
	duoRecords, err := e.store.DuoRecords(ctx)
	if err != nil {
		return nil, err
	}
	trioRecords, err := e.store.TrioRecords(ctx)
	if err != nil {
		return nil, err
	}

	duos := newCompositionSet()
	for _, r := range duoRecords {
		duos.add(r.Arena, []Member{{r.StrikerA, r.GoalieA}, {r.StrikerB, r.GoalieB}}, r.Wins, r.Matches)
	}
	trios := newCompositionSet()
	for _, r := range trioRecords {
		members := make([]Member, 3)
		for i := range members {
			members[i] = Member{Striker: r.Strikers[i], IsGoalie: r.Goalies[i]}
		}
		trios.add(r.Arena, members, r.Wins, r.Matches)
	}
	return &Compositions{Duos: duos.stats(arena), Trios: trios.stats(arena)}, nil
}

type compositionGroup struct {
	arena   string
	key     string
	members []Member
	tally
}

// compositionSet accumulates groups per (arena, canonical key).
type compositionSet struct {
	groups map[[2]string]*compositionGroup
}

func newCompositionSet() *compositionSet {
	return &compositionSet{groups: map[[2]string]*compositionGroup{}}
}

func (s *compositionSet) add(arena string, members []Member, wins, matches int) {
	canon := Canonical(members...)
	key := CompositionKey(canon...)
	g, ok := s.groups[[2]string{arena, key}]
	if !ok {
		g = &compositionGroup{arena: arena, key: key, members: canon}
		s.groups[[2]string{arena, key}] = g
	}
	g.add(wins, matches)
}

// stats returns per-arena groups plus All Maps groups with more than one match.
func (s *compositionSet) stats(arena string) []CompositionStat {
	allMaps := map[string]*compositionGroup{}
	out := []CompositionStat{}
	for _, g := range s.groups {
		all, ok := allMaps[g.key]
		if !ok {
			all = &compositionGroup{arena: catalog.AllMaps, key: g.key, members: g.members}
			allMaps[g.key] = all
		}
		all.add(g.wins, g.matches)
		if arena == "" || arena == g.arena {
			out = append(out, g.stat())
		}
	}
	if arena == "" || arena == catalog.AllMaps {
		for _, g := range allMaps {
			if g.matches > 1 {
				out = append(out, g.stat())
			}
		}
	}
	slices.SortFunc(out, compareCompositions)
	return out
}

func (g *compositionGroup) stat() CompositionStat {
	return CompositionStat{
		Arena:   g.arena,
		Key:     g.key,
		Members: g.members,
		Wins:    g.wins,
		Matches: g.matches,
		WinRate: WinRate(g.wins, g.matches),
	}
}

// compareCompositions puts All Maps first, then arenas by name; within an arena
// by win rate, matches and key.
func compareCompositions(a, b CompositionStat) int {
	if a.Arena != b.Arena {
		switch {
		case a.Arena == catalog.AllMaps:
			return -1
		case b.Arena == catalog.AllMaps:
			return 1
		}
		return cmp.Compare(a.Arena, b.Arena)
	}
	if c := byRateDesc(a.WinRate, b.WinRate); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Matches, a.Matches); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}
