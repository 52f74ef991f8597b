// Package catalog holds the closed sets the game defines: arenas, strikers and rank tiers.
package catalog

import (
	"slices"
	"strings"
)

// AllMaps is the synthetic arena name used for aggregates summed across every arena.
const AllMaps = "All Maps"

// Arenas lists every arena a match can be played on.
var Arenas = []string{
	"Ahten City",
	"Aimi's App",
	"Atlas's Lab",
	"Demon Dais",
	"Gates of Obscura",
	"Inky's Splash Zone",
	"Night Market",
	"Oni Village",
	"Taiko Temple",
}

// Strikers lists every playable character.
var Strikers = []string{
	"Ai.Mi",
	"Asher",
	"Atlas",
	"Drek'ar",
	"Dubu",
	"Era",
	"Estelle",
	"Finii",
	"Juliette",
	"Juno",
	"Kai",
	"Kazan",
	"Luna",
	"Mako",
	"Nao",
	"Octavia",
	"Rasmus",
	"Rune",
	"Vyce",
	"X",
	"Zentaro",
}

// RankTiers maps a rank tier to its display name. Tier 0 is placements (unranked).
var RankTiers = []string{
	"Placements",
	"Rookie",
	"Bronze",
	"Silver",
	"Gold",
	"Platinum",
	"Diamond",
	"Challenger",
	"Omega",
	"Pro League",
}

// MaxRank is the highest valid rank tier.
var MaxRank = len(RankTiers) - 1

// IsArena reports whether name is a known arena.
func IsArena(name string) bool {
	return slices.Contains(Arenas, name)
}

// IsStriker reports whether name is a known striker.
func IsStriker(name string) bool {
	return slices.Contains(Strikers, name)
}

// RankName returns the display name of a rank tier, or "" when out of range.
func RankName(tier int) string {
	if tier < 0 || tier > MaxRank {
		return ""
	}
	return RankTiers[tier]
}

// RoleName returns "Goalie" or "Forward".
func RoleName(isGoalie bool) string {
	if isGoalie {
		return "Goalie"
	}
	return "Forward"
}

// ParseRole maps "goalie" or "forward" (any case) to a goalie flag.
// An empty string or "any" returns nil; anything else is not ok.
func ParseRole(s string) (goalie *bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return nil, true
	case "goalie":
		v := true
		return &v, true
	case "forward":
		v := false
		return &v, true
	}
	return nil, false
}
