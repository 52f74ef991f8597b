package storage

import "time"

// Counters are the eight per-match performance counters recorded for a participant.
type Counters struct {
	Goals     int `json:"goals"`
	Assists   int `json:"assists"`
	Saves     int `json:"saves"`
	Knockouts int `json:"knockouts"`
	Damage    int `json:"damage"`
	Shots     int `json:"shots"`
	Redirects int `json:"redirects"`
	Orbs      int `json:"orbs"`
}

// NewParticipant is one participation row to insert. PlayerID nil means anonymous.
type NewParticipant struct {
	PlayerID *string
	Team     int
	Striker  string
	IsGoalie bool
	Rank     int
	Counters Counters
}

// NewMatch is a validated match ready to persist with its six participants.
type NewMatch struct {
	Arena        string
	Team1Score   int
	Team2Score   int
	Participants []NewParticipant
}

// Team1Won reports whether side 1 took the majority of sets.
func (m NewMatch) Team1Won() bool {
	return m.Team1Score > m.Team2Score
}

// DurationFingerprint identifies a stored match by its arena, score and one
// participant's stat line, for backfilling the duration after the fact.
// The participant is any player when PlayerID is nil and Anonymous is false,
// an unregistered player when Anonymous is set, and PlayerID otherwise.
type DurationFingerprint struct {
	Arena      string  `json:"arena"`
	Team1Score int     `json:"team1Score"`
	Team2Score int     `json:"team2Score"`
	Striker    string  `json:"striker"`
	PlayerID   *string `json:"playerId,omitempty"`
	Anonymous  bool    `json:"-"`
	Goals      int     `json:"goals"`
	Assists    int     `json:"assists"`
	Saves      int     `json:"saves"`
	Knockouts  int     `json:"knockouts"`
}

// Player is a registered participant.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerSummary is a row of the roster listing.
type PlayerSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TopStrikers []string `json:"topStrikers"`
	MatchCount  int      `json:"matchCount"`
}

// MatchRow is a live match with the rank aggregates needed for balance classification.
// Rank averages are nil when the side has no ranked (rank > 0) participant.
type MatchRow struct {
	ID           string
	Arena        string
	Team1Score   int
	Team2Score   int
	Team1Won     bool
	Duration     int
	CreatedAt    time.Time
	Team1AvgRank *float64
	Team2AvgRank *float64
	AvgRank      *float64
	RankedCount  int
}

// ParticipantRow is one participant of a stored match, as shown on the match page.
type ParticipantRow struct {
	Name     string  `json:"name"`
	PlayerID *string `json:"playerId"`
	Team     int     `json:"team"`
	Striker  string  `json:"striker"`
	IsGoalie bool    `json:"isGoalie"`
	Rank     int     `json:"rank"`
	Counters
}

// MatchDetail is a stored match with all of its participants.
type MatchDetail struct {
	MatchRow
	Participants []ParticipantRow
}

// RosterSlot is one participant of a side as seen by match search.
type RosterSlot struct {
	Striker  string `json:"striker"`
	IsGoalie bool   `json:"isGoalie"`
}

// MatchRoster is a search candidate: a match with both sides' strikers.
type MatchRoster struct {
	ID         string
	Arena      string
	Team1Score int
	Team2Score int
	Team1Won   bool
	Duration   int
	CreatedAt  time.Time
	Team1      []RosterSlot
	Team2      []RosterSlot
}

// SearchFilter narrows match search candidates. Strikers must all appear in the match,
// on either side; side assignment is decided by the caller. Limit 0 returns every
// candidate after Offset.
type SearchFilter struct {
	Arena    string
	Strikers []string
	Limit    uint64
	Offset   uint64
}

// StrikerRecord is wins/matches for one (striker, role, arena) group.
type StrikerRecord struct {
	Striker  string
	IsGoalie bool
	Arena    string
	Wins     int
	Matches  int
}

// DuoRecord is wins/matches for one unordered same-side pair on one arena.
// The pair is in storage order; callers canonicalize.
type DuoRecord struct {
	Arena    string
	StrikerA string
	GoalieA  bool
	StrikerB string
	GoalieB  bool
	Wins     int
	Matches  int
}

// TrioRecord is wins/matches for one same-side triple on one arena.
type TrioRecord struct {
	Arena    string
	Strikers [3]string
	Goalies  [3]bool
	Wins     int
	Matches  int
}

// MatchupFilter selects the reference striker for opponent records.
// Goalie nil means either role; Arena "" means every arena.
type MatchupFilter struct {
	Striker string
	Goalie  *bool
	Arena   string
}

// MatchupRecord is how an opposing striker fared against the reference striker:
// Wins counts matches the opponent's side won.
type MatchupRecord struct {
	Opponent string
	Wins     int
	Matches  int
}

// SoloCounterRecord is wins/matches for Striker when facing Opponent.
type SoloCounterRecord struct {
	Striker  string
	Opponent string
	Wins     int
	Matches  int
}

// PlayerTotals are one player's career sums.
type PlayerTotals struct {
	Matches       int
	Wins          int
	SetsPlayed    int
	GoalieMatches int
	GoalieWins    int
	Sums          Counters
}

// WinLossRecord is wins/matches keyed by a striker or arena name.
type WinLossRecord struct {
	Key     string
	Wins    int
	Matches int
}
