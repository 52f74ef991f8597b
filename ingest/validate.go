// Package ingest validates submitted matches and records them in the fact store.
package ingest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"striker-stats-server/catalog"
	"striker-stats-server/matcherrors"
	"striker-stats-server/storage"
)

// Anonymous is the player reference for a participant who is not registered.
const Anonymous = "anonymous"

// ParticipantsPerSide is the number of participants on each side of a match.
const ParticipantsPerSide = 3

// ParticipantInput is one participant as submitted. The first three participants
// of a match are side 1, the last three side 2.
type ParticipantInput struct {
	Player   string `json:"player"`
	Striker  string `json:"striker"`
	IsGoalie bool   `json:"isGoalie"`
	Rank     int    `json:"rank"`
	storage.Counters
}

// MatchInput is a match as submitted.
type MatchInput struct {
	Arena        string             `json:"arena"`
	Team1Score   int                `json:"team1Score"`
	Team2Score   int                `json:"team2Score"`
	Participants []ParticipantInput `json:"participants"`
}

// Validate checks in against the match rules and returns the match to persist.
// setsToWin is the score a side needs to win. Every failure is a *matcherrors.ValidationError.
func Validate(in MatchInput, setsToWin int) (storage.NewMatch, error) {
	if err := validateScores(in.Team1Score, in.Team2Score, setsToWin); err != nil {
		return storage.NewMatch{}, err
	}
	if !catalog.IsArena(in.Arena) {
		return storage.NewMatch{}, matcherrors.Invalid(fmt.Sprintf("Unknown arena %q", in.Arena))
	}
	if len(in.Participants) != 2*ParticipantsPerSide {
		return storage.NewMatch{}, matcherrors.Invalid(fmt.Sprintf("A match needs exactly %d players, got %d",
			2*ParticipantsPerSide, len(in.Participants)))
	}

	m := storage.NewMatch{
		Arena:        in.Arena,
		Team1Score:   in.Team1Score,
		Team2Score:   in.Team2Score,
		Participants: make([]storage.NewParticipant, 0, len(in.Participants)),
	}
	for i, p := range in.Participants {
		np, err := validateParticipant(i+1, p)
		if err != nil {
			return storage.NewMatch{}, err
		}
		np.Team = 1 + i/ParticipantsPerSide
		m.Participants = append(m.Participants, np)
	}
	if err := validateSides(m.Participants); err != nil {
		return storage.NewMatch{}, err
	}
	return m, nil
}

// validateScores requires exactly one side at setsToWin and the other strictly below it.
func validateScores(team1, team2, setsToWin int) error {
	switch {
	case team1 == team2 && team1 == 0:
		return matcherrors.Invalid("Scores cannot both be zero")
	case team1 == team2:
		return matcherrors.Invalid("Scores cannot be equal")
	case team1 < 0 || team2 < 0:
		return matcherrors.Invalid("Scores cannot be negative")
	}
	winner, loser := max(team1, team2), min(team1, team2)
	if winner != setsToWin || loser >= setsToWin {
		return matcherrors.Invalid(fmt.Sprintf("One team must have exactly %d points", setsToWin))
	}
	return nil
}

func validateParticipant(n int, p ParticipantInput) (storage.NewParticipant, error) {
	np := storage.NewParticipant{
		Striker:  p.Striker,
		IsGoalie: p.IsGoalie,
		Rank:     p.Rank,
		Counters: p.Counters,
	}
	ref := strings.TrimSpace(p.Player)
	if ref != "" && !strings.EqualFold(ref, Anonymous) {
		id, err := uuid.Parse(ref)
		if err != nil {
			return np, matcherrors.Invalid(fmt.Sprintf("Player %d has an invalid player id", n))
		}
		s := id.String()
		np.PlayerID = &s
	}
	if !catalog.IsStriker(p.Striker) {
		return np, matcherrors.Invalid(fmt.Sprintf("Player %d has an unknown striker %q", n, p.Striker))
	}
	if p.Rank < 0 || p.Rank > catalog.MaxRank {
		return np, matcherrors.Invalid(fmt.Sprintf("Player %d has an invalid rank %d", n, p.Rank))
	}
	c := p.Counters
	for _, v := range []int{c.Goals, c.Assists, c.Saves, c.Knockouts, c.Damage, c.Shots, c.Redirects, c.Orbs} {
		if v < 0 {
			return np, matcherrors.Invalid(fmt.Sprintf("Player %d has a negative stat", n))
		}
	}
	return np, nil
}

func validateSides(ps []storage.NewParticipant) error {
	seenPlayers := map[string]bool{}
	for team := 1; team <= 2; team++ {
		goalies := 0
		strikers := map[string]bool{}
		for _, p := range ps {
			if p.Team != team {
				continue
			}
			if p.IsGoalie {
				goalies++
			}
			if strikers[p.Striker] {
				return matcherrors.Invalid(fmt.Sprintf("Team %d has %s more than once", team, p.Striker))
			}
			strikers[p.Striker] = true
			if p.PlayerID != nil {
				if seenPlayers[*p.PlayerID] {
					return matcherrors.Invalid("A player cannot appear twice in one match")
				}
				seenPlayers[*p.PlayerID] = true
			}
		}
		if goalies != 1 {
			return matcherrors.Invalid(fmt.Sprintf("Team %d must have exactly one goalie", team))
		}
	}
	return nil
}
