package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"striker-stats-server/stats"
	"striker-stats-server/storage"
)

func ptr(f float64) *float64 { return &f }

func TestRate(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "-"},
		{ptr(50), "50.00%"},
		{ptr(66.67), "66.67%"},
	}
	for _, tt := range tests {
		if got := rate(tt.in); got != tt.want {
			t.Errorf("rate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintPlayers(t *testing.T) {
	var buf bytes.Buffer
	PrintPlayers(&buf, []storage.PlayerSummary{
		{ID: "p1", Name: "Nova", TopStrikers: []string{"Kai", "X"}, MatchCount: 7},
	})
	out := buf.String()
	for _, want := range []string{"NAME", "Nova", "Kai, X", "7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintStrikers_OptionalColumns(t *testing.T) {
	var buf bytes.Buffer
	PrintStrikers(&buf, []stats.StrikerStat{{Striker: "Kai", Wins: 1, Matches: 2, WinRate: ptr(50)}})
	if out := buf.String(); strings.Contains(out, "ROLE") || strings.Contains(out, "ARENA") {
		t.Errorf("overall table should not have role or arena columns:\n%s", out)
	}

	buf.Reset()
	PrintStrikers(&buf, []stats.StrikerStat{{Striker: "Kai", Role: "Goalie", Wins: 1, Matches: 2, WinRate: ptr(50)}})
	if out := buf.String(); !strings.Contains(out, "ROLE") || !strings.Contains(out, "Goalie") {
		t.Errorf("role table missing role column:\n%s", out)
	}
}

func TestPrintMatches(t *testing.T) {
	var buf bytes.Buffer
	PrintMatches(&buf, []stats.MatchSummary{
		{ID: "m1", Arena: "Ahten City", Team1Score: 3, Team2Score: 1, BalanceLevel: stats.BalanceNotEnoughData,
			Duration: 725, CreatedAt: time.Date(2025, 3, 1, 20, 5, 0, 0, time.UTC)},
	})
	out := buf.String()
	for _, want := range []string{"Ahten City", "3-1", "12:05", "2025-03-01 20:05", stats.BalanceNotEnoughData} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCareer_SkipsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	PrintCareer(&buf, &stats.PlayerCareer{
		Player:        storage.Player{Name: "Nova"},
		MatchesPlayed: 2,
		Wins:          1,
		Losses:        1,
		WinRate:       ptr(50),
		TopStrikers:   []stats.WinLossStat{{Name: "Kai", Wins: 1, Losses: 1, Matches: 2, WinRate: ptr(50)}},
	})
	out := buf.String()
	if !strings.Contains(out, "W-L: 1-1") || !strings.Contains(out, "STRIKER") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "ARENA") {
		t.Errorf("empty arena section was printed:\n%s", out)
	}
}
