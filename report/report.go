// Package report renders statistics as terminal tables for the command line.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"striker-stats-server/stats"
	"striker-stats-server/storage"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// rate formats a win rate, or "-" when there is no data.
func rate(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *r)
}

// PrintPlayers prints the roster.
func PrintPlayers(w io.Writer, players []storage.PlayerSummary) {
	table := newTable(w)
	table.Header("NAME", "MATCHES", "TOP STRIKERS", "ID")
	for _, p := range players {
		table.Append(p.Name, strconv.Itoa(p.MatchCount), strings.Join(p.TopStrikers, ", "), p.ID)
	}
	table.Render()
}

// PrintStrikers prints one striker rollup. Role and arena columns appear when set.
func PrintStrikers(w io.Writer, list []stats.StrikerStat) {
	withRole, withArena := false, false
	for _, s := range list {
		withRole = withRole || s.Role != ""
		withArena = withArena || s.Arena != ""
	}

	header := []any{"STRIKER"}
	if withRole {
		header = append(header, "ROLE")
	}
	if withArena {
		header = append(header, "ARENA")
	}
	header = append(header, "W", "M", "WIN%")

	table := newTable(w)
	table.Header(header...)
	for _, s := range list {
		row := []any{s.Striker}
		if withRole {
			row = append(row, s.Role)
		}
		if withArena {
			row = append(row, s.Arena)
		}
		row = append(row, strconv.Itoa(s.Wins), strconv.Itoa(s.Matches), rate(s.WinRate))
		table.Append(row...)
	}
	table.Render()
}

// PrintCompositions prints duo or trio win rates.
func PrintCompositions(w io.Writer, list []stats.CompositionStat) {
	table := newTable(w)
	table.Header("ARENA", "COMPOSITION", "W", "M", "WIN%")
	for _, c := range list {
		table.Append(c.Arena, c.Key, strconv.Itoa(c.Wins), strconv.Itoa(c.Matches), rate(c.WinRate))
	}
	table.Render()
}

// PrintCounterPicks prints counters against one or two strikers.
func PrintCounterPicks(w io.Writer, first, second string, list []stats.CounterPickStat) {
	vs2 := "VS " + second
	if second == "" {
		vs2 = "VS -"
	}
	table := newTable(w)
	table.Header("STRIKER", "VS "+first, "M", vs2, "M", "AVG", "TOTAL")
	for _, c := range list {
		table.Append(
			c.Striker,
			rate(c.WinRateVs1),
			strconv.Itoa(c.MatchesVs1),
			rate(c.WinRateVs2),
			strconv.Itoa(c.MatchesVs2),
			rate(c.AverageWinRate),
			strconv.Itoa(c.TotalMatches),
		)
	}
	table.Render()
}

// PrintMatches prints the match list.
func PrintMatches(w io.Writer, list []stats.MatchSummary) {
	table := newTable(w)
	table.Header("DATE", "ARENA", "SCORE", "AVG RANK", "BALANCE", "DURATION", "ID")
	for _, m := range list {
		avg := "-"
		if m.AvgMatchRank != nil {
			avg = fmt.Sprintf("%.2f %s", *m.AvgMatchRank, m.AvgRankName)
		}
		duration := "-"
		if m.Duration > 0 {
			duration = fmt.Sprintf("%d:%02d", m.Duration/60, m.Duration%60)
		}
		table.Append(
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.Arena,
			fmt.Sprintf("%d-%d", m.Team1Score, m.Team2Score),
			avg,
			m.BalanceLevel,
			duration,
			m.ID,
		)
	}
	table.Render()
}

// PrintCareer prints a player's summary line followed by role, striker and arena tables.
func PrintCareer(w io.Writer, c *stats.PlayerCareer) {
	fmt.Fprintf(w, "\n%s  |  Matches: %d  |  W-L: %d-%d  |  Win rate: %s  |  Sets: %d\n\n",
		c.Player.Name, c.MatchesPlayed, c.Wins, c.Losses, rate(c.WinRate), c.SetsPlayed)
	for _, section := range []struct {
		title string
		rows  []stats.WinLossStat
	}{
		{"ROLE", c.Roles},
		{"STRIKER", c.TopStrikers},
		{"ARENA", c.Arenas},
	} {
		if len(section.rows) == 0 {
			continue
		}
		table := newTable(w)
		table.Header(section.title, "W", "L", "M", "WIN%")
		for _, r := range section.rows {
			table.Append(r.Name, strconv.Itoa(r.Wins), strconv.Itoa(r.Losses), strconv.Itoa(r.Matches), rate(r.WinRate))
		}
		table.Render()
	}
}
