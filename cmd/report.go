package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"striker-stats-server/catalog"
	"striker-stats-server/report"
	"striker-stats-server/stats"
)

var (
	excludeFriendlies bool
	strikersBy        string
	compositionArena  string
	showTrios         bool
	role1, role2      string
)

var strikersCmd = &cobra.Command{
	Use:   "strikers",
	Short: "Print striker win rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(e *stats.Engine) error {
			lb, err := e.StrikerLeaderboard(cmd.Context(), excludeFriendlies)
			if err != nil {
				return err
			}
			switch strikersBy {
			case "overall":
				report.PrintStrikers(os.Stdout, lb.Overall)
			case "role":
				report.PrintStrikers(os.Stdout, lb.ByRole)
			case "arena":
				report.PrintStrikers(os.Stdout, lb.ByArena)
			default:
				return fmt.Errorf("unknown grouping %q (want overall, role or arena)", strikersBy)
			}
			return nil
		})
	},
}

var compositionsCmd = &cobra.Command{
	Use:   "compositions",
	Short: "Print duo (or trio) win rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if compositionArena != "" && compositionArena != catalog.AllMaps && !catalog.IsArena(compositionArena) {
			return fmt.Errorf("unknown arena %q", compositionArena)
		}
		return withEngine(cmd.Context(), func(e *stats.Engine) error {
			c, err := e.Compositions(cmd.Context(), compositionArena)
			if err != nil {
				return err
			}
			if showTrios {
				report.PrintCompositions(os.Stdout, c.Trios)
			} else {
				report.PrintCompositions(os.Stdout, c.Duos)
			}
			return nil
		})
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters <striker1> [striker2]",
	Short: "Print the best counter picks against one or two strikers",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := pick(args[0], role1)
		if err != nil {
			return err
		}
		var second stats.Pick
		if len(args) == 2 {
			if second, err = pick(args[1], role2); err != nil {
				return err
			}
		}
		return withEngine(cmd.Context(), func(e *stats.Engine) error {
			list, err := e.CounterPicks(cmd.Context(), first, second)
			if err != nil {
				return err
			}
			report.PrintCounterPicks(os.Stdout, first.Striker, second.Striker, list)
			return nil
		})
	},
}

func pick(striker, role string) (stats.Pick, error) {
	if !catalog.IsStriker(striker) {
		return stats.Pick{}, fmt.Errorf("unknown striker %q", striker)
	}
	goalie, ok := catalog.ParseRole(role)
	if !ok {
		return stats.Pick{}, fmt.Errorf("unknown role %q", role)
	}
	return stats.Pick{Striker: striker, Goalie: goalie}, nil
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List recorded matches, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(e *stats.Engine) error {
			list, err := e.ListMatches(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(os.Stdout, "No matches recorded yet.")
				return nil
			}
			report.PrintMatches(os.Stdout, list)
			fmt.Fprintf(os.Stdout, "\n(%d matches)\n", len(list))
			return nil
		})
	},
}

func init() {
	strikersCmd.Flags().BoolVar(&excludeFriendlies, "exclude-friendlies", false, "skip matches with registered players on both sides")
	strikersCmd.Flags().StringVar(&strikersBy, "by", "overall", "grouping: overall, role or arena")

	compositionsCmd.Flags().StringVar(&compositionArena, "arena", "", "restrict to one arena, or \"All Maps\"")
	compositionsCmd.Flags().BoolVar(&showTrios, "trios", false, "print trios instead of duos")

	countersCmd.Flags().StringVar(&role1, "role1", "", "role of striker1: forward or goalie")
	countersCmd.Flags().StringVar(&role2, "role2", "", "role of striker2: forward or goalie")
}
