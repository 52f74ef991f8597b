package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"striker-stats-server/matcherrors"
	"striker-stats-server/report"
	"striker-stats-server/stats"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Manage registered players",
}

var playerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.CreatePlayer(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Registered %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered players with their top strikers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		players, err := store.ListPlayers(cmd.Context())
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		if len(players) == 0 {
			fmt.Fprintln(os.Stdout, "No players registered yet. Run 'striker-stats player add <name>' to add one.")
			return nil
		}
		report.PrintPlayers(os.Stdout, players)
		return nil
	},
}

var playerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a player's career statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return matcherrors.ErrPlayerNotFound
		}
		return withEngine(cmd.Context(), func(e *stats.Engine) error {
			career, err := e.PlayerCareer(cmd.Context(), id.String())
			if err != nil {
				return err
			}
			report.PrintCareer(os.Stdout, career)
			return nil
		})
	},
}

func init() {
	playerCmd.AddCommand(playerAddCmd)
	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerShowCmd)
}
