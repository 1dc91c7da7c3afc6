package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridrunner/internal/platform/tui"
	"github.com/vovakirdan/gridrunner/internal/registry"
	"github.com/vovakirdan/gridrunner/internal/storage"
)

var (
	flagRunsLimit int
	flagRunID     int64
	flagBrowse    bool
	flagClear     bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [game]",
	Short: "Show the best runs of a game",
	Long: `Display the best recorded runs of a game, by reward and then by
duration.

Examples:
  gridrunner runs maze
  gridrunner runs maze --limit 25
  gridrunner runs --id 12        # levels visited in run 12
  gridrunner runs --browse       # interactive board
  gridrunner runs maze --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().Int64Var(&flagRunID, "id", 0, "Show the levels of one run")
	runsCmd.Flags().BoolVar(&flagBrowse, "browse", false, "Open the interactive runs board")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all runs of the game")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gameID := cfg.Game
	if len(args) == 1 {
		gameID = args[0]
	}

	// Get game title
	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("cannot open runs database: %w", err)
	}
	defer store.Close()

	switch {
	case flagBrowse:
		width, height := terminalSize()
		_, err := tui.RunRunsBoard(store, width, height)
		return err
	case flagClear:
		if err := store.ClearRuns(gameID); err != nil {
			return err
		}
		fmt.Printf("Cleared runs of %s.\n", game.Title())
		return nil
	case flagRunID > 0:
		return printRun(store, flagRunID)
	}

	runs, err := store.BestRuns(gameID, flagRunsLimit)
	if err != nil {
		return err
	}

	// Display runs
	fmt.Printf("Best Runs - %s\n", game.Title())
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'gridrunner play %s' to record the first run!\n", gameID)
		return nil
	}

	// Print header
	fmt.Printf("  %-4s  %-5s  %-12s  %-7s  %-6s  %-9s  %-6s  %s\n", "Rank", "ID", "Player", "Reward", "Levels", "End", "Time", "Date")
	fmt.Printf("  %-4s  %-5s  %-12s  %-7s  %-6s  %-9s  %-6s  %s\n", "----", "--", "------", "------", "------", "---", "----", "----")

	for i, r := range runs {
		fmt.Printf("  %-4d  %-5d  %-12s  %-7.0f  %-6d  %-9s  %-6s  %s\n",
			i+1, r.ID, r.Player, r.Reward, r.Levels, r.EndReason,
			r.Duration().Round(time.Second).String(), r.CreatedAt.Format("2006-01-02 15:04"))
	}

	// Show totals
	stats, err := store.GetGameStats(gameID)
	if err == nil {
		fmt.Println()
		fmt.Printf("Runs: %d  Completed: %d  Best: %.0f  Average: %.1f\n",
			stats.RunsCount, stats.Completed, stats.BestReward, stats.AvgReward)
	}
	levelStats, err := store.GetLevelStats(gameID)
	if err == nil && len(levelStats) > 0 {
		parts := make([]string, len(levelStats))
		for i, ls := range levelStats {
			parts[i] = fmt.Sprintf("%s x%d (best %.0f)", ls.LevelID, ls.Visits, ls.BestReward)
		}
		fmt.Printf("Levels: %s\n", strings.Join(parts, ", "))
	}
	return nil
}

func printRun(store *storage.Store, id int64) error {
	run, err := store.RunByID(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with id %d", id)
	}
	visits, err := store.RunLevels(id)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d - %s by %s\n", run.ID, run.GameID, run.Player)
	fmt.Printf("Ended: %s after %s, reward %.0f\n\n", run.EndReason, run.Duration().Round(time.Second), run.Reward)
	for _, v := range visits {
		fmt.Printf("  %2d. %-12s  %.0f\n", v.Seq+1, v.LevelID, v.Reward)
	}
	return nil
}
