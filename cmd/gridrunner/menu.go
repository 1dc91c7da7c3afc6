package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridrunner/internal/platform/tui"
	"github.com/vovakirdan/gridrunner/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a level picker menu",
	Long: `Start gridrunner in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to start from a level.
After a run ends, you return to the menu to play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Start from the selected level
  Tab          - Best runs
  Q            - Quit

Examples:
  gridrunner menu
  gridrunner menu --db ./runs.db`,
	RunE: runMenu,
}

func runMenu(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	width, height := terminalSize()

	// Menu loop
	for {
		// Show menu and get selection
		menuResult, err := tui.RunMenu(cfg, width, height)
		if err != nil {
			return err
		}

		// Update size with any changes
		if menuResult.Width > 0 {
			width, height = menuResult.Width, menuResult.Height
		}

		// Check if user quit
		if menuResult.Quit {
			return nil
		}

		// Check if user wants the runs board
		if menuResult.WantsRuns {
			goBack, rbErr := tui.RunRunsBoard(store, width, height)
			if rbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", rbErr)
			}
			if goBack {
				continue // Back to menu
			}
			return nil // User quit from the runs board
		}

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		// Run the game
		_, err = tui.Run(tui.PlayOptions{
			Config:     cfg,
			Game:       game,
			Store:      store,
			Player:     playerName(),
			StartLevel: menuResult.LevelID,
			Bell:       os.Stdout,
			Logger:     logger,
		}, width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}

		// Loop back to menu
	}
}
