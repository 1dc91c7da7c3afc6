package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridrunner/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Long: `Shows every game registered in gridrunner with the number of levels it
has and the level a run starts from. Level files come from levels_dir in
the configuration when it is set.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	games := registry.List()
	if len(games) == 0 {
		fmt.Println("No games available.")
		return nil
	}

	idWidth := len("ID")
	for _, g := range games {
		idWidth = max(idWidth, len(g.ID))
	}

	fmt.Printf("  %-*s  %-20s  %6s  %s\n", idWidth, "ID", "Title", "Levels", "Start")
	for _, info := range games {
		levels, start := "?", "?"
		if g, err := registry.Create(info.ID); err == nil {
			if m, err := g.Levels(cfg.LevelsDir, cfg.StartLevel); err == nil {
				levels, start = fmt.Sprint(m.Size()), m.StartLevelID()
			} else {
				start = err.Error()
			}
		}
		fmt.Printf("  %-*s  %-20s  %6s  %s\n", idWidth, info.ID, info.Title, levels, start)
	}

	fmt.Println()
	fmt.Println("Run 'gridrunner play <id>' to play a game.")
	return nil
}
