package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/engine"
	"github.com/vovakirdan/gridrunner/internal/level"
	"github.com/vovakirdan/gridrunner/internal/platform/tui"
	"github.com/vovakirdan/gridrunner/internal/registry"
)

var flagDump bool

var levelsCmd = &cobra.Command{
	Use:   "levels [game]",
	Short: "List the levels of a game",
	Long: `Show the levels a game would play, start level first.

With --dump each level's environment is built and printed: the grid as
drawn on screen followed by the object list.

Examples:
  gridrunner levels maze
  gridrunner levels maze --dump
  gridrunner levels maze --config ./custom.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLevels,
}

func init() {
	levelsCmd.Flags().BoolVar(&flagDump, "dump", false, "Build each level and print its environment")
}

func runLevels(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gameID := cfg.Game
	if len(args) == 1 {
		gameID = args[0]
	}
	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}
	levels, err := game.Levels(cfg.LevelsDir, cfg.StartLevel)
	if err != nil {
		return err
	}

	source := "built in"
	if cfg.LevelsDir != "" {
		source = cfg.LevelsDir
	}
	fmt.Printf("Levels - %s (%s)\n\n", game.Title(), source)
	fmt.Printf("  %-12s  %-20s  %-7s  %-6s  %s\n", "ID", "Name", "Size", "Spawns", "Exits")
	fmt.Printf("  %-12s  %-20s  %-7s  %-6s  %s\n", "--", "----", "----", "------", "-----")

	for _, id := range tui.LevelIDs(levels) {
		lvl, err := levels.Level(id)
		if err != nil {
			return err
		}
		fmt.Printf("  %-12s  %-20s  %-7s  %-6d  %s\n",
			lvl.ID, lvl.Name, fmt.Sprintf("%dx%d", lvl.Width(), lvl.Height()), len(lvl.Spawns), exits(lvl))

		if flagDump {
			if err := dumpLevel(game, lvl); err != nil {
				return err
			}
		}
	}
	return nil
}

func exits(lvl *level.GameLevel) string {
	out := ""
	for _, l := range lvl.Exits() {
		if out != "" {
			out += ", "
		}
		out += l.TargetLevel
	}
	if out == "" {
		return "-"
	}
	return out
}

// dumpLevel builds lvl without a session and prints it.
func dumpLevel(game registry.Game, lvl *level.GameLevel) error {
	cells, err := game.NewEnvironment(lvl, engine.EnvContext{Seed: flagSeed})
	if err != nil {
		return err
	}
	defer cells.CleanUp()

	w, h := tui.EnvironmentSize(cells)
	scr := core.NewScreen(w, h)
	tui.DrawEnvironment(scr, cells, game, 0, 0)
	fmt.Println()
	fmt.Println(scr.String())
	if err := cells.Dump(os.Stdout); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
