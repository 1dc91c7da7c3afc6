package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridrunner/internal/platform/tui"
	"github.com/vovakirdan/gridrunner/internal/registry"
)

var (
	flagLevel  string
	flagPlayer string
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing the specified game, or the one named in the
configuration when no game is given.

Controls (configurable under "keys"):
  Arrows/hjkl/wasd - Move
  Enter            - Next dialog line
  P/Esc            - Pause
  ?                - Help
  Ctrl+S           - Screenshot to ~/.gridrunner/screenshots
  Q/Ctrl+C         - Quit

Examples:
  gridrunner play
  gridrunner play maze --level 3-core
  gridrunner play maze --seed 7 --log-file /tmp/gridrunner.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLevel, "level", "", "Level to start from (default from config)")
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Player name stored with the run (default: login name)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gameID := cfg.Game
	if len(args) == 1 {
		gameID = args[0]
	}

	// Check if game exists
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q, run 'gridrunner list' to see available games", gameID)
	}
	game, err := registry.Create(gameID)
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
	st, err := tui.Run(tui.PlayOptions{
		Config:     cfg,
		Game:       game,
		Store:      store,
		Player:     playerName(),
		StartLevel: flagLevel,
		Bell:       os.Stdout,
		Logger:     logger,
	}, width, height)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s after %d level(s), reward %.0f\n", game.Title(), st.Reason, st.Levels, st.Reward)
	return nil
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}

// playerName picks the name stored with local runs.
func playerName() string {
	if flagPlayer != "" {
		return flagPlayer
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "player"
}
