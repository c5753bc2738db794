package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/space-runner/internal/core"
	"github.com/vovakirdan/space-runner/internal/platform/tui"
	"github.com/vovakirdan/space-runner/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a run in this terminal.

Controls:
  Left/A, Right/D  - Switch lane
  Enter/Space      - Launch (menu) or play again (game over)
  R                - Restart after game over
  Esc/B            - Back to the menu after game over
  N                - Change pilot name (menu)
  Tab              - Leaderboard (menu, game over)
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Slower meteors, gentler speed-up
  normal - Configured values
  hard   - Faster meteors, steeper speed-up
  fixed  - No speed-up at all

Examples:
  spacerunner play
  spacerunner play --difficulty hard
  spacerunner play --remote http://localhost:8080
  spacerunner play --config ./my-runner.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	logger, closeLog := openLogFile("spacerunner")
	defer closeLog()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	var kv storage.KV
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open local database: %v\n", err)
		// Continue without persistence - the game still works
		kv = storage.NewMemoryKV()
	} else {
		kv = store
		defer store.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	rem, conn := remoteDeps(ctx, cfg.Leaderboard, logger)
	session := tui.NewSession(tui.SessionConfig{
		Runner: cfg,
		KV:     kv,
		Remote: rem,
		Conn:   conn,
		Seed:   flagSeed,
		Logger: logger,
	})

	runErr := tui.Run(ctx, session, core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
	})
	session.Close(3 * time.Second)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
