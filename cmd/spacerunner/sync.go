package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-runner/internal/connectivity"
	"github.com/vovakirdan/space-runner/internal/leaderboard"
	"github.com/vovakirdan/space-runner/internal/remote"
	"github.com/vovakirdan/space-runner/internal/storage"
)

var flagSyncTimeout time.Duration

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push unsynced scores to the leaderboard",
	Long: `Sign in anonymously and replay every local score newer than the last
sync to the leaderboard service, then print the current top list.

Examples:
  spacerunner sync --remote http://localhost:8080`,
	Args: cobra.NoArgs,
	Run:  runSync,
}

func init() {
	syncCmd.Flags().DurationVar(&flagSyncTimeout, "timeout", 15*time.Second, "Give up after this long")
}

func runSync(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if cfg.Leaderboard.RemoteURL == "" {
		fmt.Fprintln(os.Stderr, "Error: no leaderboard configured (use --remote or SPACE_RUNNER_REMOTE_URL)")
		os.Exit(1)
	}
	logger := stderrLogger("sync")

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening local database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), flagSyncTimeout)
	defer cancel()

	prober := connectivity.NewProber(cfg.Leaderboard.RemoteURL, cfg.Leaderboard.ProbeInterval, logger)
	if !prober.Probe(ctx) {
		fmt.Fprintf(os.Stderr, "Error: leaderboard at %s is unreachable\n", cfg.Leaderboard.RemoteURL)
		os.Exit(1)
	}

	client := remote.NewClient(cfg.Leaderboard.RemoteURL, logger)
	local := leaderboard.NewLocalStore(store, cfg.Leaderboard.LocalCap)
	engine := leaderboard.NewEngine(local, client, prober, cfg.Leaderboard, logger)
	defer engine.Close()

	// Start replays pending scores itself; count them first for the report.
	pending := countPending(local)
	engine.Start(ctx)
	if !engine.Authenticated().Get() {
		fmt.Fprintln(os.Stderr, "Error: anonymous sign-in failed")
		os.Exit(1)
	}

	n, err := engine.SyncPending(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Replayed %d score(s).\n", pending+n)

	snap, err := client.Top(ctx, cfg.Leaderboard.Window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching leaderboard: %v\n", err)
		os.Exit(1)
	}

	top := leaderboard.TopUnique(snap.Items, cfg.Leaderboard.TopN)
	fmt.Println()
	fmt.Println("Global top pilots")
	if len(top) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i, e := range top {
		fmt.Printf("  %2d. %-20s %d\n", i+1, e.Name, e.Score)
	}
}

func countPending(local *leaderboard.LocalStore) int {
	cursor, _ := local.LastSync()
	scores, err := local.Scores()
	if err != nil {
		return 0
	}
	n := 0
	for _, s := range scores {
		if s.Timestamp > cursor {
			n++
		}
	}
	return n
}
