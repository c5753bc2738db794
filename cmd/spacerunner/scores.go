package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-runner/internal/leaderboard"
	"github.com/vovakirdan/space-runner/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show this device's best runs",
	Long: `Display the locally stored best runs, the high score and the pilot name.

Examples:
  spacerunner scores
  spacerunner scores --db ./runner.db`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func runScores(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening local database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	local := leaderboard.NewLocalStore(store, cfg.Leaderboard.LocalCap)
	scores, err := local.Scores()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	name, _ := local.PlayerName()
	if name == "" {
		name = cfg.Leaderboard.DefaultName
	}
	fmt.Printf("Space Runner - pilot %s\n", name)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'spacerunner play' to set the first high score!")
		return
	}

	lastSync, _ := local.LastSync()

	fmt.Printf("  %-4s  %-8s  %-16s  %s\n", "Rank", "Score", "Date", "Synced")
	fmt.Printf("  %-4s  %-8s  %-16s  %s\n", "----", "-----", "----", "------")
	for i, e := range scores {
		synced := "no"
		if e.Timestamp <= lastSync {
			synced = "yes"
		}
		date := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-8d  %-16s  %s\n", i+1, e.Score, date, synced)
	}

	fmt.Println()
	if best, err := local.HighScore(); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
}
