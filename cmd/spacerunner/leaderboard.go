package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-runner/internal/api"
	"github.com/vovakirdan/space-runner/internal/storage"
)

var (
	flagAddr        string
	flagServiceDB   string
	flagCORSOrigins string
	flagQuiet       bool
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Run the leaderboard service",
	Long: `Run the HTTP leaderboard service that players submit scores to.

Endpoints:
  POST /api/auth/anonymous   - Issue an anonymous identity
  POST /api/leaderboard      - Append a score (Bearer token)
  GET  /api/leaderboard      - Top entries (?limit=1..100)
  GET  /ws/leaderboard       - Live top entries over WebSocket
  GET  /health               - Health probe
  GET  /metrics              - Prometheus metrics

Examples:
  spacerunner leaderboard
  spacerunner leaderboard --addr :9000 --service-db ./leaderboard.db
  spacerunner leaderboard --cors "https://*.example.com"`,
	Args: cobra.NoArgs,
	Run:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "HTTP listen address")
	leaderboardCmd.Flags().StringVar(&flagServiceDB, "service-db", "~/.spacerunner/leaderboard.db", "Path to the service database")
	leaderboardCmd.Flags().StringVar(&flagCORSOrigins, "cors", "", "Comma-separated allowed origins (default: localhost)")
	leaderboardCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Disable request logging")
}

func runLeaderboard(_ *cobra.Command, _ []string) {
	logger := stderrLogger("leaderboard")

	store, err := storage.Open(flagServiceDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening service database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var origins []string
	for _, o := range strings.Split(flagCORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	srv := api.NewServer(store, api.ServerConfig{
		Addr:           flagAddr,
		CORSOrigins:    origins,
		DisableLogging: flagQuiet,
		Logger:         logger,
	})

	ctx, cancel := signalContext()
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		logger.Error("leaderboard service stopped", "error", err)
		os.Exit(1)
	}
}
