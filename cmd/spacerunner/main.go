// spacerunner is a lane-dodging space runner for the terminal with an
// offline-first global leaderboard.
//
// Usage:
//
//	spacerunner play          - Play in this terminal
//	spacerunner serve         - Start SSH server for remote play
//	spacerunner leaderboard   - Run the leaderboard service
//	spacerunner scores        - Show this device's best runs
//	spacerunner sync          - Push unsynced scores to the leaderboard
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible gameplay
//	--db <path>           - Set database path (default: ~/.spacerunner/runner.db)
//	--config <path>       - Custom runner config YAML
//	--difficulty <preset> - easy, normal, hard, fixed
//	--remote <url>        - Leaderboard service base URL
//	--log-file <path>     - Log destination while the UI owns the terminal
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-runner/internal/config"
	"github.com/vovakirdan/space-runner/internal/connectivity"
	"github.com/vovakirdan/space-runner/internal/leaderboard"
	"github.com/vovakirdan/space-runner/internal/remote"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagRemote     string
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "spacerunner",
	Short: "Space Runner - dodge meteors in your terminal",
	Long: `Space Runner is a terminal space runner: steer between three lanes,
dodge the meteor field and climb the global leaderboard.

Scores are always kept on this device first and pushed to the
leaderboard service whenever it is reachable.

Available commands:
  play         - Play in this terminal
  serve        - Start SSH server for remote play
  leaderboard  - Run the leaderboard service
  scores       - Show this device's best runs
  sync         - Push unsynced scores now

Examples:
  spacerunner play
  spacerunner play --difficulty hard --remote http://localhost:8080
  spacerunner leaderboard --addr :8080
  spacerunner serve --ssh :2222`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A missing .env is fine; real env vars still apply.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.spacerunner/runner.db", "Path to local database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom runner config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagRemote, "remote", "", "Leaderboard service URL (overrides config and env)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.spacerunner/runner.log", "Log file path")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(syncCmd)
}

// loadConfig resolves the runner config from file, env and flags, exiting on
// invalid input.
func loadConfig() config.RunnerConfig {
	cfg, err := config.LoadRunner(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(&cfg)
	if flagRemote != "" {
		cfg.Leaderboard.RemoteURL = flagRemote
	}

	if flagDifficulty != "" {
		preset := config.ParsePreset(flagDifficulty)
		if preset == "" {
			fmt.Fprintf(os.Stderr, "Error: unknown difficulty %q (easy, normal, hard, fixed)\n", flagDifficulty)
			os.Exit(1)
		}
		config.ApplyRunnerPreset(&cfg, preset)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openLogFile returns a logger writing to the --log-file path, or to stderr
// if the file cannot be opened.
func openLogFile(prefix string) (*log.Logger, func()) {
	opts := log.Options{ReportTimestamp: true, Prefix: prefix, Level: log.DebugLevel}

	path := expandHome(flagLogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			return log.NewWithOptions(f, opts), func() { f.Close() }
		}
	}
	opts.Level = log.WarnLevel
	return log.NewWithOptions(os.Stderr, opts), func() {}
}

// stderrLogger is used by the commands that do not own the terminal.
func stderrLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}

// remoteDeps builds the leaderboard client and the connectivity signal. With
// no remote URL the session is offline for good. The prober starts with ctx.
func remoteDeps(ctx context.Context, cfg config.LeaderboardConfig, logger *log.Logger) (leaderboard.Remote, leaderboard.Connectivity) {
	if cfg.RemoteURL == "" {
		return nil, connectivity.NewManual(false)
	}

	prober := connectivity.NewProber(cfg.RemoteURL, cfg.ProbeInterval, logger.WithPrefix("connectivity"))
	prober.Probe(ctx)
	go prober.Run(ctx)

	return remote.NewClient(cfg.RemoteURL, logger.WithPrefix("remote")), prober
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
