package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-runner/internal/platform/tui"
	"github.com/vovakirdan/space-runner/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own run. Local scores, high score and pilot
name are kept per SSH user; the global leaderboard is shared when a
remote is configured.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.spacerunner/host_key

Examples:
  spacerunner serve                           # Listen on :23234
  spacerunner serve --ssh :2222               # Listen on port 2222
  spacerunner serve --remote http://localhost:8080

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger := stderrLogger("spacerunner-ssh")

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open local database", "error", err)
	} else {
		defer store.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	rem, conn := remoteDeps(ctx, cfg.Leaderboard, logger)

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = flagSSHAddr
	srvCfg.HostKeyPath = flagHostKey
	srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	srvCfg.TickRate = flagFPS
	srvCfg.Runner = cfg
	srvCfg.Remote = rem
	srvCfg.Conn = conn

	var kv storage.KV
	if store != nil {
		kv = store
	}
	server, err := tui.NewSSHServer(srvCfg, kv, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting Space Runner SSH server on %s\n", srvCfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
