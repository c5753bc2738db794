package connectivity

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultProbeInterval is used when the configured interval is not positive.
const DefaultProbeInterval = 5 * time.Second

// Prober polls the leaderboard service health endpoint and reports the
// service as online while it answers with a 2xx status.
type Prober struct {
	*Manual

	url      string
	client   *http.Client
	interval time.Duration
	logger   *log.Logger
}

// NewProber creates a prober for baseURL. The signal starts offline.
func NewProber(baseURL string, interval time.Duration, logger *log.Logger) *Prober {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Prober{
		Manual:   NewManual(false),
		url:      strings.TrimRight(baseURL, "/") + "/health",
		client:   &http.Client{Timeout: interval},
		interval: interval,
		logger:   logger,
	}
}

// Run probes immediately and then every interval until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.Probe(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Probe performs a single health check and updates the signal.
func (p *Prober) Probe(ctx context.Context) bool {
	online := p.check(ctx)
	if online != p.Online() {
		p.logger.Info("connectivity changed", "online", online)
	}
	p.Set(online)
	return online
}

func (p *Prober) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
