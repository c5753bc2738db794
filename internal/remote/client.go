package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/space-runner/internal/leaderboard"
)

// Default reconnect backoff for the leaderboard feed.
const (
	DefaultRetryMin = time.Second
	DefaultRetryMax = 30 * time.Second
)

// Client talks to a leaderboard service. It implements leaderboard.Remote.
type Client struct {
	baseURL  string
	http     *http.Client
	dialer   *websocket.Dialer
	logger   *log.Logger
	retryMin time.Duration
	retryMax time.Duration
}

var _ leaderboard.Remote = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets the reconnect backoff bounds of the feed.
func WithRetry(lo, hi time.Duration) ClientOption {
	return func(c *Client) {
		c.retryMin = lo
		c.retryMax = hi
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, logger *log.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		dialer:   websocket.DefaultDialer,
		logger:   logger,
		retryMin: DefaultRetryMin,
		retryMax: DefaultRetryMax,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignInAnonymously requests a fresh anonymous identity.
func (c *Client) SignInAnonymously(ctx context.Context) (leaderboard.Identity, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, PathAuth, "", nil, &resp); err != nil {
		return leaderboard.Identity{}, fmt.Errorf("remote: sign-in failed: %w", err)
	}
	if resp.Token == "" {
		return leaderboard.Identity{}, errors.New("remote: sign-in returned no token")
	}
	return leaderboard.Identity{UID: resp.UID, Token: resp.Token}, nil
}

// Push appends e to the leaderboard.
func (c *Client) Push(ctx context.Context, id leaderboard.Identity, e leaderboard.Entry) (string, error) {
	req := SubmitRequest{Name: e.Name, Score: e.Score, Timestamp: e.Timestamp}
	var resp SubmitResponse
	if err := c.do(ctx, http.MethodPost, PathLeaderboard, id.Token, req, &resp); err != nil {
		return "", fmt.Errorf("remote: submit failed: %w", err)
	}
	return resp.ID, nil
}

// Top fetches a one-off snapshot of the top limit entries.
func (c *Client) Top(ctx context.Context, limit int) (Snapshot, error) {
	var snap Snapshot
	path := PathLeaderboard + "?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("remote: fetch failed: %w", err)
	}
	return snap, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Subscribe connects to the live feed and calls onChange with every snapshot.
// It returns the result of the first connection attempt; either way the feed
// keeps reconnecting in the background until ctx is done.
func (c *Client) Subscribe(ctx context.Context, window int, onChange func([]leaderboard.Entry)) error {
	wsURL, err := c.feedURL(window)
	if err != nil {
		return err
	}

	conn, err := c.dial(ctx, wsURL)
	go c.follow(ctx, wsURL, conn, onChange)
	if err != nil {
		return fmt.Errorf("remote: subscribe failed: %w", err)
	}
	return nil
}

func (c *Client) feedURL(window int) (string, error) {
	u, err := url.Parse(c.baseURL + PathLeaderboardWS)
	if err != nil {
		return "", fmt.Errorf("remote: bad base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(window))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) dial(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// follow reads snapshots from conn, redialing with exponential backoff
// whenever the connection is missing or drops.
func (c *Client) follow(ctx context.Context, wsURL string, conn *websocket.Conn, onChange func([]leaderboard.Entry)) {
	backoff := c.retryMin
	for {
		if conn != nil {
			backoff = c.retryMin
			c.read(ctx, conn, onChange)
		}
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.retryMax {
			backoff = c.retryMax
		}

		var err error
		conn, err = c.dial(ctx, wsURL)
		if err != nil {
			c.logger.Debug("leaderboard feed reconnect failed", "error", err, "retry_in", backoff)
			conn = nil
			continue
		}
		c.logger.Info("leaderboard feed reconnected")
	}
}

// read delivers snapshots until the connection fails or ctx is done.
func (c *Client) read(ctx context.Context, conn *websocket.Conn, onChange func([]leaderboard.Entry)) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		var snap Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("leaderboard feed lost", "error", err)
			}
			return
		}
		if snap.Items == nil {
			snap.Items = []leaderboard.Entry{}
		}
		onChange(snap.Items)
	}
}
