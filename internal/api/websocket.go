package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/space-runner/internal/remote"
)

const (
	// MaxWSConnectionsTotal is the maximum number of feed connections
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum feed connections per IP
	MaxWSConnectionsPerIP = 10

	writeWait = 5 * time.Second
)

// feed is one connected leaderboard subscriber
type feed struct {
	conn  *websocket.Conn
	ip    string
	limit int
}

// Hub pushes a fresh leaderboard snapshot to every feed after each write.
// All writes to connections happen on the Run goroutine.
type Hub struct {
	feeds      map[*websocket.Conn]*feed
	register   chan *feed
	unregister chan *websocket.Conn
	notify     chan struct{}
	count      chan chan int
	done       chan struct{}

	snapshot func(limit int) (remote.Snapshot, error)
	limiter  *connLimiter
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHub creates a hub serving snapshots from source. Origins are matched
// like the CORS list; requests without an Origin header (non-browser
// clients) are always accepted.
func NewHub(source func(limit int) (remote.Snapshot, error), origins []string, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Hub{
		feeds:      make(map[*websocket.Conn]*feed),
		register:   make(chan *feed),
		unregister: make(chan *websocket.Conn),
		notify:     make(chan struct{}, 1),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		snapshot:   source,
		limiter:    newConnLimiter(MaxWSConnectionsPerIP),
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || originAllowed(origin, origins) {
				return true
			}
			logger.Warn("feed connection rejected", "origin", origin)
			RecordRejected("origin")
			return false
		},
	}
	return h
}

// Run serves registrations and notifications until ctx is done, then closes
// every feed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for conn, f := range h.feeds {
				conn.Close()
				h.limiter.Release(f.ip)
				delete(h.feeds, conn)
			}
			wsConnectionsActive.Set(0)
			return

		case f := <-h.register:
			h.feeds[f.conn] = f
			wsConnectionsActive.Set(float64(len(h.feeds)))
			h.logger.Debug("feed connected", "ip", f.ip, "total", len(h.feeds))
			if snap, err := h.snapshot(f.limit); err == nil {
				h.send(f, snap)
			}

		case conn := <-h.unregister:
			h.drop(conn)

		case <-h.notify:
			h.broadcast()

		case reply := <-h.count:
			reply <- len(h.feeds)
		}
	}
}

// Notify schedules a broadcast. Notifications arriving while one is pending
// are merged.
func (h *Hub) Notify() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// ClientCount returns the number of connected feeds, or 0 once Run has
// stopped. It blocks until Run is started.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) broadcast() {
	if len(h.feeds) == 0 {
		return
	}
	snap, err := h.snapshot(remote.MaxWindow)
	if err != nil {
		h.logger.Warn("cannot build leaderboard snapshot", "error", err)
		return
	}
	for _, f := range h.feeds {
		view := snap
		if len(view.Items) > f.limit {
			view.Items = view.Items[:f.limit]
		}
		h.send(f, view)
	}
}

func (h *Hub) send(f *feed, snap remote.Snapshot) {
	_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := f.conn.WriteJSON(snap); err != nil {
		h.drop(f.conn)
		return
	}
	wsSnapshotsTotal.Inc()
}

func (h *Hub) drop(conn *websocket.Conn) {
	f, ok := h.feeds[conn]
	if !ok {
		return
	}
	conn.Close()
	h.limiter.Release(f.ip)
	delete(h.feeds, conn)
	wsConnectionsActive.Set(float64(len(h.feeds)))
	h.logger.Debug("feed disconnected", "ip", f.ip, "remaining", len(h.feeds))
}

// HandleWebSocket upgrades the request and registers it as a feed.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.stopped() {
		writeError(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	if h.ClientCount() >= MaxWSConnectionsTotal {
		RecordRejected("ws_limit")
		writeError(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.limiter.Acquire(ip) {
		RecordRejected("ws_limit")
		writeError(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.limiter.Release(ip)
		return
	}

	select {
	case h.register <- &feed{conn: conn, ip: ip, limit: parseLimit(r)}:
	case <-h.done:
		conn.Close()
		h.limiter.Release(ip)
		return
	}

	// Feeds are receive-only; reading detects the peer going away.
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// originAllowed matches origin against patterns that may contain a single
// '*' wildcard, e.g. "http://localhost:*".
func originAllowed(origin string, patterns []string) bool {
	for _, p := range patterns {
		if p == "*" || p == origin {
			return true
		}
		if i := strings.IndexByte(p, '*'); i >= 0 {
			prefix, suffix := p[:i], p[i+1:]
			if len(origin) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}
