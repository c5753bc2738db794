package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/space-runner/internal/config"
	"github.com/vovakirdan/space-runner/internal/observe"
)

// ErrNoIdentity is reported when a remote write is skipped for lack of an
// anonymous identity.
var ErrNoIdentity = errors.New("leaderboard: no remote identity")

// ErrClosed is reported by SubmitAsync after Close. The score is still stored
// locally and is replayed by a later sync.
var ErrClosed = errors.New("leaderboard: engine closed")

// Identity is an anonymous remote identity.
type Identity struct {
	UID   string
	Token string
}

// Remote is the leaderboard backend.
type Remote interface {
	// SignInAnonymously acquires a fresh anonymous identity.
	SignInAnonymously(ctx context.Context) (Identity, error)
	// Push appends e to the remote collection and returns its id.
	Push(ctx context.Context, id Identity, e Entry) (string, error)
	// Subscribe delivers the top window entries by raw score on every remote
	// change until ctx is done. It returns once the subscription is set up.
	Subscribe(ctx context.Context, window int, onChange func([]Entry)) error
}

// Connectivity reports whether the network is believed reachable.
type Connectivity interface {
	Online() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Outcome classifies a submission.
type Outcome int

const (
	OutcomeSubmitted    Outcome = iota // Written remotely
	OutcomeLocalOnly                   // No identity; stored locally only
	OutcomeRemoteFailed                // Remote write attempted and failed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeLocalOnly:
		return "local_only"
	case OutcomeRemoteFailed:
		return "remote_failed"
	default:
		return "unknown"
	}
}

// SubmitResult is the result of one score submission.
// In every outcome the score has already been stored locally.
type SubmitResult struct {
	Outcome Outcome
	ID      string // Remote id when Submitted
	Err     error
}

// Submitted reports whether the remote write succeeded.
func (r SubmitResult) Submitted() bool {
	return r.Outcome == OutcomeSubmitted
}

// Engine is the leaderboard sync engine. Remote calls never run on the
// caller's goroutine unless the caller asks for it (SubmitScore, SyncPending).
type Engine struct {
	local  *LocalStore
	remote Remote
	conn   Connectivity
	logger *log.Logger
	now    func() time.Time

	topN        int
	window      int
	defaultName string

	leaderboard   *observe.Value[[]Entry]
	online        *observe.Value[bool]
	playerName    *observe.Value[string]
	authenticated *observe.Value[bool]

	mu         sync.Mutex
	identity   *Identity
	wasOnline  bool
	closed     bool
	cancel     context.CancelFunc
	unsubConn  func()
	background sync.WaitGroup // Add only under mu while !closed

	signInMu sync.Mutex // one sign-in at a time
	syncMu   sync.Mutex // one sync pass at a time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for timestamps and the sync cursor.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine. remote may be nil for offline-only play and
// conn may be nil, in which case the engine considers itself always offline.
func NewEngine(local *LocalStore, remote Remote, conn Connectivity, cfg config.LeaderboardConfig, logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		local:         local,
		remote:        remote,
		conn:          conn,
		logger:        logger,
		now:           time.Now,
		topN:          cfg.TopN,
		window:        cfg.Window,
		defaultName:   cfg.DefaultName,
		leaderboard:   observe.NewValue([]Entry{}),
		online:        observe.NewValue(false),
		playerName:    observe.NewValue(""),
		authenticated: observe.NewValue(false),
	}
	if e.topN <= 0 {
		e.topN = 10
	}
	if e.window <= 0 {
		e.window = 100
	}
	if e.defaultName == "" {
		e.defaultName = "Anonymous"
	}
	for _, opt := range opts {
		opt(e)
	}

	name, err := local.PlayerName()
	if err != nil {
		logger.Warn("could not read player name", "error", err)
	}
	e.playerName.Set(strings.TrimSpace(name))
	if conn != nil {
		e.online.Set(conn.Online())
	}
	return e
}

// Leaderboard is the deduplicated top view.
func (e *Engine) Leaderboard() *observe.Value[[]Entry] { return e.leaderboard }

// IsOnline mirrors the connectivity signal.
func (e *Engine) IsOnline() *observe.Value[bool] { return e.online }

// PlayerName is the saved player name, "" until one is set.
func (e *Engine) PlayerName() *observe.Value[string] { return e.playerName }

// Authenticated reports whether an anonymous identity is held.
func (e *Engine) Authenticated() *observe.Value[bool] { return e.authenticated }

// DisplayName returns the name used for new submissions.
func (e *Engine) DisplayName() string {
	if n := e.playerName.Get(); n != "" {
		return n
	}
	return e.defaultName
}

// Start acquires an anonymous identity, replays scores left pending by an
// earlier session, subscribes to the remote top window and begins following
// connectivity changes. It blocks for the duration of
// the sign-in and subscription setup; failures leave the engine in local-only
// mode and are not returned. Callers on the tick goroutine should run it in
// the background.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.cancel != nil || e.closed {
		e.mu.Unlock()
		cancel()
		return
	}
	e.cancel = cancel
	e.wasOnline = e.online.Get()
	if e.conn != nil {
		e.unsubConn = e.conn.Subscribe(func(online bool) {
			e.handleConnectivity(ctx, online)
		})
	}
	e.mu.Unlock()

	if e.remote == nil {
		e.logger.Info("no remote leaderboard configured, running offline")
		return
	}

	if e.authenticate(ctx) {
		if _, err := e.SyncPending(ctx); err != nil {
			e.logger.Warn("startup sync failed", "error", err)
		}
	}

	if err := e.remote.Subscribe(ctx, e.window, e.applySnapshot); err != nil {
		e.logger.Warn("leaderboard subscription failed", "error", err)
	}
}

// authenticate signs in unless an identity is already held. Concurrent
// callers wait for the sign-in in flight instead of starting another.
func (e *Engine) authenticate(ctx context.Context) bool {
	e.signInMu.Lock()
	defer e.signInMu.Unlock()
	if _, ok := e.currentIdentity(); ok {
		return true
	}

	id, err := e.remote.SignInAnonymously(ctx)
	if err != nil {
		e.logger.Warn("anonymous sign-in failed, scores stay local", "error", err)
		return false
	}
	e.mu.Lock()
	e.identity = &id
	e.mu.Unlock()
	e.authenticated.Set(true)
	e.logger.Info("signed in anonymously", "uid", id.UID)
	return true
}

func (e *Engine) currentIdentity() (Identity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.identity == nil {
		return Identity{}, false
	}
	return *e.identity, true
}

// applySnapshot recomputes the top view from a raw remote window.
func (e *Engine) applySnapshot(raw []Entry) {
	if len(raw) > e.window {
		raw = raw[:e.window]
	}
	top := TopUnique(raw, e.topN)
	e.leaderboard.Set(top)
	e.logger.Debug("leaderboard updated", "unique", len(top), "raw", len(raw))
}

// handleConnectivity publishes the signal and, on an offline to online
// transition, signs in if needed and replays pending scores.
func (e *Engine) handleConnectivity(ctx context.Context, online bool) {
	e.online.Set(online)

	e.mu.Lock()
	rising := online && !e.wasOnline
	e.wasOnline = online
	if !rising || e.remote == nil || e.closed || ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	e.background.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.background.Done()
		if !e.authenticate(ctx) {
			return
		}
		if _, err := e.SyncPending(ctx); err != nil {
			e.logger.Warn("sync after reconnect failed", "error", err)
		}
	}()
}

// SetPlayerName trims and persists name. Blank names are ignored.
func (e *Engine) SetPlayerName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if err := e.local.SetPlayerName(name); err != nil {
		e.logger.Warn("could not persist player name", "error", err)
	}
	e.playerName.Set(name)
}

// record stores score locally under the current display name.
func (e *Engine) record(score int) Entry {
	entry := Entry{
		Name:      e.DisplayName(),
		Score:     score,
		Timestamp: e.now().UnixMilli(),
	}
	if _, err := e.local.AppendScore(entry); err != nil {
		e.logger.Warn("could not store score locally", "score", score, "error", err)
	}
	return entry
}

// push performs at most one remote write for entry.
func (e *Engine) push(ctx context.Context, entry Entry) SubmitResult {
	id, ok := e.currentIdentity()
	if !ok || e.remote == nil {
		submissions.WithLabelValues(OutcomeLocalOnly.String()).Inc()
		return SubmitResult{Outcome: OutcomeLocalOnly, Err: ErrNoIdentity}
	}

	remoteID, err := e.remote.Push(ctx, id, entry)
	if err != nil {
		submissions.WithLabelValues(OutcomeRemoteFailed.String()).Inc()
		e.logger.Warn("score submission failed, kept locally", "score", entry.Score, "error", err)
		return SubmitResult{Outcome: OutcomeRemoteFailed, Err: err}
	}
	submissions.WithLabelValues(OutcomeSubmitted.String()).Inc()
	e.logger.Info("score submitted", "score", entry.Score, "id", remoteID)
	return SubmitResult{Outcome: OutcomeSubmitted, ID: remoteID}
}

// SubmitScore stores score locally and then attempts one remote write.
// It blocks on the remote call.
func (e *Engine) SubmitScore(ctx context.Context, score int) SubmitResult {
	entry := e.record(score)
	return e.push(ctx, entry)
}

// SubmitAsync stores score locally before returning and performs the remote
// write on its own goroutine. The channel receives exactly one result.
func (e *Engine) SubmitAsync(score int) <-chan SubmitResult {
	entry := e.record(score)

	out := make(chan SubmitResult, 1)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		out <- SubmitResult{Outcome: OutcomeLocalOnly, Err: ErrClosed}
		close(out)
		return out
	}
	e.background.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.background.Done()
		defer close(out)
		out <- e.push(context.Background(), entry)
	}()
	return out
}

// SyncPending replays local scores newer than the last-sync cursor. It does
// nothing unless online and signed in. Individual failures are logged and
// skipped; after every pass the cursor moves to the time the pass started, so
// scores recorded while it runs are left for the next one. It returns the number
// of records attempted.
func (e *Engine) SyncPending(ctx context.Context) (int, error) {
	id, ok := e.currentIdentity()
	if !e.online.Get() || !ok || e.remote == nil {
		return 0, nil
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	cursor, err := e.local.LastSync()
	if err != nil {
		e.logger.Warn("sync cursor unreadable, replaying everything", "error", err)
		cursor = 0
	}
	// A score stamped in the same millisecond as passStart may be missing from
	// the read below; keep it above the cursor.
	passStart := e.now().UnixMilli() - 1
	scores, err := e.local.Scores()
	if err != nil {
		return 0, fmt.Errorf("leaderboard: cannot read local scores: %w", err)
	}

	attempted, failed := 0, 0
	for _, s := range scores {
		if s.Timestamp <= cursor {
			continue
		}
		attempted++
		if _, err := e.remote.Push(ctx, id, s); err != nil {
			failed++
			syncRecords.WithLabelValues("failed").Inc()
			e.logger.Debug("pending score not synced", "score", s.Score, "error", err)
			continue
		}
		syncRecords.WithLabelValues("ok").Inc()
	}

	if passStart < cursor {
		passStart = cursor
	}
	if err := e.local.SetLastSync(passStart); err != nil {
		return attempted, fmt.Errorf("leaderboard: cannot advance sync cursor: %w", err)
	}
	e.logger.Info("synced pending scores", "attempted", attempted, "failed", failed)
	return attempted, nil
}

// Close stops the subscription and connectivity tracking. Submissions already
// in flight keep running; use Wait to let them finish. No background work is
// started after Close returns.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
	if e.unsubConn != nil {
		e.unsubConn()
		e.unsubConn = nil
	}
}

// Wait blocks until background submissions and syncs finish or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
