package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vovakirdan/space-runner/internal/leaderboard"
	"github.com/vovakirdan/space-runner/internal/remote"
	"github.com/vovakirdan/space-runner/internal/storage"
)

// MaxNameLength is the longest accepted player name, in runes.
const MaxNameLength = 32

// EntryStore is the persistence the service needs for scores.
type EntryStore interface {
	InsertEntry(e storage.RemoteEntry) error
	TopEntries(limit int) ([]storage.RemoteEntry, error)
}

// routerHandlers holds the dependencies of the HTTP handlers.
type routerHandlers struct {
	entries    EntryStore
	identities IdentityStore
	hub        *Hub
	now        func() time.Time
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *routerHandlers) handleAuth(w http.ResponseWriter, r *http.Request) {
	uid, token, err := issueIdentity(h.identities)
	if err != nil {
		writeError(w, "cannot issue identity", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, remote.AuthResponse{UID: uid, Token: token})
}

func (h *routerHandlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req remote.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		submissionsTotal.WithLabelValues("invalid").Inc()
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		submissionsTotal.WithLabelValues("invalid").Inc()
		writeError(w, "name must be 1-32 characters", http.StatusBadRequest)
		return
	}
	if req.Score < 0 {
		submissionsTotal.WithLabelValues("invalid").Inc()
		writeError(w, "score must not be negative", http.StatusBadRequest)
		return
	}
	ts := req.Timestamp
	if ts <= 0 {
		ts = h.now().UnixMilli()
	}

	entry := storage.RemoteEntry{
		ID:        uuid.NewString(),
		UID:       uidFrom(r.Context()),
		Name:      name,
		Score:     req.Score,
		Timestamp: ts,
	}
	if err := h.entries.InsertEntry(entry); err != nil {
		submissionsTotal.WithLabelValues("error").Inc()
		writeError(w, "cannot store entry", http.StatusInternalServerError)
		return
	}
	submissionsTotal.WithLabelValues("accepted").Inc()

	if h.hub != nil {
		h.hub.Notify()
	}
	writeJSON(w, http.StatusCreated, remote.SubmitResponse{ID: entry.ID})
}

func (h *routerHandlers) handleTop(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(parseLimit(r))
	if err != nil {
		writeError(w, "cannot load leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// snapshot returns the top limit entries by raw score.
func (h *routerHandlers) snapshot(limit int) (remote.Snapshot, error) {
	rows, err := h.entries.TopEntries(limit)
	if err != nil {
		return remote.Snapshot{}, err
	}
	items := make([]leaderboard.Entry, len(rows))
	for i, e := range rows {
		items[i] = leaderboard.Entry{ID: e.ID, Name: e.Name, Score: e.Score, Timestamp: e.Timestamp}
	}
	return remote.Snapshot{Items: items, GeneratedAt: h.now().UnixMilli()}, nil
}

// parseLimit reads ?limit=, defaulting to and capped at remote.MaxWindow.
func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return remote.MaxWindow
	}
	if n < 1 {
		return 1
	}
	if n > remote.MaxWindow {
		return remote.MaxWindow
	}
	return n
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, remote.ErrorResponse{Error: message})
}
