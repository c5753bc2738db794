package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/space-runner/internal/api"
	"github.com/vovakirdan/space-runner/internal/leaderboard"
	"github.com/vovakirdan/space-runner/internal/remote"
	"github.com/vovakirdan/space-runner/internal/storage"
)

// newTestService starts a service backed by a temp SQLite file.
func newTestService(t *testing.T, rl *api.RateLimitConfig) (*httptest.Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if rl == nil {
		rl = &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, CleanupInterval: time.Minute}
	}

	srv := api.NewServer(store, api.ServerConfig{RateLimitConfig: rl, DisableLogging: true})
	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)
	ts := httptest.NewServer(srv.Router())

	t.Cleanup(func() {
		ts.Close()
		cancel()
		store.Close()
	})
	return ts, store
}

func TestHealth(t *testing.T) {
	ts, _ := newTestService(t, nil)

	resp, err := http.Get(ts.URL + remote.PathHealth)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSubmitAndFetch(t *testing.T) {
	ts, store := newTestService(t, nil)
	c := remote.NewClient(ts.URL, nil)
	ctx := context.Background()

	id, err := c.SignInAnonymously(ctx)
	if err != nil {
		t.Fatalf("SignInAnonymously() failed: %v", err)
	}
	if id.UID == "" || id.Token == "" || id.UID == id.Token {
		t.Errorf("identity = %+v", id)
	}

	for i, e := range []leaderboard.Entry{
		{Name: "Bob", Score: 50, Timestamp: 1},
		{Name: "bob", Score: 80, Timestamp: 2},
		{Name: "  Alice  ", Score: 60, Timestamp: 3},
	} {
		remoteID, err := c.Push(ctx, id, e)
		if err != nil {
			t.Fatalf("Push(%d) failed: %v", i, err)
		}
		if remoteID == "" {
			t.Errorf("Push(%d) returned empty id", i)
		}
	}

	rows, _ := store.TopEntries(10)
	if len(rows) != 3 || rows[0].UID != id.UID {
		t.Errorf("stored entries = %+v", rows)
	}

	snap, err := c.Top(ctx, 2)
	if err != nil {
		t.Fatalf("Top() failed: %v", err)
	}
	if len(snap.Items) != 2 || snap.Items[0].Score != 80 || snap.Items[1].Name != "Alice" {
		t.Errorf("Top(2) = %+v", snap.Items)
	}
	if snap.GeneratedAt == 0 {
		t.Error("GeneratedAt not set")
	}

	top := leaderboard.TopUnique(snap.Items, 10)
	if len(top) != 2 {
		t.Errorf("TopUnique over snapshot = %+v", top)
	}
}

func TestSubmitRequiresIdentity(t *testing.T) {
	ts, _ := newTestService(t, nil)
	c := remote.NewClient(ts.URL, nil)

	for _, token := range []string{"", "not-a-token"} {
		_, err := c.Push(context.Background(), leaderboard.Identity{Token: token}, leaderboard.Entry{Name: "x", Score: 1})
		var se *remote.StatusError
		if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
			t.Errorf("token %q: error = %v, want 401", token, err)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	ts, _ := newTestService(t, nil)
	c := remote.NewClient(ts.URL, nil)
	ctx := context.Background()
	id, err := c.SignInAnonymously(ctx)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		entry leaderboard.Entry
		code  int
	}{
		{"blank name", leaderboard.Entry{Name: "   ", Score: 1}, http.StatusBadRequest},
		{"name too long", leaderboard.Entry{Name: strings.Repeat("x", 33), Score: 1}, http.StatusBadRequest},
		{"negative score", leaderboard.Entry{Name: "ok", Score: -1}, http.StatusBadRequest},
		{"32 runes", leaderboard.Entry{Name: strings.Repeat("é", 32), Score: 0}, 0},
		{"missing timestamp", leaderboard.Entry{Name: "ok", Score: 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Push(ctx, id, tt.entry)
			if tt.code == 0 {
				if err != nil {
					t.Errorf("Push() failed: %v", err)
				}
				return
			}
			var se *remote.StatusError
			if !errors.As(err, &se) || se.Code != tt.code {
				t.Errorf("Push() error = %v, want status %d", err, tt.code)
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+remote.PathLeaderboard, bytes.NewBufferString("{broken"))
	req.Header.Set("Authorization", "Bearer "+id.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
}

func TestLimitClamp(t *testing.T) {
	ts, store := newTestService(t, nil)
	for i := 0; i < 120; i++ {
		if err := store.InsertEntry(storage.RemoteEntry{ID: fmt.Sprint(i), UID: "u", Name: fmt.Sprint("p", i), Score: i, Timestamp: int64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 100},
		{"?limit=5", 5},
		{"?limit=0", 1},
		{"?limit=-4", 1},
		{"?limit=500", 100},
		{"?limit=abc", 100},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + remote.PathLeaderboard + tt.query)
		if err != nil {
			t.Fatal(err)
		}
		var snap remote.Snapshot
		err = json.NewDecoder(resp.Body).Decode(&snap)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("%q: decode failed: %v", tt.query, err)
		}
		if len(snap.Items) != tt.want {
			t.Errorf("%q: %d items, want %d", tt.query, len(snap.Items), tt.want)
		}
		if len(snap.Items) > 0 && snap.Items[0].Score != 119 {
			t.Errorf("%q: first score = %d, want 119", tt.query, snap.Items[0].Score)
		}
	}
}

func TestRateLimit(t *testing.T) {
	ts, _ := newTestService(t, &api.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, CleanupInterval: time.Minute})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		resp, err := http.Get(ts.URL + remote.PathLeaderboard)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first requests = %v, want 200s", codes)
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want 429 once the burst is spent", codes)
	}

	// Probes are not rate limited.
	resp, err := http.Get(ts.URL + remote.PathHealth)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d under rate limit", resp.StatusCode)
	}
}

func TestFeedPushesAfterWrites(t *testing.T) {
	ts, _ := newTestService(t, nil)
	c := remote.NewClient(ts.URL, nil, remote.WithRetry(10*time.Millisecond, 50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan []leaderboard.Entry, 16)
	if err := c.Subscribe(ctx, 100, func(items []leaderboard.Entry) { updates <- items }); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	// Snapshot on connect.
	if got := next(t, updates); len(got) != 0 {
		t.Errorf("initial snapshot = %+v, want empty", got)
	}

	id, err := c.SignInAnonymously(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Push(ctx, id, leaderboard.Entry{Name: "Vasquez", Score: 21, Timestamp: 5}); err != nil {
		t.Fatal(err)
	}

	got := next(t, updates)
	if len(got) != 1 || got[0].Name != "Vasquez" || got[0].ID == "" {
		t.Errorf("snapshot after write = %+v", got)
	}
}

func TestEngineAgainstService(t *testing.T) {
	ts, _ := newTestService(t, nil)
	client := remote.NewClient(ts.URL, nil, remote.WithRetry(10*time.Millisecond, 50*time.Millisecond))

	local := leaderboard.NewLocalStore(storage.NewMemoryKV(), 0)
	online := &alwaysOnline{}
	eng := leaderboard.NewEngine(local, client, online, defaultLeaderboardConfig(), nil)
	defer eng.Close()
	eng.Start(context.Background())

	if !eng.Authenticated().Get() {
		t.Fatal("engine did not sign in")
	}

	eng.SetPlayerName("Hudson")
	res := eng.SubmitScore(context.Background(), 33)
	if !res.Submitted() {
		t.Fatalf("SubmitScore() = %+v", res)
	}

	deadline := time.After(3 * time.Second)
	for {
		top := eng.Leaderboard().Get()
		if len(top) == 1 && top[0].Name == "Hudson" && top[0].Score == 33 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("leaderboard never showed the submission: %+v", top)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func next(t *testing.T, updates <-chan []leaderboard.Entry) []leaderboard.Entry {
	t.Helper()
	select {
	case got := <-updates:
		return got
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}
