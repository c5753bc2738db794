package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/vovakirdan/space-runner/internal/storage"
)

// Keys used in the persistence collaborator.
const (
	KeyHighScore   = "space-runner-highscore"
	KeyPlayerName  = "space-runner-player-name"
	KeyLocalScores = "space-runner-local-scores"
	KeyLastSync    = "space-runner-last-sync"
)

// DefaultLocalCap is the number of scores kept locally.
const DefaultLocalCap = 10

// LocalStore is a typed view over a key-value store.
type LocalStore struct {
	kv  storage.KV
	cap int

	mu sync.Mutex // guards read-modify-write of the score list
}

// NewLocalStore wraps kv. A non-positive limit uses DefaultLocalCap.
func NewLocalStore(kv storage.KV, limit int) *LocalStore {
	if limit <= 0 {
		limit = DefaultLocalCap
	}
	return &LocalStore{kv: kv, cap: limit}
}

// HighScore returns the stored high score; a missing key is 0.
func (s *LocalStore) HighScore() (int, error) {
	v, err := s.get(KeyHighScore)
	if err != nil || v == "" {
		return 0, err
	}
	hs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("leaderboard: malformed high score %q: %w", v, err)
	}
	return hs, nil
}

// SetHighScore persists score as the high score.
func (s *LocalStore) SetHighScore(score int) error {
	return s.kv.Set(KeyHighScore, strconv.Itoa(score))
}

// PlayerName returns the stored name, or "" if none was saved.
func (s *LocalStore) PlayerName() (string, error) {
	return s.get(KeyPlayerName)
}

// SetPlayerName persists name.
func (s *LocalStore) SetPlayerName(name string) error {
	return s.kv.Set(KeyPlayerName, name)
}

// Scores returns the local score list, highest first.
func (s *LocalStore) Scores() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores()
}

func (s *LocalStore) scores() ([]Entry, error) {
	v, err := s.get(KeyLocalScores)
	if err != nil || v == "" {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(v), &entries); err != nil {
		return nil, fmt.Errorf("leaderboard: malformed local scores: %w", err)
	}
	return entries, nil
}

// AppendScore adds e to the local list, re-sorts it and trims it to the cap.
// The returned list is what was persisted.
func (s *LocalStore) AppendScore(e Entry) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.scores()
	if err != nil {
		// A corrupt list must not block new scores.
		entries = nil
	}

	e.ID = ""
	entries = append(entries, e)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > s.cap {
		entries = entries[:s.cap]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: cannot encode local scores: %w", err)
	}
	if err := s.kv.Set(KeyLocalScores, string(data)); err != nil {
		return nil, err
	}
	return entries, nil
}

// LastSync returns the last-sync cursor in Unix ms; 0 if never synced.
func (s *LocalStore) LastSync() (int64, error) {
	v, err := s.get(KeyLastSync)
	if err != nil || v == "" {
		return 0, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("leaderboard: malformed sync cursor %q: %w", v, err)
	}
	return ms, nil
}

// SetLastSync stores the last-sync cursor.
func (s *LocalStore) SetLastSync(ms int64) error {
	return s.kv.Set(KeyLastSync, strconv.FormatInt(ms, 10))
}

func (s *LocalStore) get(key string) (string, error) {
	v, err := s.kv.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}
