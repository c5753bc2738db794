// Package leaderboard keeps the local score history, replays it to the remote
// leaderboard and maintains the deduplicated top view shown to the player.
package leaderboard

import (
	"sort"
	"strings"
)

// Entry is a single score record, local or remote.
type Entry struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"` // Unix ms
}

// NormalizeName returns the key used to group entries by player.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TopUnique keeps the best entry per normalized name and returns at most n of
// them, highest score first. Equal scores are ordered by earlier timestamp,
// then by position in entries.
func TopUnique(entries []Entry, n int) []Entry {
	if n <= 0 || len(entries) == 0 {
		return []Entry{}
	}

	type ranked struct {
		Entry
		index int
	}

	best := make(map[string]ranked, len(entries))
	for i, e := range entries {
		key := NormalizeName(e.Name)
		cur, ok := best[key]
		if !ok || better(e, cur.Entry) {
			best[key] = ranked{Entry: e, index: i}
		}
	}

	unique := make([]ranked, 0, len(best))
	for _, r := range best {
		unique = append(unique, r)
	}
	sort.Slice(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.index < b.index
	})

	if len(unique) > n {
		unique = unique[:n]
	}
	out := make([]Entry, len(unique))
	for i, r := range unique {
		out[i] = r.Entry
	}
	return out
}

// better reports whether a should replace b as a player's best entry.
func better(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Timestamp < b.Timestamp
}
