package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RemoteEntry is a score accepted by the leaderboard service.
type RemoteEntry struct {
	ID        string
	UID       string // Anonymous identity that submitted it
	Name      string
	Score     int
	Timestamp int64 // Client wall-clock ms
	CreatedAt time.Time
}

// InsertEntry appends an entry. Entries are never updated.
func (s *Store) InsertEntry(e RemoteEntry) error {
	_, err := s.db.Exec(
		"INSERT INTO entries (id, uid, name, score, timestamp) VALUES (?, ?, ?, ?, ?)",
		e.ID, e.UID, e.Name, e.Score, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save entry: %w", err)
	}
	return nil
}

// TopEntries retrieves the top N entries by raw score.
// Equal scores are ordered by earlier timestamp first.
func (s *Store) TopEntries(limit int) ([]RemoteEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		`SELECT id, uid, name, score, timestamp, created_at
		 FROM entries
		 ORDER BY score DESC, timestamp ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query entries: %w", err)
	}
	defer rows.Close()

	var entries []RemoteEntry
	for rows.Next() {
		var e RemoteEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.UID, &e.Name, &e.Score, &e.Timestamp, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// CountEntries returns the number of stored entries.
func (s *Store) CountEntries() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count entries: %w", err)
	}
	return n, nil
}

// SaveIdentity records an anonymous identity and its bearer token.
func (s *Store) SaveIdentity(uid, token string) error {
	if _, err := s.db.Exec("INSERT INTO identities (token, uid) VALUES (?, ?)", token, uid); err != nil {
		return fmt.Errorf("storage: cannot save identity: %w", err)
	}
	return nil
}

// LookupIdentity returns the uid owning token, or ErrNotFound.
func (s *Store) LookupIdentity(token string) (string, error) {
	var uid string
	err := s.db.QueryRow("SELECT uid FROM identities WHERE token = ?", token).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage: cannot look up identity: %w", err)
	}
	return uid, nil
}
