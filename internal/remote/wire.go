// Package remote speaks the leaderboard service protocol: JSON over HTTP for
// sign-in and submissions, and a WebSocket feed of the top entries.
package remote

import (
	"fmt"

	"github.com/vovakirdan/space-runner/internal/leaderboard"
)

// Service routes.
const (
	PathHealth        = "/health"
	PathAuth          = "/api/auth/anonymous"
	PathLeaderboard   = "/api/leaderboard"
	PathLeaderboardWS = "/ws/leaderboard"
)

// MaxWindow is the largest snapshot the service returns.
const MaxWindow = 100

// AuthResponse is returned by anonymous sign-in.
type AuthResponse struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

// SubmitRequest is the body of a score submission.
type SubmitRequest struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

// SubmitResponse carries the id of an accepted entry.
type SubmitResponse struct {
	ID string `json:"id"`
}

// Snapshot is the top of the leaderboard by raw score.
type Snapshot struct {
	Items       []leaderboard.Entry `json:"items"`
	GeneratedAt int64               `json:"generated_at"` // Unix ms
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: status %d", e.Code)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Code, e.Message)
}
