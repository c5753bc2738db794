package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/space-runner/internal/storage"
)

// IdentityStore persists anonymous identities.
type IdentityStore interface {
	SaveIdentity(uid, token string) error
	LookupIdentity(token string) (string, error)
}

type ctxKey int

const uidKey ctxKey = iota

// issueIdentity creates and stores a fresh anonymous identity.
func issueIdentity(ids IdentityStore) (uid, token string, err error) {
	uid = uuid.NewString()
	token = uuid.NewString()
	if err := ids.SaveIdentity(uid, token); err != nil {
		return "", "", err
	}
	signInsTotal.Inc()
	return uid, token, nil
}

// requireIdentity rejects requests without a known bearer token and puts the
// caller's uid on the request context.
func requireIdentity(ids IdentityStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				submissionsTotal.WithLabelValues("unauthorized").Inc()
				writeError(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			uid, err := ids.LookupIdentity(token)
			if errors.Is(err, storage.ErrNotFound) {
				submissionsTotal.WithLabelValues("unauthorized").Inc()
				writeError(w, "unknown token", http.StatusUnauthorized)
				return
			}
			if err != nil {
				writeError(w, "identity lookup failed", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), uidKey, uid)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

// uidFrom returns the caller identity set by requireIdentity.
func uidFrom(ctx context.Context) string {
	uid, _ := ctx.Value(uidKey).(string)
	return uid
}
