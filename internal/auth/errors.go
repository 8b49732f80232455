package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionMalformed covers tokens that cannot be decoded: bad text
	// encoding, truncated bytes, or a corrupt payload.
	ErrSessionMalformed = errors.New("session: malformed token")
	// ErrSessionExpired is reported by the fast prefix check before the
	// payload is ever parsed.
	ErrSessionExpired = errors.New("session: expired")
	// ErrSessionNotFound means the store has no matching live row. Revoked,
	// logged-out and tampered sessions are indistinguishable on purpose:
	// the store is the sole source of truth.
	ErrSessionNotFound = errors.New("session: not found")
)

// StorageError wraps failures at the session store boundary (timeouts,
// connectivity, constraint violations). It is reported to the caller and
// never retried by this package.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ShouldClearToken reports whether the client-held token must be discarded
// after a failed validation. Any doubt about session validity downgrades the
// caller to anonymous; storage failures keep the token since the session may
// still be live.
func ShouldClearToken(err error) bool {
	return errors.Is(err, ErrSessionMalformed) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrSessionNotFound)
}
