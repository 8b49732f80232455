package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/podelme/podel/internal/models"
	"github.com/podelme/podel/pkg/metrics"
)

// SessionTTL is the fixed validity window set at session creation.
const SessionTTL = 4 * 24 * time.Hour

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	Clock func() time.Time
}

// SessionService issues sessions at login/registration time and validates
// presented tokens against the store on every request.
type SessionService struct {
	store SessionStore
	now   func() time.Time
}

// NewSessionService constructs a session manager backed by the provided store.
func NewSessionService(store SessionStore, cfg SessionConfig) (*SessionService, error) {
	if store == nil {
		return nil, errors.New("session service: store is required")
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{store: store, now: clock}, nil
}

// Create issues a new session for an authenticated user, persists it, and
// returns the record together with its encoded transport token. Concurrent
// logins for the same user are independent; neither invalidates the other.
func (s *SessionService) Create(ctx context.Context, user *models.User, ip string) (*models.Session, string, error) {
	if user == nil || user.ID == "" {
		return nil, "", errors.New("session service: user is required")
	}

	// Second precision: the wire format carries epoch seconds.
	now := s.now().UTC().Truncate(time.Second)

	session := &models.Session{
		BaseModel: models.BaseModel{
			ID:        models.NewID(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		IP:        ip,
		EnforceIP: false,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.store.Insert(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := EncodeToken(session, user)
	if err != nil {
		return nil, "", fmt.Errorf("session service: encode token: %w", err)
	}

	metrics.ActiveSessions.Inc()

	return session, token, nil
}

// Validate decodes a presented token and cross-checks it against the
// persisted record. The returned session carries the authenticated user
// loaded from the store's row, never from the client-supplied snapshot.
func (s *SessionService) Validate(ctx context.Context, token, ip string) (*models.Session, error) {
	payload, err := DecodeToken(token, s.now())
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			metrics.SessionValidations.WithLabelValues("expired").Inc()
			return nil, ErrSessionExpired
		}
		metrics.SessionValidations.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSessionMalformed, err)
	}

	session, err := s.store.Find(ctx, payload.Session.ID, payload.Session.UserID, ip, s.now())
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			metrics.SessionValidations.WithLabelValues("not_found").Inc()
		default:
			metrics.SessionValidations.WithLabelValues("storage").Inc()
		}
		return nil, err
	}

	if session.User == nil {
		metrics.SessionValidations.WithLabelValues("not_found").Inc()
		return nil, ErrSessionNotFound
	}

	metrics.SessionValidations.WithLabelValues("ok").Inc()
	return session, nil
}

// Authenticate validates the token and, on any failure, requires the caller
// to discard the client-held token (see ShouldClearToken). Fail-closed: a
// doubtful session never silently continues as the previous identity.
func (s *SessionService) Authenticate(ctx context.Context, token, ip string) (*models.Session, error) {
	return s.Validate(ctx, token, ip)
}

// Destroy implements logout: the session row is deleted and the caller
// clears the client token. Destroying an unknown session reports
// ErrSessionNotFound.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionNotFound
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	metrics.ActiveSessions.Dec()
	return nil
}
