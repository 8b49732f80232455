package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/podelme/podel/internal/models"
)

// SessionStore is the durable home of session rows. Consistency (unique ids,
// atomic insert/delete) is delegated to the store's transactional
// guarantees; callers never cache store state across calls.
type SessionStore interface {
	// Insert persists a new session row. Constraint violations and
	// connectivity failures surface as *StorageError.
	Insert(ctx context.Context, session *models.Session) error
	// Find returns the live session matching id and userID with its user row
	// loaded. Expiry is evaluated against now at the store; the ip argument
	// is compared only for rows flagged enforce_ip. No match reports
	// ErrSessionNotFound.
	Find(ctx context.Context, id, userID, ip string, now time.Time) (*models.Session, error)
	// Delete removes a session row, reporting ErrSessionNotFound when no row
	// was deleted.
	Delete(ctx context.Context, id string) error
}

// gormSessionStore implements SessionStore on a gorm handle. Every call runs
// under the configured timeout; a timeout is a storage failure, not a
// session failure.
type gormSessionStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// DefaultStoreTimeout bounds individual session store round-trips.
const DefaultStoreTimeout = 5 * time.Second

// NewSessionStore wraps a gorm handle into a SessionStore.
func NewSessionStore(db *gorm.DB, timeout time.Duration) (SessionStore, error) {
	if db == nil {
		return nil, errors.New("session store: db is required")
	}
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &gormSessionStore{db: db, timeout: timeout}, nil
}

func (s *gormSessionStore) Insert(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return &StorageError{Op: "insert", Err: err}
	}
	return nil
}

func (s *gormSessionStore) Find(ctx context.Context, id, userID, ip string, now time.Time) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var session models.Session
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND user_id = ? AND expires_at > ?", id, userID, now).
		Where("enforce_ip = ? OR ip = ?", false, ip).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "find", Err: err}
	}
	return &session, nil
}

func (s *gormSessionStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id)
	if result.Error != nil {
		return &StorageError{Op: "delete", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
