package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/podelme/podel/internal/models"
	"github.com/podelme/podel/pkg/crypto"
)

var (
	// ErrInvalidCredentials is returned when the supplied name/password pair is invalid.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrNameTaken signals a registration against an already registered name.
	ErrNameTaken = errors.New("auth: name already registered")
)

// LocalConfig defines tunable behaviour for the local provider.
type LocalConfig struct {
	DefaultLanguage string
	HashWorkers     int
}

// RegisterInput captures the details required to register a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Language string
}

// LocalProvider implements name/password authentication against the user
// table. All Argon2 work is dispatched through a bounded pool so hashing
// cannot block request handling.
type LocalProvider struct {
	db       *gorm.DB
	hashing  *crypto.Pool
	language string
}

// NewLocalProvider builds a provider with sane defaults.
func NewLocalProvider(db *gorm.DB, cfg LocalConfig) (*LocalProvider, error) {
	if db == nil {
		return nil, errors.New("local provider: db is required")
	}

	language := strings.TrimSpace(cfg.DefaultLanguage)
	if language == "" {
		language = models.DefaultLanguage
	}

	return &LocalProvider{
		db:       db,
		hashing:  crypto.NewPool(cfg.HashWorkers),
		language: language,
	}, nil
}

// Authenticate verifies the supplied credentials and returns the user when
// successful. Unknown names and bad passwords are indistinguishable.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := p.db.WithContext(ctx).Where("name = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("local provider: query user: %w", err)
	}

	if err := p.hashing.Verify(ctx, password, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrCredential) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("local provider: verify password: %w", err)
	}

	return &user, nil
}

// Register creates a new user with a hashed password. The very first account
// on an empty user table becomes the admin.
func (p *LocalProvider) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := p.hashing.Hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("local provider: hash password: %w", err)
	}

	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = p.language
	}

	user := &models.User{
		Name:         username,
		Language:     language,
		PasswordHash: hash,
	}
	if email := strings.ToLower(strings.TrimSpace(input.Email)); email != "" {
		user.Email = &email
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("name = ?", username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrNameTaken
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return err
		}
		user.IsAdmin = total == 0

		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, ErrNameTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("local provider: create user: %w", err)
	}

	return user, nil
}
