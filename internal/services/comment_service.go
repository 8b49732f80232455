package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/podelme/podel/internal/models"
)

var (
	// ErrUnknownParentKind rejects comment operations against kinds that are
	// not in the fixed lookup table.
	ErrUnknownParentKind = errors.New("comments: unknown parent kind")
	// ErrParentNotFound signals a comment aimed at a missing subject.
	ErrParentNotFound = errors.New("comments: parent not found")
)

// maxCommentPage caps a single listing query.
const maxCommentPage = 20

// CommentService persists comments under per-kind tables. The kind-to-table
// binding goes through models.ParentKind's lookup; identifiers are never
// assembled from request input.
type CommentService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCommentService builds the service.
func NewCommentService(db *gorm.DB) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	return &CommentService{db: db, now: time.Now}, nil
}

// Create attaches a new comment to the given subject.
func (s *CommentService) Create(ctx context.Context, kind models.ParentKind, parentID, userID, text string) (*models.Comment, error) {
	table, err := kind.Table()
	if err != nil {
		return nil, ErrUnknownParentKind
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("comment service: text is required")
	}

	if err := s.parentExists(ctx, kind, parentID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	comment := &models.Comment{
		BaseModel: models.BaseModel{ID: models.NewID(), CreatedAt: now},
		ParentID:  parentID,
		UserID:    userID,
		Text:      text,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(ctx).Table(table).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create: %w", err)
	}
	return comment, nil
}

// List returns the newest comments for a subject together with their
// authors. Page size is capped at 20.
func (s *CommentService) List(ctx context.Context, kind models.ParentKind, parentID string, limit, offset int) ([]models.Comment, error) {
	table, err := kind.Table()
	if err != nil {
		return nil, ErrUnknownParentKind
	}

	if limit <= 0 || limit > maxCommentPage {
		limit = maxCommentPage
	}
	if offset < 0 {
		offset = 0
	}

	var comments []models.Comment
	err = s.db.WithContext(ctx).
		Table(table).
		Where("parent_id = ?", parentID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comment service: list: %w", err)
	}

	if err := s.attachAuthors(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) parentExists(ctx context.Context, kind models.ParentKind, parentID string) error {
	var count int64
	var err error

	switch kind {
	case models.ParentWebsite:
		err = s.db.WithContext(ctx).Model(&models.Website{}).Where("id = ?", parentID).Count(&count).Error
	default:
		return ErrUnknownParentKind
	}

	if err != nil {
		return fmt.Errorf("comment service: check parent: %w", err)
	}
	if count == 0 {
		return ErrParentNotFound
	}
	return nil
}

func (s *CommentService) attachAuthors(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]string, 0, len(comments))
	for _, comment := range comments {
		ids = append(ids, comment.UserID)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return fmt.Errorf("comment service: load authors: %w", err)
	}

	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range comments {
		comments[i].User = byID[comments[i].UserID]
	}
	return nil
}
