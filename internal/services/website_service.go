package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/podelme/podel/internal/models"
)

// ErrWebsiteNotFound signals a lookup against a missing subject.
var ErrWebsiteNotFound = errors.New("websites: not found")

// WebsiteService manages reviewable website subjects.
type WebsiteService struct {
	db *gorm.DB
}

// NewWebsiteService builds the service.
func NewWebsiteService(db *gorm.DB) (*WebsiteService, error) {
	if db == nil {
		return nil, errors.New("website service: db is required")
	}
	return &WebsiteService{db: db}, nil
}

// CreateInput captures the details of a new website subject.
type CreateWebsiteInput struct {
	Name        string
	DomainName  string
	Description string
}

// Create registers a new website subject.
func (s *WebsiteService) Create(ctx context.Context, input CreateWebsiteInput) (*models.Website, error) {
	name := strings.TrimSpace(input.Name)
	domain := strings.TrimSpace(input.DomainName)
	if name == "" || domain == "" {
		return nil, errors.New("website service: name and domain name are required")
	}

	website := &models.Website{
		Name:       name,
		DomainName: domain,
	}
	if description := strings.TrimSpace(input.Description); description != "" {
		website.Description = &description
	}

	if err := s.db.WithContext(ctx).Create(website).Error; err != nil {
		return nil, fmt.Errorf("website service: create: %w", err)
	}
	return website, nil
}

// Find resolves a website by id or unique name.
func (s *WebsiteService) Find(ctx context.Context, idOrName string) (*models.Website, error) {
	var website models.Website
	err := s.db.WithContext(ctx).
		Where("id = ? OR name = ?", idOrName, idOrName).
		Take(&website).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWebsiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("website service: find: %w", err)
	}
	return &website, nil
}

// Vote adjusts a website's karma by one in either direction.
func (s *WebsiteService) Vote(ctx context.Context, id string, up bool) error {
	column := "karma_down"
	if up {
		column = "karma_up"
	}

	result := s.db.WithContext(ctx).
		Model(&models.Website{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return fmt.Errorf("website service: vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWebsiteNotFound
	}
	return nil
}
