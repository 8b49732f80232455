package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/podelme/podel/internal/models"
	"github.com/podelme/podel/pkg/crypto"
)

// DefaultAdminName is the account seeded on first start.
const DefaultAdminName = "admin"

// defaultAdminPassword is only suitable for local development; deployments
// are expected to change it immediately.
const defaultAdminPassword = "admin"

// AutoMigrate applies the schema for every persistent model. Comments are
// migrated once per parent kind so each kind keeps its own fixed table.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Website{},
	); err != nil {
		return err
	}

	for _, kind := range models.ParentKinds() {
		table, err := kind.Table()
		if err != nil {
			return err
		}
		if err := db.Table(table).AutoMigrate(&models.Comment{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}

	return nil
}

// SeedData inserts the default admin account when the user table is empty.
func SeedData(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(defaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Name:         DefaultAdminName,
		Language:     models.DefaultLanguage,
		IsAdmin:      true,
		PasswordHash: hash,
	}

	return db.Create(admin).Error
}
