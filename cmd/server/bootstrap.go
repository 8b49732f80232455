package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/podelme/podel/internal/app"
	iauth "github.com/podelme/podel/internal/auth"
	"github.com/podelme/podel/internal/database"
)

func openDatabase(cfg *app.Config) (*gorm.DB, error) {
	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("obtain sql handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close database", zap.Error(err))
	}
}

func buildAuth(db *gorm.DB, cfg *app.Config) (*iauth.SessionService, *iauth.LocalProvider, error) {
	store, err := iauth.NewSessionStore(db, cfg.Auth.Session.StoreTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("initialise session store: %w", err)
	}

	sessions, err := iauth.NewSessionService(store, iauth.SessionConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("initialise session service: %w", err)
	}

	local, err := iauth.NewLocalProvider(db, iauth.LocalConfig{
		DefaultLanguage: cfg.Site.DefaultLanguage,
		HashWorkers:     cfg.Auth.Local.HashWorkers,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initialise local provider: %w", err)
	}

	return sessions, local, nil
}
