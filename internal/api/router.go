package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/podelme/podel/internal/app"
	iauth "github.com/podelme/podel/internal/auth"
	"github.com/podelme/podel/internal/handlers"
	"github.com/podelme/podel/internal/middleware"
	"github.com/podelme/podel/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, cfg *app.Config, sessions *iauth.SessionService, local *iauth.LocalProvider) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if local == nil {
		return nil, fmt.Errorf("local provider must be provided")
	}

	websiteSvc, err := services.NewWebsiteService(db)
	if err != nil {
		return nil, err
	}
	commentSvc, err := services.NewCommentService(db)
	if err != nil {
		return nil, err
	}

	cookieName := cfg.Auth.Session.CookieName

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.Session(sessions, cookieName))

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health(db))
	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(local, sessions, cookieName)
	userHandler := handlers.NewUserHandler(db)
	websiteHandler := handlers.NewWebsiteHandler(websiteSvc, commentSvc)

	// One form serves login and registration.
	r.POST("/auth", authHandler.Authenticate)
	r.POST("/logout", middleware.RequireAuth(), authHandler.Logout)

	r.GET("/me", middleware.RequireAuth(), userHandler.Me)
	r.GET("/users/:id", userHandler.Get)

	websites := r.Group("/websites")
	{
		websites.POST("", middleware.RequireAdmin(), websiteHandler.Create)
		websites.GET("/:id", websiteHandler.Get)
		websites.POST("/:id/vote", middleware.RequireAuth(), websiteHandler.Vote)
		websites.POST("/:id/comments", middleware.RequireAuth(), websiteHandler.CreateComment)
	}

	return r, nil
}
