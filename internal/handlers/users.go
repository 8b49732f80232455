package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podelme/podel/internal/middleware"
	"github.com/podelme/podel/internal/models"
	appErrors "github.com/podelme/podel/pkg/errors"
	"github.com/podelme/podel/pkg/response"
)

// UserHandler serves public profiles and the caller's own identity.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("id = ? OR name = ?", c.Param("id"), c.Param("id")).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "load user"))
		return
	}

	// The User model keeps the password hash out of JSON; this payload only
	// carries the public profile anyway.
	response.Success(c, http.StatusOK, gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"language":   user.Language,
		"is_admin":   user.IsAdmin,
		"created_at": user.CreatedAt,
	})
}

// GET /me
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, user)
}
