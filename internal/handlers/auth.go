package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/podelme/podel/internal/auth"
	"github.com/podelme/podel/internal/middleware"
	"github.com/podelme/podel/internal/models"
	appErrors "github.com/podelme/podel/pkg/errors"
	"github.com/podelme/podel/pkg/logger"
	"github.com/podelme/podel/pkg/metrics"
	"github.com/podelme/podel/pkg/response"
)

// AuthHandler manages the combined login/registration form and logout.
type AuthHandler struct {
	local      *iauth.LocalProvider
	sessions   *iauth.SessionService
	cookieName string
}

func NewAuthHandler(local *iauth.LocalProvider, sessions *iauth.SessionService, cookieName string) *AuthHandler {
	return &AuthHandler{local: local, sessions: sessions, cookieName: cookieName}
}

// POST /auth
//
// A single form serves both flows: the authentication checkbox set means
// login, absent means register. Either way a successful request ends with a
// fresh session cookie.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	creds, err := iauth.ParseCredentials(c)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("username and password are required"))
		return
	}

	kind := "register"
	if creds.Authentication {
		kind = "login"
	}

	user, err := h.resolveUser(c, creds)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(kind, "failure").Inc()
		response.Error(c, err)
		return
	}

	_, token, err := h.sessions.Create(c.Request.Context(), user, c.ClientIP())
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(kind, "failure").Inc()
		logger.WithModule("auth").Error("issue session", zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues(kind, "success").Inc()

	h.setSessionCookie(c, token)

	if next := sanitizeNext(creds.Next); next != "" {
		c.Redirect(http.StatusSeeOther, next)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"is_admin": user.IsAdmin,
	})
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.CurrentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.Destroy(c.Request.Context(), session.ID); err != nil && !errors.Is(err, iauth.ErrSessionNotFound) {
		logger.WithModule("auth").Error("destroy session", zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *AuthHandler) resolveUser(c *gin.Context, creds *iauth.Credentials) (*models.User, error) {
	if creds.Authentication {
		user, err := h.local.Authenticate(c.Request.Context(), creds.Username, creds.Password)
		if err != nil {
			if errors.Is(err, iauth.ErrInvalidCredentials) {
				return nil, appErrors.ErrInvalidCredentials
			}
			logger.WithModule("auth").Error("authenticate", zap.Error(err))
			return nil, appErrors.ErrInternalServer
		}
		return user, nil
	}

	user, err := h.local.Register(c.Request.Context(), iauth.RegisterInput{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		if errors.Is(err, iauth.ErrNameTaken) {
			return nil, appErrors.ErrUsernameTaken
		}
		if errors.Is(err, iauth.ErrInvalidCredentials) {
			return nil, appErrors.NewBadRequest("username and password are required")
		}
		logger.WithModule("auth").Error("register", zap.Error(err))
		return nil, appErrors.ErrInternalServer
	}
	return user, nil
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, int(iauth.SessionTTL/time.Second), "/", "", false, true)
}

// sanitizeNext keeps post-auth redirects on-site.
func sanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
