package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/podelme/podel/internal/auth"
	"github.com/podelme/podel/internal/models"
	appErrors "github.com/podelme/podel/pkg/errors"
	"github.com/podelme/podel/pkg/logger"
	"github.com/podelme/podel/pkg/response"
)

const (
	CtxSessionKey = "session"
	CtxUserKey    = "user"
)

// Session resolves the session cookie into an authenticated identity and
// stores it in the request context. Requests without a cookie, or with one
// the store rejects, proceed anonymously; the cookie is cleared whenever the
// token is known to be dead so the client stops presenting it.
func Session(svc *iauth.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		session, err := svc.Authenticate(c.Request.Context(), token, c.ClientIP())
		if err != nil {
			if iauth.ShouldClearToken(err) {
				clearSessionCookie(c, cookieName)
				c.Next()
				return
			}

			var storageErr *iauth.StorageError
			if errors.As(err, &storageErr) {
				logger.WithModule("http").Error("session lookup failed", zap.Error(err))
				response.Error(c, appErrors.ErrInternalServer)
				c.Abort()
				return
			}

			// Unknown failure: keep the cookie, continue anonymously.
			logger.WithModule("http").Warn("session validation failed", zap.Error(err))
			c.Next()
			return
		}

		c.Set(CtxSessionKey, session)
		c.Set(CtxUserKey, session.User)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. It must run after Session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from non-admin users. It must run after Session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.IsAdmin {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user for the request, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// CurrentSession returns the live session for the request, or nil.
func CurrentSession(c *gin.Context) *models.Session {
	value, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

func clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", false, true)
}
