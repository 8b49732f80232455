package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/podelme/podel/internal/auth"
	"github.com/podelme/podel/internal/database/testutil"
	"github.com/podelme/podel/internal/models"
	"github.com/podelme/podel/pkg/crypto"
)

const testCookie = "podel_session"

func setupSessionMiddleware(t *testing.T) (*gorm.DB, *iauth.SessionService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	store, err := iauth.NewSessionStore(db, 0)
	require.NoError(t, err)

	svc, err := iauth.NewSessionService(store, iauth.SessionConfig{})
	require.NoError(t, err)

	r := gin.New()
	r.Use(Session(svc, testCookie))
	r.GET("/whoami", func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		session := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{
			"name":       user.Name,
			"session_id": session.ID,
		})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return db, svc, r
}

func seedUser(t *testing.T, db *gorm.DB, name string, admin bool) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword(name + "-password")
	require.NoError(t, err)

	user := &models.User{
		Name:         name,
		Language:     models.DefaultLanguage,
		IsAdmin:      admin,
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestSessionResolvesCookie(t *testing.T) {
	db, svc, r := setupSessionMiddleware(t)
	user := seedUser(t, db, "cookiebearer", false)

	session, token, err := svc.Create(context.Background(), user, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "cookiebearer", payload["name"])
	require.Equal(t, session.ID, payload["session_id"])
}

func TestSessionWithoutCookieIsAnonymous(t *testing.T) {
	_, _, r := setupSessionMiddleware(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, true, payload["anonymous"])
}

func TestSessionClearsDeadCookie(t *testing.T) {
	db, svc, r := setupSessionMiddleware(t)
	user := seedUser(t, db, "loggedout", false)

	session, token, err := svc.Create(context.Background(), user, "")
	require.NoError(t, err)
	require.NoError(t, svc.Destroy(context.Background(), session.ID))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	r.ServeHTTP(w, req)

	// The request still succeeds anonymously, and the dead cookie is expired.
	require.Equal(t, http.StatusOK, w.Code)

	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookie && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "expected the session cookie to be cleared")
}

func TestSessionClearsMalformedCookie(t *testing.T) {
	_, _, r := setupSessionMiddleware(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "not-a-token"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookie && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}

func TestSessionStorageFailureIs500(t *testing.T) {
	db, svc, r := setupSessionMiddleware(t)
	user := seedUser(t, db, "unlucky", false)

	_, token, err := svc.Create(context.Background(), user, "")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The token may still be live; it must not be cleared.
	for _, cookie := range w.Result().Cookies() {
		require.NotEqual(t, testCookie, cookie.Name)
	}
}

func TestRequireAuth(t *testing.T) {
	db, svc, r := setupSessionMiddleware(t)
	user := seedUser(t, db, "member", false)

	_, token, err := svc.Create(context.Background(), user, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	db, svc, r := setupSessionMiddleware(t)
	member := seedUser(t, db, "plain", false)
	admin := seedUser(t, db, "root", true)

	_, memberToken, err := svc.Create(context.Background(), member, "")
	require.NoError(t, err)
	_, adminToken, err := svc.Create(context.Background(), admin, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: memberToken})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: adminToken})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}
