package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/podelme/podel/internal/auth"
	"github.com/podelme/podel/internal/database/testutil"
	"github.com/podelme/podel/internal/middleware"
	"github.com/podelme/podel/internal/models"
)

const testCookie = "podel_session"

func setupAuthRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	store, err := iauth.NewSessionStore(db, 0)
	require.NoError(t, err)
	sessions, err := iauth.NewSessionService(store, iauth.SessionConfig{})
	require.NoError(t, err)
	local, err := iauth.NewLocalProvider(db, iauth.LocalConfig{})
	require.NoError(t, err)

	handler := NewAuthHandler(local, sessions, testCookie)
	users := NewUserHandler(db)

	r := gin.New()
	r.Use(middleware.Session(sessions, testCookie))
	r.POST("/auth", handler.Authenticate)
	r.POST("/logout", middleware.RequireAuth(), handler.Logout)
	r.GET("/me", middleware.RequireAuth(), users.Me)

	return db, r
}

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookie && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("expected a session cookie")
	return nil
}

func TestRegisterIssuesSessionAndFirstUserIsAdmin(t *testing.T) {
	db, r := setupAuthRouter(t)

	// No authentication field: register.
	w := postForm(r, "/auth", url.Values{"username": {"admin"}, "password": {"admin"}})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	var stored models.User
	require.NoError(t, db.Take(&stored, "name = ?", "admin").Error)
	require.True(t, stored.IsAdmin)

	// The cookie authenticates follow-up requests.
	wMe := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(wMe, req)
	require.Equal(t, http.StatusOK, wMe.Code)

	// Later registrations are plain users.
	w2 := postForm(r, "/auth", url.Values{"username": {"visitor"}, "password": {"hunter2"}})
	require.Equal(t, http.StatusOK, w2.Code)

	var second models.User
	require.NoError(t, db.Take(&second, "name = ?", "visitor").Error)
	require.False(t, second.IsAdmin)
}

func TestRegisterDuplicateNameConflicts(t *testing.T) {
	_, r := setupAuthRouter(t)

	w := postForm(r, "/auth", url.Values{"username": {"taken"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(r, "/auth", url.Values{"username": {"taken"}, "password": {"other"}})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginChecksPassword(t *testing.T) {
	_, r := setupAuthRouter(t)

	w := postForm(r, "/auth", url.Values{"username": {"resident"}, "password": {"correct horse"}})
	require.Equal(t, http.StatusOK, w.Code)

	// The checkbox value is irrelevant; presence alone selects login.
	w = postForm(r, "/auth", url.Values{
		"authentication": {"on"},
		"username":       {"resident"},
		"password":       {"correct horse"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	sessionCookie(t, w)

	w = postForm(r, "/auth", url.Values{
		"authentication": {"on"},
		"username":       {"resident"},
		"password":       {"wrong"},
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Login with the checkbox set never registers unknown names.
	w = postForm(r, "/auth", url.Values{
		"authentication": {"on"},
		"username":       {"stranger"},
		"password":       {"whatever"},
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthValidatesForm(t *testing.T) {
	_, r := setupAuthRouter(t)

	w := postForm(r, "/auth", url.Values{"username": {"nopass"}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postForm(r, "/auth", url.Values{"password": {"noname"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRedirectsToNext(t *testing.T) {
	_, r := setupAuthRouter(t)

	w := postForm(r, "/auth", url.Values{
		"username": {"wanderer"},
		"password": {"secret"},
		"next":     {"/websites/podela"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/websites/podela", w.Header().Get("Location"))
	sessionCookie(t, w)

	// Off-site targets are dropped.
	w = postForm(r, "/auth", url.Values{
		"authentication": {"on"},
		"username":       {"wanderer"},
		"password":       {"secret"},
		"next":           {"//evil.example"},
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	_, r := setupAuthRouter(t)

	w := postForm(r, "/auth", url.Values{"username": {"leaver"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	w = postForm(r, "/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// The response expires the cookie.
	expired := false
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie && c.MaxAge < 0 {
			expired = true
		}
	}
	require.True(t, expired)

	// Replaying the old token is anonymous: the store row is gone.
	wMe := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(wMe, req)
	require.Equal(t, http.StatusUnauthorized, wMe.Code)
}

func TestLogoutRequiresSession(t *testing.T) {
	_, r := setupAuthRouter(t)

	w := postForm(r, "/logout", url.Values{})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthResponseNeverLeaksPasswordHash(t *testing.T) {
	_, r := setupAuthRouter(t)

	w := postForm(r, "/auth", url.Values{"username": {"careful"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotContains(t, w.Body.String(), "argon2id")
}
