package server

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPageRenders(t *testing.T) {
	_, app, _ := newTestApp(t)

	resp := getPage(t, app, "/register", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyOf(t, resp), "Sign Up")
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	_, app, db := newTestApp(t)

	cookie := registerUser(t, app, "first@example.com", "First")
	assert.Equal(t, int64(1), userCount(t, db))

	var user models.User
	require.NoError(t, db.Where("email = ?", "first@example.com").First(&user).Error)
	assert.True(t, user.IsAdmin)
	assert.NotEqual(t, "longenough", user.PasswordHash)

	// The cookie identifies the new account on subsequent requests.
	resp := getPage(t, app, "/", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := bodyOf(t, resp)
	assert.Contains(t, body, "First")
	assert.Contains(t, body, "Log Out")
}

func TestRegisterSecondUserIsNotAdmin(t *testing.T) {
	_, app, db := newTestApp(t)

	registerUser(t, app, "first@example.com", "First")
	registerUser(t, app, "second@example.com", "Second")

	var user models.User
	require.NoError(t, db.Where("email = ?", "second@example.com").First(&user).Error)
	assert.False(t, user.IsAdmin)
}

func TestRegisterDuplicateEmailLeavesStoreUnchanged(t *testing.T) {
	_, app, db := newTestApp(t)

	registerUser(t, app, "dup@example.com", "First")

	resp := postForm(t, app, "/register", url.Values{
		"email":    {"dup@example.com"},
		"password": {"different1"},
		"name":     {"Second"},
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Empty(t, sessionCookieOf(resp))
	assert.Contains(t, bodyOf(t, resp), "already registered")
	assert.Equal(t, int64(1), userCount(t, db))
}

func TestRegisterValidation(t *testing.T) {
	_, app, db := newTestApp(t)

	resp := postForm(t, app, "/register", url.Values{
		"email":    {"not-an-email"},
		"password": {"short"},
		"name":     {""},
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, userCount(t, db))
}

func TestLogin(t *testing.T) {
	_, app, _ := newTestApp(t)
	registerUser(t, app, "login@example.com", "Login")

	t.Run("success", func(t *testing.T) {
		resp := postForm(t, app, "/login", url.Values{
			"email":    {"login@example.com"},
			"password": {"longenough"},
		}, "")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.NotEmpty(t, sessionCookieOf(resp))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postForm(t, app, "/login", url.Values{
			"email":    {"login@example.com"},
			"password": {"wrongpassword"},
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(t, sessionCookieOf(resp))
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := postForm(t, app, "/login", url.Values{
			"email":    {"nobody@example.com"},
			"password": {"longenough"},
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, bodyOf(t, resp), "not registered")
	})
}

func TestLoginPagePrompt(t *testing.T) {
	_, app, _ := newTestApp(t)

	resp := getPage(t, app, "/login?prompt=comment", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyOf(t, resp), "log in or register to comment")
}

func TestLogout(t *testing.T) {
	_, app, _ := newTestApp(t)
	cookie := registerUser(t, app, "out@example.com", "Out")

	resp := getPage(t, app, "/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// The cleared cookie is expired.
	for _, c := range resp.Cookies() {
		if c.Name == "quill_session" {
			assert.Empty(t, c.Value)
		}
	}

	// Logging out twice is harmless.
	resp = getPage(t, app, "/logout", "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestSessionSlidingRenewal(t *testing.T) {
	s, app, db := newTestApp(t)
	registerUser(t, app, "renew@example.com", "Renew")

	var user models.User
	require.NoError(t, db.First(&user).Error)

	// A token with far less than half the 72h TTL remaining gets reissued.
	short := session.NewManager(s.config.SessionSecret, time.Hour, nil, false)
	aging, _, err := short.Issue(user.ID)
	require.NoError(t, err)

	resp := getPage(t, app, "/", aging)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	renewed := sessionCookieOf(resp)
	assert.NotEmpty(t, renewed)
	assert.NotEqual(t, aging, renewed)
}

func TestStaleCookieForDeletedUserIsAnonymous(t *testing.T) {
	_, app, db := newTestApp(t)
	cookie := registerUser(t, app, "gone@example.com", "Gone")

	require.NoError(t, db.Where("email = ?", "gone@example.com").Delete(&models.User{}).Error)

	resp := getPage(t, app, "/", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyOf(t, resp), "Log In")
}
