package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.BlogPost{}, &models.Comment{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// newTestApp builds a Server with a fresh in-memory database and the full
// middleware and route setup, rendering the real templates.
func newTestApp(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	cache.SetClient(nil)

	db := setupTestDB(t)
	cfg := &config.Config{
		Env:             "test",
		SessionSecret:   "test-secret-that-is-long-enough",
		SessionTTLHours: 72,
		TemplateDir:     "../../web/templates",
		StaticDir:       "../../web/static",
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		authService:    service.NewAuthService(userRepo),
		postService:    service.NewPostService(postRepo),
		commentService: service.NewCommentService(commentRepo, postRepo),
		sessions:       session.NewManager(cfg.SessionSecret, 72*time.Hour, nil, false),
	}

	app := fiber.New(fiber.Config{
		Views: html.New(cfg.TemplateDir, ".html"),
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	return s, app, db
}

func getPage(t *testing.T, app *fiber.App, path, sessionCookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionCookie})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, sessionCookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionCookie})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// sessionCookieOf extracts the session cookie value from a response, or "".
func sessionCookieOf(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}

func bodyOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// registerUser registers an account through the handler and returns its
// session cookie. The first account registered on a fresh database is the
// admin.
func registerUser(t *testing.T, app *fiber.App, email, name string) string {
	t.Helper()
	resp := postForm(t, app, "/register", url.Values{
		"email":    {email},
		"password": {"longenough"},
		"name":     {name},
	}, "")
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	cookie := sessionCookieOf(resp)
	require.NotEmpty(t, cookie)
	return cookie
}

// seedPost creates a post directly in the database.
func seedPost(t *testing.T, db *gorm.DB, authorID uint, title string) *models.BlogPost {
	t.Helper()
	post := &models.BlogPost{
		Title:    title,
		Subtitle: "sub",
		Body:     "body",
		ImageURL: "https://example.com/a.jpg",
		Date:     "March 7, 2025",
		AuthorID: authorID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func userCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func postCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.BlogPost{}).Count(&n).Error)
	return n
}

func commentCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&n).Error)
	return n
}
