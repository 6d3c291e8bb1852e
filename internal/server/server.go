// Package server wires the Fiber application: middleware, routes, and the
// HTML handlers for the blog.
package server

import (
	"context"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	sessions       *session.Manager
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	authService    *service.AuthService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a server instance, connecting the database and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	isProduction := cfg.Env == "production" || cfg.Env == "prod"

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		authService:    service.NewAuthService(userRepo),
		postService:    service.NewPostService(postRepo),
		commentService: service.NewCommentService(commentRepo, postRepo),
	}
	s.sessions = session.NewManager(
		cfg.SessionSecret,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		redisClient,
		isProduction,
	)
	s.promMiddleware = fiberprometheus.New("quill")

	return s
}

// Sessions exposes the session manager for the cmd layer and tests.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// Global rate limit, per IP. Form endpoints carry tighter Redis-backed
	// limits on top of this.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return s.renderError(c, models.NewValidationError("Too many requests, please try again later"))
		},
	}))

	// Resolve the principal on every request so views always know who is
	// browsing.
	app.Use(s.CurrentUser())
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/static", s.config.StaticDir)

	app.Get("/", s.Index)
	app.Get("/about", s.About)
	app.Get("/contact", s.Contact)

	app.Get("/register", s.RegisterPage)
	app.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)

	app.Get("/post/:id", s.ShowPost)
	app.Post("/post/:id", middleware.RateLimit(
		s.redis, 6, time.Minute, "comment"), s.AddComment)

	app.Get("/new-post", s.RequireAdmin(), s.NewPostPage)
	app.Post("/new-post", s.RequireAdmin(), s.CreatePost)
	app.Get("/edit-post/:id", s.RequireAdmin(), s.EditPostPage)
	app.Post("/edit-post/:id", s.RequireAdmin(), s.EditPost)
	app.Get("/delete/:id", s.RequireAdmin(), s.DeletePost)
}

// CurrentUser resolves the principal from the session cookie on every
// request, failing open to anonymous. When less than half the session TTL
// remains the cookie is reissued (sliding expiration).
func (s *Server) CurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("principal", session.Anonymous())

		tokenString := c.Cookies(session.CookieName)
		if tokenString == "" {
			return c.Next()
		}

		token, err := s.sessions.Validate(c.UserContext(), tokenString)
		if err != nil {
			return c.Next()
		}

		user, err := s.userRepo.GetByID(c.UserContext(), token.UserID)
		if err != nil {
			// Stale cookie for a deleted account.
			return c.Next()
		}

		c.Locals("principal", session.Principal{User: user})
		c.Locals("userID", user.ID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		if s.sessions.ShouldRenew(token) {
			if renewed, expires, issueErr := s.sessions.Issue(user.ID); issueErr == nil {
				c.Cookie(s.sessions.Cookie(renewed, expires))
				observability.SessionsIssued.WithLabelValues("renew").Inc()
			}
		}

		return c.Next()
	}
}

// RequireAdmin returns middleware that rejects non-admin principals with 403
// before the handler runs. Must be placed after CurrentUser.
func (s *Server) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !principalFromCtx(c).IsAdmin() {
			return s.renderError(c, models.NewForbiddenError())
		}
		return c.Next()
	}
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only
// the database gates readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
