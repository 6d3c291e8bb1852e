package server

import (
	"errors"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/service"
	"quill/internal/session"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return s.render(c, "register", fiber.Map{
		"Errors": map[string]string{},
		"Form":   validation.RegisterForm{},
	})
}

// Register handles POST /register. On success a session is established and
// the visitor lands on the index page.
func (s *Server) Register(c *fiber.Ctx) error {
	form := validation.RegisterForm{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Name:     c.FormValue("name"),
	}

	if errs := form.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{
			"Errors":    errs,
			"Form":      form,
			"Principal": principalFromCtx(c),
		})
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	})
	if err != nil {
		if models.IsCode(err, models.CodeDuplicateEmail) {
			return c.Status(models.HTTPStatus(err)).Render("register", fiber.Map{
				"Errors":    map[string]string{"email": "This email is already registered"},
				"Form":      form,
				"Principal": principalFromCtx(c),
			})
		}
		return s.renderError(c, err)
	}

	if err := s.establishSession(c, user.ID, "register"); err != nil {
		return s.renderError(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "login", fiber.Map{
		"Errors": map[string]string{},
		"Form":   validation.LoginForm{},
		"Prompt": c.Query("prompt"),
	})
}

// Login handles POST /login.
func (s *Server) Login(c *fiber.Ctx) error {
	form := validation.LoginForm{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	if errs := form.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("login", fiber.Map{
			"Errors":    errs,
			"Form":      form,
			"Principal": principalFromCtx(c),
		})
	}

	user, err := s.authService.Login(c.UserContext(), form.Email, form.Password)
	if err != nil {
		code := models.ErrorCode(err)
		if code == models.CodeUnknownEmail || code == models.CodeInvalidCredentials {
			message := "Login failed"
			var appErr *models.AppError
			if errors.As(err, &appErr) {
				message = appErr.Message
			}
			return c.Status(models.HTTPStatus(err)).Render("login", fiber.Map{
				"Errors":    map[string]string{},
				"Error":     message,
				"Form":      form,
				"Principal": principalFromCtx(c),
			})
		}
		return s.renderError(c, err)
	}

	if err := s.establishSession(c, user.ID, "login"); err != nil {
		return s.renderError(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout handles GET /logout. Revocation is idempotent: logging out twice, or
// with no session at all, still lands on the index page.
func (s *Server) Logout(c *fiber.Ctx) error {
	if tokenString := c.Cookies(session.CookieName); tokenString != "" {
		s.sessions.Revoke(c.UserContext(), tokenString)
		observability.SessionsRevoked.Inc()
	}
	c.Cookie(s.sessions.ClearCookie())
	return c.Redirect("/", fiber.StatusSeeOther)
}

// establishSession issues a session token and sets the cookie.
func (s *Server) establishSession(c *fiber.Ctx, userID uint, trigger string) error {
	token, expires, err := s.sessions.Issue(userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	c.Cookie(s.sessions.Cookie(token, expires))
	observability.SessionsIssued.WithLabelValues(trigger).Inc()
	return nil
}
