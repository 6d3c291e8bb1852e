package server

import (
	"errors"
	"log/slog"
	"strconv"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/session"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// principalFromCtx returns the principal resolved by the CurrentUser
// middleware, or anonymous if it has not run.
func principalFromCtx(c *fiber.Ctx) session.Principal {
	if p, ok := c.Locals("principal").(session.Principal); ok {
		return p
	}
	return session.Anonymous()
}

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = s.renderError(c, models.NewValidationError("Invalid post ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// formatID renders a record ID for use in a redirect path.
func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// render executes a template with the principal merged into the bind data.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Principal"] = principalFromCtx(c)
	return c.Render(name, data)
}

// renderError maps an application error to its HTTP status and renders the
// error page. Internal errors are logged; their details never reach the page.
func (s *Server) renderError(c *fiber.Ctx, err error) error {
	status := models.HTTPStatus(err)

	message := "Something went wrong"
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		message = appErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("error", err.Error()),
			slog.String("path", c.Path()),
		)
	}

	return c.Status(status).Render("error", fiber.Map{
		"Status":    status,
		"Message":   message,
		"Principal": principalFromCtx(c),
	})
}
