package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// RequireAuth admits requests that carry a valid access token, taken from
// the accessToken cookie or else the Authorization header. The resolved
// user is stored in Locals for the handlers.
func (s *Server) RequireAuth(c *fiber.Ctx) error {
	token := c.Cookies(common.AccessTokenCookieName)
	if token == "" {
		token = bearerToken(c.Get(fiber.HeaderAuthorization))
	}

	user, err := s.accounts.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(userLocalsKey, user)
	return c.Next()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func authenticatedUser(c *fiber.Ctx) (*models.PublicUser, error) {
	user, ok := c.Locals(userLocalsKey).(*models.PublicUser)
	if !ok || user == nil {
		return nil, common.NewUnauthorizedError("Unauthorized request", common.ErrorUnauthorized)
	}
	return user, nil
}

// requestLogger logs one line per request. Errors are rendered by the
// error handler only after this returns, so their status is derived here.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status, _, _ = describeError(err)
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency", time.Since(start).String(),
	)

	return err
}
