package httpapi

import (
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) setAuthCookies(c *fiber.Ctx, pair *auth.TokenPair) {
	s.setCookie(c, common.AccessTokenCookieName, pair.AccessToken, time.Now().Add(s.opts.AccessTokenTTL))
	s.setCookie(c, common.RefreshTokenCookieName, pair.RefreshToken, time.Now().Add(s.opts.RefreshTokenTTL))
}

func (s *Server) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour * (24 * 365))
	s.setCookie(c, common.AccessTokenCookieName, "", expired)
	s.setCookie(c, common.RefreshTokenCookieName, "", expired)
}

func (s *Server) setCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
