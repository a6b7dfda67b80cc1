package httpapi

import (
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) healthcheck(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, fiber.Map{"status": "ok"}, "OK")
}

func (s *Server) register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := bindBody(c, &in); err != nil {
		return err
	}

	avatar, cleanupAvatar, err := s.saveUpload(c, "avatar")
	if err != nil {
		return err
	}
	defer cleanupAvatar()

	cover, cleanupCover, err := s.saveUpload(c, "coverImage")
	if err != nil {
		return err
	}
	defer cleanupCover()

	in.AvatarPath = avatar
	in.CoverImagePath = cover

	user, err := s.accounts.Register(c.UserContext(), in)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, user, "User registered successfully")
}

func (s *Server) login(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := bindBody(c, &in); err != nil {
		return err
	}

	res, err := s.accounts.Login(c.UserContext(), in)
	if err != nil {
		return err
	}

	s.setAuthCookies(c, &auth.TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
	return respond(c, fiber.StatusOK, res, "User logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

func (s *Server) refreshToken(c *fiber.Ctx) error {
	token := c.Cookies(common.RefreshTokenCookieName)
	if token == "" {
		var body refreshRequest
		if err := bindBody(c, &body); err != nil {
			return err
		}
		token = strings.TrimSpace(body.RefreshToken)
	}

	pair, err := s.accounts.RefreshToken(c.UserContext(), token)
	if err != nil {
		return err
	}

	s.setAuthCookies(c, pair)
	return respond(c, fiber.StatusOK, pair, "Access token refreshed")
}

func (s *Server) logout(c *fiber.Ctx) error {
	user, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	if err := s.accounts.Logout(c.UserContext(), user.ID); err != nil {
		return err
	}

	s.clearAuthCookies(c)
	return respond(c, fiber.StatusOK, fiber.Map{}, "User logged out")
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	user, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	var in services.ChangePasswordInput
	if err := bindBody(c, &in); err != nil {
		return err
	}

	if err := s.accounts.ChangePassword(c.UserContext(), user.ID, in); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{}, "Password changed successfully")
}

func (s *Server) currentUser(c *fiber.Ctx) error {
	user, err := authenticatedUser(c)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user, "Current user fetched successfully")
}

func (s *Server) updateAccount(c *fiber.Ctx) error {
	user, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	var in services.UpdateAccountInput
	if err := bindBody(c, &in); err != nil {
		return err
	}

	updated, err := s.accounts.UpdateAccount(c.UserContext(), user.ID, in)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "Account details updated successfully")
}

func (s *Server) updateAvatar(c *fiber.Ctx) error {
	user, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	path, cleanup, err := s.saveUpload(c, "avatar")
	if err != nil {
		return err
	}
	defer cleanup()

	updated, err := s.accounts.UpdateAvatar(c.UserContext(), user.ID, path)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "Avatar image updated successfully")
}

func (s *Server) updateCoverImage(c *fiber.Ctx) error {
	user, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	path, cleanup, err := s.saveUpload(c, "coverImage")
	if err != nil {
		return err
	}
	defer cleanup()

	updated, err := s.accounts.UpdateCoverImage(c.UserContext(), user.ID, path)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "Cover image updated successfully")
}

// bindBody decodes JSON, urlencoded or multipart bodies into out. An empty
// body leaves out untouched so validation can report the missing fields.
func bindBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return common.NewValidationError("Invalid request body", err)
	}
	return nil
}

// saveUpload stores the multipart file in field under the upload dir and
// returns its path with a cleanup func. A missing file yields "" and a
// no-op cleanup.
func (s *Server) saveUpload(c *fiber.Ctx, field string) (string, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Size == 0 {
		return "", noop, nil
	}

	dst := filepath.Join(s.opts.UploadDir, uuid.New().String()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveFile(fh, dst); err != nil {
		return "", noop, common.NewInternalError("Failed to store uploaded file", err)
	}

	cleanup := func() {
		if err := filex.RemoveIfExists(dst); err != nil {
			s.logger.Warn(c.UserContext(), "temp upload not removed", "path", dst, "error", err)
		}
	}
	return dst, cleanup, nil
}
