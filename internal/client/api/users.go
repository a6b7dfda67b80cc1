package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
)

type loginResponse struct {
	User *models.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, r models.Registration) (*models.User, error) {
	body := multipartBody(
		map[string]string{
			"fullName": r.FullName,
			"email":    r.Email,
			"username": r.Username,
			"password": r.Password,
		},
		map[string]string{
			"avatar":     r.AvatarPath,
			"coverImage": r.CoverImagePath,
		},
	)

	var u models.User
	if err := c.call(ctx, http.MethodPost, "/users/register", body, &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login signs in with either an email (anything containing "@") or a
// username. The server sets the token cookies.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	req := map[string]string{"password": password}
	if strings.Contains(identifier, "@") {
		req["email"] = identifier
	} else {
		req["username"] = identifier
	}

	var res loginResponse
	if err := c.call(ctx, http.MethodPost, "/users/login", jsonBody(req), &res, false); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Refresh rotates the token pair using the refresh cookie.
func (c *Client) Refresh(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/users/refresh-token", nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, http.MethodGet, "/users/current-user", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := jsonBody(map[string]string{"oldPassword": oldPassword, "newPassword": newPassword})
	return c.call(ctx, http.MethodPost, "/users/change-password", body, nil, true)
}

func (c *Client) UpdateAccount(ctx context.Context, fullName, email string) (*models.User, error) {
	body := jsonBody(map[string]string{"fullName": fullName, "email": email})

	var u models.User
	if err := c.call(ctx, http.MethodPatch, "/users/update-account", body, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateAvatar(ctx context.Context, path string) (*models.User, error) {
	return c.updateImage(ctx, "/users/avatar", "avatar", path)
}

func (c *Client) UpdateCoverImage(ctx context.Context, path string) (*models.User, error) {
	return c.updateImage(ctx, "/users/cover-image", "coverImage", path)
}

func (c *Client) updateImage(ctx context.Context, route, field, path string) (*models.User, error) {
	body := multipartBody(nil, map[string]string{field: path})

	var u models.User
	if err := c.call(ctx, http.MethodPatch, route, body, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/users/logout", nil, nil, true)
}

// Ping checks the healthcheck route.
func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/healthcheck", nil, nil)
}
