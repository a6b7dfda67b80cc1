package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in, use 'login' first")

func (a *App) readPassword(prompt string) (string, error) {
	pw, err := getPassword(os.Stdout, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func printUser(u *models.User) {
	printlnFn(fmt.Sprintf("%s <%s> @%s", u.FullName, u.Email, u.Username))
	printlnFn("  avatar:", u.AvatarURL)
	if u.CoverImageURL != "" {
		printlnFn("  cover: ", u.CoverImageURL)
	}
}

// Register collects the registration form and creates an account. The
// avatar path is required by the server; the cover path may be left empty.
func (a *App) Register(ctx context.Context) error {
	var r models.Registration
	var err error

	prompts := []struct {
		text string
		dst  *string
	}{
		{"Full name", &r.FullName},
		{"Email", &r.Email},
		{"Username", &r.Username},
	}
	for _, p := range prompts {
		if *p.dst, err = getSimpleText(a.reader, p.text, os.Stdout); err != nil {
			return err
		}
	}

	if r.Password, err = a.readPassword("Password"); err != nil {
		return err
	}

	if r.AvatarPath, err = getSimpleText(a.reader, "Avatar image path", os.Stdout); err != nil {
		return err
	}
	if r.CoverImagePath, err = getSimpleText(a.reader, "Cover image path (optional)", os.Stdout); err != nil {
		return err
	}

	u, err := a.api.Register(ctx, r)
	if err != nil {
		return err
	}

	printlnFn("Registered", u.Username)
	return nil
}

// Login authenticates with a username or email and remembers the user.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Username or email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := a.readPassword("Password")
	if err != nil {
		return err
	}

	u, err := a.api.Login(ctx, identifier, password)
	if err != nil {
		return err
	}

	a.user = u
	printlnFn("Logged in as", u.Username)
	return nil
}

func (a *App) Me(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	u, err := a.api.CurrentUser(ctx)
	if err != nil {
		return err
	}

	a.user = u
	printUser(u)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	if err := a.api.Refresh(ctx); err != nil {
		return err
	}

	printlnFn("Tokens refreshed")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	oldPassword, err := a.readPassword("Current password")
	if err != nil {
		return err
	}
	newPassword, err := a.readPassword("New password")
	if err != nil {
		return err
	}

	if err := a.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return err
	}

	printlnFn("Password changed")
	return nil
}

func (a *App) UpdateAccount(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	fullName, err := getSimpleText(a.reader, "Full name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}

	u, err := a.api.UpdateAccount(ctx, fullName, email)
	if err != nil {
		return err
	}

	a.user = u
	printUser(u)
	return nil
}

func (a *App) UpdateAvatar(ctx context.Context) error {
	return a.updateImage(ctx, "Avatar image path", a.api.UpdateAvatar)
}

func (a *App) UpdateCover(ctx context.Context) error {
	return a.updateImage(ctx, "Cover image path", a.api.UpdateCoverImage)
}

func (a *App) updateImage(ctx context.Context, prompt string, update func(context.Context, string) (*models.User, error)) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	path, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return err
	}

	u, err := update(ctx, path)
	if err != nil {
		return err
	}

	a.user = u
	printUser(u)
	return nil
}

// Logout ends the server session and forgets the local user even when the
// server call fails.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	err := a.api.Logout(ctx)
	a.user = nil
	if err != nil {
		return err
	}

	printlnFn("Logged out")
	return nil
}
