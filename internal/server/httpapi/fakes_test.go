package httpapi

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

// fakeAccounts lets each test override only the calls it cares about.
type fakeAccounts struct {
	register         func(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	login            func(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	refreshToken     func(ctx context.Context, token string) (*auth.TokenPair, error)
	logout           func(ctx context.Context, userID string) error
	authenticate     func(ctx context.Context, token string) (*models.PublicUser, error)
	changePassword   func(ctx context.Context, userID string, in services.ChangePasswordInput) error
	updateAccount    func(ctx context.Context, userID string, in services.UpdateAccountInput) (*models.PublicUser, error)
	updateAvatar     func(ctx context.Context, userID, path string) (*models.PublicUser, error)
	updateCoverImage func(ctx context.Context, userID, path string) (*models.PublicUser, error)
}

var errNotStubbed = common.NewInternalError("not stubbed", nil)

func (f *fakeAccounts) Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error) {
	if f.register == nil {
		return nil, errNotStubbed
	}
	return f.register(ctx, in)
}

func (f *fakeAccounts) Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error) {
	if f.login == nil {
		return nil, errNotStubbed
	}
	return f.login(ctx, in)
}

func (f *fakeAccounts) RefreshToken(ctx context.Context, token string) (*auth.TokenPair, error) {
	if f.refreshToken == nil {
		return nil, errNotStubbed
	}
	return f.refreshToken(ctx, token)
}

func (f *fakeAccounts) Logout(ctx context.Context, userID string) error {
	if f.logout == nil {
		return errNotStubbed
	}
	return f.logout(ctx, userID)
}

// Authenticate accepts the token "good" unless overridden.
func (f *fakeAccounts) Authenticate(ctx context.Context, token string) (*models.PublicUser, error) {
	if f.authenticate != nil {
		return f.authenticate(ctx, token)
	}
	if token == "" {
		return nil, common.NewUnauthorizedError("Unauthorized request", common.ErrorUnauthorized)
	}
	if token != "good" {
		return nil, common.NewUnauthorizedError("Invalid access token", common.ErrInvalidToken)
	}
	return ann(), nil
}

func (f *fakeAccounts) ChangePassword(ctx context.Context, userID string, in services.ChangePasswordInput) error {
	if f.changePassword == nil {
		return errNotStubbed
	}
	return f.changePassword(ctx, userID, in)
}

func (f *fakeAccounts) UpdateAccount(ctx context.Context, userID string, in services.UpdateAccountInput) (*models.PublicUser, error) {
	if f.updateAccount == nil {
		return nil, errNotStubbed
	}
	return f.updateAccount(ctx, userID, in)
}

func (f *fakeAccounts) UpdateAvatar(ctx context.Context, userID, path string) (*models.PublicUser, error) {
	if f.updateAvatar == nil {
		return nil, errNotStubbed
	}
	return f.updateAvatar(ctx, userID, path)
}

func (f *fakeAccounts) UpdateCoverImage(ctx context.Context, userID, path string) (*models.PublicUser, error) {
	if f.updateCoverImage == nil {
		return nil, errNotStubbed
	}
	return f.updateCoverImage(ctx, userID, path)
}

func ann() *models.PublicUser {
	return &models.PublicUser{
		ID:        "6b1f0d8e-0000-4000-8000-000000000001",
		Username:  "annlee",
		Email:     "ann@example.com",
		FullName:  "Ann Lee",
		AvatarURL: "http://media.local/avatars/users/a.png",
	}
}

func newTestServer(opts Options, f *fakeAccounts) *Server {
	return NewServer(opts, f, logging.Nop{})
}
