package users

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Repository is the credential store. Lookups return common.ErrorNotFound
// when no row matches; writes that hit a unique index return
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.NewUser) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id string, token *string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateAccount(ctx context.Context, id string, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, url string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, id string, url string) (*models.User, error)
}
