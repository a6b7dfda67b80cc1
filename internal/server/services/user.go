// Package services contains server-side business logic. This file implements
// UserService, which handles registration with image upload, login, token
// rotation and profile changes.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/media"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/users"
)

const (
	msgUserExists         = "User already exists"
	msgAvatarRequired     = "Avatar file is required"
	msgAvatarUpload       = "Something went wrong while uploading avatar"
	msgCoverUpload        = "Something went wrong while uploading cover image"
	msgRegisterFailed     = "Something went wrong while registering user and images were deleted"
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Invalid credentials"
	msgTokenGeneration    = "Something went wrong while generating tokens"
	msgUnauthorized       = "Unauthorized request"
	msgInvalidAccess      = "Invalid access token"
	msgInvalidRefresh     = "Invalid refresh token"
	msgRefreshUsed        = "Refresh token is expired or used"
	msgOldPassword        = "Old password is incorrect"
	msgEmailInUse         = "Email already in use"
	msgAvatarMissing      = "Avatar file is missing"
	msgCoverMissing       = "Cover image file is missing"
	msgAvatarUpdate       = "Error while uploading avatar"
	msgCoverUpdate        = "Error while uploading cover image"
	msgInternal           = "Something went wrong"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	User         *models.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// UserService provides account operations:
// - Register: upload images, create the user, undo uploads on failure
// - Login / RefreshToken / Logout: issue, rotate and revoke token pairs
// - Authenticate: resolve an access token to a user for protected routes
// - ChangePassword, UpdateAccount, UpdateAvatar, UpdateCoverImage
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       media.Store
	tokens      *auth.TokenService
	hasher      auth.PasswordHasher
	logger      logging.Logger
}

// NewUserService constructs a UserService using repositories, the media
// store and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, store media.Store, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		media:       store,
		tokens: auth.NewTokenService(
			cfg.AccessTokenSecret, cfg.AccessTokenValidityDuration,
			cfg.RefreshTokenSecret, cfg.RefreshTokenValidityDuration,
		),
		hasher: auth.NewBcryptHasher(),
		logger: logger.With("module", "services.user"),
	}
}

// Register creates a user. The avatar is mandatory; when creation fails
// after an upload, one uploaded image is deleted again.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		if anyBlank(in.FullName, in.Email, in.Username, in.Password) {
			return nil, newValidationError(msgAllFieldsRequired, err)
		}
		return nil, newValidationError(msgInvalidEmail, err)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return nil, common.NewConflictError(msgUserExists, common.ErrorAlreadyExists)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.NewInternalError(msgInternal, err)
	}

	if anyBlank(in.AvatarPath) {
		return nil, common.NewValidationError(msgAvatarRequired, nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, common.NewInternalError(msgInternal, err)
	}

	avatar, err := s.upload(ctx, in.AvatarPath)
	if err != nil {
		return nil, common.NewInternalError(msgAvatarUpload, err)
	}

	var cover *media.Asset
	if in.CoverImagePath != "" {
		cover, err = s.upload(ctx, in.CoverImagePath)
		if err != nil {
			s.discard(ctx, avatar, nil)
			return nil, common.NewInternalError(msgCoverUpload, err)
		}
	}

	newUser := &models.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		AvatarURL:    avatar.URL,
	}
	if cover != nil {
		newUser.CoverImageURL = cover.URL
	}

	created, err := repo.Create(ctx, newUser)
	if err == nil {
		created, err = repo.FindByID(ctx, created.ID)
	}
	if err != nil {
		s.discard(ctx, avatar, cover)
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewConflictError(msgUserExists, err)
		}
		return nil, common.NewInternalError(msgRegisterFailed, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created.Sanitized(), nil
}

// Login checks credentials by username or email and issues a token pair.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		if in.Username == "" && in.Email == "" {
			return nil, newValidationError(msgIdentifierRequired, err)
		}
		return nil, newValidationError(msgPasswordRequired, err)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgUserNotFound, err)
		}
		return nil, common.NewInternalError(msgInternal, err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.Password)
	if err != nil {
		return nil, common.NewInternalError(msgInternal, err)
	}
	if !ok {
		return nil, common.NewUnauthorizedError(msgInvalidCredentials, common.ErrorUnauthorized)
	}

	pair, err := s.generateTokenPair(ctx, user, repo)
	if err != nil {
		return nil, common.NewInternalError(msgTokenGeneration, err)
	}

	fresh, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, common.NewInternalError(msgInternal, err)
	}

	return &LoginResult{
		User:         fresh.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// RefreshToken validates a refresh token against the stored one and rotates
// it under a row lock, so a token can be exchanged at most once.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, common.NewUnauthorizedError(msgUnauthorized, common.ErrorUnauthorized)
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, common.NewUnauthorizedError(msgInvalidRefresh, err)
	}

	var pair *auth.TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewUnauthorizedError(msgInvalidRefresh, err)
			}
			return err
		}

		if !s.checkRefreshToken(user.RefreshToken, refreshToken) {
			return common.NewUnauthorizedError(msgRefreshUsed, common.ErrTokenMismatch)
		}

		pair, err = s.generateTokenPair(ctx, user, repo)
		if err != nil {
			return common.NewInternalError(msgTokenGeneration, err)
		}
		return nil
	})
	if err != nil {
		if _, ok := common.AsAppError(err); ok {
			return nil, err
		}
		return nil, common.NewInternalError(msgInternal, err)
	}

	return pair, nil
}

// Logout clears the stored refresh token.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	err := s.repomanager.Users(s.db).SetRefreshToken(ctx, userID, nil)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewNotFoundError(msgUserNotFound, err)
		}
		return common.NewInternalError(msgInternal, err)
	}
	return nil
}

// Authenticate resolves an access token to the sanitized user it belongs
// to. Every failure is Unauthorized; the cause tells them apart.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.PublicUser, error) {
	if accessToken == "" {
		return nil, common.NewUnauthorizedError(msgUnauthorized, common.ErrorUnauthorized)
	}

	userID, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, common.NewUnauthorizedError(msgInvalidAccess, err)
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorizedError(msgInvalidAccess, err)
		}
		return nil, common.NewInternalError(msgInternal, err)
	}

	return user.Sanitized(), nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return newValidationError(msgAllFieldsRequired, err)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		return s.lookupError(err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.OldPassword)
	if err != nil {
		return common.NewInternalError(msgInternal, err)
	}
	if !ok {
		return common.NewUnauthorizedError(msgOldPassword, common.ErrorUnauthorized)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return common.NewInternalError(msgInternal, err)
	}

	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return s.lookupError(err)
	}
	return nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (*models.PublicUser, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		if anyBlank(in.FullName, in.Email) {
			return nil, newValidationError(msgAllFieldsRequired, err)
		}
		return nil, newValidationError(msgInvalidEmail, err)
	}

	user, err := s.repomanager.Users(s.db).UpdateAccount(ctx, userID, in.FullName, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewConflictError(msgEmailInUse, err)
		}
		return nil, s.lookupError(err)
	}
	return user.Sanitized(), nil
}

// UpdateAvatar replaces the avatar URL. The previous object is left in
// the media store.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, localPath string) (*models.PublicUser, error) {
	return s.replaceImage(ctx, userID, localPath, msgAvatarMissing, msgAvatarUpdate,
		s.repomanager.Users(s.db).UpdateAvatar)
}

// UpdateCoverImage replaces the cover image URL. The previous object is
// left in the media store.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, localPath string) (*models.PublicUser, error) {
	return s.replaceImage(ctx, userID, localPath, msgCoverMissing, msgCoverUpdate,
		s.repomanager.Users(s.db).UpdateCoverImage)
}

func (s *UserService) replaceImage(ctx context.Context, userID, localPath, missingMsg, uploadMsg string,
	update func(ctx context.Context, id string, url string) (*models.User, error)) (*models.PublicUser, error) {

	if anyBlank(localPath) {
		return nil, common.NewValidationError(missingMsg, nil)
	}

	asset, err := s.upload(ctx, localPath)
	if err != nil {
		return nil, common.NewInternalError(uploadMsg, err)
	}

	user, err := update(ctx, userID, asset.URL)
	if err != nil {
		s.discard(ctx, asset, nil)
		return nil, s.lookupError(err)
	}
	return user.Sanitized(), nil
}

// --- helpers below ---

func (s *UserService) lookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewNotFoundError(msgUserNotFound, err)
	}
	return common.NewInternalError(msgInternal, err)
}

// upload treats an asset without a URL as a failed upload.
func (s *UserService) upload(ctx context.Context, localPath string) (*media.Asset, error) {
	asset, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, err
	}
	if asset == nil || asset.URL == "" {
		return nil, common.ErrEmptyUpload
	}
	return asset, nil
}

// discard deletes primary, or fallback when primary is nil. Only one asset
// is ever removed. Failures are logged and otherwise ignored.
func (s *UserService) discard(ctx context.Context, primary, fallback *media.Asset) {
	asset := primary
	if asset == nil {
		asset = fallback
	}
	if asset == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.media.Delete(ctx, asset.PublicID); err != nil {
		s.logger.Error(ctx, "compensating media delete failed", "public_id", asset.PublicID, "error", err)
		return
	}
	s.logger.Warn(ctx, "uploaded media deleted after failure", "public_id", asset.PublicID)
}

func (s *UserService) checkRefreshToken(stored *string, candidate string) bool {
	if stored == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(candidate)) == 1
}

// generateTokenPair signs a new pair and stores its refresh token through
// repo, which may be bound to a transaction.
func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, repo users.Repository) (*auth.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	if err := repo.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, err
	}
	return pair, nil
}
