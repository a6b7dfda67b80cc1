package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/media"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/users"
)

// --- repositories ---

type fakeRepoManager struct {
	users *memUsers
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository            { return m.users }

// memUsers is an in-memory users.Repository with per-method error hooks.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int

	findErr     error
	createErr   error
	findByIDErr error
	setTokenErr error
	updateErr   error

	setTokenCalls int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.RefreshToken != nil {
		t := *u.RefreshToken
		c.RefreshToken = &t
	}
	return &c
}

func (r *memUsers) Create(ctx context.Context, nu *models.NewUser) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.byID {
		if u.Username == nu.Username || u.Email == nu.Email {
			return nil, fmt.Errorf("%w: users_username_key", common.ErrorAlreadyExists)
		}
	}
	r.nextID++
	now := time.Now().UTC()
	u := &models.User{
		ID:            fmt.Sprintf("u-%d", r.nextID),
		Username:      nu.Username,
		Email:         nu.Email,
		FullName:      nu.FullName,
		PasswordHash:  nu.PasswordHash,
		AvatarURL:     nu.AvatarURL,
		CoverImageURL: nu.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.byID[u.ID] = u
	return clone(u), nil
}

func (r *memUsers) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findByIDErr != nil {
		return nil, r.findByIDErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *memUsers) FindByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return r.FindByID(ctx, id)
}

func (r *memUsers) SetRefreshToken(ctx context.Context, id string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setTokenCalls++
	if r.setTokenErr != nil {
		return r.setTokenErr
	}
	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if token == nil {
		u.RefreshToken = nil
	} else {
		t := *token
		u.RefreshToken = &t
	}
	return nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.mutate(id, func(u *models.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
}

func (r *memUsers) UpdateAccount(ctx context.Context, id string, fullName, email string) (*models.User, error) {
	var out *models.User
	err := r.mutate(id, func(u *models.User) error {
		for _, other := range r.byID {
			if other.ID != id && other.Email == email {
				return fmt.Errorf("%w: users_email_key", common.ErrorAlreadyExists)
			}
		}
		u.FullName = fullName
		u.Email = email
		out = clone(u)
		return nil
	})
	return out, err
}

func (r *memUsers) UpdateAvatar(ctx context.Context, id string, url string) (*models.User, error) {
	var out *models.User
	err := r.mutate(id, func(u *models.User) error {
		u.AvatarURL = url
		out = clone(u)
		return nil
	})
	return out, err
}

func (r *memUsers) UpdateCoverImage(ctx context.Context, id string, url string) (*models.User, error) {
	var out *models.User
	err := r.mutate(id, func(u *models.User) error {
		u.CoverImageURL = url
		out = clone(u)
		return nil
	})
	return out, err
}

func (r *memUsers) mutate(id string, fn func(u *models.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	return fn(u)
}

func (r *memUsers) stored(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.byID[id])
}

// --- media ---

// fakeMedia records calls. failOn makes Upload fail for paths containing it.
type fakeMedia struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	failOn   string
	emptyURL bool
	delErr   error
}

func (m *fakeMedia) Upload(ctx context.Context, localPath string) (*media.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, localPath)
	if m.failOn != "" && strings.Contains(localPath, m.failOn) {
		return nil, errors.New("media store unavailable")
	}
	id := fmt.Sprintf("users/2025/1/1/%d-%s", len(m.uploads), localPath)
	if m.emptyURL {
		return &media.Asset{PublicID: id}, nil
	}
	return &media.Asset{URL: "http://media/" + id, PublicID: id}, nil
}

func (m *fakeMedia) Delete(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, publicID)
	return m.delErr
}

// --- hashing ---

// plainHasher keeps tests fast; the bcrypt path is covered in auth.
type plainHasher struct {
	hashErr error
}

func (h plainHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h plainHasher) Compare(hash, password string) (bool, error) {
	return hash == "hashed:"+password, nil
}
