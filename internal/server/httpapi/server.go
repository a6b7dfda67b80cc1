// Package httpapi exposes account operations over HTTP using fiber.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// AccountService is the part of services.UserService the handlers call.
type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Authenticate(ctx context.Context, accessToken string) (*models.PublicUser, error)
	ChangePassword(ctx context.Context, userID string, in services.ChangePasswordInput) error
	UpdateAccount(ctx context.Context, userID string, in services.UpdateAccountInput) (*models.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID string, localPath string) (*models.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID string, localPath string) (*models.PublicUser, error)
}

var _ AccountService = (*services.UserService)(nil)

type Options struct {
	Addr string
	// UploadDir must exist; multipart files are saved there for the
	// duration of a request.
	UploadDir       string
	MaxUploadSize   int
	SecureCookies   bool
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	app      *fiber.App
	opts     Options
	accounts AccountService
	logger   logging.Logger
}

func NewServer(opts Options, accounts AccountService, l logging.Logger) *Server {
	s := &Server{
		opts:     opts,
		accounts: accounts,
		logger:   l.With("module", "http_server"),
	}

	cfg := fiber.Config{
		AppName:               "accountkeeper",
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	}
	if opts.MaxUploadSize > 0 {
		cfg.BodyLimit = opts.MaxUploadSize
	}

	s.app = fiber.New(cfg)
	s.routes()

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Addr)
		errCh <- s.app.Listen(s.opts.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	return s.app.ShutdownWithContext(shutdownCtx)
}
