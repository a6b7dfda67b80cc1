package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/api"
	"github.com/dmitrijs2005/accountkeeper/internal/client/config"
	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// accountAPI is the part of api.Client the commands use.
type accountAPI interface {
	Register(ctx context.Context, r models.Registration) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	Refresh(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, path string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, path string) (*models.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	api    accountAPI
	user   *models.User
	reader *bufio.Reader

	mu   sync.Mutex
	mode Mode
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := api.NewClient(c.BaseURL(), c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

// Mode returns the last observed server reachability.
func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) getStatus() string {
	var parts []string
	if a.user != nil {
		parts = append(parts, a.user.Username)
	}
	if mode := a.Mode(); mode != "" {
		parts = append(parts, string(mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Run probes the server once, starts the status watcher and blocks in the
// REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to accountkeeper CLI (type 'help' for commands)")

	a.probe(ctx)
	go a.StartOnlineStatusWatcher(ctx, 5*time.Second)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
