// Package cli is the terminal host of the OpenCircle client: a REPL over the
// resource services with the same auth flow, route guarding, and cached list
// views the web client has.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/config"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/client/paginate"
	"github.com/llwyd-bot123/opencircle-client/internal/client/prefs"
	"github.com/llwyd-bot123/opencircle-client/internal/client/services"
	"github.com/llwyd-bot123/opencircle-client/internal/client/session"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
	"github.com/llwyd-bot123/opencircle-client/internal/obs"
)

// App wires the full client stack behind the REPL commands.
type App struct {
	config  *config.Config
	api     *api.Client
	store   *cache.Store
	session *session.Store
	guard   *session.Guard
	svc     *services.Services
	prefs   prefs.Repository
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer

	feed  *paginate.Infinite[models.Event]
	route string
}

func NewApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log logging.Logger) (*App, error) {
	client, err := api.New(cfg, log, obs.NewMetrics(reg))
	if err != nil {
		return nil, err
	}

	store := cache.NewStore(cfg.CacheStaleTime, cfg.CacheGCTime)
	policy := cache.NewPolicy(store, log)
	sess := session.NewStore(log)

	db, err := prefs.Open(ctx, cfg.PrefsPath)
	if err != nil {
		return nil, err
	}
	repo := prefs.NewSQLiteRepository(db)

	app := &App{
		config:  cfg,
		api:     client,
		store:   store,
		session: sess,
		guard:   session.NewGuard(sess),
		svc:     services.New(client, policy, sess, repo, cfg, log),
		prefs:   repo,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		route:   session.RouteLogin,
	}

	client.SetUnauthorizedHook(func() {
		sess.Clear(ctx)
		app.route = session.RouteLogin
		fmt.Fprintln(app.out, "Session expired, please log in again.")
	})

	return app, nil
}

// Run drives the REPL until EOF or an explicit exit.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to OpenCircle (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartCacheJanitor(ctx, a.config.CacheGCTime)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner, a.out)
}

// StartCacheJanitor evicts aged cache entries on a fixed interval.
func (a *App) StartCacheJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := a.store.GC(); evicted > 0 {
				a.log.Debug(ctx, "cache janitor ran", "evicted", evicted)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) isOrganization() bool {
	return models.IsOrganization(a.session.User())
}

func (a *App) getStatus() string {
	user := a.session.User()
	if user == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", user.DisplayName(), a.route)
}
