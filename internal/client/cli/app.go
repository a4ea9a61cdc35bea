package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/offlinefeed/internal/client/buckets"
	"github.com/dmitrijs2005/offlinefeed/internal/client/client"
	"github.com/dmitrijs2005/offlinefeed/internal/client/config"
	"github.com/dmitrijs2005/offlinefeed/internal/client/connectivity"
	"github.com/dmitrijs2005/offlinefeed/internal/client/coordinator"
	"github.com/dmitrijs2005/offlinefeed/internal/client/ephemeral"
	"github.com/dmitrijs2005/offlinefeed/internal/client/prober"
	"github.com/dmitrijs2005/offlinefeed/internal/client/router"
	"github.com/dmitrijs2005/offlinefeed/internal/client/store"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/dmitrijs2005/offlinefeed/internal/timex"
)

// sessionOfflineKey holds the offline-mode toggle in the ephemeral store, so
// it lasts for the session but not across restarts.
const sessionOfflineKey = "offline-mode"

type AppOption func(*App)

// WithIO replaces stdin/stdout.
func WithIO(in io.Reader, out io.Writer) AppOption {
	return func(a *App) {
		a.in = bufio.NewScanner(in)
		a.out = out
		a.prompt = false
	}
}

// WithTransport sets the network transport behind the router.
func WithTransport(rt http.RoundTripper) AppOption {
	return func(a *App) { a.transport = rt }
}

// App wires every offline component behind the interactive shell.
type App struct {
	config *config.Config
	log    logging.Logger

	store   *store.Store
	buckets *buckets.Store
	router  *router.Router
	server  client.Client
	health  *client.GRPCPinger
	monitor *connectivity.Monitor
	coord   *coordinator.Coordinator
	prober  *prober.Prober
	session ephemeral.Store

	transport http.RoundTripper
	in        *bufio.Scanner
	out       io.Writer
	prompt    bool
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger, opts ...AppOption) (*App, error) {
	a := &App{
		config:    c,
		log:       log,
		transport: http.DefaultTransport,
		in:        bufio.NewScanner(os.Stdin),
		out:       os.Stdout,
		prompt:    stdinIsTerminal(),
	}
	for _, o := range opts {
		o(a)
	}

	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	var err error
	if a.buckets, err = buckets.Open(c.BucketsPath()); err != nil {
		return nil, fmt.Errorf("buckets: %w", err)
	}

	a.store = store.New(store.Config{
		Path:           c.StorePath(),
		PostTTL:        c.PostTTL,
		DraftRetention: c.DraftRetention,
	}, log)

	a.router, err = router.New(router.Config{
		Origin:              c.AppOrigin,
		Generation:          c.RouterGeneration,
		NetworkTimeout:      c.NetworkTimeout,
		RevalidatePerMinute: c.RevalidatePerMinute,
	}, a.buckets, log, router.WithTransport(a.transport))
	if err != nil {
		a.Close()
		return nil, err
	}
	if _, err := a.router.Activate(ctx); err != nil {
		log.Warn(ctx, "bucket activation failed", "error", err)
	}

	var clientOpts []client.Option
	if c.SyncSecret != "" {
		clientOpts = append(clientOpts, client.WithDeviceAuth(c.DeviceID, []byte(c.SyncSecret)))
	}
	if a.server, err = client.NewHTTPClient(c.ServerEndpointAddr, clientOpts...); err != nil {
		a.Close()
		return nil, err
	}

	var pinger client.Pinger = a.server
	if c.ServerGRPCAddr != "" {
		if a.health, err = client.NewGRPCPinger(c.ServerGRPCAddr); err != nil {
			a.Close()
			return nil, fmt.Errorf("grpc health: %w", err)
		}
		pinger = a.health
	}

	if c.RedisURL != "" {
		r, err := ephemeral.NewRedisFromURL(ctx, c.RedisURL, 0)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.session = r
	} else {
		a.session = ephemeral.NewMemory()
	}

	a.monitor = connectivity.New(pinger, log)
	a.coord = coordinator.New(a.store, a.monitor, a.server, log,
		coordinator.WithCleanupInterval(c.CleanupInterval))
	a.prober = prober.New(a.buckets, a.store, a.session, log)

	return a, nil
}

// Run starts background work and blocks in the REPL until the user exits or
// input ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.coord.Start(ctx); err != nil {
		return err
	}
	if v, err := a.session.Get(ctx, sessionOfflineKey); err == nil && string(v) == "on" {
		a.coord.SetOfflineMode(true)
	}

	a.monitor.CheckNow(ctx)
	go a.monitor.Run(ctx, timex.NewTicker(a.config.OnlineCheckInterval))

	a.printf("Welcome to offlinefeed (type 'help' for commands)\n")
	runREPL(ctx, a, a.statusLine, a.in, a.prompt)
	return nil
}

// Close releases every resource NewApp acquired. It is safe on a partially
// built App.
func (a *App) Close() error {
	var errs []error
	if a.coord != nil {
		a.coord.Close()
	}
	if a.router != nil {
		a.router.Wait()
	}
	if a.server != nil {
		errs = append(errs, a.server.Close())
	}
	if a.health != nil {
		errs = append(errs, a.health.Close())
	}
	if c, ok := a.session.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.buckets != nil {
		errs = append(errs, a.buckets.Close())
	}
	return errors.Join(errs...)
}

func (a *App) statusLine() string {
	s := a.coord.Snapshot()
	parts := []string{"online"}
	if !s.IsOnline {
		parts[0] = "offline"
	}
	if s.IsOfflineModeEnabled {
		parts = append(parts, "offline-mode")
	}
	if s.PendingSyncCount > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", s.PendingSyncCount))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// fail reports err to the user and returns it.
func (a *App) fail(what string, err error) error {
	a.printf("%s: %v\n", what, err)
	return err
}
