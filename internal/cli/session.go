package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/internal/config"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
	"github.com/matzehuels/gridboard/pkg/registry"
	"github.com/matzehuels/gridboard/pkg/state"
	"github.com/matzehuels/gridboard/pkg/store"
)

// =============================================================================
// Session - one loaded dashboard
// =============================================================================

// session bundles a loaded layout with the store it persists to. Every
// command that touches the layout opens one session, works on its manager
// and closes it, which flushes pending writes.
type session struct {
	cfg     config.Config
	backend store.Backend
	raw     store.Store
	store   *store.ScopedStore
	mgr     *state.Manager
}

// sessionOptions tweaks how a session is opened.
type sessionOptions struct {
	// logger overrides the CLI logger, e.g. to keep the terminal editor's
	// screen clean.
	logger *log.Logger

	hooks   []observability.LayoutHooks
	arbiter state.GestureArbiter
}

// openSession loads the configuration, connects to the store and restores
// the dashboard layout.
func (c *CLI) openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return c.openSessionWith(ctx, cfg, opts)
}

func (c *CLI) openSessionWith(ctx context.Context, cfg config.Config, opts sessionOptions) (*session, error) {
	logger := opts.logger
	if logger == nil {
		logger = loggerFromContext(ctx)
	}

	raw, backend, err := c.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	codec, err := layout.CodecByName(cfg.Store.Codec)
	if err != nil {
		raw.Close()
		return nil, err
	}

	scoped := store.Scoped(raw, cfg.KeyPrefix())
	hooks := append([]observability.LayoutHooks{observability.NewLogHooks(logger)}, opts.hooks...)
	stateOpts := []state.Option{
		state.WithCols(cfg.Grid.Cols),
		state.WithHistoryDepth(cfg.History.Depth),
		state.WithDebounce(cfg.Store.Debounce.Std()),
		state.WithCodec(codec),
		state.WithLogger(logger),
		state.WithHooks(observability.MultiLayout(hooks...)),
	}
	if opts.arbiter != nil {
		stateOpts = append(stateOpts, state.WithArbiter(opts.arbiter))
	}

	mgr := state.New(registry.NewCatalog(), scoped, stateOpts...)
	if err := mgr.Init(ctx); err != nil {
		raw.Close()
		return nil, err
	}

	logger.Debug("session opened", "dashboard", cfg.Store.Dashboard, "backend", backend, "widgets", len(mgr.Widgets()))
	return &session{cfg: cfg, backend: backend, raw: raw, store: scoped, mgr: mgr}, nil
}

// openStore connects to the configured backend. Network backends get a
// spinner since their connection retries can take a few seconds.
func (c *CLI) openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Store, store.Backend, error) {
	dir, err := dataDir()
	if err != nil {
		dir = ""
	}
	sc := cfg.StoreConfig(dir)
	sc.Logger = logger

	if !usesNetwork(sc) {
		return store.Open(ctx, sc)
	}

	spinner := newSpinner(ctx, os.Stderr, "Connecting to store...")
	spinner.Start()
	st, backend, err := store.Open(ctx, sc)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return nil, "", ctx.Err()
		}
		spinner.Fail("Could not connect to a store")
		return nil, "", fmt.Errorf("open store: %w", err)
	}
	spinner.Done(fmt.Sprintf("Connected to %s", backend))
	return st, backend, nil
}

func usesNetwork(sc store.Config) bool {
	for _, b := range sc.Chain() {
		if b == store.BackendRedis || b == store.BackendMongo {
			return true
		}
	}
	return false
}

// close flushes the layout and releases the store.
func (s *session) close(ctx context.Context) error {
	err := s.mgr.Close(ctx)
	if cerr := s.raw.Close(); err == nil {
		err = cerr
	}
	return err
}

// withSession opens a session, runs fn and closes the session. An error from
// fn takes precedence over the close error.
func (c *CLI) withSession(ctx context.Context, fn func(*session) error) error {
	s, err := c.openSession(ctx, sessionOptions{})
	if err != nil {
		return err
	}
	err = fn(s)
	if cerr := s.close(ctx); err == nil {
		err = cerr
	}
	return err
}
