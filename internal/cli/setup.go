package cli

import (
	"log/slog"
	"os"

	"github.com/kt1928/building-monitor/internal/config"
	"github.com/kt1928/building-monitor/internal/engine"
	"github.com/kt1928/building-monitor/internal/notify"
	"github.com/kt1928/building-monitor/internal/provider"
	"github.com/kt1928/building-monitor/internal/store"
)

// monitorEnv bundles everything a monitoring command needs: loaded
// config, open store and a fully-wired engine.
type monitorEnv struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

func (e *monitorEnv) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// setupMonitor loads config and wires the store, providers, dispatcher
// and engine. Callers own the returned env and must close it.
func setupMonitor(opts *RootOptions) (*monitorEnv, error) {
	logger := newLogger(opts.Verbose)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	bis, err := provider.NewBISClient(cfg.Proxy)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to build BIS client", err)
	}
	feed := provider.NewOpenDataClient()
	dispatcher := notify.NewDispatcher(notify.NewWebhookClient(), logger)

	var eopts []engine.Option
	if cfg.FeedLimit > 0 {
		eopts = append(eopts, engine.WithFeedLimit(cfg.FeedLimit))
	}

	return &monitorEnv{
		cfg:    cfg,
		store:  st,
		engine: engine.New(st, bis, feed, dispatcher, logger, eopts...),
		logger: logger,
	}, nil
}

// openStore loads config and opens just the store, for commands that
// never talk to the providers.
func openStore(opts *RootOptions) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return cfg, st, nil
}
