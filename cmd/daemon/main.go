package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/zonesync/internal/api"
	"github.com/genricoloni/zonesync/internal/audiocore"
	"github.com/genricoloni/zonesync/internal/clock"
	"github.com/genricoloni/zonesync/internal/command"
	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/dac"
	"github.com/genricoloni/zonesync/internal/discovery"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/engine"
	"github.com/genricoloni/zonesync/internal/fetcher"
	"github.com/genricoloni/zonesync/internal/gateway"
	"github.com/genricoloni/zonesync/internal/mpris"
	"github.com/genricoloni/zonesync/internal/playback"
	"github.com/genricoloni/zonesync/internal/processor"
	"github.com/genricoloni/zonesync/internal/registry"
	"github.com/genricoloni/zonesync/internal/store"
	"github.com/genricoloni/zonesync/internal/volume"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the dependency graph of the daemon; config.Flags must be supplied
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		newConfig,
		newClock,
		newGateway,
		newStore,
		playback.NewState,
		playback.NewHistory,
		registry.New,
		newDAC,
		newAudioCore,
		newVolumeBackends,
		newArbiter,
		newSynchronizer,
		newDispatcher,
		newFetcher,
		newProcessor,
		newEngine,
		newAPIServer,
		newMPRISServer,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	flags := parseFlags()

	app := fx.New(
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Supply(flags),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		panic(err)
	}
}

func parseFlags() config.Flags {
	var f config.Flags
	pflag.StringVarP(&f.EnvFile, "env-file", "e", "", "path to the .env file (default .env)")
	pflag.StringVarP(&f.Listen, "listen", "l", "", "HTTP listen address")
	pflag.StringVar(&f.LMSURL, "lms", "", "media server URL, e.g. http://lms.local:9000 (discovered when empty)")
	pflag.BoolVarP(&f.Debug, "debug", "d", false, "enable debug logging")
	pflag.Parse()
	return f
}

// newLogger creates a new zap logger instance
func newLogger(flags config.Flags) (*zap.Logger, error) {
	if flags.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newConfig loads the configuration and discovers the media server when no URL is set
func newConfig(logger *zap.Logger, flags config.Flags) *config.AppConfig {
	cfg := config.NewAppConfig(logger, flags)
	if cfg.Gateway.URL != "" {
		return cfg
	}

	d, err := discovery.New(logger, cfg)
	if err != nil {
		logger.Warn("Discovery unavailable, set ZONESYNC_LMS_URL", zap.Error(err))
		return cfg
	}
	url, err := d.Discover(context.Background())
	if err != nil {
		logger.Warn("Media server not found, set ZONESYNC_LMS_URL", zap.Error(err))
		return cfg
	}
	cfg.Gateway.URL = url
	return cfg
}

func newClock() domain.Clock {
	return clock.Real{}
}

func newGateway(logger *zap.Logger, cfg *config.AppConfig) domain.Gateway {
	return gateway.NewClient(logger, cfg.Gateway.URL, cfg.Gateway)
}

func newStore(lc fx.Lifecycle, logger *zap.Logger, cfg *config.AppConfig) (domain.Store, error) {
	st, err := store.New(logger, cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := st.(interface{ Close() }); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				closer.Close()
				return nil
			},
		})
	}
	return st, nil
}

func newDAC(logger *zap.Logger, cfg *config.AppConfig) *dac.Backend {
	return dac.New(logger, cfg.DAC)
}

func newAudioCore(logger *zap.Logger, cfg *config.AppConfig) *audiocore.Bridge {
	return audiocore.New(logger, cfg.AudioCore)
}

// newVolumeBackends lists the secondary volume controls; the arbiter orders them by priority
func newVolumeBackends(core *audiocore.Bridge, hw *dac.Backend) []domain.VolumeBackend {
	return []domain.VolumeBackend{core, hw}
}

func newArbiter(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gw domain.Gateway,
	reg *registry.Registry,
	state *playback.State,
	clk domain.Clock,
	backends []domain.VolumeBackend,
) *volume.Arbiter {
	return volume.New(logger, cfg, gw, reg, state, clk, backends)
}

func newSynchronizer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gw domain.Gateway,
	state *playback.State,
	history *playback.History,
	arbiter *volume.Arbiter,
	reg *registry.Registry,
	clk domain.Clock,
) *playback.Synchronizer {
	return playback.NewSynchronizer(logger, cfg, gw, state, history, arbiter, reg, clk)
}

func newDispatcher(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gw domain.Gateway,
	reg *registry.Registry,
	state *playback.State,
	syncer *playback.Synchronizer,
	clk domain.Clock,
) *command.Dispatcher {
	return command.New(logger, cfg, gw, reg, state, syncer, clk)
}

func newFetcher(logger *zap.Logger, cfg *config.AppConfig) domain.Fetcher {
	return fetcher.NewHTTPFetcher(logger, cfg)
}

func newProcessor(logger *zap.Logger, cfg *config.AppConfig) domain.Processor {
	return processor.NewArtworkProcessor(logger, cfg)
}

func newEngine(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gw domain.Gateway,
	st domain.Store,
	reg *registry.Registry,
	state *playback.State,
	history *playback.History,
	syncer *playback.Synchronizer,
	arbiter *volume.Arbiter,
	core *audiocore.Bridge,
	fetch domain.Fetcher,
	proc domain.Processor,
) *engine.Engine {
	return engine.NewEngine(logger, cfg, gw, st, reg, state, history, syncer, arbiter, core, fetch, proc)
}

func newAPIServer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	state *playback.State,
	reg *registry.Registry,
	dispatcher *command.Dispatcher,
	arbiter *volume.Arbiter,
	eng *engine.Engine,
	history *playback.History,
) *api.Server {
	return api.NewServer(logger, cfg, state, reg, dispatcher, arbiter, eng, history)
}

func newMPRISServer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	dispatcher *command.Dispatcher,
	arbiter *volume.Arbiter,
	state *playback.State,
	eng *engine.Engine,
) *mpris.Server {
	return mpris.NewServer(logger, cfg, dispatcher, arbiter, state, eng)
}

// registerHooks sets up application lifecycle hooks.
// Hooks stop in reverse order, so the engine writes its final state last.
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	eng *engine.Engine,
	apiServer *api.Server,
	mprisServer *mpris.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("ZoneSync daemon starting")
			return eng.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return eng.Stop(ctx)
		},
	})
	lc.Append(fx.Hook{
		OnStart: apiServer.Start,
		OnStop:  apiServer.Stop,
	})
	lc.Append(fx.Hook{
		OnStart: mprisServer.Start,
		OnStop:  mprisServer.Stop,
	})
}
