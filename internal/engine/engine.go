package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/notify"
	"github.com/genricoloni/zonesync/internal/playback"
	"github.com/genricoloni/zonesync/internal/registry"
	"github.com/genricoloni/zonesync/internal/store"
	"github.com/genricoloni/zonesync/internal/volume"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultSaveDebounce = 500 * time.Millisecond

// Prober is a volume backend with a health check
type Prober interface {
	IsConfigured() bool
	Probe(ctx context.Context) bool
}

// Engine wires the registry, synchronizer and arbiter together and owns
// persistence of the resume state, the history and the current artwork.
type Engine struct {
	logger    *zap.Logger
	cfg       *config.AppConfig
	gateway   domain.Gateway
	store     domain.Store
	registry  *registry.Registry
	state     *playback.State
	history   *playback.History
	sync      *playback.Synchronizer
	arbiter   *volume.Arbiter
	core      Prober
	fetcher   domain.Fetcher
	processor domain.Processor

	saveDebounce time.Duration
	cancel       context.CancelFunc
	done         chan struct{}

	mu           sync.RWMutex
	lastSnapshot []byte
	stations     []domain.RadioStation
	artwork      domain.Artwork
	artChanges   *notify.Broadcaster
}

// NewEngine creates the orchestration engine
func NewEngine(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gateway domain.Gateway,
	st domain.Store,
	reg *registry.Registry,
	state *playback.State,
	history *playback.History,
	syncer *playback.Synchronizer,
	arbiter *volume.Arbiter,
	core Prober,
	fetch domain.Fetcher,
	proc domain.Processor,
) *Engine {
	logger = logger.Named("engine")
	return &Engine{
		logger:       logger,
		cfg:          cfg,
		gateway:      gateway,
		store:        st,
		registry:     reg,
		state:        state,
		history:      history,
		sync:         syncer,
		arbiter:      arbiter,
		core:         core,
		fetcher:      fetch,
		processor:    proc,
		saveDebounce: defaultSaveDebounce,
		artChanges:   notify.NewBroadcaster(logger),
	}
}

// Start restores persisted state, selects a player and launches the background loop.
// It returns immediately (non-blocking); backend failures are logged, never fatal.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...")

	e.registry.OnActiveChange(e.onActiveChange)

	if err := e.registry.Load(ctx); err != nil {
		e.logger.Warn("Could not load player selection", zap.Error(err))
	}

	var snap domain.Snapshot
	if found, err := store.GetJSON(ctx, e.store, store.KeyPlaybackSnapshot, &snap); err != nil {
		e.logger.Warn("Could not load playback snapshot", zap.Error(err))
	} else if found {
		e.state.Hydrate(snap)
		e.rememberSnapshot(e.state.Persistable())
		e.logger.Info("Playback state restored",
			zap.Int("queue", len(snap.Queue)),
			zap.Float64("volume", snap.Volume))
	}

	if err := e.history.Load(ctx); err != nil {
		e.logger.Warn("Could not load history", zap.Error(err))
	}

	e.probe(ctx)
	e.loadStations(ctx)
	if err := e.registry.Refresh(ctx); err != nil {
		e.logger.Warn("Initial player refresh failed, will retry", zap.Error(err))
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.runLoop(loopCtx)
	return nil
}

// Stop ends the loop and the sync session and writes the final resume state
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
	e.sync.Close()
	e.arbiter.Cancel()

	return multierr.Combine(
		e.saveSnapshot(ctx),
		e.history.Save(ctx),
	)
}

// Stations returns the favourite radio stations
func (e *Engine) Stations() []domain.RadioStation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.RadioStation{}, e.stations...)
}

// Artwork returns the cached artwork of the current track
func (e *Engine) Artwork() domain.Artwork {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.artwork
}

// ArtworkChanges subscribes to artwork updates
func (e *Engine) ArtworkChanges() (<-chan struct{}, func()) {
	return e.artChanges.Subscribe()
}

// onActiveChange re-targets the synchronizer; pending volume belongs to the old player
func (e *Engine) onActiveChange(playerID string) {
	e.arbiter.Cancel()

	switch playerID {
	case "", domain.LocalZoneID:
		e.sync.Deactivate()
		e.logger.Info("No remote player active", zap.String("zone", playerID))
	default:
		e.sync.Activate(playerID)
	}
}

// runLoop debounces state changes into saves and runs the periodic refresh
func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)

	changes, unsubscribe := e.state.Changes()
	defer unsubscribe()

	timer := time.NewTimer(e.saveDebounce)
	timer.Stop()
	defer timer.Stop()

	ticker := time.NewTicker(e.cfg.Sync.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case <-changes:
			// Wait for a quiet period; polls and slider drags change state in bursts
			timer.Reset(e.saveDebounce)

		case <-timer.C:
			if err := e.saveSnapshot(ctx); err != nil {
				e.logger.Warn("Failed to save playback snapshot", zap.Error(err))
			}
			if err := e.history.Save(ctx); err != nil {
				e.logger.Warn("Failed to save history", zap.Error(err))
			}
			e.updateArtwork(ctx)

		case <-ticker.C:
			e.probe(ctx)
			e.loadStations(ctx)
			if err := e.registry.Refresh(ctx); err != nil {
				e.logger.Debug("Periodic player refresh failed", zap.Error(err))
			}
		}
	}
}

// saveSnapshot writes the resume state when it differs from the last write
func (e *Engine) saveSnapshot(ctx context.Context) error {
	data, err := json.Marshal(e.state.Persistable())
	if err != nil {
		return err
	}

	e.mu.Lock()
	unchanged := bytes.Equal(data, e.lastSnapshot)
	e.mu.Unlock()
	if unchanged {
		return nil
	}

	if err := e.store.Set(ctx, store.KeyPlaybackSnapshot, data); err != nil {
		return err
	}

	e.mu.Lock()
	e.lastSnapshot = data
	e.mu.Unlock()
	e.logger.Debug("Playback snapshot saved", zap.Int("bytes", len(data)))
	return nil
}

func (e *Engine) rememberSnapshot(snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	e.mu.Lock()
	e.lastSnapshot = data
	e.mu.Unlock()
}

func (e *Engine) probe(ctx context.Context) {
	if e.core == nil || !e.core.IsConfigured() {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, e.cfg.AudioCore.Timeout)
	defer cancel()
	e.core.Probe(probeCtx)
}

func (e *Engine) loadStations(ctx context.Context) {
	stations, err := e.gateway.Favorites(ctx)
	if err != nil {
		e.logger.Debug("Could not load favourite stations", zap.Error(err))
		return
	}
	e.mu.Lock()
	e.stations = stations
	e.mu.Unlock()
	e.sync.SetStations(stations)
}

// updateArtwork runs the fetch and process pipeline when the current artwork ref changes
func (e *Engine) updateArtwork(ctx context.Context) {
	st := e.state.Snapshot()
	ref := ""
	if st.CurrentTrack != nil {
		ref = st.CurrentTrack.ArtworkRef
	}

	e.mu.RLock()
	same := ref == e.artwork.Ref
	e.mu.RUnlock()
	if same {
		return
	}

	art := domain.Artwork{Ref: ref}
	if ref != "" {
		if cached, ok := e.processor.Cached(ref); ok {
			art = cached
		} else {
			data, err := e.fetcher.Fetch(ctx, ref)
			if err != nil {
				e.logger.Warn("Failed to fetch artwork", zap.String("ref", ref), zap.Error(err))
				return
			}
			generated, err := e.processor.Generate(data, ref)
			if err != nil {
				e.logger.Warn("Failed to generate artwork", zap.String("ref", ref), zap.Error(err))
				return
			}
			art = generated
		}
	}

	e.mu.Lock()
	e.artwork = art
	e.mu.Unlock()
	e.artChanges.Notify()
}
