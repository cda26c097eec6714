package volume

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/playback"
	"go.uber.org/zap"
)

// PlayerSource exposes the active selection to the arbiter
type PlayerSource interface {
	Active() (domain.Player, bool)
	ActiveZoneID() string
	SetPlayerVolume(playerID string, percent int)
}

// Arbiter routes volume requests to exactly one backend.
// Requests are debounced; only the last request of a burst is sent.
type Arbiter struct {
	logger   *zap.Logger
	cfg      config.VolumeConfig
	gateway  domain.Gateway
	players  PlayerSource
	state    *playback.State
	clock    domain.Clock
	backends []domain.VolumeBackend

	mu         sync.Mutex
	pending    *domain.PendingVolumeChange
	timer      *time.Timer
	generation uint64
	sent       bool
	lastSent   int
	lastSentAt time.Time
}

// New creates an arbiter. Backends are ordered by the configured priority list;
// backends the list does not name are never used.
func New(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gateway domain.Gateway,
	players PlayerSource,
	state *playback.State,
	clk domain.Clock,
	backends []domain.VolumeBackend,
) *Arbiter {
	logger = logger.Named("volume")

	ordered := make([]domain.VolumeBackend, 0, len(backends))
	for _, name := range cfg.Volume.Priority {
		for _, b := range backends {
			if b.Name() == name {
				ordered = append(ordered, b)
			}
		}
	}
	for _, b := range backends {
		if !contains(cfg.Volume.Priority, b.Name()) {
			logger.Info("Volume backend not in priority list, ignoring", zap.String("backend", b.Name()))
		}
	}

	return &Arbiter{
		logger:   logger,
		cfg:      cfg.Volume,
		gateway:  gateway,
		players:  players,
		state:    state,
		clock:    clk,
		backends: ordered,
	}
}

// RequestVolume applies percent optimistically and schedules the backend call.
// A newer request before the debounce fires replaces this one.
func (a *Arbiter) RequestVolume(percent int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requestLocked(percent)
}

// StepVolume moves the volume by delta relative to the latest requested or displayed value
func (a *Arbiter) StepVolume(delta int) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	var base int
	if a.pending != nil {
		base = a.pending.RequestedPercent
	} else {
		base = int(math.Round(a.state.Snapshot().Volume * 100))
	}
	return a.requestLocked(base + delta)
}

// requestLocked must be called with a.mu held
func (a *Arbiter) requestLocked(percent int) int {
	percent = clampPercent(percent)

	a.state.Update(func(st *domain.PlaybackState) {
		st.Volume = float64(percent) / 100
	})
	if zoneID := a.players.ActiveZoneID(); zoneID != "" {
		a.players.SetPlayerVolume(zoneID, percent)
	}

	a.generation++
	gen := a.generation
	a.pending = &domain.PendingVolumeChange{RequestedPercent: percent, IssuedAt: a.clock.Now()}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.cfg.Debounce, func() { a.fire(gen) })
	return percent
}

// Cancel drops an undispatched request; its timer becomes a no-op
func (a *Arbiter) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.pending != nil {
		a.logger.Debug("Pending volume change cancelled",
			zap.Int("percent", a.pending.RequestedPercent))
		a.pending = nil
	}
}

// Pending returns the undispatched request, if any
func (a *Arbiter) Pending() (domain.PendingVolumeChange, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil {
		return domain.PendingVolumeChange{}, false
	}
	return *a.pending, true
}

// AcceptPolled reports whether a polled volume may overwrite the local value.
// Polls are ignored while a request is pending, and shortly after a dispatch
// when they are within tolerance of the value just sent.
func (a *Arbiter) AcceptPolled(percent int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		return false
	}
	if a.sent && a.clock.Now().Sub(a.lastSentAt) < a.cfg.EchoWindow {
		diff := percent - a.lastSent
		if diff < 0 {
			diff = -diff
		}
		if diff <= a.cfg.EchoTolerance {
			return false
		}
	}
	return true
}

// Target reports the backend that currently owns volume control
func (a *Arbiter) Target() domain.VolumeTarget {
	target, _ := a.resolve()
	return target
}

// resolve picks the first configured and enabled backend, else the active player's mixer
func (a *Arbiter) resolve() (domain.VolumeTarget, domain.VolumeBackend) {
	for _, b := range a.backends {
		if b.IsConfigured() && b.IsEnabled() {
			return domain.VolumeTarget{Kind: b.Kind(), Handle: b.Handle()}, b
		}
	}
	if p, ok := a.players.Active(); ok {
		return domain.VolumeTarget{Kind: domain.TargetRemotePlayer, Handle: p.ID}, nil
	}
	return domain.VolumeTarget{}, nil
}

func (a *Arbiter) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.generation || a.pending == nil {
		a.mu.Unlock()
		return
	}
	percent := a.pending.RequestedPercent
	a.pending = nil
	a.timer = nil
	a.sent = true
	a.lastSent = percent
	a.lastSentAt = a.clock.Now()
	a.mu.Unlock()

	a.dispatch(percent)
}

// dispatch sends percent to the exclusive target; failures are logged without fallback
func (a *Arbiter) dispatch(percent int) {
	target, backend := a.resolve()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
	defer cancel()

	var err error
	switch {
	case backend != nil:
		err = backend.SetVolume(ctx, percent)
	case target.Kind == domain.TargetRemotePlayer:
		err = a.gateway.SetVolume(ctx, target.Handle, percent)
	default:
		a.logger.Debug("No volume target, local state only", zap.Int("percent", percent))
		return
	}

	if err != nil {
		a.logger.Warn("Volume change failed",
			zap.String("target", string(target.Kind)),
			zap.String("handle", target.Handle),
			zap.Int("percent", percent),
			zap.Error(err))
		return
	}
	a.logger.Debug("Volume dispatched",
		zap.String("target", string(target.Kind)),
		zap.Int("percent", percent))
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
