package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/notify"
	"github.com/genricoloni/zonesync/internal/store"
	"go.uber.org/zap"
)

const localZoneName = "This device"

// persistedPlayer is the active-player record kept in the store
type persistedPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Registry tracks known players, the user-disabled set and the active selection
type Registry struct {
	logger  *zap.Logger
	gateway domain.Gateway
	store   domain.Store
	timeout time.Duration

	mu        sync.RWMutex
	players   []domain.Player
	enabled   []domain.Player
	disabled  map[string]bool
	activeID  string
	preferred string // persisted selection, may be dormant
	volumes   map[string]int
	listeners []func(playerID string)
	changes   *notify.Broadcaster
}

// New creates an empty registry; call Load before the first Refresh
func New(logger *zap.Logger, cfg *config.AppConfig, gateway domain.Gateway, st domain.Store) *Registry {
	return &Registry{
		logger:   logger.Named("registry"),
		gateway:  gateway,
		store:    st,
		timeout:  cfg.Gateway.Timeout,
		disabled: make(map[string]bool),
		volumes:  make(map[string]int),
		changes:  notify.NewBroadcaster(logger.Named("registry")),
	}
}

// OnActiveChange registers fn to be called after the active selection changes
// or is re-confirmed. fn receives "" when nothing is active and domain.LocalZoneID in local mode.
func (r *Registry) OnActiveChange(fn func(playerID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Changes subscribes to player and zone list changes
func (r *Registry) Changes() (<-chan struct{}, func()) {
	return r.changes.Subscribe()
}

// Load restores the disabled set and the persisted selection.
// The persisted player is only a preference until a refresh confirms it.
func (r *Registry) Load(ctx context.Context) error {
	var disabled []string
	if _, err := store.GetJSON(ctx, r.store, store.KeyDisabledPlayers, &disabled); err != nil {
		return err
	}

	var active persistedPlayer
	if _, err := store.GetJSON(ctx, r.store, store.KeyActivePlayer, &active); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range disabled {
		r.disabled[id] = true
	}
	r.preferred = active.ID

	r.logger.Info("Registry loaded",
		zap.Int("disabled", len(disabled)),
		zap.String("preferred", active.ID))
	return nil
}

// Refresh lists the players and reconciles the active selection.
// A gateway error leaves the current selection untouched.
func (r *Registry) Refresh(ctx context.Context) error {
	listCtx, cancel := context.WithTimeout(ctx, r.timeout)
	players, err := r.gateway.ListPlayers(listCtx)
	cancel()
	if err != nil {
		r.logger.Warn("Failed to refresh players, keeping current selection", zap.Error(err))
		return fmt.Errorf("failed to list players: %w", err)
	}

	r.mu.Lock()
	prev := r.activeID

	for i := range players {
		if v, ok := r.volumes[players[i].ID]; ok && players[i].VolumePercent == 0 {
			players[i].VolumePercent = v
		}
		r.volumes[players[i].ID] = players[i].VolumePercent
	}

	enabled := make([]domain.Player, 0, len(players))
	for _, p := range players {
		if !r.disabled[p.ID] {
			enabled = append(enabled, p)
		}
	}
	r.players = players
	r.enabled = enabled

	persistActive := false
	switch {
	case r.activeID == domain.LocalZoneID:
	case r.activeID != "" && r.findEnabled(r.activeID) < 0:
		// Gone from a successful listing; the preference stays dormant
		r.logger.Info("Active player no longer available", zap.String("player", r.activeID))
		r.activeID = ""
	}

	if r.activeID == "" {
		switch {
		case r.preferred == domain.LocalZoneID:
			r.activeID = domain.LocalZoneID
		case r.preferred != "":
			if r.findEnabled(r.preferred) >= 0 {
				r.activeID = r.preferred
			} else {
				r.logger.Debug("Persisted player not available, keeping preference",
					zap.String("player", r.preferred))
			}
		case len(enabled) > 0:
			r.activeID = enabled[0].ID
			r.preferred = enabled[0].ID
			persistActive = true
			r.logger.Info("Auto-selected first enabled player",
				zap.String("player", enabled[0].ID),
				zap.String("name", enabled[0].Name))
		}
	}

	next := r.activeID
	zones := r.zonesLocked()
	activeRecord := r.activeRecordLocked()
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	r.logger.Debug("Players refreshed",
		zap.Int("total", len(players)),
		zap.Int("enabled", len(enabled)),
		zap.String("active", next))

	if err := store.SetJSON(ctx, r.store, store.KeyZones, zones); err != nil {
		r.logger.Warn("Failed to persist zones", zap.Error(err))
	}
	if persistActive {
		if err := store.SetJSON(ctx, r.store, store.KeyActivePlayer, activeRecord); err != nil {
			r.logger.Warn("Failed to persist active player", zap.Error(err))
		}
	}

	r.changes.Notify()
	if next != prev {
		notifyListeners(listeners, next)
	}
	return nil
}

// SetActive selects a player. Disabled players are refused without any change.
func (r *Registry) SetActive(ctx context.Context, playerID string) error {
	r.mu.Lock()
	if r.disabled[playerID] {
		r.mu.Unlock()
		r.logger.Warn("Refusing to select disabled player", zap.String("player", playerID))
		return domain.ErrPlayerDisabled
	}
	if r.findEnabled(playerID) < 0 {
		r.mu.Unlock()
		r.logger.Warn("Refusing to select unknown player", zap.String("player", playerID))
		return domain.ErrUnknownPlayer
	}

	r.activeID = playerID
	r.preferred = playerID
	record := r.activeRecordLocked()
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	r.logger.Info("Active player selected", zap.String("player", playerID), zap.String("name", record.Name))

	if err := store.SetJSON(ctx, r.store, store.KeyActivePlayer, record); err != nil {
		r.logger.Warn("Failed to persist active player", zap.Error(err))
	}

	r.changes.Notify()
	notifyListeners(listeners, playerID)
	return nil
}

// SelectLocal switches to the local-only pseudo-zone
func (r *Registry) SelectLocal(ctx context.Context) error {
	r.mu.Lock()
	r.activeID = domain.LocalZoneID
	r.preferred = domain.LocalZoneID
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	r.logger.Info("Local zone selected")

	if err := store.SetJSON(ctx, r.store, store.KeyActivePlayer, persistedPlayer{ID: domain.LocalZoneID}); err != nil {
		r.logger.Warn("Failed to persist active player", zap.Error(err))
	}

	r.changes.Notify()
	notifyListeners(listeners, domain.LocalZoneID)
	return nil
}

// ToggleDisabled flips the disabled flag of a player and refreshes.
// Disabling the active player clears the selection and its persisted preference.
func (r *Registry) ToggleDisabled(ctx context.Context, playerID string) error {
	r.mu.Lock()
	nowDisabled := !r.disabled[playerID]
	if nowDisabled {
		r.disabled[playerID] = true
	} else {
		delete(r.disabled, playerID)
	}
	ids := r.disabledIDsLocked()

	clearedActive := nowDisabled && r.activeID == playerID
	if clearedActive {
		r.activeID = ""
		r.preferred = ""
	}
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	r.logger.Info("Player disabled flag toggled",
		zap.String("player", playerID),
		zap.Bool("disabled", nowDisabled),
		zap.Bool("wasActive", clearedActive))

	if err := store.SetJSON(ctx, r.store, store.KeyDisabledPlayers, ids); err != nil {
		r.logger.Warn("Failed to persist disabled players", zap.Error(err))
	}
	if clearedActive {
		if err := r.store.Delete(ctx, store.KeyActivePlayer); err != nil {
			r.logger.Warn("Failed to clear persisted active player", zap.Error(err))
		}
		notifyListeners(listeners, "")
	}

	// The refresh error is already logged; the toggle itself succeeded
	_ = r.Refresh(ctx)
	return nil
}

// Active returns the active remote player; false in local mode or before selection
func (r *Registry) Active() (domain.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeID == "" || r.activeID == domain.LocalZoneID {
		return domain.Player{}, false
	}
	if i := r.findPlayer(r.activeID); i >= 0 {
		return r.players[i], true
	}
	return domain.Player{ID: r.activeID}, true
}

// ActiveZoneID returns the active zone id, domain.LocalZoneID in local mode, or ""
func (r *Registry) ActiveZoneID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// IsDisabled reports whether the user disabled the player
func (r *Registry) IsDisabled(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disabled[playerID]
}

// Players returns every known player, including disabled ones
func (r *Registry) Players() []domain.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Player{}, r.players...)
}

// EnabledPlayers returns the players that may be selected
func (r *Registry) EnabledPlayers() []domain.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Player{}, r.enabled...)
}

// Zones projects the enabled players plus the local pseudo-zone
func (r *Registry) Zones() []domain.Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.zonesLocked()
}

// SetPlayerVolume records the displayed volume of a zone
func (r *Registry) SetPlayerVolume(playerID string, percent int) {
	r.mu.Lock()
	if r.volumes[playerID] == percent {
		r.mu.Unlock()
		return
	}
	r.volumes[playerID] = percent
	if i := r.findPlayer(playerID); i >= 0 {
		r.players[i].VolumePercent = percent
	}
	if i := r.findEnabled(playerID); i >= 0 {
		r.enabled[i].VolumePercent = percent
	}
	r.mu.Unlock()

	r.changes.Notify()
}

func (r *Registry) zonesLocked() []domain.Zone {
	zones := make([]domain.Zone, 0, len(r.enabled)+1)
	for _, p := range r.enabled {
		zones = append(zones, domain.Zone{
			ID:     p.ID,
			Name:   p.Name,
			Kind:   domain.ZoneKindPlayer,
			Active: p.ID == r.activeID,
			Volume: float64(r.volumes[p.ID]) / 100,
		})
	}
	zones = append(zones, domain.Zone{
		ID:     domain.LocalZoneID,
		Name:   localZoneName,
		Kind:   domain.ZoneKindLocal,
		Active: r.activeID == domain.LocalZoneID,
		Volume: float64(r.volumes[domain.LocalZoneID]) / 100,
	})
	return zones
}

func (r *Registry) activeRecordLocked() persistedPlayer {
	rec := persistedPlayer{ID: r.activeID}
	if i := r.findPlayer(r.activeID); i >= 0 {
		rec.Name = r.players[i].Name
	}
	return rec
}

func (r *Registry) disabledIDsLocked() []string {
	ids := make([]string, 0, len(r.disabled))
	for id := range r.disabled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) findPlayer(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) findEnabled(id string) int {
	for i, p := range r.enabled {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func notifyListeners(listeners []func(string), playerID string) {
	for _, fn := range listeners {
		fn(playerID)
	}
}
