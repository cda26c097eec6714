package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoActivePlayer is returned when a command needs a selected player
	ErrNoActivePlayer = errors.New("no active player")
	// ErrPlayerDisabled is returned when the target player is disabled by the user
	ErrPlayerDisabled = errors.New("player is disabled")
	// ErrUnknownPlayer is returned for ids the registry has never seen
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrDuplicateRequest is returned when a load request is dropped by the re-entrancy guard
	ErrDuplicateRequest = errors.New("duplicate request dropped")
	// ErrNotConfigured is returned by backends without the configuration they need
	ErrNotConfigured = errors.New("backend not configured")
)

// Gateway is the command/status client of the authoritative media server
//
//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/zonesync/internal/domain Gateway,VolumeBackend,Store,Fetcher,Processor
type Gateway interface {
	// ListPlayers enumerates every player known to the server
	ListPlayers(ctx context.Context) ([]Player, error)

	// Status fetches the transport, volume and playlist snapshot of a player
	Status(ctx context.Context, playerID string) (*Status, error)

	// Transport
	Play(ctx context.Context, playerID string) error
	Pause(ctx context.Context, playerID string) error
	Resume(ctx context.Context, playerID string) error
	Next(ctx context.Context, playerID string) error
	Previous(ctx context.Context, playerID string) error
	Seek(ctx context.Context, playerID string, seconds float64) error
	SetVolume(ctx context.Context, playerID string, percent int) error

	// Playlist
	PlayIndex(ctx context.Context, playerID string, index int) error
	PlaylistAdd(ctx context.Context, playerID string, ref string) error
	PlaylistDelete(ctx context.Context, playerID string, index int) error
	PlaylistMove(ctx context.Context, playerID string, from, to int) error
	PlaylistClear(ctx context.Context, playerID string) error
	LoadTracks(ctx context.Context, playerID string, refs []string) error
	PlayTrack(ctx context.Context, playerID string, ref string) error
	PlayURL(ctx context.Context, playerID string, uri string) error
	SetShuffle(ctx context.Context, playerID string, enabled bool) error
	SetRepeat(ctx context.Context, playerID string, mode RepeatMode) error

	// SetPref forwards a player preference (crossfade, replay gain, ...) untouched
	SetPref(ctx context.Context, playerID, name, value string) error

	// Favorites lists the favourite radio stations
	Favorites(ctx context.Context) ([]RadioStation, error)
}

// VolumeBackend is a secondary volume control (hardware DAC, external audio core)
type VolumeBackend interface {
	// Name identifies the backend in configuration and logs
	Name() string

	// Kind is the volume target this backend represents
	Kind() VolumeTargetKind

	// Handle is the backend-specific address (IP, zone handle)
	Handle() string

	// IsConfigured reports whether the backend has the settings it needs
	IsConfigured() bool

	// IsEnabled reports whether the backend currently claims the volume control
	IsEnabled() bool

	// GetVolume reads the backend volume in percent
	GetVolume(ctx context.Context) (int, error)

	// SetVolume writes the backend volume in percent
	SetVolume(ctx context.Context, percent int) error
}

// Store is an opaque durable key-value store
type Store interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value for key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// Fetcher downloads artwork by reference
type Fetcher interface {
	// Fetch resolves ref (absolute URL or server-relative path) and returns the image bytes
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Processor turns downloaded artwork into cached files
type Processor interface {
	// Generate writes the cover thumbnail and backdrop for ref and returns their paths
	Generate(data []byte, ref string) (Artwork, error)

	// Cached returns previously generated artwork for ref
	Cached(ref string) (Artwork, bool)
}

// Clock provides the current time so time windows can be tested
type Clock interface {
	Now() time.Time
}
