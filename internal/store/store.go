package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/genricoloni/zonesync/internal/domain"
)

// Keys used by the daemon
const (
	KeyActivePlayer     = "active_player"
	KeyZones            = "zones"
	KeyDisabledPlayers  = "disabled_players"
	KeyPlaybackSnapshot = "playback_snapshot"
	KeyHistory          = "history"
)

// GetJSON decodes the value stored under key into v.
// It reports false without error when the key does not exist.
func GetJSON(ctx context.Context, s domain.Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s domain.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
