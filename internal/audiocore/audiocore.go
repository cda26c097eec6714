package audiocore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

const maxResponseSize = 64 * 1024

type volumeResponse struct {
	Success *bool    `json:"success,omitempty"`
	Volume  *float64 `json:"volume"`
	Error   string   `json:"error,omitempty"`
}

type statusResponse struct {
	Connected bool `json:"connected"`
}

// Bridge talks to the external audio core's volume API for a single zone
type Bridge struct {
	logger *zap.Logger
	client *http.Client
	cfg    config.AudioCoreConfig

	mu        sync.RWMutex
	connected bool
	probed    bool
}

// New creates the audio-core bridge
func New(logger *zap.Logger, cfg config.AudioCoreConfig) *Bridge {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Bridge{
		logger: logger.Named("audiocore"),
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
	}
}

func (b *Bridge) Name() string                  { return "audiocore" }
func (b *Bridge) Kind() domain.VolumeTargetKind { return domain.TargetExternalAudioCore }
func (b *Bridge) Handle() string                { return b.cfg.ZoneHandle }

// IsConfigured reports whether both the base URL and the zone handle are set
func (b *Bridge) IsConfigured() bool {
	return b.cfg.BaseURL != "" && b.cfg.ZoneHandle != ""
}

// IsEnabled reports whether the bridge currently owns volume control.
// Before the first probe the connection is assumed according to the policy flag.
func (b *Bridge) IsEnabled() bool {
	if !b.IsConfigured() || !b.cfg.Enabled {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.probed {
		return b.cfg.AssumeConnectedOnProbeFailure
	}
	return b.connected
}

// Connected returns the result of the last probe
func (b *Bridge) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// Probe queries the status endpoint and caches whether the audio core is connected
func (b *Bridge) Probe(ctx context.Context) bool {
	if !b.IsConfigured() {
		return false
	}

	connected, err := b.probe(ctx)
	if err != nil {
		connected = b.cfg.AssumeConnectedOnProbeFailure
		b.logger.Debug("Audio core probe failed",
			zap.Error(err),
			zap.Bool("assumeConnected", connected))
	}

	b.mu.Lock()
	changed := !b.probed || b.connected != connected
	b.connected = connected
	b.probed = true
	b.mu.Unlock()

	if changed {
		b.logger.Info("Audio core connection state", zap.Bool("connected", connected))
	}
	return connected
}

func (b *Bridge) probe(ctx context.Context) (bool, error) {
	var status statusResponse
	if err := b.do(ctx, http.MethodGet, "/api/roon/status", nil, &status); err != nil {
		return false, err
	}
	return status.Connected, nil
}

// GetVolume reads the zone volume
func (b *Bridge) GetVolume(ctx context.Context) (int, error) {
	if !b.IsConfigured() {
		return 0, domain.ErrNotConfigured
	}
	var resp volumeResponse
	path := "/api/roon/volume?zone=" + url.QueryEscape(b.cfg.ZoneHandle)
	if err := b.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	if resp.Volume == nil {
		return 0, fmt.Errorf("response carries no volume")
	}
	return int(*resp.Volume + 0.5), nil
}

// SetVolume sets the absolute zone volume
func (b *Bridge) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	reported, err := b.post(ctx, map[string]any{"zone": b.cfg.ZoneHandle, "value": percent})
	if err != nil {
		return err
	}
	b.logger.Debug("Audio core volume set",
		zap.Int("requested", percent),
		zap.Int("reported", reported))
	return nil
}

func (b *Bridge) post(ctx context.Context, payload map[string]any) (int, error) {
	if !b.IsConfigured() {
		return -1, domain.ErrNotConfigured
	}
	var resp volumeResponse
	if err := b.do(ctx, http.MethodPost, "/api/roon/volume", payload, &resp); err != nil {
		return -1, err
	}
	if resp.Success != nil && !*resp.Success {
		if resp.Error == "" {
			resp.Error = "request rejected"
		}
		return -1, fmt.Errorf("audio core: %s", resp.Error)
	}
	if resp.Volume == nil {
		return -1, nil
	}
	return int(*resp.Volume + 0.5), nil
}

func (b *Bridge) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var _ domain.VolumeBackend = (*Bridge)(nil)
