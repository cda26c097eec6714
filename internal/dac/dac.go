package dac

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

const (
	renderingControl = "urn:schemas-upnp-org:service:RenderingControl:1"
	maxResponseSize  = 64 * 1024
)

// envelope is a SOAP response; element names match regardless of namespace prefix
type envelope struct {
	Body struct {
		GetVolume struct {
			CurrentVolume string `xml:"CurrentVolume"`
		} `xml:"GetVolumeResponse"`
		Fault *struct {
			FaultString string `xml:"faultstring"`
			Detail      string `xml:"detail>UPnPError>errorDescription"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// Backend controls a network DAC through the UPnP RenderingControl service
type Backend struct {
	logger   *zap.Logger
	client   *http.Client
	endpoint string
	address  string
}

// New creates the DAC backend; it reports itself unconfigured when no address is set
func New(logger *zap.Logger, cfg config.DACConfig) *Backend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}

	b := &Backend{
		logger:  logger.Named("dac"),
		client:  &http.Client{Timeout: timeout},
		address: cfg.Address,
	}
	if cfg.Address != "" {
		base := cfg.Address
		if !strings.Contains(base, "://") {
			base = "http://" + base
		}
		path := cfg.ControlPath
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		b.endpoint = strings.TrimRight(base, "/") + path
	}
	return b
}

func (b *Backend) Name() string                  { return "dac" }
func (b *Backend) Kind() domain.VolumeTargetKind { return domain.TargetHardwareDAC }
func (b *Backend) Handle() string                { return b.address }

// IsConfigured reports whether a DAC address is set
func (b *Backend) IsConfigured() bool {
	return b.endpoint != ""
}

// IsEnabled is the same as IsConfigured; the DAC has no separate switch
func (b *Backend) IsEnabled() bool {
	return b.IsConfigured()
}

// GetVolume reads the Master channel volume
func (b *Backend) GetVolume(ctx context.Context) (int, error) {
	env, err := b.call(ctx, "GetVolume", "")
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(env.Body.GetVolume.CurrentVolume))
	if err != nil {
		return 0, fmt.Errorf("invalid CurrentVolume %q: %w", env.Body.GetVolume.CurrentVolume, err)
	}
	return v, nil
}

// SetVolume writes the Master channel volume
func (b *Backend) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	_, err := b.call(ctx, "SetVolume", "<DesiredVolume>"+strconv.Itoa(percent)+"</DesiredVolume>")
	if err == nil {
		b.logger.Debug("DAC volume set", zap.Int("percent", percent))
	}
	return err
}

func (b *Backend) call(ctx context.Context, action, extraArgs string) (*envelope, error) {
	if !b.IsConfigured() {
		return nil, domain.ErrNotConfigured
	}

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	body.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body>`)
	fmt.Fprintf(&body, `<u:%s xmlns:u="%s"><InstanceID>0</InstanceID><Channel>Master</Channel>%s</u:%s>`,
		action, renderingControl, extraArgs, action)
	body.WriteString(`</s:Body></s:Envelope>`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf(`"%s#%s"`, renderingControl, action))

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var env envelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response (status %d): %w", action, resp.StatusCode, err)
	}
	if env.Body.Fault != nil {
		msg := env.Body.Fault.Detail
		if msg == "" {
			msg = env.Body.Fault.FaultString
		}
		return nil, fmt.Errorf("%s fault: %s", action, msg)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return &env, nil
}

var _ domain.VolumeBackend = (*Backend)(nil)
