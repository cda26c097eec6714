package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

// JSONRPCPort is the media server's web port; the CLI service only advertises the host
const JSONRPCPort = 9000

// ErrNotFound is returned when no server answered within the discovery timeout
var ErrNotFound = errors.New("no media server found")

// Browser abstracts mDNS browsing so discovery can be tested without a network
type Browser interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// Discoverer looks up the media server on the local network
type Discoverer struct {
	logger  *zap.Logger
	cfg     config.GatewayConfig
	browser Browser
}

// New creates a discoverer backed by a zeroconf resolver
func New(logger *zap.Logger, cfg *config.AppConfig) (*Discoverer, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resolver: %w", err)
	}
	return newWithBrowser(logger, cfg.Gateway, resolver), nil
}

func newWithBrowser(logger *zap.Logger, cfg config.GatewayConfig, browser Browser) *Discoverer {
	return &Discoverer{
		logger:  logger.Named("discovery"),
		cfg:     cfg,
		browser: browser,
	}
}

// Discover browses for the configured service and returns the base URL of the
// first server with an IPv4 address.
func (d *Discoverer) Discover(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.DiscoveryTimeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan string, 1)

	go func() {
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if entry == nil || len(entry.AddrIPv4) == 0 {
					continue
				}
				url := baseURL(entry.AddrIPv4[0])
				select {
				case found <- url:
					d.logger.Info("Discovered media server",
						zap.String("instance", entry.Instance),
						zap.String("url", url))
					cancel()
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	d.logger.Debug("Browsing for media server",
		zap.String("service", d.cfg.DiscoveryService),
		zap.Duration("timeout", d.cfg.DiscoveryTimeout))

	if err := d.browser.Browse(ctx, d.cfg.DiscoveryService, "local.", entries); err != nil {
		return "", fmt.Errorf("failed to browse for %s: %w", d.cfg.DiscoveryService, err)
	}

	select {
	case url := <-found:
		return url, nil
	case <-ctx.Done():
		select {
		case url := <-found:
			return url, nil
		default:
		}
		return "", ErrNotFound
	}
}

func baseURL(ip net.IP) string {
	return "http://" + net.JoinHostPort(ip.String(), strconv.Itoa(JSONRPCPort))
}
