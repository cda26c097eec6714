package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"go.uber.org/zap"
)

const _maxImageSize = 10 * 1024 * 1024 // 10 MB

// HTTPFetcher downloads cover art from the media server or the internet
type HTTPFetcher struct {
	logger   *zap.Logger
	client   *http.Client
	baseURL  string
	username string
	password string
}

// NewHTTPFetcher creates a fetcher that resolves relative refs against the media server
func NewHTTPFetcher(logger *zap.Logger, cfg *config.AppConfig) *HTTPFetcher {
	return &HTTPFetcher{
		logger: logger.Named("fetcher"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimRight(cfg.Gateway.URL, "/"),
		username: cfg.Gateway.Username,
		password: cfg.Gateway.Password,
	}
}

// Resolve turns an artwork ref into an absolute URL.
// Server-relative paths such as /music/123/cover.jpg are joined to the server URL.
func (f *HTTPFetcher) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty artwork ref")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if f.baseURL == "" {
		return "", fmt.Errorf("relative artwork ref %q without server URL", ref)
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return f.baseURL + ref, nil
}

// Fetch downloads image data for ref
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := f.Resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "zonesync/1.0")
	if f.username != "" && f.sameHost(target) {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return nil, fmt.Errorf("url is not an image: %s", resp.Header.Get("Content-Type"))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, _maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	f.logger.Debug("Artwork fetched", zap.Int("bytes", len(data)), zap.String("url", target))
	return data, nil
}

// sameHost keeps server credentials away from third-party artwork hosts
func (f *HTTPFetcher) sameHost(target string) bool {
	base, err := url.Parse(f.baseURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.EqualFold(base.Host, u.Host)
}
