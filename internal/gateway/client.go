package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"go.uber.org/zap"
)

const (
	rpcPath         = "/jsonrpc.js"
	rpcMethod       = "slim.request"
	maxResponseSize = 8 * 1024 * 1024
)

type rpcRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcResponse struct {
	ID     int64          `json:"id"`
	Method string         `json:"method"`
	Result map[string]any `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to a Logitech Media Server over its JSON-RPC endpoint
type Client struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
	cfg     config.GatewayConfig
	nextID  atomic.Int64
}

// NewClient creates a gateway client for the server at baseURL (e.g. http://lms:9000)
func NewClient(logger *zap.Logger, baseURL string, cfg config.GatewayConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cfg.PlayerLimit <= 0 {
		cfg.PlayerLimit = 100
	}
	return &Client{
		logger:  logger.Named("gateway"),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		cfg:     cfg,
	}
}

// BaseURL returns the server root used for relative artwork references
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request issues one slim.request call. playerID is empty for server-level queries.
func (c *Client) request(ctx context.Context, playerID string, cmd ...string) (map[string]any, error) {
	args := make([]any, len(cmd))
	for i, a := range cmd {
		args[i] = a
	}

	body, err := json.Marshal(rpcRequest{
		ID:     c.nextID.Add(1),
		Method: rpcMethod,
		Params: []any{playerID, args},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rpcPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "zonesync/1.0")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var out rpcResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("server error %d: %s", out.Error.Code, out.Error.Message)
	}
	if out.Result == nil {
		out.Result = map[string]any{}
	}

	c.logger.Debug("Command completed",
		zap.String("player", playerID),
		zap.Strings("cmd", cmd))
	return out.Result, nil
}

// command issues a request whose result is not needed
func (c *Client) command(ctx context.Context, playerID string, cmd ...string) error {
	if playerID == "" {
		return fmt.Errorf("command %v needs a player id", cmd)
	}
	if _, err := c.request(ctx, playerID, cmd...); err != nil {
		return fmt.Errorf("%s failed: %w", cmd[0], err)
	}
	return nil
}
