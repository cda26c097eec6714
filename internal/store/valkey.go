package store

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"
)

// ValkeyStore keeps values in a valkey (or redis) server under a key prefix
type ValkeyStore struct {
	logger *zap.Logger
	client valkey.Client
	prefix string
}

// NewValkeyStore connects to the valkey server at addr
func NewValkeyStore(logger *zap.Logger, addr, password, prefix string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", addr, err)
	}

	logger.Info("Connected to valkey", zap.String("addr", addr), zap.String("prefix", prefix))
	return &ValkeyStore{logger: logger, client: client, prefix: prefix}, nil
}

func (s *ValkeyStore) key(k string) string {
	return s.prefix + k
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(s.key(key)).Value(valkey.BinaryString(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.key(key)).Build()).Error(); err != nil {
		return fmt.Errorf("valkey del %s: %w", key, err)
	}
	return nil
}

// Close releases the client connections
func (s *ValkeyStore) Close() {
	s.client.Close()
}
