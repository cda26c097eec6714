package store

import (
	"fmt"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

// New builds the store selected by configuration
func New(logger *zap.Logger, cfg *config.AppConfig) (domain.Store, error) {
	logger = logger.Named("store")

	switch cfg.Store.Backend {
	case "", "file":
		path := cfg.Store.FilePath
		if path == "" {
			path = DefaultFilePath()
		}
		return NewFileStore(logger, path)
	case "valkey":
		if cfg.Store.ValkeyAddr == "" {
			return nil, fmt.Errorf("valkey store selected but no address configured")
		}
		return NewValkeyStore(logger, cfg.Store.ValkeyAddr, cfg.Store.ValkeyPassword, cfg.Store.ValkeyPrefix)
	case "memory":
		logger.Warn("Using in-memory store, state will not survive restarts")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
