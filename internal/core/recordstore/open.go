package recordstore

import (
	"fmt"
	"strings"

	"dockload/internal/core/config"
)

// Open builds the Store selected by cfg.Driver, bounded by cfg.Timeout.
func Open(cfg config.StoreConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch strings.ToLower(cfg.Driver) {
	case config.StoreDriverMemory, "":
		store = NewMemoryStore()
	case config.StoreDriverRedis:
		store, err = NewRedisStore(cfg.RedisURL)
	case config.StoreDriverREST:
		store = NewRESTStore(cfg.RESTURL, cfg.RESTAPIKey, cfg.Timeout)
	case config.StoreDriverPostgres:
		store, err = NewPostgresStore(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return WithTimeout(store, cfg.Timeout), nil
}
