// Package kv is the small string key-value persistence used for credentials
// and cached identities.
package kv

import (
	"context"
	"fmt"
)

// Store is a get/set/remove string store. Get reports ok=false for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Config picks a backend. The first non-empty of RedisURL, DatabaseURL and
// Path wins; all empty selects an in-memory store.
type Config struct {
	RedisURL    string
	DatabaseURL string
	Path        string
	// Prefix namespaces keys in shared backends.
	Prefix string
}

// Open creates the store selected by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch {
	case cfg.RedisURL != "":
		s, err := NewRedis(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		return s, nil
	case cfg.DatabaseURL != "":
		s, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	case cfg.Path != "":
		s, err := NewFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return s, nil
	default:
		return NewMemory(), nil
	}
}
