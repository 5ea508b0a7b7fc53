// Package store is the vendor-config registry: externally authored
// configuration documents persisted in a database so operational
// tooling can install and inspect them. The engine itself persists
// nothing; adapters are constructed from configs read out of here.
//
// Backends register themselves under a kind string from init(), and
// Open selects one by kind. Importing a backend package is what makes
// its kind available.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"numgate/internal/config"
)

// ErrNotFound reports a vendor name with no stored config.
var ErrNotFound = errors.New("store: vendor config not found")

// Config selects and configures a backend.
type Config struct {
	// Kind names a registered backend ("sqlite", "postgres").
	Kind string
	// DSN is passed through to the backend; validation is
	// backend-specific.
	DSN string
}

// Store persists vendor configuration documents keyed by vendor name.
//
// Concurrency:
//   - Implementations are safe for concurrent use.
//
// Errors:
//   - Get returns ErrNotFound (wrapped) for unknown vendors.
//   - Put validates the config before writing; invalid configs are
//     rejected, never stored.
type Store interface {
	Close()

	// Init creates backing tables as needed. Idempotent.
	Init(ctx context.Context) error

	Put(ctx context.Context, cfg *config.VendorConfig) error
	Get(ctx context.Context, name string) (*config.VendorConfig, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

type factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind. Called from backend
// init() functions.
//
// Panics:
//   - If kind is empty, f is nil, or kind is already registered.
//     Duplicate registration is ambiguous backend selection; fail fast.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("store: Register called with empty kind")
	}
	if f == nil {
		panic("store: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("store: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// Open constructs a Store using the registered backend factory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("store: missing kind")
	}

	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("store: unsupported kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}
