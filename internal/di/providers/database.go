package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/recipebox/recipebox-server/internal/config"
	"github.com/recipebox/recipebox-server/internal/logger"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/store/kv"
	"github.com/recipebox/recipebox-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the recipe store with shutdown capability.
type StoreHandle struct {
	store.RecipeStore
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured store backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := OpenStore(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{RecipeStore: st}, nil
}

// OpenStore opens the backend named by cfg. Shared with the seed command.
func OpenStore(cfg config.StorageConfig, log *logger.Logger) (store.RecipeStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kv.Open(kv.Options{InMemory: true}, log.Logger)

	case config.BackendBadger:
		path := filepath.Join(cfg.DataPath, "badger")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return kv.Open(kv.Options{Path: path}, log.Logger)

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlite.Open(filepath.Join(cfg.DataPath, "recipes.db"), log.Logger)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
