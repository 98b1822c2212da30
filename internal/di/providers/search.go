package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/recipebox/recipebox-server/internal/config"
	"github.com/recipebox/recipebox-server/internal/logger"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Index is nil when search is disabled.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
// The index lives in memory when the store does.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled by configuration")
		return &SearchIndexHandle{}, nil
	}

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Storage.DataPath,
		InMemory: cfg.Storage.Backend == config.BackendMemory,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// RebuildSearchIndex repopulates the index from the store.
// Should be called after all services are wired.
func RebuildSearchIndex(i do.Injector) {
	recipes := do.MustInvoke[*service.RecipeService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !recipes.SearchEnabled() {
		return
	}

	if err := recipes.RebuildSearchIndex(context.Background()); err != nil {
		log.WithError(err).Error("Initial search reindex failed")
		return
	}

	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	count, _ := indexHandle.DocumentCount()
	log.Info("Initial search reindex completed", "documents", count)
}
