package providers

import (
	"github.com/samber/do/v2"

	"github.com/recipebox/recipebox-server/internal/logger"
	"github.com/recipebox/recipebox-server/internal/metrics"
	"github.com/recipebox/recipebox-server/internal/service"
)

// ProvideMetrics provides the Prometheus metrics registry.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := []service.RecipeServiceOption{
		service.WithEvents(sseHandle.Manager),
		service.WithMetrics(m),
	}
	if indexHandle.Index != nil {
		opts = append(opts, service.WithSearchIndex(indexHandle.Index))
	}

	return service.NewRecipeService(storeHandle.RecipeStore, log.WithComponent("recipes").Logger, opts...), nil
}
