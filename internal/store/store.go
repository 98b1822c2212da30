// Package store defines the persistence contract for recipes.
//
// Backends live in subpackages: sqlite (default, on disk) and kv (Badger,
// on disk or in memory). Every backend guarantees that a created recipe is
// immediately readable and a deleted recipe is immediately gone.
package store

import (
	"context"

	"github.com/recipebox/recipebox-server/internal/domain"
)

// Backend names accepted by configuration.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// RecipeStore is the record store behind the recipe service.
type RecipeStore interface {
	// CreateRecipe inserts a new recipe. The ID must already be set.
	// Returns ErrAlreadyExists if the ID is taken.
	CreateRecipe(ctx context.Context, r *domain.Recipe) error

	// GetRecipe returns the recipe with the given ID or ErrRecipeNotFound.
	GetRecipe(ctx context.Context, id string) (*domain.Recipe, error)

	// ListRecipes returns all recipes in insertion order. Never nil.
	ListRecipes(ctx context.Context) ([]*domain.Recipe, error)

	// DeleteRecipe removes a recipe. Returns ErrRecipeNotFound if it does not exist.
	DeleteRecipe(ctx context.Context, id string) error

	// CountRecipes returns the number of stored recipes.
	CountRecipes(ctx context.Context) (int, error)

	// Close releases the underlying database.
	Close() error
}
