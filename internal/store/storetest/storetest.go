// Package storetest holds the behavioral suite every store.RecipeStore backend must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/store"
)

// Factory returns a fresh, empty store. Cleanup is the factory's responsibility.
type Factory func(t *testing.T) store.RecipeStore

// MakeRecipe builds a complete recipe with sensible defaults.
func MakeRecipe(id, name string, createdAt time.Time) *domain.Recipe {
	return &domain.Recipe{
		ID:           id,
		Name:         name,
		Ingredients:  "2 eggs\n1 cup flour",
		Instructions: "Mix and bake.",
		CookTime:     "30 minutes",
		CreatedAt:    createdAt,
	}
}

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newStore(t)) })
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, newStore(t)) })
	t.Run("CreateIncomplete", func(t *testing.T) { testCreateIncomplete(t, newStore(t)) })
	t.Run("GetNotFound", func(t *testing.T) { testGetNotFound(t, newStore(t)) })
	t.Run("ListInsertionOrder", func(t *testing.T) { testListInsertionOrder(t, newStore(t)) })
	t.Run("DeleteThenGet", func(t *testing.T) { testDeleteThenGet(t, newStore(t)) })
	t.Run("DeleteNotFound", func(t *testing.T) { testDeleteNotFound(t, newStore(t)) })
	t.Run("Count", func(t *testing.T) { testCount(t, newStore(t)) })
	t.Run("ConcurrentCreates", func(t *testing.T) { testConcurrentCreates(t, newStore(t)) })
}

func testListEmpty(t *testing.T, s store.RecipeStore) {
	recipes, err := s.ListRecipes(context.Background())
	require.NoError(t, err)
	require.NotNil(t, recipes, "empty list must be non-nil so it encodes as []")
	assert.Empty(t, recipes)
}

func testCreateAndGet(t *testing.T, s store.RecipeStore) {
	ctx := context.Background()
	want := MakeRecipe("rcp-1", "Pancakes", time.Now())

	require.NoError(t, s.CreateRecipe(ctx, want))

	got, err := s.GetRecipe(ctx, "rcp-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Ingredients, got.Ingredients, "line breaks must survive storage")
	assert.Equal(t, want.Instructions, got.Instructions)
	assert.Equal(t, want.CookTime, got.CookTime)
	assert.Equal(t, want.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func testCreateDuplicate(t *testing.T, s store.RecipeStore) {
	ctx := context.Background()
	require.NoError(t, s.CreateRecipe(ctx, MakeRecipe("rcp-dup", "First", time.Now())))

	err := s.CreateRecipe(ctx, MakeRecipe("rcp-dup", "Second", time.Now()))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.GetRecipe(ctx, "rcp-dup")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
}

func testCreateIncomplete(t *testing.T, s store.RecipeStore) {
	ctx := context.Background()

	r := MakeRecipe("rcp-incomplete", "Toast", time.Now())
	r.CookTime = ""

	err := s.CreateRecipe(ctx, r)
	require.ErrorIs(t, err, store.ErrIncompleteRecipe)

	n, err := s.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testGetNotFound(t *testing.T, s store.RecipeStore) {
	_, err := s.GetRecipe(context.Background(), "999")
	assert.ErrorIs(t, err, store.ErrRecipeNotFound)
}

func testListInsertionOrder(t *testing.T, s store.RecipeStore) {
	ctx := context.Background()
	base := time.Now()

	names := []string{"Zucchini Bread", "Apple Pie", "Miso Soup"}
	for i, name := range names {
		r := MakeRecipe(fmt.Sprintf("rcp-%c", 'z'-i), name, base.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, s.CreateRecipe(ctx, r))
	}

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, len(names))
	for i, r := range recipes {
		assert.Equal(t, names[i], r.Name)
	}
}

func testDeleteThenGet(t *testing.T, s store.RecipeStore) {
	ctx := context.Background()
	require.NoError(t, s.CreateRecipe(ctx, MakeRecipe("rcp-del", "Toast", time.Now())))

	require.NoError(t, s.DeleteRecipe(ctx, "rcp-del"))

	_, err := s.GetRecipe(ctx, "rcp-del")
	assert.ErrorIs(t, err, store.ErrRecipeNotFound)

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func testDeleteNotFound(t *testing.T, s store.RecipeStore) {
	err := s.DeleteRecipe(context.Background(), "999")
	assert.ErrorIs(t, err, store.ErrRecipeNotFound)
}

func testCount(t *testing.T, s store.RecipeStore) {
	ctx := context.Background()

	n, err := s.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.CreateRecipe(ctx, MakeRecipe("rcp-a", "A", time.Now())))
	require.NoError(t, s.CreateRecipe(ctx, MakeRecipe("rcp-b", "B", time.Now())))

	n, err = s.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func testConcurrentCreates(t *testing.T, s store.RecipeStore) {
	ctx := context.Background()
	const workers = 16

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Go(func() {
			r := MakeRecipe(fmt.Sprintf("rcp-c%02d", i), fmt.Sprintf("Recipe %d", i), time.Now())
			errs <- s.CreateRecipe(ctx, r)
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	n, err := s.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, n)
}
