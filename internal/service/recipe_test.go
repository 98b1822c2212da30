package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/store/kv"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (e *recordingEmitter) Emit(event sse.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) types() []sse.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sse.EventType, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

type countingRecorder struct {
	created, deleted int
}

func (c *countingRecorder) RecipeCreated() { c.created++ }
func (c *countingRecorder) RecipeDeleted() { c.deleted++ }

type testEnv struct {
	svc     *RecipeService
	store   store.RecipeStore
	index   *search.Index
	events  *recordingEmitter
	metrics *countingRecorder
}

// setupTestService wires the service to an in-memory store and index.
func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	st, err := kv.Open(kv.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewIndex(search.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	env := &testEnv{
		store:   st,
		index:   index,
		events:  &recordingEmitter{},
		metrics: &countingRecorder{},
	}
	env.svc = NewRecipeService(st, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithSearchIndex(index),
		WithEvents(env.events),
		WithMetrics(env.metrics),
	)
	return env
}

func validRequest() CreateRecipeRequest {
	return CreateRecipeRequest{
		Name:         "Test Recipe",
		Ingredients:  "Test ingredients",
		Instructions: "Test instructions",
		CookTime:     "30 minutes",
	}
}

func TestRecipeService_ListRecipes_Empty(t *testing.T) {
	env := setupTestService(t)

	recipes, err := env.svc.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestRecipeService_CreateRecipe(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return fixed }

	r, err := env.svc.CreateRecipe(ctx, validRequest())
	require.NoError(t, err)

	assert.Regexp(t, `^rcp-[A-Za-z0-9_-]{21}$`, r.ID)
	assert.Equal(t, "Test Recipe", r.Name)
	assert.Equal(t, "Test ingredients", r.Ingredients)
	assert.Equal(t, "Test instructions", r.Instructions)
	assert.Equal(t, "30 minutes", r.CookTime)
	assert.Equal(t, fixed, r.CreatedAt)

	stored, err := env.store.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Name, stored.Name)

	assert.Equal(t, []sse.EventType{sse.EventRecipeCreated}, env.events.types())
	assert.Equal(t, 1, env.metrics.created)
}

func TestRecipeService_CreateRecipe_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRecipeRequest)
	}{
		{name: "all empty", mutate: func(r *CreateRecipeRequest) { *r = CreateRecipeRequest{} }},
		{name: "no name", mutate: func(r *CreateRecipeRequest) { r.Name = "" }},
		{name: "no ingredients", mutate: func(r *CreateRecipeRequest) { r.Ingredients = "" }},
		{name: "no instructions", mutate: func(r *CreateRecipeRequest) { r.Instructions = "" }},
		{name: "no cook time", mutate: func(r *CreateRecipeRequest) { r.CookTime = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestService(t)
			ctx := context.Background()

			req := validRequest()
			tt.mutate(&req)

			_, err := env.svc.CreateRecipe(ctx, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.Validation(""))
			assert.Equal(t, MsgAllFieldsRequired, err.Error())

			n, err := env.store.CountRecipes(ctx)
			require.NoError(t, err)
			assert.Zero(t, n, "nothing may be written on validation failure")
			assert.Empty(t, env.events.types())
		})
	}
}

func TestRecipeService_CreateRecipe_FieldDetails(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.CreateRecipe(context.Background(), CreateRecipeRequest{Name: "Only a name"})

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	details, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"ingredients":  "is required",
		"instructions": "is required",
		"cookTime":     "is required",
	}, details)
}

func TestRecipeService_CreateRecipe_WhitespaceAccepted(t *testing.T) {
	env := setupTestService(t)

	req := validRequest()
	req.CookTime = " "

	r, err := env.svc.CreateRecipe(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, " ", r.CookTime)
}

func TestRecipeService_GetRecipe(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	created, err := env.svc.CreateRecipe(ctx, validRequest())
	require.NoError(t, err)

	got, err := env.svc.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
}

func TestRecipeService_GetRecipe_NotFound(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.GetRecipe(context.Background(), "999")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.NotFound(""))
	assert.Contains(t, err.Error(), MsgRecipeNotFound)
}

func TestRecipeService_DeleteRecipe(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	created, err := env.svc.CreateRecipe(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteRecipe(ctx, created.ID))

	_, err = env.svc.GetRecipe(ctx, created.ID)
	assert.ErrorIs(t, err, domainerrors.NotFound(""))

	assert.Equal(t, []sse.EventType{sse.EventRecipeCreated, sse.EventRecipeDeleted}, env.events.types())
	assert.Equal(t, 1, env.metrics.deleted)

	err = env.svc.DeleteRecipe(ctx, created.ID)
	assert.ErrorIs(t, err, domainerrors.NotFound(""), "second delete is a not-found")
}

func TestRecipeService_DeleteRecipe_NotFound(t *testing.T) {
	env := setupTestService(t)

	err := env.svc.DeleteRecipe(context.Background(), "999")
	assert.ErrorIs(t, err, domainerrors.NotFound(""))
	assert.Empty(t, env.events.types())
	assert.Zero(t, env.metrics.deleted)
}

func TestRecipeService_ListRecipes_InsertionOrder(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Soup", "Bread", "Salad"} {
		req := validRequest()
		req.Name = name
		_, err := env.svc.CreateRecipe(ctx, req)
		require.NoError(t, err)
	}

	recipes, err := env.svc.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	assert.Equal(t, "Soup", recipes[0].Name)
	assert.Equal(t, "Bread", recipes[1].Name)
	assert.Equal(t, "Salad", recipes[2].Name)
}

func TestRecipeService_SearchRecipes(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	req := validRequest()
	req.Name = "Crème Brûlée"
	brulee, err := env.svc.CreateRecipe(ctx, req)
	require.NoError(t, err)

	req.Name = "Lentil Stew"
	stew, err := env.svc.CreateRecipe(ctx, req)
	require.NoError(t, err)

	found, err := env.svc.SearchRecipes(ctx, "creme brulee", 10)
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, brulee.ID, found[0].ID)

	require.NoError(t, env.svc.DeleteRecipe(ctx, stew.ID))
	found, err = env.svc.SearchRecipes(ctx, "lentil", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRecipeService_SearchRecipes_SkipsStaleHits(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	ghost := &domain.Recipe{ID: "rcp-ghost", Name: "Ghost Pepper Salsa", Ingredients: "peppers", Instructions: "Chop.", CookTime: "5 minutes"}
	require.NoError(t, env.index.IndexRecipe(ghost))

	found, err := env.svc.SearchRecipes(ctx, "salsa", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRecipeService_SearchRecipes_EmptyQuery(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.SearchRecipes(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, domainerrors.Validation(""))
	assert.EqualError(t, err, MsgQueryRequired)
}

func TestRecipeService_SearchRecipes_Disabled(t *testing.T) {
	st, err := kv.Open(kv.Options{InMemory: true}, nil)
	require.NoError(t, err)
	defer st.Close()

	svc := NewRecipeService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, svc.SearchEnabled())

	_, err = svc.SearchRecipes(context.Background(), "soup", 10)
	assert.ErrorIs(t, err, domainerrors.Unavailable(""))
	assert.NoError(t, svc.RebuildSearchIndex(context.Background()))
}

func TestRecipeService_RebuildSearchIndex(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	r := &domain.Recipe{ID: "rcp-seeded", Name: "Focaccia", Ingredients: "flour, olive oil", Instructions: "Proof and bake.", CookTime: "2 hours", CreatedAt: time.Now()}
	require.NoError(t, env.store.CreateRecipe(ctx, r))

	found, err := env.svc.SearchRecipes(ctx, "focaccia", 10)
	require.NoError(t, err)
	assert.Empty(t, found, "written behind the service's back")

	require.NoError(t, env.svc.RebuildSearchIndex(ctx))

	found, err = env.svc.SearchRecipes(ctx, "focaccia", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "rcp-seeded", found[0].ID)
}
