// Package service holds the business operations behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/id"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// Client-facing messages.
const (
	MsgAllFieldsRequired = "All fields are required"
	MsgRecipeNotFound    = "Recipe not found"
	MsgQueryRequired     = "Search query is required"
	MsgSearchDisabled    = "Search is disabled"
)

// maxIDAttempts bounds retries when a generated id is already taken.
const maxIDAttempts = 3

// RecipeIndex is the full-text index kept in step with the store.
type RecipeIndex interface {
	IndexRecipe(r *domain.Recipe) error
	DeleteRecipe(id string) error
	Search(ctx context.Context, text string, limit int) ([]search.Hit, error)
	Reindex(recipes []*domain.Recipe) error
}

// EventEmitter broadcasts change events to live clients.
type EventEmitter interface {
	Emit(event sse.Event)
}

// Recorder counts recipe mutations.
type Recorder interface {
	RecipeCreated()
	RecipeDeleted()
}

// CreateRecipeRequest is the input to CreateRecipe.
type CreateRecipeRequest struct {
	Name         string `json:"name" validate:"required"`
	Ingredients  string `json:"ingredients" validate:"required"`
	Instructions string `json:"instructions" validate:"required"`
	CookTime     string `json:"cookTime" validate:"required"`
}

// RecipeService orchestrates recipe operations.
//
// The store is the source of truth. Index and event updates happen after a
// successful write and their failures are logged, never returned.
type RecipeService struct {
	store     store.RecipeStore
	index     RecipeIndex
	events    EventEmitter
	metrics   Recorder
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// RecipeServiceOption configures optional collaborators.
type RecipeServiceOption func(*RecipeService)

// WithSearchIndex enables full-text search.
func WithSearchIndex(index RecipeIndex) RecipeServiceOption {
	return func(s *RecipeService) { s.index = index }
}

// WithEvents enables change broadcasting.
func WithEvents(events EventEmitter) RecipeServiceOption {
	return func(s *RecipeService) { s.events = events }
}

// WithMetrics enables mutation counters.
func WithMetrics(m Recorder) RecipeServiceOption {
	return func(s *RecipeService) { s.metrics = m }
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(st store.RecipeStore, logger *slog.Logger, opts ...RecipeServiceOption) *RecipeService {
	s := &RecipeService{
		store:     st,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchEnabled reports whether a search index is attached.
func (s *RecipeService) SearchEnabled() bool {
	return s.index != nil
}

// ListRecipes returns every recipe in insertion order. Never nil.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if recipes == nil {
		recipes = []*domain.Recipe{}
	}
	return recipes, nil
}

// CreateRecipe validates and stores a new recipe.
// Any empty field yields a validation error and nothing is written.
func (s *RecipeService) CreateRecipe(ctx context.Context, req CreateRecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.ValidateWithMessage(req, MsgAllFieldsRequired); err != nil {
		return nil, err
	}

	r := &domain.Recipe{
		Name:         req.Name,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		CookTime:     req.CookTime,
		CreatedAt:    s.now().UTC(),
	}

	var err error
	for range maxIDAttempts {
		r.ID, err = id.Generate(id.RecipePrefix)
		if err != nil {
			return nil, fmt.Errorf("generate recipe id: %w", err)
		}

		err = s.store.CreateRecipe(ctx, r)
		if !errors.Is(err, store.ErrAlreadyExists) {
			break
		}
		s.logger.Warn("recipe id collision, retrying", "id", r.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	s.logger.Info("recipe created", "id", r.ID, "name", r.Name)

	if s.index != nil {
		if err := s.index.IndexRecipe(r); err != nil {
			s.logger.Warn("failed to index recipe", "id", r.ID, "error", err)
		}
	}
	if s.events != nil {
		s.events.Emit(sse.NewRecipeCreatedEvent(r))
	}
	if s.metrics != nil {
		s.metrics.RecipeCreated()
	}

	return r, nil
}

// GetRecipe returns a recipe by id.
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, recipeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound(MsgRecipeNotFound).WithCause(err)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %s: %w", recipeID, err)
	}
	return r, nil
}

// DeleteRecipe removes a recipe by id.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID string) error {
	err := s.store.DeleteRecipe(ctx, recipeID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(MsgRecipeNotFound).WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", recipeID, err)
	}

	s.logger.Info("recipe deleted", "id", recipeID)

	if s.index != nil {
		if err := s.index.DeleteRecipe(recipeID); err != nil {
			s.logger.Warn("failed to remove recipe from index", "id", recipeID, "error", err)
		}
	}
	if s.events != nil {
		s.events.Emit(sse.NewRecipeDeletedEvent(recipeID))
	}
	if s.metrics != nil {
		s.metrics.RecipeDeleted()
	}

	return nil
}

// SearchRecipes returns recipes matching text, best match first.
// Index hits whose recipe has since disappeared are skipped.
func (s *RecipeService) SearchRecipes(ctx context.Context, text string, limit int) ([]*domain.Recipe, error) {
	if s.index == nil {
		return nil, domainerrors.Unavailable(MsgSearchDisabled)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainerrors.Validation(MsgQueryRequired)
	}

	hits, err := s.index.Search(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}

	recipes := make([]*domain.Recipe, 0, len(hits))
	for _, hit := range hits {
		r, err := s.store.GetRecipe(ctx, hit.ID)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("search hit no longer in store", "id", hit.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load search hit %s: %w", hit.ID, err)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// RebuildSearchIndex reindexes every stored recipe. Run once at startup.
func (s *RecipeService) RebuildSearchIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		return fmt.Errorf("list recipes for reindex: %w", err)
	}
	if err := s.index.Reindex(recipes); err != nil {
		return fmt.Errorf("reindex recipes: %w", err)
	}
	return nil
}
