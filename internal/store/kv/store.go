// Package kv implements the recipe store on Badger, either on disk or fully in memory.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/store"
)

const (
	recipePrefix   = "recipe:"
	recipeSeqKey   = "seq:recipe"
	seqLeaseLength = 100
)

// Options configures a Badger store.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps every key in RAM; nothing survives Close.
	InMemory bool
}

// Store provides Badger-backed persistence for recipes.
type Store struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger

	recipes *Entity[domain.Recipe]
}

var _ store.RecipeStore = (*Store)(nil)

// Open creates or opens a Badger store.
func Open(o Options, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(o.Path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	seq, err := db.GetSequence([]byte(recipeSeqKey), seqLeaseLength)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to acquire recipe sequence: %w", err)
	}

	s := &Store{
		db:     db,
		seq:    seq,
		logger: logger,
	}
	s.recipes = NewEntity[domain.Recipe](db, recipePrefix, seq)

	if logger != nil {
		logger.Info("Badger database opened", "path", o.Path, "in_memory", o.InMemory)
	}

	return s, nil
}

// Close releases the sequence lease and closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	if err := s.seq.Release(); err != nil && s.logger != nil {
		s.logger.Warn("failed to release recipe sequence", "error", err)
	}
	return s.db.Close()
}

// CreateRecipe inserts a new recipe.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	if !r.Complete() {
		return store.ErrIncompleteRecipe
	}
	return s.recipes.Create(ctx, r.ID, r)
}

// GetRecipe retrieves a recipe by its ID.
func (s *Store) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	r, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, notFoundAsRecipe(err)
	}
	return r, nil
}

// ListRecipes returns all recipes in insertion order.
func (s *Store) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	recipes := []*domain.Recipe{}
	for r, err := range s.recipes.List(ctx) {
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// DeleteRecipe removes a recipe by ID.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	return notFoundAsRecipe(s.recipes.Delete(ctx, id))
}

// CountRecipes returns the number of stored recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	return s.recipes.Count(ctx)
}

func notFoundAsRecipe(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrRecipeNotFound
	}
	return err
}
