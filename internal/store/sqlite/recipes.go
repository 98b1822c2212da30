package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `id, name, ingredients, instructions, cook_time, created_at`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a domain.Recipe.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var (
		r         domain.Recipe
		createdAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.Name,
		&r.Ingredients,
		&r.Instructions,
		&r.CookTime,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &r, nil
}

// CreateRecipe inserts a new recipe.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	if !r.Complete() {
		return store.ErrIncompleteRecipe
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recipes (id, name, ingredients, instructions, cook_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Name,
		r.Ingredients,
		r.Instructions,
		r.CookTime,
		formatTime(r.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe by its ID.
// Returns store.ErrRecipeNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)

	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecipes returns all recipes in insertion order.
func (s *Store) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*domain.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recipes, nil
}

// DeleteRecipe removes a recipe by ID.
// Returns store.ErrRecipeNotFound if no row was deleted.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrRecipeNotFound
	}
	return nil
}

// CountRecipes returns the number of stored recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}
