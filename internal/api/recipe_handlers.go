package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/service"
)

// MsgRecipeDeleted is returned after a successful delete.
const MsgRecipeDeleted = "Recipe deleted successfully"

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/recipes",
		Summary:     "List recipes",
		Description: "Returns every recipe in the order they were created",
		Tags:        []string{"Recipes"},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/api/recipes",
		Summary:       "Create recipe",
		Description:   "Creates a recipe. All four fields are required.",
		Tags:          []string{"Recipes"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipes",
		Method:      http.MethodGet,
		Path:        "/api/recipes/search",
		Summary:     "Search recipes",
		Description: "Full-text search over name, ingredients and instructions, best match first",
		Tags:        []string{"Recipes"},
	}, s.handleSearchRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe by ID",
		Tags:        []string{"Recipes"},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRecipe",
		Method:      http.MethodDelete,
		Path:        "/api/recipes/{id}",
		Summary:     "Delete recipe",
		Description: "Deletes a recipe by ID",
		Tags:        []string{"Recipes"},
	}, s.handleDeleteRecipe)
}

// === DTOs ===

// ListRecipesOutput is a bare JSON array of recipes.
type ListRecipesOutput struct {
	Body []*domain.Recipe
}

// CreateRecipeBody is the request body for creating a recipe.
// Fields are optional at the schema level; presence is checked by the service
// so a missing field reports the same message as an empty one.
type CreateRecipeBody struct {
	_            struct{} `additionalProperties:"true"`
	Name         string   `json:"name,omitempty" doc:"Recipe name"`
	Ingredients  string   `json:"ingredients,omitempty" doc:"Ingredients, free-form, may contain line breaks"`
	Instructions string   `json:"instructions,omitempty" doc:"Preparation steps"`
	CookTime     string   `json:"cookTime,omitempty" doc:"Cooking time, e.g. 30 minutes"`
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Body *CreateRecipeBody `required:"false"`
}

// RecipeOutput wraps a single recipe for Huma.
type RecipeOutput struct {
	Body *domain.Recipe
}

// RecipeIDInput identifies a recipe by path parameter.
type RecipeIDInput struct {
	ID string `path:"id" doc:"Recipe ID"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a confirmation message for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// SearchRecipesInput contains parameters for searching recipes.
type SearchRecipesInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" default:"20" doc:"Maximum results, capped at 100"`
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, _ *struct{}) (*ListRecipesOutput, error) {
	recipes, err := s.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, s.toAPIError(ctx, "listRecipes", err)
	}
	return &ListRecipesOutput{Body: recipes}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	var req service.CreateRecipeRequest
	if b := input.Body; b != nil {
		req = service.CreateRecipeRequest{
			Name:         b.Name,
			Ingredients:  b.Ingredients,
			Instructions: b.Instructions,
			CookTime:     b.CookTime,
		}
	}

	recipe, err := s.recipes.CreateRecipe(ctx, req)
	if err != nil {
		return nil, s.toAPIError(ctx, "createRecipe", err)
	}
	return &RecipeOutput{Body: recipe}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
	recipe, err := s.recipes.GetRecipe(ctx, input.ID)
	if err != nil {
		return nil, s.toAPIError(ctx, "getRecipe", err)
	}
	return &RecipeOutput{Body: recipe}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *RecipeIDInput) (*MessageOutput, error) {
	if err := s.recipes.DeleteRecipe(ctx, input.ID); err != nil {
		return nil, s.toAPIError(ctx, "deleteRecipe", err)
	}
	return &MessageOutput{Body: MessageResponse{Message: MsgRecipeDeleted}}, nil
}

func (s *Server) handleSearchRecipes(ctx context.Context, input *SearchRecipesInput) (*ListRecipesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}

	recipes, err := s.recipes.SearchRecipes(ctx, input.Query, limit)
	if err != nil {
		return nil, s.toAPIError(ctx, "searchRecipes", err)
	}
	return &ListRecipesOutput{Body: recipes}, nil
}
