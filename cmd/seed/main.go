// Package main provides a tool to seed the recipe store with sample recipes.
//
// It accepts the same flags and environment as the server, so it writes to
// whichever store the server would open. Recipes whose name already exists
// are skipped, so running it twice is harmless.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed -store badger -data-path ~/RecipeBox/data
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/recipebox/recipebox-server/internal/config"
	"github.com/recipebox/recipebox-server/internal/di/providers"
	"github.com/recipebox/recipebox-server/internal/logger"
	"github.com/recipebox/recipebox-server/internal/service"
)

var samples = []service.CreateRecipeRequest{
	{
		Name:         "Classic Pancakes",
		Ingredients:  "1 1/2 cups flour\n3 1/2 tsp baking powder\n1 tbsp sugar\n1 1/4 cups milk\n1 egg\n3 tbsp melted butter",
		Instructions: "Whisk the dry ingredients. Add milk, egg and butter and mix until smooth. Cook 1/4 cup portions on a hot griddle until bubbles form, then flip.",
		CookTime:     "20 minutes",
	},
	{
		Name:         "Tomato Basil Soup",
		Ingredients:  "2 lbs ripe tomatoes\n1 onion\n3 cloves garlic\n2 cups vegetable stock\n1 bunch basil\n1/2 cup cream",
		Instructions: "Soften onion and garlic in olive oil. Add tomatoes and stock and simmer 20 minutes. Blend with basil and stir in the cream.",
		CookTime:     "40 minutes",
	},
	{
		Name:         "Banana Bread",
		Ingredients:  "3 ripe bananas\n1/3 cup melted butter\n3/4 cup sugar\n1 egg\n1 tsp baking soda\n1 1/2 cups flour",
		Instructions: "Mash bananas and mix in butter, sugar and egg. Stir in baking soda and flour. Bake in a loaf pan at 350F.",
		CookTime:     "1 hour",
	},
	{
		Name:         "Chickpea Curry",
		Ingredients:  "2 cans chickpeas\n1 can coconut milk\n1 onion\n2 tbsp curry paste\n1 cup spinach",
		Instructions: "Fry onion with curry paste. Add chickpeas and coconut milk and simmer 15 minutes. Wilt in the spinach.",
		CookTime:     "30 minutes",
	},
	{
		Name:         "Crème Brûlée",
		Ingredients:  "2 cups heavy cream\n5 egg yolks\n1/2 cup sugar\n1 vanilla bean",
		Instructions: "Heat cream with vanilla. Whisk into yolks and sugar. Bake in a water bath at 325F until set. Chill, then caramelize sugar on top.",
		CookTime:     "4 hours",
	},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if cfg.Storage.Backend == config.BackendMemory {
		log.Warn("Seeding the memory store; recipes are gone when this process exits")
	}

	st, err := providers.OpenStore(cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	recipes := service.NewRecipeService(st, log.Logger)
	ctx := context.Background()

	existing, err := recipes.ListRecipes(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.Name] = true
	}

	created := 0
	for _, req := range samples {
		if seen[req.Name] {
			log.Info("Skipping existing recipe", "name", req.Name)
			continue
		}
		r, err := recipes.CreateRecipe(ctx, req)
		if err != nil {
			return fmt.Errorf("create %q: %w", req.Name, err)
		}
		created++
		fmt.Printf("Created %s (%s)\n", r.Name, r.ID)
	}

	fmt.Printf("Seeded %d recipes, %d already present\n", created, len(samples)-created)
	return nil
}
