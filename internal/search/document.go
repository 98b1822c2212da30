// Package search provides full-text recipe search using Bleve.
// Text is accent-folded on the way in and on the way out, so "creme brulee"
// finds "Crème Brûlée".
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/recipebox/recipebox-server/internal/domain"
)

// RecipeDocument is the indexed form of a recipe.
type RecipeDocument struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	CreatedAt    int64  `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map keyed by the mapping's field names.
// Bleve otherwise indexes Go struct field names.
func (d *RecipeDocument) ToMap() map[string]any {
	return map[string]any{
		"id":           d.ID,
		"name":         d.Name,
		"ingredients":  d.Ingredients,
		"instructions": d.Instructions,
		"created_at":   d.CreatedAt,
	}
}

// RecipeToDocument converts a domain Recipe to a folded RecipeDocument.
func RecipeToDocument(r *domain.Recipe) *RecipeDocument {
	return &RecipeDocument{
		ID:           r.ID,
		Name:         Fold(r.Name),
		Ingredients:  Fold(r.Ingredients),
		Instructions: Fold(r.Instructions),
		CreatedAt:    r.CreatedAt.UnixMilli(),
	}
}

// Fold strips combining marks and lowercases s.
// "Crème Brûlée" -> "creme brulee".
func Fold(s string) string {
	// transform.Chain is stateful; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}
