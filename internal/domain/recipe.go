// Package domain contains the core entities of the Recipe Box server.
package domain

import "time"

// Recipe is a stored recipe record.
// All four text fields are non-empty for any persisted Recipe.
type Recipe struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Ingredients  string    `json:"ingredients"` // Free-form, may contain line breaks
	Instructions string    `json:"instructions"`
	CookTime     string    `json:"cookTime"` // Free-form duration, e.g. "30 minutes"
	CreatedAt    time.Time `json:"createdAt"`
}

// Complete reports whether every required field is set.
func (r *Recipe) Complete() bool {
	return r.Name != "" && r.Ingredients != "" && r.Instructions != "" && r.CookTime != ""
}
