package domain

// Recipe is the slice of a recipe the cooking session needs: the title,
// the ordered steps, and the optional chef tip spoken at session start.
type Recipe struct {
	ID      string
	Slug    string
	Title   string
	Steps   []RecipeStep
	ChefTip string
}

// RecipeStep is a single instruction within a recipe. Steps are immutable
// once a session starts and are indexed 0..len-1.
type RecipeStep struct {
	Content      string
	TimerSeconds int // suggested duration, 0 if the step names no wait
}

// RecipeRef identifies a recipe created or generated by the backend.
type RecipeRef struct {
	ID   string
	Slug string
}
