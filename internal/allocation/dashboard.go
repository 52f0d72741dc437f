package allocation

import "github.com/mhofstetter/homestorage/internal/domain"

// RecipeSummary is one recipe's allocation standing for list views.
type RecipeSummary struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Items  int          `json:"items"`
	Status RecipeStatus `json:"status"`
	Counts Counts       `json:"counts"`
}

// Dashboard is the allocation overview across all recipes. Ephemeral like
// Result; cached only keyed by state revision.
type Dashboard struct {
	Recipes []RecipeSummary `json:"recipes"`
}

// BuildDashboard computes the per-recipe summaries from an allocation
// result, in the state's recipe order.
func BuildDashboard(st *domain.State, res Result) *Dashboard {
	d := &Dashboard{Recipes: make([]RecipeSummary, 0, len(st.Recipes))}
	for _, r := range st.Recipes {
		d.Recipes = append(d.Recipes, RecipeSummary{
			ID:     r.ID,
			Name:   r.Name,
			Items:  len(r.Items),
			Status: StatusFor(r, res),
			Counts: CountsFor(r, res),
		})
	}
	return d
}
