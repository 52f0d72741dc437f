// Package allocation reconciles recipe ingredient needs against inventory
// stock and planned shopping quantities. The split is greedy and
// priority-ordered: recipes sorted by name get first claim on shared stock.
// That ordering is the deliberate tie-break, not an optimization target.
package allocation

import (
	"sort"

	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
	"github.com/mhofstetter/homestorage/internal/inventory"
)

// Coverage is the split of one recipe item's need. The parts always sum to
// the need: InvCover + ShopCover + Missing == Need.
type Coverage struct {
	Need      int `json:"need"`
	InvCover  int `json:"invCover"`
	ShopCover int `json:"shopCover"`
	Missing   int `json:"missing"`
}

// Result maps recipeID -> articleID -> coverage. It is ephemeral and
// recomputed on every read; it is never persisted.
type Result map[int64]map[int64]Coverage

// Status classes for a recipe in list views.
const (
	StatusOK       = "ok"
	StatusNeedShop = "needShop"
	StatusMissing  = "missing"
)

// RecipeStatus summarizes a recipe's coverage for list display.
type RecipeStatus struct {
	Class         string `json:"class"`
	MissingItems  int    `json:"missingItems"`
	CoveredByShop int    `json:"coveredByShop"`
}

// Counts is the coverage breakdown for a progress-style badge.
type Counts struct {
	Total int `json:"total"`
	Inv   int `json:"inv"`
	Shop  int `json:"shop"`
	Miss  int `json:"miss"`
}

// ItemCoverage is the per-item view with the visual proportion of the need
// covered from inventory (InvPct) and inventory+shopping (ShopEnd).
type ItemCoverage struct {
	Coverage
	InvPct  float64 `json:"invPct"`
	ShopEnd float64 `json:"shopEnd"`
}

// Compute allocates inventory and planned shopping quantities to every
// recipe item. Recipes are walked in locale-ordered name order; within one
// article the earlier recipe drains the shared pools first. Pure function
// of the current state: same inputs, same result.
func Compute(st *domain.State) Result {
	recipes := make([]*domain.Recipe, len(st.Recipes))
	copy(recipes, st.Recipes)
	sort.SliceStable(recipes, func(i, j int) bool {
		return catalog.CompareNames(recipes[i].Name, recipes[j].Name) < 0
	})

	type need struct {
		recipeID int64
		qty      int
	}
	needsByArticle := map[int64][]need{}
	var articleOrder []int64
	for _, r := range recipes {
		for _, it := range r.Items {
			qty := max(1, it.Qty)
			if _, seen := needsByArticle[it.ArticleID]; !seen {
				articleOrder = append(articleOrder, it.ArticleID)
			}
			needsByArticle[it.ArticleID] = append(needsByArticle[it.ArticleID], need{recipeID: r.ID, qty: qty})
		}
	}

	res := Result{}
	for _, r := range recipes {
		res[r.ID] = map[int64]Coverage{}
	}

	for _, articleID := range articleOrder {
		inv := inventory.AvailableBase(st, articleID)
		shop := plannedShoppingBase(st, articleID)

		for _, n := range needsByArticle[articleID] {
			invCover := min(inv, n.qty)
			inv -= invCover

			remain := n.qty - invCover
			shopCover := min(shop, remain)
			shop -= shopCover

			res[n.recipeID][articleID] = Coverage{
				Need:      n.qty,
				InvCover:  invCover,
				ShopCover: shopCover,
				Missing:   remain - shopCover,
			}
		}
	}

	return res
}

// StatusFor classifies a recipe: ok when everything sits in inventory,
// needShop when the shopping list closes the gap, missing otherwise.
// A recipe without items has an empty class.
func StatusFor(r *domain.Recipe, res Result) RecipeStatus {
	if len(r.Items) == 0 {
		return RecipeStatus{}
	}

	st := RecipeStatus{}
	for _, it := range r.Items {
		cov, ok := lookup(res, r.ID, it.ArticleID)
		if !ok {
			cov = Coverage{Need: max(1, it.Qty), Missing: max(1, it.Qty)}
		}
		if cov.Missing > 0 {
			st.MissingItems++
		} else if cov.InvCover < cov.Need {
			st.CoveredByShop++
		}
	}

	switch {
	case st.MissingItems == 0 && st.CoveredByShop == 0:
		st.Class = StatusOK
	case st.MissingItems == 0:
		st.Class = StatusNeedShop
	default:
		st.Class = StatusMissing
	}
	return st
}

// CountsFor tallies how many items are fully in inventory, fully covered
// via the shopping list, or still missing.
func CountsFor(r *domain.Recipe, res Result) Counts {
	c := Counts{Total: len(r.Items)}
	for _, it := range r.Items {
		cov, ok := lookup(res, r.ID, it.ArticleID)
		if !ok {
			c.Miss++
			continue
		}
		switch {
		case cov.Missing > 0:
			c.Miss++
		case cov.InvCover >= cov.Need:
			c.Inv++
		case cov.ShopCover > 0:
			c.Shop++
		default:
			c.Miss++
		}
	}
	return c
}

// ItemCoverageFor returns the per-item coverage with display percentages.
// Unknown (recipe, article) pairs count as fully missing.
func ItemCoverageFor(recipeID int64, it domain.RecipeItem, res Result) ItemCoverage {
	cov, ok := lookup(res, recipeID, it.ArticleID)
	if !ok {
		need := max(1, it.Qty)
		cov = Coverage{Need: need, Missing: need}
	}

	need := max(1, cov.Need)
	invPct := min(100, float64(cov.InvCover)/float64(need)*100)
	shopEnd := min(100, invPct+float64(cov.ShopCover)/float64(need)*100)
	return ItemCoverage{Coverage: cov, InvPct: invPct, ShopEnd: shopEnd}
}

func lookup(res Result, recipeID, articleID int64) (Coverage, bool) {
	byArticle, ok := res[recipeID]
	if !ok {
		return Coverage{}, false
	}
	cov, ok := byArticle[articleID]
	return cov, ok
}

func plannedShoppingBase(st *domain.State, articleID int64) int {
	line := st.ShoppingLineByArticle(articleID)
	if line == nil {
		return 0
	}
	return max(0, line.Qty)
}
