// Package shopping maintains the shopping list: one line per wanted article,
// with provenance sources, and the purchase confirmation flow that turns
// confirmed lines into inventory lots and history.
package shopping

import (
	"sort"

	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
)

// EnsureLine returns the line for an article, creating it when absent.
// Unit resolution: incoming unit, then the article's unit, then the default.
func EnsureLine(st *domain.State, articleID int64, unit string, now int64) *domain.ShoppingLine {
	line := st.ShoppingLineByArticle(articleID)
	if line == nil {
		line = &domain.ShoppingLine{
			ID:        st.NextID(),
			ArticleID: articleID,
			Unit:      resolveUnit(st, articleID, unit),
			Sources:   []domain.Source{},
			CreatedAt: now,
		}
		st.Shopping = append([]*domain.ShoppingLine{line}, st.Shopping...)
	}
	if line.Sources == nil {
		line.Sources = []domain.Source{}
	}
	if unit != "" {
		line.Unit = catalog.NormalizeUnit(unit)
	}
	if line.Unit == "" {
		line.Unit = resolveUnit(st, articleID, "")
	}
	return line
}

func resolveUnit(st *domain.State, articleID int64, unit string) string {
	if unit != "" {
		return catalog.NormalizeUnit(unit)
	}
	if a := st.ArticleByID(articleID); a != nil && a.Unit != "" {
		return catalog.NormalizeUnit(a.Unit)
	}
	return catalog.DefaultUnit
}

// RecomputeLineQty keeps the line quantity equal to the sum of its sources.
func RecomputeLineQty(line *domain.ShoppingLine) {
	total := 0
	for _, s := range line.Sources {
		total += max(0, s.Qty)
	}
	line.Qty = total
}

// AddFromRecipe upserts the recipe-typed source for (article, recipe).
// Re-adding from the same recipe replaces the quantity, it never
// double-counts.
func AddFromRecipe(st *domain.State, articleID, recipeID int64, qty int, unit string, now int64) *domain.ShoppingLine {
	q := max(1, qty)
	line := EnsureLine(st, articleID, unit, now)

	replaced := false
	for i, s := range line.Sources {
		if s.Type == domain.SourceRecipe && s.RecipeID == recipeID {
			line.Sources[i] = domain.Source{Type: domain.SourceRecipe, RecipeID: recipeID, Qty: q}
			replaced = true
			break
		}
	}
	if !replaced {
		line.Sources = append(line.Sources, domain.Source{Type: domain.SourceRecipe, RecipeID: recipeID, Qty: q})
	}

	RecomputeLineQty(line)
	return line
}

// AddManual increments the line's single manual source by qty.
func AddManual(st *domain.State, articleID int64, qty int, unit string, now int64) *domain.ShoppingLine {
	q := max(1, qty)
	line := EnsureLine(st, articleID, unit, now)

	found := false
	for i, s := range line.Sources {
		if s.Type == domain.SourceManual {
			line.Sources[i].Qty = max(0, s.Qty) + q
			found = true
			break
		}
	}
	if !found {
		line.Sources = append(line.Sources, domain.Source{Type: domain.SourceManual, Qty: q})
	}

	RecomputeLineQty(line)
	return line
}

// ReduceSourcesAfterPurchase subtracts boughtQty from the line's sources in
// insertion order, dropping sources that reach zero. Buying more than the
// sources sum simply discards the excess.
func ReduceSourcesAfterPurchase(line *domain.ShoppingLine, boughtQty int) {
	remaining := max(0, boughtQty)

	kept := line.Sources[:0]
	for i := range line.Sources {
		s := line.Sources[i]
		qty := max(0, s.Qty)
		take := min(qty, remaining)
		s.Qty = qty - take
		remaining -= take
		if s.Qty > 0 {
			kept = append(kept, s)
		}
	}
	line.Sources = kept
	RecomputeLineQty(line)
}

// ActiveLines returns the lines with a positive quantity; zero-qty lines
// are logically deleted and hidden from display.
func ActiveLines(st *domain.State) []*domain.ShoppingLine {
	var lines []*domain.ShoppingLine
	for _, l := range st.Shopping {
		if l.Qty > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}

// SortLinesForDisplay orders lines by category display order, then by
// locale-collated article name.
func SortLinesForDisplay(st *domain.State, lines []*domain.ShoppingLine) {
	name := func(l *domain.ShoppingLine) string {
		if a := st.ArticleByID(l.ArticleID); a != nil {
			return a.Name
		}
		return ""
	}
	category := func(l *domain.ShoppingLine) string {
		if a := st.ArticleByID(l.ArticleID); a != nil {
			return a.Category
		}
		return ""
	}
	sort.SliceStable(lines, func(i, j int) bool {
		ci, cj := catalog.CategorySortIndex(category(lines[i])), catalog.CategorySortIndex(category(lines[j]))
		if ci != cj {
			return ci < cj
		}
		return catalog.CompareNames(name(lines[i]), name(lines[j])) < 0
	})
}
