// Package catalog holds the canonical article attribute vocabulary and its
// normalizers. These functions are the single source of truth for valid
// categories, units and use-days scopes; every write boundary applies them.
// Bad input never errors, it collapses to the documented fallback.
package catalog

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mhofstetter/homestorage/internal/domain"
)

// Categories is the closed set of known article categories, in display order.
var Categories = []string{
	"Blumen / Pflanzen",
	"Früchte & Gemüse",
	"Backwaren / Brot",
	"Frische Convenience",
	"Milchprodukte Joghurt Käse",
	"Fleisch/Fisch",
	"Charcuterie / Aufschnitt / Feinkost",
	"Grundnahrungsmittel",
	"Tiefkühl",
	"Non-Food",
}

// CategoryFallback labels unclassified articles; it sorts last.
const CategoryFallback = "Divers"

// DefaultUnit is used when no unit is given anywhere.
const DefaultUnit = "Stk"

// UnitOptions are the units offered in entry forms. Free-form units are
// still accepted; the list is not closed.
var UnitOptions = []string{"Stk", "Zehe", "g", "ml", "Pack", "Dose", "Bund"}

// Use-days scope values.
const (
	ScopeAll     = "all"
	ScopePerItem = "per-item"
)

// DefaultScope is applied when the scope is missing or unknown.
const DefaultScope = ScopeAll

// collator orders names the way the original UI did (German locale).
var collator = collate.New(language.German)

// NormalizeCategory returns the input if it is a known category, otherwise
// the empty string meaning "unclassified".
func NormalizeCategory(cat string) string {
	clean := strings.TrimSpace(cat)
	for _, c := range Categories {
		if c == clean {
			return clean
		}
	}
	return ""
}

// DisplayCategory maps the stored category to its display label.
func DisplayCategory(cat string) string {
	if clean := NormalizeCategory(cat); clean != "" {
		return clean
	}
	return CategoryFallback
}

// CategorySortIndex returns the display-order position of a category label.
// Unknown labels collapse to last, alongside the fallback.
func CategorySortIndex(cat string) int {
	label := DisplayCategory(cat)
	for i, c := range Categories {
		if c == label {
			return i
		}
	}
	return len(Categories)
}

// NormalizeUnit trims the unit and falls back to the default when empty.
func NormalizeUnit(unit string) string {
	clean := strings.TrimSpace(unit)
	if clean == "" {
		return DefaultUnit
	}
	return clean
}

// NormalizeUseDaysScope validates the scope against the two known values.
func NormalizeUseDaysScope(scope string) string {
	switch strings.TrimSpace(scope) {
	case ScopeAll:
		return ScopeAll
	case ScopePerItem:
		return ScopePerItem
	default:
		return DefaultScope
	}
}

// RecipeItemUnit resolves the unit for a recipe item: the item's own unit,
// then the article's, then the default.
func RecipeItemUnit(it domain.RecipeItem, a *domain.Article) string {
	if it.Unit != "" {
		return NormalizeUnit(it.Unit)
	}
	if a != nil && a.Unit != "" {
		return NormalizeUnit(a.Unit)
	}
	return DefaultUnit
}

// CompareNames is the locale-aware name ordering used for recipe allocation
// priority and list displays.
func CompareNames(a, b string) int {
	return collator.CompareString(a, b)
}
