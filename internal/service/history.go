package service

import (
	"sort"
	"strings"
	"time"

	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
)

// HistoryItemView is one purchased article row in the history.
type HistoryItemView struct {
	ArticleID   int64        `json:"articleId"`
	ArticleName string       `json:"articleName"`
	NeededQty   int          `json:"neededQty"`
	BoughtQty   int          `json:"boughtQty"`
	Unit        string       `json:"unit"`
	Sources     []SourceView `json:"sources"`
}

// HistoryGroup bundles all purchases of one calendar day, newest day first.
type HistoryGroup struct {
	DateKey   string            `json:"dateKey"`
	DateLabel string            `json:"dateLabel"`
	Items     []HistoryItemView `json:"items"`

	sortTs int64
}

// HistoryGroups returns purchase history grouped by day, optionally
// filtered by a case-insensitive search over article name, unit and source
// recipe names. Days whose items are all filtered out disappear.
func (s *Session) HistoryGroups(query string) []HistoryGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))

	groups := map[string]*HistoryGroup{}
	var order []string
	for _, h := range s.st.History {
		key := isoDate(h.PurchasedAt)
		g, ok := groups[key]
		if !ok {
			g = &HistoryGroup{DateKey: key, DateLabel: displayDate(h.PurchasedAt), sortTs: h.PurchasedAt}
			groups[key] = g
			order = append(order, key)
		} else if h.PurchasedAt > g.sortTs {
			g.sortTs = h.PurchasedAt
		}

		for _, it := range h.Items {
			view := s.historyItemView(it)
			if q != "" && !strings.Contains(view.searchText(), q) {
				continue
			}
			g.Items = append(g.Items, view)
		}
	}

	out := make([]HistoryGroup, 0, len(order))
	for _, key := range order {
		if g := groups[key]; len(g.Items) > 0 {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].sortTs > out[j].sortTs
	})
	return out
}

func (s *Session) historyItemView(it domain.HistoryItem) HistoryItemView {
	a := s.st.ArticleByID(it.ArticleID)
	name := unknownArticleLabel
	unit := it.Unit
	if a != nil {
		name = a.Name
		if unit == "" {
			unit = a.Unit
		}
	}

	view := HistoryItemView{
		ArticleID:   it.ArticleID,
		ArticleName: name,
		NeededQty:   max(0, it.NeededQty),
		BoughtQty:   max(0, it.BoughtQty),
		Unit:        catalog.NormalizeUnit(unit),
	}
	for _, src := range it.Sources {
		sv := SourceView{Type: src.Type, RecipeID: src.RecipeID, Qty: src.Qty}
		if src.Type == domain.SourceRecipe {
			if r := s.st.RecipeByID(src.RecipeID); r != nil {
				sv.RecipeName = r.Name
			}
		}
		view.Sources = append(view.Sources, sv)
	}
	return view
}

func (v HistoryItemView) searchText() string {
	parts := []string{v.ArticleName, v.Unit}
	for _, src := range v.Sources {
		if src.Type == domain.SourceManual {
			parts = append(parts, "manuell")
		} else if src.RecipeName != "" {
			parts = append(parts, src.RecipeName)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func isoDate(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02")
}

func displayDate(ms int64) string {
	return time.UnixMilli(ms).Format("02.01.2006")
}
