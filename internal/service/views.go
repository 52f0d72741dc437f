package service

import (
	"context"
	"sort"
	"strings"

	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
	"github.com/mhofstetter/homestorage/internal/inventory"
	"github.com/mhofstetter/homestorage/internal/shopping"
)

// ArticleView decorates an article with its display category.
type ArticleView struct {
	domain.Article
	DisplayCategory string `json:"displayCategory"`
}

// Articles lists the catalog, locale-sorted by name, optionally filtered by
// a case-insensitive substring over name and unit.
func (s *Session) Articles(query string) []ArticleView {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []ArticleView
	for _, a := range s.st.Articles {
		if q != "" && !strings.Contains(strings.ToLower(a.Name+" "+a.Unit), q) {
			continue
		}
		out = append(out, ArticleView{Article: *a, DisplayCategory: catalog.DisplayCategory(a.Category)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return catalog.CompareNames(out[i].Name, out[j].Name) < 0
	})
	return out
}

// SourceView names a source for display.
type SourceView struct {
	Type       string `json:"type"`
	RecipeID   int64  `json:"recipeId,omitempty"`
	RecipeName string `json:"recipeName,omitempty"`
	Qty        int    `json:"qty"`
}

// ShoppingLineView is one active shopping line with resolved labels.
type ShoppingLineView struct {
	ID          int64        `json:"id"`
	ArticleID   int64        `json:"articleId"`
	ArticleName string       `json:"articleName"`
	Category    string       `json:"category"`
	Qty         int          `json:"qty"`
	Unit        string       `json:"unit"`
	Selected    bool         `json:"selected"`
	Sources     []SourceView `json:"sources"`
}

// ShoppingLines returns the active lines in display order (category, then
// article name).
func (s *Session) ShoppingLines() []ShoppingLineView {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := shopping.ActiveLines(s.st)
	shopping.SortLinesForDisplay(s.st, lines)

	out := make([]ShoppingLineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, s.shoppingLineView(l))
	}
	return out
}

func (s *Session) shoppingLineView(l *domain.ShoppingLine) ShoppingLineView {
	a := s.st.ArticleByID(l.ArticleID)
	name := unknownArticleLabel
	category := catalog.CategoryFallback
	unit := l.Unit
	if a != nil {
		name = a.Name
		category = catalog.DisplayCategory(a.Category)
		if unit == "" {
			unit = a.Unit
		}
	}

	v := ShoppingLineView{
		ID:          l.ID,
		ArticleID:   l.ArticleID,
		ArticleName: name,
		Category:    category,
		Qty:         l.Qty,
		Unit:        catalog.NormalizeUnit(unit),
		Selected:    l.Selected,
	}
	for _, src := range l.Sources {
		sv := SourceView{Type: src.Type, RecipeID: src.RecipeID, Qty: src.Qty}
		if src.Type == domain.SourceRecipe {
			if r := s.st.RecipeByID(src.RecipeID); r != nil {
				sv.RecipeName = r.Name
			}
		}
		v.Sources = append(v.Sources, sv)
	}
	return v
}

// AddManualToShopping puts qty of an article on the list as manual demand.
func (s *Session) AddManualToShopping(ctx context.Context, articleID int64, qty int, unit string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.ArticleByID(articleID) == nil {
		return false
	}
	shopping.AddManual(s.st, articleID, qty, unit, s.now())
	s.persist(ctx)
	return true
}

// SetLineSelected toggles a line's purchase selection.
func (s *Session) SetLineSelected(ctx context.Context, lineID int64, selected bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.st.ShoppingLineByID(lineID)
	if line == nil {
		return false
	}
	line.Selected = selected
	s.persist(ctx)
	return true
}

// SelectAllShopping marks every line for purchase.
func (s *Session) SelectAllShopping(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.st.Shopping {
		l.Selected = true
	}
	s.persist(ctx)
}

// RemoveShoppingLine deletes a line outright, demand and all.
func (s *Session) RemoveShoppingLine(ctx context.Context, lineID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.st.Shopping[:0]
	removed := false
	for _, l := range s.st.Shopping {
		if l.ID == lineID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	s.st.Shopping = kept
	if removed {
		s.persist(ctx)
	}
	return removed
}

// ConfirmPurchase executes the purchase flow for the selected lines and
// returns the history entry, or nil when nothing was bought.
func (s *Session) ConfirmPurchase(ctx context.Context, bought map[int64]int) *domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := shopping.ConfirmPurchase(s.st, bought, s.now())
	s.persist(ctx)
	return entry
}

// InventoryLotView is one lot with resolved labels and expiry flag.
type InventoryLotView struct {
	ID                  int64  `json:"id"`
	ArticleID           int64  `json:"articleId"`
	ArticleName         string `json:"articleName"`
	Qty                 int    `json:"qty"`
	Unit                string `json:"unit"`
	PurchasedAt         int64  `json:"purchasedAt"`
	UseDays             int    `json:"useDays"`
	UseDaysScope        string `json:"useDaysScope"`
	UseByAt             int64  `json:"useByAt,omitempty"`
	Expired             bool   `json:"expired"`
	LastAutoConsumedAt  int64  `json:"lastAutoConsumedAt,omitempty"`
	LastAutoConsumedQty int    `json:"lastAutoConsumedQty,omitempty"`
}

// InventoryLots lists all lots after the aging sweep, most urgent first.
func (s *Session) InventoryLots(ctx context.Context) []InventoryLotView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoConsume(ctx)
	now := s.now()

	lots := make([]*domain.InventoryLot, len(s.st.Inventory))
	copy(lots, s.st.Inventory)
	inventory.SortLotsForDisplay(lots)

	out := make([]InventoryLotView, 0, len(lots))
	for _, lot := range lots {
		a := s.st.ArticleByID(lot.ArticleID)
		name := unknownArticleLabel
		unit := lot.Unit
		if a != nil {
			name = a.Name
			if unit == "" {
				unit = a.Unit
			}
		}
		out = append(out, InventoryLotView{
			ID:                  lot.ID,
			ArticleID:           lot.ArticleID,
			ArticleName:         name,
			Qty:                 max(0, lot.Qty),
			Unit:                catalog.NormalizeUnit(unit),
			PurchasedAt:         lot.PurchasedAt,
			UseDays:             lot.UseDays,
			UseDaysScope:        lot.UseDaysScope,
			UseByAt:             lot.UseByAt,
			Expired:             lot.UseByAt > 0 && lot.UseByAt < now,
			LastAutoConsumedAt:  lot.LastAutoConsumedAt,
			LastAutoConsumedQty: lot.LastAutoConsumedQty,
		})
	}
	return out
}

// SetLotQty overrides a lot's quantity directly (manual stock correction).
func (s *Session) SetLotQty(ctx context.Context, lotID int64, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot := s.st.LotByID(lotID)
	if lot == nil {
		return false
	}
	lot.Qty = max(0, qty)
	s.persist(ctx)
	return true
}

// DeleteLot removes a lot from inventory.
func (s *Session) DeleteLot(ctx context.Context, lotID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.st.Inventory[:0]
	removed := false
	for _, l := range s.st.Inventory {
		if l.ID == lotID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	s.st.Inventory = kept
	if removed {
		s.persist(ctx)
	}
	return removed
}

// ConsumeLot takes qty out of a single lot, restarting its aging cycle.
// Returns the quantity actually consumed.
func (s *Session) ConsumeLot(ctx context.Context, lotID int64, qty int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoConsume(ctx)

	lot := s.st.LotByID(lotID)
	if lot == nil {
		return 0, false
	}
	take := inventory.ConsumeEntry(s.st, lot, qty, inventory.ConsumeOptions{ResetCycle: true, Now: s.now()})
	s.persist(ctx)
	return take, true
}
