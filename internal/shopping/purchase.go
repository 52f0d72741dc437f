package shopping

import (
	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
)

// ConfirmPurchase turns the selected shopping lines into inventory lots and
// one history entry. bought maps line id to the quantity actually put into
// storage; it may exceed or fall short of the needed quantity. Lines bought
// with 0 create nothing but still lose their selection. The flow never
// fails; it returns the history entry, or nil when nothing was bought.
func ConfirmPurchase(st *domain.State, bought map[int64]int, now int64) *domain.HistoryEntry {
	if now <= 0 {
		now = domain.NowMillis()
	}

	var selected []*domain.ShoppingLine
	for _, line := range st.Shopping {
		if line.Selected && line.Qty > 0 {
			selected = append(selected, line)
		}
	}
	if len(selected) == 0 {
		return nil
	}

	entry := &domain.HistoryEntry{ID: st.NextID(), PurchasedAt: now, Items: []domain.HistoryItem{}}

	for _, line := range selected {
		qty := max(0, bought[line.ID])
		article := st.ArticleByID(line.ArticleID)

		unit := line.Unit
		if unit == "" && article != nil {
			unit = article.Unit
		}
		unit = catalog.NormalizeUnit(unit)

		if qty > 0 {
			lot := newLotForPurchase(st, line.ArticleID, qty, unit, article, now)
			st.Inventory = append([]*domain.InventoryLot{lot}, st.Inventory...)

			entry.Items = append(entry.Items, domain.HistoryItem{
				ArticleID: line.ArticleID,
				NeededQty: max(0, line.Qty),
				BoughtQty: qty,
				Unit:      unit,
				Sources:   snapshotSources(line.Sources),
			})

			ReduceSourcesAfterPurchase(line, qty)
		}

		line.Selected = false
	}

	// Satisfied lines leave the list only after the whole batch completes.
	kept := st.Shopping[:0]
	for _, line := range st.Shopping {
		if line.Qty > 0 {
			kept = append(kept, line)
		}
	}
	st.Shopping = kept

	if len(entry.Items) == 0 {
		return nil
	}
	st.History = append([]*domain.HistoryEntry{entry}, st.History...)
	return entry
}

// newLotForPurchase creates an inventory lot with timing derived from the
// article's use-days settings, not the line's.
func newLotForPurchase(st *domain.State, articleID int64, qty int, unit string, article *domain.Article, now int64) *domain.InventoryLot {
	useDays := 0
	scope := catalog.DefaultScope
	if article != nil {
		useDays = max(0, article.UseDays)
		scope = catalog.NormalizeUseDaysScope(article.UseDaysScope)
	}

	var cycleStartedAt, useByAt int64
	if useDays > 0 {
		if scope == catalog.ScopePerItem {
			cycleStartedAt = now
		}
		useByAt = now + domain.MsDay(useDays)
	}

	return &domain.InventoryLot{
		ID:             st.NextID(),
		ArticleID:      articleID,
		Qty:            qty,
		Unit:           unit,
		PurchasedAt:    now,
		UseDays:        useDays,
		UseDaysScope:   scope,
		CycleStartedAt: cycleStartedAt,
		UseByAt:        useByAt,
	}
}

func snapshotSources(sources []domain.Source) []domain.Source {
	snap := make([]domain.Source, len(sources))
	copy(snap, sources)
	return snap
}
