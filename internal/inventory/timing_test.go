package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
)

const day = int64(24 * 60 * 60 * 1000)

func testState(articles ...*domain.Article) *domain.State {
	st := domain.NewState()
	st.Articles = append(st.Articles, articles...)
	return st
}

func TestEnsureTimingAllScope(t *testing.T) {
	st := testState()
	lot := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 3, PurchasedAt: 10 * day, UseDays: 14, UseDaysScope: catalog.ScopeAll}

	EnsureTiming(st, lot, 12*day)

	require.Equal(t, 10*day+14*day, lot.UseByAt)
	require.Zero(t, lot.CycleStartedAt)
}

func TestEnsureTimingPerItemScope(t *testing.T) {
	st := testState()
	lot := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 3, PurchasedAt: 10 * day, UseDays: 7, UseDaysScope: catalog.ScopePerItem}

	EnsureTiming(st, lot, 12*day)

	require.Equal(t, 10*day, lot.CycleStartedAt, "cycle anchors at the purchase")
	require.Equal(t, 17*day, lot.UseByAt)
}

func TestEnsureTimingWithoutUseDaysKeepsAnchor(t *testing.T) {
	st := testState()
	lot := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 3, PurchasedAt: 10 * day}

	EnsureTiming(st, lot, 12*day)

	require.Zero(t, lot.UseByAt, "no use-days means no expiry date")
	require.Equal(t, 10*day, lot.CycleStartedAt, "anchor survives for a later use-days edit")
}

func TestLotUseDaysFallsBackToArticle(t *testing.T) {
	st := testState(&domain.Article{ID: 9, Name: "Joghurt", UseDays: 5})

	require.Equal(t, 5, LotUseDays(st, &domain.InventoryLot{ArticleID: 9}))
	require.Equal(t, 3, LotUseDays(st, &domain.InventoryLot{ArticleID: 9, UseDays: 3}))
	require.Equal(t, 0, LotUseDays(st, &domain.InventoryLot{ArticleID: 404}))
}

func TestApplyAutoConsumptionAdvancesWholeCycles(t *testing.T) {
	st := testState(&domain.Article{ID: 9, Name: "Joghurt"})
	lot := &domain.InventoryLot{
		ID: 1, ArticleID: 9, Qty: 10,
		PurchasedAt: 0, UseDays: 7, UseDaysScope: catalog.ScopePerItem,
		CycleStartedAt: 0,
	}
	st.Inventory = append(st.Inventory, lot)

	// 20 days elapsed: two full 7-day cycles, the third still running.
	events, changed := ApplyAutoConsumption(st, 20*day)

	require.True(t, changed)
	require.Equal(t, []Event{{ArticleID: 9, Qty: 2}}, events)
	require.Equal(t, 8, lot.Qty)
	require.Equal(t, 14*day, lot.CycleStartedAt)
	require.Equal(t, 21*day, lot.UseByAt)
	require.Equal(t, 20*day, lot.LastAutoConsumedAt)
	require.Equal(t, 2, lot.LastAutoConsumedQty)
}

func TestApplyAutoConsumptionCapsAtQuantity(t *testing.T) {
	st := testState()
	lot := &domain.InventoryLot{
		ID: 1, ArticleID: 9, Qty: 2,
		UseDays: 2, UseDaysScope: catalog.ScopePerItem,
		CycleStartedAt: 0, PurchasedAt: 0,
	}
	st.Inventory = append(st.Inventory, lot)

	// Five cycles elapsed but only two units exist.
	events, changed := ApplyAutoConsumption(st, 10*day)

	require.True(t, changed)
	require.Equal(t, []Event{{ArticleID: 9, Qty: 2}}, events)
	require.Equal(t, 0, lot.Qty)
	require.Equal(t, 4*day, lot.CycleStartedAt, "anchor advances by the consumed cycles only")
}

func TestApplyAutoConsumptionIgnoresAllScopeAndUndatedLots(t *testing.T) {
	st := testState()
	fixed := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 5, PurchasedAt: 0, UseDays: 3, UseDaysScope: catalog.ScopeAll}
	undated := &domain.InventoryLot{ID: 2, ArticleID: 9, Qty: 5, PurchasedAt: 0}
	st.Inventory = append(st.Inventory, fixed, undated)

	events, changed := ApplyAutoConsumption(st, 30*day)

	require.False(t, changed)
	require.Empty(t, events)
	require.Equal(t, 5, fixed.Qty)
	require.Equal(t, 5, undated.Qty)
}

func TestApplyAutoConsumptionNoopWithinFirstCycle(t *testing.T) {
	st := testState()
	lot := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 4, PurchasedAt: 0, UseDays: 7, UseDaysScope: catalog.ScopePerItem}
	st.Inventory = append(st.Inventory, lot)

	_, changed := ApplyAutoConsumption(st, 6*day)

	require.False(t, changed)
	require.Equal(t, 4, lot.Qty)
	require.Equal(t, 7*day, lot.UseByAt)
}

func TestConsumeEntryResetsPerItemCycle(t *testing.T) {
	st := testState()
	lot := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 4, PurchasedAt: 0, UseDays: 7, UseDaysScope: catalog.ScopePerItem, CycleStartedAt: 0}

	take := ConsumeEntry(st, lot, 2, ConsumeOptions{ResetCycle: true, Now: 3 * day})

	require.Equal(t, 2, take)
	require.Equal(t, 2, lot.Qty)
	require.Equal(t, 3*day, lot.CycleStartedAt)
	require.Equal(t, 10*day, lot.UseByAt)
}

func TestConsumeEntryKeepsFixedUseBy(t *testing.T) {
	st := testState()
	lot := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 4, PurchasedAt: 0, UseDays: 7, UseDaysScope: catalog.ScopeAll, UseByAt: 7 * day}

	take := ConsumeEntry(st, lot, 10, ConsumeOptions{Now: 3 * day})

	require.Equal(t, 4, take, "consumption is capped at the available quantity")
	require.Equal(t, 0, lot.Qty)
	require.Equal(t, 7*day, lot.UseByAt)
}

func TestConsumeByArticleDrainsSoonestUseByFirst(t *testing.T) {
	st := testState(&domain.Article{ID: 9, Name: "Joghurt"})
	later := &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 2, PurchasedAt: 0, UseDays: 5, UseDaysScope: catalog.ScopeAll}
	sooner := &domain.InventoryLot{ID: 2, ArticleID: 9, Qty: 2, PurchasedAt: 0, UseDays: 2, UseDaysScope: catalog.ScopeAll}
	undated := &domain.InventoryLot{ID: 3, ArticleID: 9, Qty: 2, PurchasedAt: 0}
	st.Inventory = append(st.Inventory, later, sooner, undated)

	res := ConsumeByArticle(st, 9, 3, ConsumeOptions{Now: day})

	require.Equal(t, Result{Consumed: 3}, res)
	require.Equal(t, 0, sooner.Qty)
	require.Equal(t, 1, later.Qty)
	require.Equal(t, 2, undated.Qty, "undated lots are consumed last")
}

func TestConsumeByArticleReportsShortage(t *testing.T) {
	st := testState()
	st.Inventory = append(st.Inventory, &domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 2, PurchasedAt: 0})

	res := ConsumeByArticle(st, 9, 5, ConsumeOptions{Now: day})

	require.Equal(t, 2, res.Consumed)
	require.Equal(t, 3, res.Remaining)
}

func TestAvailableBaseSkipsConsumedLots(t *testing.T) {
	st := testState()
	st.Inventory = append(st.Inventory,
		&domain.InventoryLot{ID: 1, ArticleID: 9, Qty: 3},
		&domain.InventoryLot{ID: 2, ArticleID: 9, Qty: 4, Consumed: true},
		&domain.InventoryLot{ID: 3, ArticleID: 8, Qty: 7},
	)

	require.Equal(t, 3, AvailableBase(st, 9))
	require.Equal(t, 7, AvailableBase(st, 8))
	require.Equal(t, 0, AvailableBase(st, 404))
}

func TestSortLotsForDisplay(t *testing.T) {
	a := &domain.InventoryLot{ID: 1, UseByAt: 5 * day, PurchasedAt: day}
	b := &domain.InventoryLot{ID: 2, UseByAt: 2 * day, PurchasedAt: day}
	c := &domain.InventoryLot{ID: 3, PurchasedAt: day}
	d := &domain.InventoryLot{ID: 4, UseByAt: 2 * day, PurchasedAt: 2 * day}

	lots := []*domain.InventoryLot{a, b, c, d}
	SortLotsForDisplay(lots)

	require.Equal(t, []int64{4, 2, 1, 3}, []int64{lots[0].ID, lots[1].ID, lots[2].ID, lots[3].ID})
}
