package shopping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
)

const day = int64(24 * 60 * 60 * 1000)

func purchaseState() *domain.State {
	st := domain.NewState()
	st.Seq = 100
	st.Articles = append(st.Articles,
		&domain.Article{ID: 1, Name: "Milch", Unit: "ml", UseDays: 14, UseDaysScope: catalog.ScopeAll},
		&domain.Article{ID: 2, Name: "Joghurt", UseDays: 7, UseDaysScope: catalog.ScopePerItem},
	)
	return st
}

func TestConfirmPurchaseCreatesLotsAndHistory(t *testing.T) {
	st := purchaseState()
	AddManual(st, 1, 3, "", 1000)
	line := st.ShoppingLineByArticle(1)
	line.Selected = true

	now := 30 * day
	entry := ConfirmPurchase(st, map[int64]int{line.ID: 2}, now)

	require.NotNil(t, entry)
	require.Equal(t, now, entry.PurchasedAt)
	require.Len(t, entry.Items, 1)
	require.Equal(t, 3, entry.Items[0].NeededQty)
	require.Equal(t, 2, entry.Items[0].BoughtQty)
	require.Equal(t, "ml", entry.Items[0].Unit)
	require.Equal(t, []domain.Source{{Type: domain.SourceManual, Qty: 3}}, entry.Items[0].Sources,
		"history snapshots the sources before they are reduced")

	require.Len(t, st.Inventory, 1)
	lot := st.Inventory[0]
	require.Equal(t, 2, lot.Qty)
	require.Equal(t, now, lot.PurchasedAt)
	require.Equal(t, 14, lot.UseDays)
	require.Equal(t, now+14*day, lot.UseByAt)
	require.Zero(t, lot.CycleStartedAt, "all-at-once lots carry no cycle anchor")

	// 1 of 3 remains wanted; the line survives unselected.
	require.Equal(t, 1, st.ShoppingLineByArticle(1).Qty)
	require.False(t, st.ShoppingLineByArticle(1).Selected)
	require.Len(t, st.History, 1)
}

func TestConfirmPurchasePerItemLotStartsCycleNow(t *testing.T) {
	st := purchaseState()
	AddManual(st, 2, 2, "", 1000)
	line := st.ShoppingLineByArticle(2)
	line.Selected = true

	now := 10 * day
	entry := ConfirmPurchase(st, map[int64]int{line.ID: 2}, now)

	require.NotNil(t, entry)
	lot := st.Inventory[0]
	require.Equal(t, catalog.ScopePerItem, lot.UseDaysScope)
	require.Equal(t, now, lot.CycleStartedAt)
	require.Equal(t, now+7*day, lot.UseByAt)
}

func TestConfirmPurchaseFullySatisfiedLineLeavesTheList(t *testing.T) {
	st := purchaseState()
	AddManual(st, 1, 2, "", 1000)
	line := st.ShoppingLineByArticle(1)
	line.Selected = true

	entry := ConfirmPurchase(st, map[int64]int{line.ID: 2}, 10*day)

	require.NotNil(t, entry)
	require.Nil(t, st.ShoppingLineByArticle(1))
	require.Empty(t, st.Shopping)
}

func TestConfirmPurchaseZeroBoughtOnlyClearsSelection(t *testing.T) {
	st := purchaseState()
	AddManual(st, 1, 2, "", 1000)
	line := st.ShoppingLineByArticle(1)
	line.Selected = true

	entry := ConfirmPurchase(st, map[int64]int{}, 10*day)

	require.Nil(t, entry, "nothing bought, no history entry")
	require.Empty(t, st.Inventory)
	require.False(t, line.Selected)
	require.Equal(t, 2, line.Qty, "the demand is untouched")
}

func TestConfirmPurchaseIgnoresUnselectedLines(t *testing.T) {
	st := purchaseState()
	AddManual(st, 1, 2, "", 1000)
	line := st.ShoppingLineByArticle(1)

	entry := ConfirmPurchase(st, map[int64]int{line.ID: 2}, 10*day)

	require.Nil(t, entry)
	require.Empty(t, st.Inventory)
	require.Equal(t, 2, line.Qty)
}

func TestConfirmPurchaseAllocatesEntryIDBeforeLots(t *testing.T) {
	st := purchaseState()
	AddManual(st, 1, 1, "", 1000)
	line := st.ShoppingLineByArticle(1)
	line.Selected = true

	entry := ConfirmPurchase(st, map[int64]int{line.ID: 1}, 10*day)

	require.NotNil(t, entry)
	require.Less(t, entry.ID, st.Inventory[0].ID)
}
