// Package inventory implements the lot timing and consumption engine: use-by
// computation, pull-based auto-consumption of per-item aging cycles, and
// urgency-ordered stock consumption.
package inventory

import (
	"sort"

	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
)

// Event records one auto-consumption on a lot's article.
type Event struct {
	ArticleID int64 `json:"articleId"`
	Qty       int   `json:"qty"`
}

// ConsumeOptions control how consumption interacts with per-item cycles.
type ConsumeOptions struct {
	// ResetCycle restarts the aging cycle of a partially consumed per-item
	// lot from Now instead of preserving the existing anchor.
	ResetCycle bool
	// Now is the reference time in epoch millis. Zero means current time.
	Now int64
}

func (o ConsumeOptions) now() int64 {
	if o.Now > 0 {
		return o.Now
	}
	return domain.NowMillis()
}

// Result reports how much of a requested consumption could be satisfied.
// Remaining > 0 is a soft shortage, not an error.
type Result struct {
	Consumed  int `json:"consumed"`
	Remaining int `json:"remaining"`
}

// LotUseDays resolves a lot's use-days, falling back to its article.
func LotUseDays(st *domain.State, lot *domain.InventoryLot) int {
	if lot.UseDays > 0 {
		return lot.UseDays
	}
	if lot.UseDays == 0 {
		if a := st.ArticleByID(lot.ArticleID); a != nil && a.UseDays > 0 {
			return a.UseDays
		}
	}
	return max(0, lot.UseDays)
}

// LotScope resolves a lot's use-days scope, falling back to its article.
func LotScope(st *domain.State, lot *domain.InventoryLot) string {
	if lot.UseDaysScope != "" {
		return catalog.NormalizeUseDaysScope(lot.UseDaysScope)
	}
	if a := st.ArticleByID(lot.ArticleID); a != nil && a.UseDaysScope != "" {
		return catalog.NormalizeUseDaysScope(a.UseDaysScope)
	}
	return catalog.DefaultScope
}

// EnsureTiming backfills a lot's timing fields and recomputes its use-by
// date. useDays 0 keeps UseByAt unset but still anchors CycleStartedAt at
// the purchase, so a later upward edit of useDays has a cycle to resume from.
func EnsureTiming(st *domain.State, lot *domain.InventoryLot, now int64) {
	if lot == nil {
		return
	}
	if now <= 0 {
		now = domain.NowMillis()
	}
	lot.UseDays = LotUseDays(st, lot)
	lot.UseDaysScope = LotScope(st, lot)

	purchasedAt := lot.PurchasedAt
	if purchasedAt <= 0 {
		purchasedAt = now
	}

	if lot.UseDays == 0 {
		lot.UseByAt = 0
		if lot.CycleStartedAt <= 0 {
			lot.CycleStartedAt = purchasedAt
		}
		return
	}

	if lot.UseDaysScope == catalog.ScopePerItem {
		if lot.CycleStartedAt <= 0 {
			lot.CycleStartedAt = purchasedAt
		}
		lot.UseByAt = lot.CycleStartedAt + domain.MsDay(lot.UseDays)
	} else {
		lot.UseByAt = purchasedAt + domain.MsDay(lot.UseDays)
	}
}

// ApplyAutoConsumption decrements per-item lots by one unit per elapsed
// aging cycle, advancing the cycle anchor by whole cycles. It must run
// before any read that depends on current stock. The caller persists the
// state once when changed is true.
func ApplyAutoConsumption(st *domain.State, now int64) (events []Event, changed bool) {
	if now <= 0 {
		now = domain.NowMillis()
	}

	for _, lot := range st.Inventory {
		EnsureTiming(st, lot, now)
		qty := max(0, lot.Qty)
		if qty == 0 || lot.UseDays == 0 {
			continue
		}
		if lot.UseDaysScope != catalog.ScopePerItem {
			continue
		}

		cycleStart := lot.CycleStartedAt
		if cycleStart <= 0 {
			cycleStart = lot.PurchasedAt
			if cycleStart <= 0 {
				cycleStart = now
			}
		}
		cycleMs := domain.MsDay(lot.UseDays)
		elapsed := now - cycleStart
		if elapsed < cycleMs {
			lot.UseByAt = cycleStart + cycleMs
			continue
		}

		cycles := int(elapsed / cycleMs)
		consume := min(qty, cycles)
		if consume == 0 {
			continue
		}

		lot.Qty = qty - consume
		lot.CycleStartedAt = cycleStart + int64(consume)*cycleMs
		lot.UseByAt = lot.CycleStartedAt + cycleMs
		lot.LastAutoConsumedAt = now
		lot.LastAutoConsumedQty = consume
		changed = true
		events = append(events, Event{ArticleID: lot.ArticleID, Qty: consume})
	}

	return events, changed
}

// ConsumeEntry removes up to qty from a single lot and returns the quantity
// actually taken. A per-item lot with remaining stock keeps or restarts its
// aging cycle depending on opts.ResetCycle; an all-at-once lot keeps its
// fixed use-by date, backfilling it if missing.
func ConsumeEntry(st *domain.State, lot *domain.InventoryLot, qty int, opts ConsumeOptions) int {
	if lot == nil {
		return 0
	}
	available := max(0, lot.Qty)
	take := min(available, max(0, qty))
	if take == 0 {
		return 0
	}

	lot.Qty = available - take

	now := opts.now()
	lot.UseDays = LotUseDays(st, lot)
	lot.UseDaysScope = LotScope(st, lot)

	switch {
	case lot.UseDays > 0 && lot.UseDaysScope == catalog.ScopePerItem:
		if lot.Qty > 0 {
			if opts.ResetCycle {
				lot.CycleStartedAt = now
			} else if lot.CycleStartedAt <= 0 {
				lot.CycleStartedAt = lot.PurchasedAt
				if lot.CycleStartedAt <= 0 {
					lot.CycleStartedAt = now
				}
			}
			lot.UseByAt = lot.CycleStartedAt + domain.MsDay(lot.UseDays)
		}
	case lot.UseDays > 0:
		if lot.UseByAt == 0 {
			base := lot.PurchasedAt
			if base <= 0 {
				base = now
			}
			lot.UseByAt = base + domain.MsDay(lot.UseDays)
		}
	}

	return take
}

// ConsumeByArticle consumes across all lots of an article, soonest use-by
// first (lots without a use-by date last), tie-broken by earliest purchase.
// Remaining > 0 signals insufficient stock; the caller reports it, nothing
// throws.
func ConsumeByArticle(st *domain.State, articleID int64, qty int, opts ConsumeOptions) Result {
	remaining := max(0, qty)
	if remaining == 0 {
		return Result{}
	}

	now := opts.now()
	opts.Now = now

	var lots []*domain.InventoryLot
	for _, lot := range st.Inventory {
		if lot.ArticleID == articleID && lot.Qty > 0 {
			lots = append(lots, lot)
		}
	}
	for _, lot := range lots {
		EnsureTiming(st, lot, now)
	}
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := useByOrInf(lots[i]), useByOrInf(lots[j])
		if a != b {
			return a < b
		}
		return lots[i].PurchasedAt < lots[j].PurchasedAt
	})

	consumed := 0
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		take := ConsumeEntry(st, lot, remaining, opts)
		remaining -= take
		consumed += take
	}

	return Result{Consumed: consumed, Remaining: remaining}
}

// AvailableBase sums the quantity across all live lots of an article. Callers
// run ApplyAutoConsumption first so the sum reflects post-aging stock.
func AvailableBase(st *domain.State, articleID int64) int {
	total := 0
	for _, lot := range st.Inventory {
		if lot.ArticleID == articleID && !lot.Consumed {
			total += max(0, lot.Qty)
		}
	}
	return total
}

// SortLotsForDisplay orders lots soonest use-by first (undated last),
// newest purchase first within the same date.
func SortLotsForDisplay(lots []*domain.InventoryLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := useByOrInf(lots[i]), useByOrInf(lots[j])
		if a != b {
			return a < b
		}
		return lots[i].PurchasedAt > lots[j].PurchasedAt
	})
}

func useByOrInf(lot *domain.InventoryLot) int64 {
	if lot.UseByAt == 0 {
		return int64(1)<<62 - 1
	}
	return lot.UseByAt
}
