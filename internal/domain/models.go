package domain

import "time"

// Timestamps are epoch milliseconds throughout, matching the persisted
// state blob. Zero means "not set".

// Article is a named grocery/household item, the unit of demand and stock.
type Article struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Unit         string `json:"unit,omitempty"`
	UseDays      int    `json:"useDays"`
	UseDaysScope string `json:"useDaysScope"`
	CreatedAt    int64  `json:"createdAt"`
}

// RecipeItem references an article with a required quantity. Checked is a
// tri-state on the wire: absent means checked.
type RecipeItem struct {
	ArticleID int64  `json:"articleId"`
	Qty       int    `json:"qty"`
	Unit      string `json:"unit,omitempty"`
	Checked   *bool  `json:"checked,omitempty"`
}

// IsChecked reports whether the item is selected for shopping/consumption.
func (it RecipeItem) IsChecked() bool {
	return it.Checked == nil || *it.Checked
}

// SetChecked stores an explicit checked flag.
func (it *RecipeItem) SetChecked(v bool) {
	it.Checked = &v
}

type Recipe struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Tags        string       `json:"tags,omitempty"`
	Description string       `json:"description,omitempty"`
	Items       []RecipeItem `json:"items"`
	CreatedAt   int64        `json:"createdAt"`
}

// Source types on a shopping line.
const (
	SourceRecipe = "recipe"
	SourceManual = "manual"
)

// Source records where part of a shopping line's quantity came from.
type Source struct {
	Type     string `json:"type"`
	RecipeID int64  `json:"recipeId,omitempty"`
	Qty      int    `json:"qty"`
}

// ShoppingLine is the single line for a distinct article currently wanted.
// Its quantity is always the sum of its source quantities.
type ShoppingLine struct {
	ID        int64    `json:"id"`
	ArticleID int64    `json:"articleId"`
	Qty       int      `json:"qty"`
	Unit      string   `json:"unit"`
	Sources   []Source `json:"sources"`
	Selected  bool     `json:"selected"`
	CreatedAt int64    `json:"createdAt"`
}

// InventoryLot is one purchased batch of an article with its own aging clock.
type InventoryLot struct {
	ID                  int64  `json:"id"`
	ArticleID           int64  `json:"articleId"`
	Qty                 int    `json:"qty"`
	Unit                string `json:"unit"`
	PurchasedAt         int64  `json:"purchasedAt"`
	UseDays             int    `json:"useDays"`
	UseDaysScope        string `json:"useDaysScope"`
	CycleStartedAt      int64  `json:"cycleStartedAt,omitempty"`
	UseByAt             int64  `json:"useByAt,omitempty"`
	Consumed            bool   `json:"consumed"`
	ConsumedAt          int64  `json:"consumedAt,omitempty"`
	LastAutoConsumedAt  int64  `json:"lastAutoConsumedAt,omitempty"`
	LastAutoConsumedQty int    `json:"lastAutoConsumedQty,omitempty"`
}

// HistoryItem is one purchased article inside a history entry, with a
// snapshot of the shopping line's sources at confirmation time.
type HistoryItem struct {
	ArticleID int64    `json:"articleId"`
	NeededQty int      `json:"neededQty"`
	BoughtQty int      `json:"boughtQty"`
	Unit      string   `json:"unit"`
	Sources   []Source `json:"sources"`
}

type HistoryEntry struct {
	ID          int64         `json:"id"`
	PurchasedAt int64         `json:"purchasedAt"`
	Items       []HistoryItem `json:"items"`
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MsDay converts whole days to milliseconds.
func MsDay(days int) int64 {
	return int64(days) * 24 * 60 * 60 * 1000
}
