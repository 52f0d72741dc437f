package domain

import "strings"

// State is the whole application aggregate. It is owned by a single session,
// mutated in place and persisted as one blob after every mutation.
type State struct {
	Articles  []*Article      `json:"articles"`
	Recipes   []*Recipe       `json:"recipes"`
	Shopping  []*ShoppingLine `json:"shopping"`
	Inventory []*InventoryLot `json:"inventory"`
	History   []*HistoryEntry `json:"history"`
	Seq       int64           `json:"seq"`
}

// NewState returns an empty aggregate with the sequence counter at 1.
func NewState() *State {
	st := &State{}
	st.Normalize()
	return st
}

// Normalize repairs a state loaded from storage: nil collections become
// empty slices and the sequence counter is coerced to a positive value.
func (st *State) Normalize() {
	if st.Articles == nil {
		st.Articles = []*Article{}
	}
	if st.Recipes == nil {
		st.Recipes = []*Recipe{}
	}
	if st.Shopping == nil {
		st.Shopping = []*ShoppingLine{}
	}
	if st.Inventory == nil {
		st.Inventory = []*InventoryLot{}
	}
	if st.History == nil {
		st.History = []*HistoryEntry{}
	}
	if st.Seq < 1 {
		st.Seq = 1
	}
	for _, r := range st.Recipes {
		if r.Items == nil {
			r.Items = []RecipeItem{}
		}
	}
	for _, l := range st.Shopping {
		if l.Sources == nil {
			l.Sources = []Source{}
		}
	}
	for _, h := range st.History {
		if h.Items == nil {
			h.Items = []HistoryItem{}
		}
	}
}

// NextID returns the current sequence value and advances it. IDs are never
// reused and never gap-filled.
func (st *State) NextID() int64 {
	if st.Seq < 1 {
		st.Seq = 1
	}
	id := st.Seq
	st.Seq++
	return id
}

// ArticleByID scans the catalog for an article. O(n) is fine at household scale.
func (st *State) ArticleByID(id int64) *Article {
	for _, a := range st.Articles {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// RecipeByID scans for a recipe by id.
func (st *State) RecipeByID(id int64) *Recipe {
	for _, r := range st.Recipes {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ArticleByName finds an article by case-insensitive name match, skipping
// the article with excludeID. Used for duplicate-name checks on upsert.
func (st *State) ArticleByName(name string, excludeID int64) *Article {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, a := range st.Articles {
		if a.ID == excludeID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(a.Name)) == needle {
			return a
		}
	}
	return nil
}

// ShoppingLineByArticle returns the line for an article, or nil.
func (st *State) ShoppingLineByArticle(articleID int64) *ShoppingLine {
	for _, l := range st.Shopping {
		if l.ArticleID == articleID {
			return l
		}
	}
	return nil
}

// ShoppingLineByID returns the line with the given id, or nil.
func (st *State) ShoppingLineByID(id int64) *ShoppingLine {
	for _, l := range st.Shopping {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LotByID returns the inventory lot with the given id, or nil.
func (st *State) LotByID(id int64) *InventoryLot {
	for _, l := range st.Inventory {
		if l.ID == id {
			return l
		}
	}
	return nil
}
