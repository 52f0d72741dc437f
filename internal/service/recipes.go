package service

import (
	"context"
	"sort"
	"strings"

	"github.com/mhofstetter/homestorage/internal/allocation"
	"github.com/mhofstetter/homestorage/internal/catalog"
	"github.com/mhofstetter/homestorage/internal/domain"
	"github.com/mhofstetter/homestorage/internal/inventory"
	"github.com/mhofstetter/homestorage/internal/shopping"
)

// defaultRecipeName labels a freshly created recipe until the user renames it.
const defaultRecipeName = "Neues Rezept"

// RecipeInput carries the editable header attributes of a recipe.
type RecipeInput struct {
	Name        string `json:"name"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
}

// RecipeItemInput adds or edits one ingredient line.
type RecipeItemInput struct {
	ArticleID int64  `json:"articleId"`
	Qty       int    `json:"qty"`
	Unit      string `json:"unit"`
	Checked   *bool  `json:"checked"`
}

// RecipeListEntry pairs a recipe with its allocation standing.
type RecipeListEntry struct {
	ID          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Tags        string                  `json:"tags,omitempty"`
	Description string                  `json:"description,omitempty"`
	Items       int                     `json:"items"`
	Status      allocation.RecipeStatus `json:"status"`
	Counts      allocation.Counts       `json:"counts"`
}

// RecipeItemView is one ingredient with resolved labels and coverage.
type RecipeItemView struct {
	Index       int     `json:"index"`
	ArticleID   int64   `json:"articleId"`
	ArticleName string  `json:"articleName"`
	Qty         int     `json:"qty"`
	Unit        string  `json:"unit"`
	Checked     bool    `json:"checked"`
	Need        int     `json:"need"`
	InvCover    int     `json:"invCover"`
	ShopCover   int     `json:"shopCover"`
	Missing     int     `json:"missing"`
	InvPct      float64 `json:"invPct"`
	ShopEnd     float64 `json:"shopEnd"`
}

// RecipeDetail is the full right-pane view of one recipe.
type RecipeDetail struct {
	ID          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Tags        string                  `json:"tags,omitempty"`
	Description string                  `json:"description,omitempty"`
	CreatedAt   int64                   `json:"createdAt"`
	Status      allocation.RecipeStatus `json:"status"`
	Counts      allocation.Counts       `json:"counts"`
	Items       []RecipeItemView        `json:"items"`
}

// Shortage reports one article the inventory could not fully cover.
type Shortage struct {
	ArticleID int64  `json:"articleId"`
	Name      string `json:"name"`
	Missing   int    `json:"missing"`
	Unit      string `json:"unit"`
}

// Recipes lists recipes with allocation status, filtered by a
// case-insensitive search over name, tags, description and item names.
func (s *Session) Recipes(ctx context.Context, query string) []RecipeListEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoConsume(ctx)
	res := allocation.Compute(s.st)

	q := strings.ToLower(strings.TrimSpace(query))
	var out []RecipeListEntry
	for _, r := range s.st.Recipes {
		if q != "" && !s.recipeMatches(r, q) {
			continue
		}
		out = append(out, RecipeListEntry{
			ID:          r.ID,
			Name:        r.Name,
			Tags:        r.Tags,
			Description: r.Description,
			Items:       len(r.Items),
			Status:      allocation.StatusFor(r, res),
			Counts:      allocation.CountsFor(r, res),
		})
	}
	return out
}

func (s *Session) recipeMatches(r *domain.Recipe, q string) bool {
	var names []string
	for _, it := range r.Items {
		if a := s.st.ArticleByID(it.ArticleID); a != nil {
			names = append(names, a.Name)
		}
	}
	hay := strings.ToLower(r.Name + " " + r.Tags + " " + r.Description + " " + strings.Join(names, " "))
	return strings.Contains(hay, q)
}

// RecipeDetail returns the allocation-decorated view of one recipe.
func (s *Session) RecipeDetail(ctx context.Context, id int64) (*RecipeDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(id)
	if r == nil {
		return nil, false
	}

	s.autoConsume(ctx)
	res := allocation.Compute(s.st)

	d := &RecipeDetail{
		ID:          r.ID,
		Name:        r.Name,
		Tags:        r.Tags,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		Status:      allocation.StatusFor(r, res),
		Counts:      allocation.CountsFor(r, res),
		Items:       make([]RecipeItemView, 0, len(r.Items)),
	}

	for idx, it := range r.Items {
		a := s.st.ArticleByID(it.ArticleID)
		name := unknownArticleLabel
		if a != nil {
			name = a.Name
		}
		cov := allocation.ItemCoverageFor(r.ID, it, res)
		d.Items = append(d.Items, RecipeItemView{
			Index:       idx,
			ArticleID:   it.ArticleID,
			ArticleName: name,
			Qty:         max(1, it.Qty),
			Unit:        catalog.RecipeItemUnit(it, a),
			Checked:     it.IsChecked(),
			Need:        cov.Need,
			InvCover:    cov.InvCover,
			ShopCover:   cov.ShopCover,
			Missing:     cov.Missing,
			InvPct:      cov.InvPct,
			ShopEnd:     cov.ShopEnd,
		})
	}
	return d, true
}

// CreateRecipe adds a recipe; an empty name gets the default placeholder.
func (s *Session) CreateRecipe(ctx context.Context, in RecipeInput) *domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultRecipeName
	}

	r := &domain.Recipe{
		ID:          s.st.NextID(),
		Name:        name,
		Tags:        strings.TrimSpace(in.Tags),
		Description: strings.TrimSpace(in.Description),
		Items:       []domain.RecipeItem{},
		CreatedAt:   s.now(),
	}
	s.st.Recipes = append([]*domain.Recipe{r}, s.st.Recipes...)
	s.persist(ctx)
	return r
}

// UpdateRecipe edits the recipe header. An empty name is a silent no-op.
func (s *Session) UpdateRecipe(ctx context.Context, id int64, in RecipeInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(id)
	if r == nil {
		return false
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return false
	}

	r.Name = name
	r.Tags = strings.TrimSpace(in.Tags)
	r.Description = strings.TrimSpace(in.Description)
	s.persist(ctx)
	return true
}

// DeleteRecipe removes a recipe and strips its sources from shopping lines;
// lines left without sources disappear.
func (s *Session) DeleteRecipe(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipes := s.st.Recipes[:0]
	removed := false
	for _, r := range s.st.Recipes {
		if r.ID == id {
			removed = true
			continue
		}
		recipes = append(recipes, r)
	}
	if !removed {
		return false
	}
	s.st.Recipes = recipes

	lines := s.st.Shopping[:0]
	for _, l := range s.st.Shopping {
		sources := l.Sources[:0]
		for _, src := range l.Sources {
			if src.Type == domain.SourceRecipe && src.RecipeID == id {
				continue
			}
			sources = append(sources, src)
		}
		l.Sources = sources
		if len(l.Sources) == 0 {
			continue
		}
		shopping.RecomputeLineQty(l)
		lines = append(lines, l)
	}
	s.st.Shopping = lines

	s.persist(ctx)
	return true
}

// AddRecipeItem appends an ingredient line. Unknown articles no-op.
func (s *Session) AddRecipeItem(ctx context.Context, recipeID int64, in RecipeItemInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(recipeID)
	if r == nil || s.st.ArticleByID(in.ArticleID) == nil {
		return false
	}

	it := domain.RecipeItem{
		ArticleID: in.ArticleID,
		Qty:       max(1, in.Qty),
		Unit:      catalog.NormalizeUnit(in.Unit),
	}
	it.SetChecked(true)
	r.Items = append(r.Items, it)
	s.persist(ctx)
	return true
}

// UpdateRecipeItem edits quantity, unit or the checked flag of the item at
// the given index.
func (s *Session) UpdateRecipeItem(ctx context.Context, recipeID int64, index int, in RecipeItemInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(recipeID)
	if r == nil || index < 0 || index >= len(r.Items) {
		return false
	}

	it := &r.Items[index]
	if in.Qty != 0 {
		it.Qty = max(1, in.Qty)
	}
	if strings.TrimSpace(in.Unit) != "" {
		it.Unit = catalog.NormalizeUnit(in.Unit)
	}
	if in.Checked != nil {
		it.SetChecked(*in.Checked)
	}
	s.persist(ctx)
	return true
}

// RemoveRecipeItem deletes the item at the given index.
func (s *Session) RemoveRecipeItem(ctx context.Context, recipeID int64, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(recipeID)
	if r == nil || index < 0 || index >= len(r.Items) {
		return false
	}
	r.Items = append(r.Items[:index], r.Items[index+1:]...)
	s.persist(ctx)
	return true
}

// ResetChecks re-checks every item of a recipe.
func (s *Session) ResetChecks(ctx context.Context, recipeID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(recipeID)
	if r == nil {
		return false
	}
	for i := range r.Items {
		r.Items[i].SetChecked(true)
	}
	s.persist(ctx)
	return true
}

// AddRecipeToShopping puts every checked item of a recipe on the shopping
// list, quantity exactly as the recipe says. Re-running replaces the
// recipe's sources instead of stacking them. Returns how many items were
// added.
func (s *Session) AddRecipeToShopping(ctx context.Context, recipeID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(recipeID)
	if r == nil {
		return 0, false
	}

	added := 0
	now := s.now()
	for _, it := range r.Items {
		if !it.IsChecked() {
			continue
		}
		a := s.st.ArticleByID(it.ArticleID)
		unit := catalog.RecipeItemUnit(it, a)
		shopping.AddFromRecipe(s.st, it.ArticleID, r.ID, max(1, it.Qty), unit, now)
		added++
	}
	if added > 0 {
		s.persist(ctx)
	}
	return added, true
}

// ConsumeRecipe draws a recipe's quantities straight from inventory,
// bypassing the shopping list. overrides replaces the per-article requested
// quantity; nil means "as the recipe says". Shortages are reported, never
// raised.
func (s *Session) ConsumeRecipe(ctx context.Context, recipeID int64, overrides map[int64]int) ([]Shortage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.st.RecipeByID(recipeID)
	if r == nil {
		return nil, false
	}

	s.autoConsume(ctx)
	now := s.now()

	// Aggregate requests per article; a recipe may list an article twice.
	type request struct {
		articleID int64
		name      string
		unit      string
		qty       int
	}
	var order []int64
	requests := map[int64]*request{}
	for _, it := range r.Items {
		a := s.st.ArticleByID(it.ArticleID)
		qty := max(1, it.Qty)
		if override, ok := overrides[it.ArticleID]; ok {
			qty = max(0, override)
		}
		if qty == 0 {
			continue
		}
		req, ok := requests[it.ArticleID]
		if !ok {
			name := unknownArticleLabel
			if a != nil {
				name = a.Name
			}
			req = &request{articleID: it.ArticleID, name: name, unit: catalog.RecipeItemUnit(it, a)}
			requests[it.ArticleID] = req
			order = append(order, it.ArticleID)
		}
		if _, ok := overrides[it.ArticleID]; ok {
			req.qty = max(0, overrides[it.ArticleID])
		} else {
			req.qty += qty
		}
	}

	changed := false
	var shortages []Shortage
	for _, articleID := range order {
		req := requests[articleID]
		available := inventory.AvailableBase(s.st, articleID)
		toConsume := min(req.qty, available)
		if toConsume > 0 {
			res := inventory.ConsumeByArticle(s.st, articleID, toConsume, inventory.ConsumeOptions{ResetCycle: true, Now: now})
			if res.Consumed > 0 {
				changed = true
			}
		}
		if req.qty > available {
			shortages = append(shortages, Shortage{
				ArticleID: articleID,
				Name:      req.name,
				Missing:   req.qty - available,
				Unit:      req.unit,
			})
		}
	}

	if changed {
		s.persist(ctx)
	}
	sort.SliceStable(shortages, func(i, j int) bool {
		return catalog.CompareNames(shortages[i].Name, shortages[j].Name) < 0
	})
	return shortages, true
}
