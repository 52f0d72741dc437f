package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateRecipeDefaultsName(t *testing.T) {
	s, _ := newTestSession(t)

	r := s.CreateRecipe(context.Background(), RecipeInput{Name: "   "})
	require.Equal(t, "Neues Rezept", r.Name)

	named := s.CreateRecipe(context.Background(), RecipeInput{Name: " Lasagne ", Tags: " italienisch "})
	require.Equal(t, "Lasagne", named.Name)
	require.Equal(t, "italienisch", named.Tags)
}

func TestUpdateRecipeEmptyNameIsNoOp(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	r := s.CreateRecipe(ctx, RecipeInput{Name: "Lasagne"})

	require.False(t, s.UpdateRecipe(ctx, r.ID, RecipeInput{Name: "  "}))
	require.True(t, s.UpdateRecipe(ctx, r.ID, RecipeInput{Name: "Lasagne al forno"}))

	detail, ok := s.RecipeDetail(ctx, r.ID)
	require.True(t, ok)
	require.Equal(t, "Lasagne al forno", detail.Name)
}

func TestRecipeItemLifecycle(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	a := mustCreateArticle(t, s, ArticleInput{Name: "Knoblauch", Unit: "Zehe"})
	r := s.CreateRecipe(ctx, RecipeInput{Name: "Aioli"})

	require.False(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: 9999, Qty: 1}), "unknown article no-ops")
	require.True(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: a.ID, Qty: 0}))

	detail, _ := s.RecipeDetail(ctx, r.ID)
	require.Len(t, detail.Items, 1)
	require.Equal(t, 1, detail.Items[0].Qty, "zero quantity clamps to one")
	require.True(t, detail.Items[0].Checked, "new items start checked")

	unchecked := false
	require.True(t, s.UpdateRecipeItem(ctx, r.ID, 0, RecipeItemInput{Checked: &unchecked}))
	detail, _ = s.RecipeDetail(ctx, r.ID)
	require.False(t, detail.Items[0].Checked)
	require.Equal(t, 1, detail.Items[0].Qty, "zero quantity in an edit means unchanged")

	require.True(t, s.ResetChecks(ctx, r.ID))
	detail, _ = s.RecipeDetail(ctx, r.ID)
	require.True(t, detail.Items[0].Checked)

	require.False(t, s.RemoveRecipeItem(ctx, r.ID, 5))
	require.True(t, s.RemoveRecipeItem(ctx, r.ID, 0))
	detail, _ = s.RecipeDetail(ctx, r.ID)
	require.Empty(t, detail.Items)
}

func TestAddRecipeToShoppingOnlyCheckedItems(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	garlic := mustCreateArticle(t, s, ArticleInput{Name: "Knoblauch", Unit: "Zehe"})
	oil := mustCreateArticle(t, s, ArticleInput{Name: "Olivenöl", Unit: "ml"})
	r := s.CreateRecipe(ctx, RecipeInput{Name: "Aioli"})
	require.True(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: garlic.ID, Qty: 3}))
	require.True(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: oil.ID, Qty: 100}))

	unchecked := false
	require.True(t, s.UpdateRecipeItem(ctx, r.ID, 1, RecipeItemInput{Checked: &unchecked}))

	added, ok := s.AddRecipeToShopping(ctx, r.ID)
	require.True(t, ok)
	require.Equal(t, 1, added)

	lines := s.ShoppingLines()
	require.Len(t, lines, 1)
	require.Equal(t, garlic.ID, lines[0].ArticleID)
	require.Equal(t, 3, lines[0].Qty)
	require.Equal(t, "Zehe", lines[0].Unit)

	// Re-adding replaces the recipe source instead of stacking.
	added, ok = s.AddRecipeToShopping(ctx, r.ID)
	require.True(t, ok)
	require.Equal(t, 1, added)
	require.Equal(t, 3, s.ShoppingLines()[0].Qty)
}

func TestDeleteRecipeStripsItsShoppingSources(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	garlic := mustCreateArticle(t, s, ArticleInput{Name: "Knoblauch"})
	r := s.CreateRecipe(ctx, RecipeInput{Name: "Aioli"})
	require.True(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: garlic.ID, Qty: 3}))
	_, ok := s.AddRecipeToShopping(ctx, r.ID)
	require.True(t, ok)

	// Manual demand on the same line survives the recipe deletion.
	require.True(t, s.AddManualToShopping(ctx, garlic.ID, 2, ""))
	require.Equal(t, 5, s.ShoppingLines()[0].Qty)

	require.True(t, s.DeleteRecipe(ctx, r.ID))

	lines := s.ShoppingLines()
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Qty)
	require.Empty(t, s.Recipes(ctx, ""))
}

func TestDeleteRecipeDropsSourcelessLines(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	garlic := mustCreateArticle(t, s, ArticleInput{Name: "Knoblauch"})
	r := s.CreateRecipe(ctx, RecipeInput{Name: "Aioli"})
	require.True(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: garlic.ID, Qty: 3}))
	_, ok := s.AddRecipeToShopping(ctx, r.ID)
	require.True(t, ok)

	require.True(t, s.DeleteRecipe(ctx, r.ID))
	require.Empty(t, s.ShoppingLines())
}

func TestConsumeRecipeReportsShortages(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	garlic := mustCreateArticle(t, s, ArticleInput{Name: "Knoblauch", Unit: "Zehe"})
	r := s.CreateRecipe(ctx, RecipeInput{Name: "Aioli"})
	require.True(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: garlic.ID, Qty: 5}))

	// Stock only 3 of the needed 5.
	require.True(t, s.AddManualToShopping(ctx, garlic.ID, 3, ""))
	lines := s.ShoppingLines()
	require.True(t, s.SetLineSelected(ctx, lines[0].ID, true))
	require.NotNil(t, s.ConfirmPurchase(ctx, map[int64]int{lines[0].ID: 3}))

	shortages, ok := s.ConsumeRecipe(ctx, r.ID, nil)
	require.True(t, ok)
	require.Len(t, shortages, 1)
	require.Equal(t, Shortage{ArticleID: garlic.ID, Name: "Knoblauch", Missing: 2, Unit: "Zehe"}, shortages[0])
	require.Equal(t, 0, s.InventoryLots(ctx)[0].Qty, "whatever was there is consumed")
}

func TestConsumeRecipeOverrides(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	garlic := mustCreateArticle(t, s, ArticleInput{Name: "Knoblauch"})
	r := s.CreateRecipe(ctx, RecipeInput{Name: "Aioli"})
	require.True(t, s.AddRecipeItem(ctx, r.ID, RecipeItemInput{ArticleID: garlic.ID, Qty: 5}))

	require.True(t, s.AddManualToShopping(ctx, garlic.ID, 4, ""))
	lines := s.ShoppingLines()
	require.True(t, s.SetLineSelected(ctx, lines[0].ID, true))
	require.NotNil(t, s.ConfirmPurchase(ctx, map[int64]int{lines[0].ID: 4}))

	// Only 2 actually used: no shortage, 2 remain.
	shortages, ok := s.ConsumeRecipe(ctx, r.ID, map[int64]int{garlic.ID: 2})
	require.True(t, ok)
	require.Empty(t, shortages)
	require.Equal(t, 2, s.InventoryLots(ctx)[0].Qty)
}

func TestConsumeRecipeUnknownRecipe(t *testing.T) {
	s, _ := newTestSession(t)
	_, ok := s.ConsumeRecipe(context.Background(), 42, nil)
	require.False(t, ok)
}

func TestRecipesSearchMatchesItemNames(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	garlic := mustCreateArticle(t, s, ArticleInput{Name: "Knoblauch"})
	aioli := s.CreateRecipe(ctx, RecipeInput{Name: "Aioli"})
	s.CreateRecipe(ctx, RecipeInput{Name: "Pfannkuchen", Tags: "süss"})
	require.True(t, s.AddRecipeItem(ctx, aioli.ID, RecipeItemInput{ArticleID: garlic.ID, Qty: 1}))

	require.Len(t, s.Recipes(ctx, ""), 2)

	byIngredient := s.Recipes(ctx, "knoblauch")
	require.Len(t, byIngredient, 1)
	require.Equal(t, "Aioli", byIngredient[0].Name)

	byTag := s.Recipes(ctx, "süss")
	require.Len(t, byTag, 1)
	require.Equal(t, "Pfannkuchen", byTag[0].Name)
}
