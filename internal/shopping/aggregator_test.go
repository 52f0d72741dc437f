package shopping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhofstetter/homestorage/internal/domain"
)

func stateWithArticle() *domain.State {
	st := domain.NewState()
	st.Articles = append(st.Articles, &domain.Article{ID: 1, Name: "Knoblauch", Unit: "Zehe"})
	return st
}

func TestEnsureLineCreatesAtHeadWithResolvedUnit(t *testing.T) {
	st := stateWithArticle()
	st.Shopping = append(st.Shopping, &domain.ShoppingLine{ID: 99, ArticleID: 42})

	line := EnsureLine(st, 1, "", 1000)

	require.Same(t, line, st.Shopping[0], "new lines go to the head")
	require.Equal(t, "Zehe", line.Unit, "unit falls back to the article")
	require.EqualValues(t, 1000, line.CreatedAt)
	require.NotNil(t, line.Sources)

	again := EnsureLine(st, 1, "g", 2000)
	require.Same(t, line, again, "one line per article")
	require.Equal(t, "g", again.Unit, "an explicit unit wins")
}

func TestAddFromRecipeReplacesInsteadOfStacking(t *testing.T) {
	st := stateWithArticle()

	AddFromRecipe(st, 1, 7, 3, "", 1000)
	line := AddFromRecipe(st, 1, 7, 3, "", 2000)

	require.Equal(t, 3, line.Qty, "re-adding the same recipe never double-counts")
	require.Len(t, line.Sources, 1)
	require.Equal(t, domain.Source{Type: domain.SourceRecipe, RecipeID: 7, Qty: 3}, line.Sources[0])

	// A different quantity replaces, not accumulates.
	line = AddFromRecipe(st, 1, 7, 5, "", 3000)
	require.Equal(t, 5, line.Qty)
}

func TestAddFromRecipeKeepsSourcesPerRecipeSeparate(t *testing.T) {
	st := stateWithArticle()

	AddFromRecipe(st, 1, 7, 2, "", 1000)
	line := AddFromRecipe(st, 1, 8, 3, "", 1000)

	require.Equal(t, 5, line.Qty)
	require.Len(t, line.Sources, 2)
}

func TestAddManualAccumulates(t *testing.T) {
	st := stateWithArticle()

	AddManual(st, 1, 3, "", 1000)
	line := AddManual(st, 1, 3, "", 2000)

	require.Equal(t, 6, line.Qty)
	require.Len(t, line.Sources, 1, "manual demand shares one source")
}

func TestAddQuantitiesClampToAtLeastOne(t *testing.T) {
	st := stateWithArticle()

	require.Equal(t, 1, AddManual(st, 1, 0, "", 1000).Qty)

	st2 := stateWithArticle()
	require.Equal(t, 1, AddFromRecipe(st2, 1, 7, -4, "", 1000).Qty)
}

func TestReduceSourcesAfterPurchaseDrainsInInsertionOrder(t *testing.T) {
	line := &domain.ShoppingLine{
		ID: 1, ArticleID: 1, Qty: 5,
		Sources: []domain.Source{
			{Type: domain.SourceRecipe, RecipeID: 7, Qty: 2},
			{Type: domain.SourceManual, Qty: 3},
		},
	}

	ReduceSourcesAfterPurchase(line, 4)

	require.Equal(t, 1, line.Qty)
	require.Len(t, line.Sources, 1, "drained sources are dropped")
	require.Equal(t, domain.Source{Type: domain.SourceManual, Qty: 1}, line.Sources[0])
}

func TestReduceSourcesAfterPurchaseDiscardsExcess(t *testing.T) {
	line := &domain.ShoppingLine{
		ID: 1, ArticleID: 1, Qty: 2,
		Sources: []domain.Source{{Type: domain.SourceManual, Qty: 2}},
	}

	ReduceSourcesAfterPurchase(line, 10)

	require.Zero(t, line.Qty)
	require.Empty(t, line.Sources)
}

func TestActiveLinesHidesZeroQty(t *testing.T) {
	st := stateWithArticle()
	st.Shopping = append(st.Shopping,
		&domain.ShoppingLine{ID: 1, ArticleID: 1, Qty: 2},
		&domain.ShoppingLine{ID: 2, ArticleID: 2, Qty: 0},
	)

	lines := ActiveLines(st)

	require.Len(t, lines, 1)
	require.EqualValues(t, 1, lines[0].ID)
}

func TestSortLinesForDisplayByCategoryThenName(t *testing.T) {
	st := domain.NewState()
	st.Articles = append(st.Articles,
		&domain.Article{ID: 1, Name: "Zwiebeln", Category: "Früchte & Gemüse"},
		&domain.Article{ID: 2, Name: "Äpfel", Category: "Früchte & Gemüse"},
		&domain.Article{ID: 3, Name: "Abfallsäcke"}, // unclassified sorts last
	)
	lines := []*domain.ShoppingLine{
		{ID: 10, ArticleID: 3, Qty: 1},
		{ID: 11, ArticleID: 1, Qty: 1},
		{ID: 12, ArticleID: 2, Qty: 1},
	}

	SortLinesForDisplay(st, lines)

	require.EqualValues(t, 12, lines[0].ID)
	require.EqualValues(t, 11, lines[1].ID)
	require.EqualValues(t, 10, lines[2].ID)
}
