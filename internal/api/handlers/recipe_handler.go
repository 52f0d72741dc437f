package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/service"
)

type RecipeHandler struct {
	session *service.Session
}

func NewRecipeHandler(session *service.Session) *RecipeHandler {
	return &RecipeHandler{session: session}
}

func (h *RecipeHandler) List(c *gin.Context) {
	recipes := h.session.Recipes(c.Request.Context(), c.Query("q"))
	if recipes == nil {
		recipes = []service.RecipeListEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, found := h.session.RecipeDetail(c.Request.Context(), id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	recipe := h.session.CreateRecipe(c.Request.Context(), in)
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": h.session.UpdateRecipe(c.Request.Context(), id, in)})
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.session.DeleteRecipe(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.RecipeItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": h.session.AddRecipeItem(c.Request.Context(), id, in)})
}

func (h *RecipeHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}
	var in service.RecipeItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": h.session.UpdateRecipeItem(c.Request.Context(), id, index, in)})
}

func (h *RecipeHandler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": h.session.RemoveRecipeItem(c.Request.Context(), id, index)})
}

func (h *RecipeHandler) ResetChecks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": h.session.ResetChecks(c.Request.Context(), id)})
}

func (h *RecipeHandler) AddToShopping(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	added, found := h.session.AddRecipeToShopping(c.Request.Context(), id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (h *RecipeHandler) Consume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in struct {
		// Quantities keyed by article id; absent articles consume the
		// recipe quantity.
		Quantities map[int64]int `json:"quantities"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	shortages, found := h.session.ConsumeRecipe(c.Request.Context(), id, in.Quantities)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	if shortages == nil {
		shortages = []service.Shortage{}
	}
	c.JSON(http.StatusOK, gin.H{"shortages": shortages})
}
