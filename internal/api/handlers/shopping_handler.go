package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/service"
)

type ShoppingHandler struct {
	session *service.Session
}

func NewShoppingHandler(session *service.Session) *ShoppingHandler {
	return &ShoppingHandler{session: session}
}

func (h *ShoppingHandler) List(c *gin.Context) {
	lines := h.session.ShoppingLines()
	if lines == nil {
		lines = []service.ShoppingLineView{}
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (h *ShoppingHandler) AddManual(c *gin.Context) {
	var in struct {
		ArticleID int64  `json:"articleId"`
		Qty       int    `json:"qty"`
		Unit      string `json:"unit"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if !h.session.AddManualToShopping(c.Request.Context(), in.ArticleID, in.Qty, in.Unit) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ShoppingHandler) SetSelected(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Selected bool `json:"selected"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": h.session.SetLineSelected(c.Request.Context(), id, in.Selected)})
}

func (h *ShoppingHandler) SelectAll(c *gin.Context) {
	h.session.SelectAllShopping(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ShoppingHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.session.RemoveShoppingLine(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "shopping line not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) Confirm(c *gin.Context) {
	var in struct {
		// Actually-bought quantity per shopping line id. Selected lines
		// missing here are confirmed with 0, which clears their selection
		// without creating stock.
		Bought map[int64]int `json:"bought"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	entry := h.session.ConfirmPurchase(c.Request.Context(), in.Bought)
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": entry})
}
