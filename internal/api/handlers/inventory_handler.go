package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/service"
)

type InventoryHandler struct {
	session *service.Session
}

func NewInventoryHandler(session *service.Session) *InventoryHandler {
	return &InventoryHandler{session: session}
}

func (h *InventoryHandler) List(c *gin.Context) {
	lots := h.session.InventoryLots(c.Request.Context())
	if lots == nil {
		lots = []service.InventoryLotView{}
	}
	c.JSON(http.StatusOK, gin.H{"lots": lots})
}

func (h *InventoryHandler) SetQty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Qty int `json:"qty"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if !h.session.SetLotQty(c.Request.Context(), id, in.Qty) {
		c.JSON(http.StatusNotFound, gin.H{"error": "inventory lot not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *InventoryHandler) Consume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Qty int `json:"qty"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	taken, found := h.session.ConsumeLot(c.Request.Context(), id, in.Qty)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "inventory lot not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"consumed": taken})
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.session.DeleteLot(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "inventory lot not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
