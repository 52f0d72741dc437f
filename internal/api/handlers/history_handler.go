package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/service"
)

type HistoryHandler struct {
	session *service.Session
}

func NewHistoryHandler(session *service.Session) *HistoryHandler {
	return &HistoryHandler{session: session}
}

func (h *HistoryHandler) List(c *gin.Context) {
	groups := h.session.HistoryGroups(c.Query("q"))
	if groups == nil {
		groups = []service.HistoryGroup{}
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}
