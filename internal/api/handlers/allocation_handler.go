package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/service"
)

type AllocationHandler struct {
	session *service.Session
}

func NewAllocationHandler(session *service.Session) *AllocationHandler {
	return &AllocationHandler{session: session}
}

// Result returns the raw coverage map: recipeId -> articleId -> split.
func (h *AllocationHandler) Result(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"allocation": h.session.Allocation(c.Request.Context())})
}

// Dashboard returns the per-recipe summaries, cache-backed.
func (h *AllocationHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Dashboard(c.Request.Context()))
}
