package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/service"
)

// StateHandler exposes the raw state blob, kept for client-side export and
// the legacy single-page client that syncs the whole aggregate.
type StateHandler struct {
	session *service.Session
}

func NewStateHandler(session *service.Session) *StateHandler {
	return &StateHandler{session: session}
}

func (h *StateHandler) Get(c *gin.Context) {
	data, err := h.session.ExportState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export state"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *StateHandler) Put(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}
	if err := h.session.ReplaceState(c.Request.Context(), body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state must be a valid state object"})
		return
	}

	data, err := h.session.ExportState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export state"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
