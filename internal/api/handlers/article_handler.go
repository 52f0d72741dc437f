package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/service"
)

type ArticleHandler struct {
	session *service.Session
}

func NewArticleHandler(session *service.Session) *ArticleHandler {
	return &ArticleHandler{session: session}
}

func (h *ArticleHandler) List(c *gin.Context) {
	articles := h.session.Articles(c.Query("q"))
	if articles == nil {
		articles = []service.ArticleView{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (h *ArticleHandler) Create(c *gin.Context) {
	var in service.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	in.ID = 0

	article, ok := h.session.UpsertArticle(c.Request.Context(), in)
	if !ok {
		// Empty or duplicate name; the domain treats this as nothing to do.
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "article": article})
}

func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in service.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	in.ID = id

	article, ok := h.session.UpsertArticle(c.Request.Context(), in)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "article": article})
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.session.DeleteArticle(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) AddToShopping(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in struct {
		Qty  int    `json:"qty"`
		Unit string `json:"unit"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if !h.session.AddManualToShopping(c.Request.Context(), id, in.Qty, in.Unit) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// pathID parses a positive int64 path parameter or answers 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
