package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mhofstetter/homestorage/internal/api/handlers"
	"github.com/mhofstetter/homestorage/internal/api/middleware"
	"github.com/mhofstetter/homestorage/internal/service"
)

// NewRouter wires the full HTTP surface around one household session.
func NewRouter(session *service.Session, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		articles := handlers.NewArticleHandler(session)
		v1.GET("/articles", articles.List)
		v1.POST("/articles", articles.Create)
		v1.PUT("/articles/:id", articles.Update)
		v1.DELETE("/articles/:id", articles.Delete)
		v1.POST("/articles/:id/shopping", articles.AddToShopping)

		recipes := handlers.NewRecipeHandler(session)
		v1.GET("/recipes", recipes.List)
		v1.GET("/recipes/:id", recipes.Detail)
		v1.POST("/recipes", recipes.Create)
		v1.PUT("/recipes/:id", recipes.Update)
		v1.DELETE("/recipes/:id", recipes.Delete)
		v1.POST("/recipes/:id/items", recipes.AddItem)
		v1.PUT("/recipes/:id/items/:index", recipes.UpdateItem)
		v1.DELETE("/recipes/:id/items/:index", recipes.RemoveItem)
		v1.POST("/recipes/:id/reset-checks", recipes.ResetChecks)
		v1.POST("/recipes/:id/shopping", recipes.AddToShopping)
		v1.POST("/recipes/:id/consume", recipes.Consume)

		shopping := handlers.NewShoppingHandler(session)
		v1.GET("/shopping", shopping.List)
		v1.POST("/shopping", shopping.AddManual)
		v1.PUT("/shopping/:id/selected", shopping.SetSelected)
		v1.POST("/shopping/select-all", shopping.SelectAll)
		v1.DELETE("/shopping/:id", shopping.Remove)
		v1.POST("/shopping/confirm", shopping.Confirm)

		inv := handlers.NewInventoryHandler(session)
		v1.GET("/inventory", inv.List)
		v1.PUT("/inventory/:id/qty", inv.SetQty)
		v1.POST("/inventory/:id/consume", inv.Consume)
		v1.DELETE("/inventory/:id", inv.Delete)

		history := handlers.NewHistoryHandler(session)
		v1.GET("/history", history.List)

		alloc := handlers.NewAllocationHandler(session)
		v1.GET("/allocation", alloc.Result)
		v1.GET("/allocation/dashboard", alloc.Dashboard)

		state := handlers.NewStateHandler(session)
		v1.GET("/state", state.Get)
		v1.PUT("/state", state.Put)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
