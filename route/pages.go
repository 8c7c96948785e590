package route

import (
	"net/http"

	"imagegallery/controller"

	"github.com/gin-gonic/gin"
)

// Pages registers the HTML gallery. Mutating routes go through limit when it is set.
func Pages(router *gin.Engine, ic *controller.ImageController, limit gin.HandlerFunc) {
	router.GET("/", ic.Index)
	router.GET("/images/:name/view", ic.View)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	mutating := router.Group("/")
	if limit != nil {
		mutating.Use(limit)
	}
	mutating.POST("/upload", ic.Upload)
	mutating.GET("/delete/:name", ic.Delete)
	mutating.POST("/delete/:name", ic.Delete)
}
