package route

import (
	"time"

	"imagegallery/controller"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// API registers the JSON endpoints under /api.
func API(router *gin.Engine, ic *controller.ImageController, limit gin.HandlerFunc, allowedOrigins []string) {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}

	api := router.Group("/api")
	api.Use(cors.New(corsCfg))
	api.GET("/images", ic.ListImages)

	mutating := api.Group("")
	if limit != nil {
		mutating.Use(limit)
	}
	mutating.POST("/images", ic.CreateImage)
	mutating.DELETE("/images/:name", ic.DeleteImage)
}
