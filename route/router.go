package route

import (
	"fmt"
	"net/http"

	"imagegallery/config"
	"imagegallery/controller"
	"imagegallery/middlewares"
	"imagegallery/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "gallery_session"

// SessionStore keeps flash messages in Redis when configured, otherwise in a signed cookie.
func SessionStore(cfg config.SessionConfig) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisAddr != "" {
		rs, err := redis.NewStore(10, "tcp", cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, []byte(cfg.Secret))
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.Secret))
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// NewRouter wires middleware, templates and every route.
func NewRouter(cfg config.Config, ic *controller.ImageController, store sessions.Store, logger *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(middlewares.RequestLogger(logger), middlewares.Recovery(logger))
	r.Use(sessions.Sessions(sessionName, store))
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20
	r.SetHTMLTemplate(web.Templates())

	var limit gin.HandlerFunc
	if cfg.RateLimit > 0 {
		limit = middlewares.NewRateLimiter(cfg.RateLimit).Middleware()
	}

	Pages(r, ic, limit)
	API(r, ic, limit, cfg.AllowedOrigins)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}
