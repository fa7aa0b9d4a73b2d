package httpserver

import (
	_ "embed"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logging"
)

//go:embed static/index.html
var indexPage []byte

// buildRouter wires the page, the state API and the probes.
func buildRouter(logger *zap.Logger, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logging.StdLog(logger, "http").Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = deps.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
	})
	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))

	api := router.Group("/api")
	api.GET("/state", stateHandler(deps.State))
	api.POST("/actions", actionHandler(deps.Dispatcher, deps.State))

	return router
}
