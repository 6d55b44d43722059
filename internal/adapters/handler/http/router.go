package http

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okrasimirov/rota/internal/adapters/kvstore"
)

type RouterDependencies struct {
	WorkoutHandler *WorkoutHandler
	StatsHandler   *StatsHandler
	SyncHandler    *SyncHandler
	AssetHandler   *AssetHandler
	Store          kvstore.Store
	StartTime      time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		storeStatus := "ok"
		statusCode := 200

		// Any answer from the store, including key-not-found, proves it
		// is reachable.
		if _, err := deps.Store.Get(c.Request.Context(), "health:probe"); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
			storeStatus = "unreachable"
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status": "ok",
			"store":  storeStatus,
			"uptime": time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")

	deps.WorkoutHandler.RegisterRoutes(apiV1)
	deps.StatsHandler.RegisterRoutes(apiV1)
	deps.SyncHandler.RegisterRoutes(apiV1)
	deps.AssetHandler.RegisterRoutes(apiV1)

	return router
}
