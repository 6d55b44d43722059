package syncserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Server is the remote side of the snapshot sync protocol:
// PUT /snapshots stores an opaque mapping and answers with a fresh sync
// identifier, GET /snapshots/:id returns it. Snapshots are never merged;
// concurrent uploads simply produce distinct identifiers.
type Server struct {
	store BlobStore
}

func NewServer(store BlobStore) *Server {
	return &Server{store: store}
}

type RouterOptions struct {
	// Redis enables the rate limiter when set.
	Redis           *redis.Client
	RateLimit       int
	RateLimitWindow time.Duration
	StartTime       time.Time
}

func (s *Server) NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.Default()

	if opts.Redis != nil {
		router.Use(RateLimiterMiddleware(opts.Redis, opts.RateLimit, opts.RateLimitWindow))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(opts.StartTime).String(),
		})
	})

	router.PUT("/snapshots", s.Upload)
	router.GET("/snapshots/:id", s.Download)

	return router
}

func (s *Server) Upload(c *gin.Context) {
	var snapshot map[string]string
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a flat string mapping"})
		return
	}
	if len(snapshot) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot cannot be empty"})
		return
	}

	syncID := uuid.NewString()

	if err := s.store.Put(c.Request.Context(), syncID, snapshot); err != nil {
		log.Errorf("failed to store snapshot %s: %v", syncID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	log.Debugf("snapshot stored: %s (%d keys)", syncID, len(snapshot))
	c.JSON(http.StatusCreated, gin.H{"sync_id": syncID})
}

func (s *Server) Download(c *gin.Context) {
	syncID := c.Param("id")

	snapshot, err := s.store.Get(c.Request.Context(), syncID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
			return
		}
		log.Errorf("failed to load snapshot %s: %v", syncID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
