package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okrasimirov/rota/internal/adapters/blob"
	"github.com/okrasimirov/rota/internal/core/services"
)

type SyncHandler struct {
	svc *services.SyncService
}

func NewSyncHandler(svc *services.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

type downloadRequest struct {
	SyncID string `json:"sync_id"`
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/sync")
	{
		sync.POST("/upload", h.Upload)
		sync.POST("/download", h.Download)
		sync.GET("/id", h.LocalSyncID)
	}
}

func (h *SyncHandler) Upload(c *gin.Context) {
	syncID, err := h.svc.Upload(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sync_id": syncID})
}

func (h *SyncHandler) Download(c *gin.Context) {
	var req downloadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	err := h.svc.Download(c.Request.Context(), req.SyncID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSyncInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoLocalSyncID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, blob.ErrSnapshotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "download failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "restored"})
}

func (h *SyncHandler) LocalSyncID(c *gin.Context) {
	syncID, err := h.svc.LocalSyncID(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoLocalSyncID) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sync_id": syncID})
}
