package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okrasimirov/rota/internal/core/services"
)

type AssetHandler struct {
	svc *services.AssetService
}

func NewAssetHandler(svc *services.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/images/lookup", h.Lookup)
}

// Lookup is best effort by design: an empty image_url with status 200
// means no match, and the exercise stays usable without an image.
func (h *AssetHandler) Lookup(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter is required"})
		return
	}

	imageURL := h.svc.Lookup(c.Request.Context(), name)

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}
