package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-payments.backend/internal/domain/repositories"
	"go-payments.backend/internal/interfaces/http/response"
)

// AssetHandler handles asset catalog endpoints
type AssetHandler struct {
	assets repositories.AssetRepository
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assets repositories.AssetRepository) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// ListAssets returns the supported asset catalog
// GET /assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	assets, err := h.assets.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assets)
}
