package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agorafi/marketplace/service"
)

// SpaceHandlers contains HTTP handlers for the space and tile
// endpoints.
type SpaceHandlers struct {
	spaces *service.SpaceService
}

// NewSpaceHandlers creates new space handlers
func NewSpaceHandlers(spaces *service.SpaceService) *SpaceHandlers {
	return &SpaceHandlers{spaces: spaces}
}

// List handles GET /spaces.
func (h *SpaceHandlers) List(c *gin.Context) {
	spaces, err := h.spaces.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, spaces)
}

// Get handles GET /spaces/:spaceId.
func (h *SpaceHandlers) Get(c *gin.Context) {
	space, err := h.spaces.Get(c.Request.Context(), c.Param("spaceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, space)
}

// Create handles POST /spaces.
func (h *SpaceHandlers) Create(c *gin.Context) {
	var req struct {
		SpaceID     string         `json:"spaceId" binding:"required"`
		Name        string         `json:"name" binding:"required"`
		Description string         `json:"description"`
		MaxTiles    int            `json:"maxTiles"`
		TokenName   string         `json:"tokenName"`
		TokenSymbol string         `json:"tokenSymbol"`
		Settings    map[string]any `json:"settings"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "spaceId and name are required"})
		return
	}

	space, err := h.spaces.Create(c.Request.Context(), actorWallet(c), service.CreateSpaceParams{
		SpaceID:     req.SpaceID,
		Name:        req.Name,
		Description: req.Description,
		MaxTiles:    req.MaxTiles,
		TokenName:   req.TokenName,
		TokenSymbol: req.TokenSymbol,
		Settings:    req.Settings,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, space)
}

// Update handles PUT /spaces/:spaceId.
func (h *SpaceHandlers) Update(c *gin.Context) {
	var req struct {
		Name        *string        `json:"name"`
		Description *string        `json:"description"`
		MaxTiles    *int           `json:"maxTiles"`
		TokenName   *string        `json:"tokenName"`
		TokenSymbol *string        `json:"tokenSymbol"`
		Settings    map[string]any `json:"settings"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	space, err := h.spaces.Update(c.Request.Context(), c.Param("spaceId"), actorWallet(c), service.UpdateSpaceParams{
		Name:        req.Name,
		Description: req.Description,
		MaxTiles:    req.MaxTiles,
		TokenName:   req.TokenName,
		TokenSymbol: req.TokenSymbol,
		Settings:    req.Settings,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, space)
}

// Delete handles DELETE /spaces/:spaceId.
func (h *SpaceHandlers) Delete(c *gin.Context) {
	if err := h.spaces.Delete(c.Request.Context(), c.Param("spaceId"), actorWallet(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTiles handles GET /spaces/:spaceId/tiles.
func (h *SpaceHandlers) ListTiles(c *gin.Context) {
	tiles, err := h.spaces.ListTiles(c.Request.Context(), c.Param("spaceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tiles)
}

// CreateTile handles POST /spaces/:spaceId/tiles.
func (h *SpaceHandlers) CreateTile(c *gin.Context) {
	var req struct {
		TokenID      *int64         `json:"tokenId" binding:"required"`
		GridPosition int64          `json:"gridPosition"`
		OwnerWallet  string         `json:"ownerWallet"`
		Tier         int            `json:"tier"`
		Metadata     map[string]any `json:"metadata"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tokenId is required"})
		return
	}

	tile, err := h.spaces.CreateTile(c.Request.Context(), c.Param("spaceId"), actorWallet(c), service.CreateTileParams{
		TokenID:      *req.TokenID,
		GridPosition: req.GridPosition,
		OwnerWallet:  req.OwnerWallet,
		Tier:         req.Tier,
		Metadata:     req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tile)
}

// UpdateTile handles PATCH /spaces/:spaceId/tiles/:tokenId.
func (h *SpaceHandlers) UpdateTile(c *gin.Context) {
	tokenID, err := strconv.ParseInt(c.Param("tokenId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tokenId must be an integer"})
		return
	}

	var req struct {
		OwnerWallet *string        `json:"ownerWallet"`
		Tier        *int           `json:"tier"`
		Metadata    map[string]any `json:"metadata"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tile, err := h.spaces.UpdateTile(c.Request.Context(), c.Param("spaceId"), tokenID, actorWallet(c), service.UpdateTileParams{
		OwnerWallet: req.OwnerWallet,
		Tier:        req.Tier,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tile)
}
