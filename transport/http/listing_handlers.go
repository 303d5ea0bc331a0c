package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
	"github.com/agorafi/marketplace/service"
)

// ListingHandlers contains HTTP handlers for the listing endpoints.
type ListingHandlers struct {
	listings *service.ListingService
}

// NewListingHandlers creates new listing handlers
func NewListingHandlers(listings *service.ListingService) *ListingHandlers {
	return &ListingHandlers{listings: listings}
}

// List handles GET /listings.
func (h *ListingHandlers) List(c *gin.Context) {
	query := ports.ListListingsQuery{
		SpaceID: c.Query("spaceId"),
		Status:  core.ListingStatus(c.Query("status")),
		Sort:    c.Query("sort"),
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		query.Limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v > 0 {
		query.Offset = v
	}

	listings, err := h.listings.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}

// Get handles GET /listings/:id.
func (h *ListingHandlers) Get(c *gin.Context) {
	listing, err := h.listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Create handles POST /listings.
func (h *ListingHandlers) Create(c *gin.Context) {
	var req struct {
		SpaceID   string     `json:"spaceId" binding:"required"`
		TokenID   *int64     `json:"tokenId" binding:"required"`
		Price     string     `json:"price" binding:"required"`
		Currency  string     `json:"currency"`
		ExpiresAt *time.Time `json:"expiresAt"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "spaceId, tokenId and price are required"})
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), actorWallet(c), service.CreateListingParams{
		SpaceID:   req.SpaceID,
		TokenID:   *req.TokenID,
		Price:     req.Price,
		Currency:  req.Currency,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// Update handles PATCH /listings/:id. The expiry field is kept raw so
// an explicit null (clear the expiry) can be told apart from an
// omitted field.
func (h *ListingHandlers) Update(c *gin.Context) {
	var req struct {
		Price     *string         `json:"price"`
		ExpiresAt json.RawMessage `json:"expiresAt"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	params := service.UpdateListingParams{Price: req.Price}
	if len(req.ExpiresAt) > 0 {
		if string(req.ExpiresAt) == "null" {
			params.ClearExpiry = true
		} else {
			var expiry time.Time
			if err := json.Unmarshal(req.ExpiresAt, &expiry); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "expiresAt must be an RFC 3339 timestamp or null"})
				return
			}
			params.ExpiresAt = &expiry
		}
	}

	listing, err := h.listings.Update(c.Request.Context(), c.Param("id"), actorWallet(c), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Cancel handles DELETE /listings/:id.
func (h *ListingHandlers) Cancel(c *gin.Context) {
	listing, err := h.listings.Cancel(c.Request.Context(), c.Param("id"), actorWallet(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Purchase handles POST /listings/:id/purchase.
func (h *ListingHandlers) Purchase(c *gin.Context) {
	listing, err := h.listings.Purchase(c.Request.Context(), c.Param("id"), actorWallet(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}
