package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
	"github.com/agorafi/marketplace/service"
)

// OfferHandlers contains HTTP handlers for the offer endpoints.
type OfferHandlers struct {
	offers *service.OfferService
}

// NewOfferHandlers creates new offer handlers
func NewOfferHandlers(offers *service.OfferService) *OfferHandlers {
	return &OfferHandlers{offers: offers}
}

// List handles GET /offers.
func (h *OfferHandlers) List(c *gin.Context) {
	offers, err := h.offers.List(c.Request.Context(), ports.ListOffersQuery{
		ListingID: c.Query("listingId"),
		Status:    core.OfferStatus(c.Query("status")),
		Offerer:   c.Query("offerer"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offers)
}

// Get handles GET /offers/:id.
func (h *OfferHandlers) Get(c *gin.Context) {
	offer, err := h.offers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// Create handles POST /offers.
func (h *OfferHandlers) Create(c *gin.Context) {
	var req struct {
		ListingID string    `json:"listingId" binding:"required"`
		Amount    string    `json:"amount" binding:"required"`
		Currency  string    `json:"currency"`
		ExpiresAt time.Time `json:"expiresAt" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listingId, amount and expiresAt are required"})
		return
	}

	offer, err := h.offers.Create(c.Request.Context(), actorWallet(c), service.CreateOfferParams{
		ListingID: req.ListingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// Cancel handles DELETE /offers/:id.
func (h *OfferHandlers) Cancel(c *gin.Context) {
	offer, err := h.offers.Cancel(c.Request.Context(), c.Param("id"), actorWallet(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// Accept handles POST /offers/:id/accept.
func (h *OfferHandlers) Accept(c *gin.Context) {
	offer, err := h.offers.Accept(c.Request.Context(), c.Param("id"), actorWallet(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// Reject handles POST /offers/:id/reject.
func (h *OfferHandlers) Reject(c *gin.Context) {
	offer, err := h.offers.Reject(c.Request.Context(), c.Param("id"), actorWallet(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}
