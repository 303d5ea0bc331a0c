package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/service"
)

// AuthHandlers contains HTTP handlers for the wallet auth endpoints.
type AuthHandlers struct {
	auth *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth *service.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// Nonce handles GET /auth/nonce?address=. It issues a fresh challenge
// nonce for the wallet, replacing any prior one.
func (h *AuthHandlers) Nonce(c *gin.Context) {
	nonce, err := h.auth.IssueNonce(c.Request.Context(), c.Query("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Verify handles POST /auth/verify. A missing nonce is a client
// mistake (verify before requesting a challenge), so it maps to 400
// rather than the 404 its NotFound code would normally get.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address and signature are required"})
		return
	}

	token, err := h.auth.Verify(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		if core.IsCode(err, core.CodeNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
