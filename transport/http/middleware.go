package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agorafi/marketplace/service"
)

// ctxWallet is the gin context key under which the authenticated
// wallet address is stored.
const ctxWallet = "wallet"

// AuthMiddleware validates the bearer session token and stores the
// resolved wallet address in the request context. Handlers behind it
// read the actor via actorWallet and never see the raw token.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		wallet, err := auth.ValidateToken(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ctxWallet, wallet)
		c.Next()
	}
}

// actorWallet returns the wallet address set by AuthMiddleware.
func actorWallet(c *gin.Context) string {
	return c.GetString(ctxWallet)
}
