package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agorafi/marketplace/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(
	auth *service.AuthService,
	listings *service.ListingService,
	offers *service.OfferService,
	spaces *service.SpaceService,
) *gin.Engine {
	router := gin.Default()

	authRequired := AuthMiddleware(auth)

	authHandlers := NewAuthHandlers(auth)
	listingHandlers := NewListingHandlers(listings)
	offerHandlers := NewOfferHandlers(offers)
	spaceHandlers := NewSpaceHandlers(spaces)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "marketplace"})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/nonce", authHandlers.Nonce)
		authGroup.POST("/verify", authHandlers.Verify)
	}

	listingGroup := router.Group("/listings")
	{
		listingGroup.GET("", listingHandlers.List)
		listingGroup.GET("/:id", listingHandlers.Get)
		listingGroup.POST("", authRequired, listingHandlers.Create)
		listingGroup.PATCH("/:id", authRequired, listingHandlers.Update)
		listingGroup.DELETE("/:id", authRequired, listingHandlers.Cancel)
		listingGroup.POST("/:id/purchase", authRequired, listingHandlers.Purchase)
	}

	offerGroup := router.Group("/offers")
	{
		offerGroup.GET("", offerHandlers.List)
		offerGroup.GET("/:id", offerHandlers.Get)
		offerGroup.POST("", authRequired, offerHandlers.Create)
		offerGroup.DELETE("/:id", authRequired, offerHandlers.Cancel)
		offerGroup.POST("/:id/accept", authRequired, offerHandlers.Accept)
		offerGroup.POST("/:id/reject", authRequired, offerHandlers.Reject)
	}

	spaceGroup := router.Group("/spaces")
	{
		spaceGroup.GET("", spaceHandlers.List)
		spaceGroup.GET("/:spaceId", spaceHandlers.Get)
		spaceGroup.POST("", authRequired, spaceHandlers.Create)
		spaceGroup.PUT("/:spaceId", authRequired, spaceHandlers.Update)
		spaceGroup.DELETE("/:spaceId", authRequired, spaceHandlers.Delete)
		spaceGroup.GET("/:spaceId/tiles", spaceHandlers.ListTiles)
		spaceGroup.POST("/:spaceId/tiles", authRequired, spaceHandlers.CreateTile)
		spaceGroup.PATCH("/:spaceId/tiles/:tokenId", authRequired, spaceHandlers.UpdateTile)
	}

	return router
}
