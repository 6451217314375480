package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/middleware"
)

// SetupRoutes wires all application routes. Global middleware (request ID,
// logging, recovery, CORS, rate limit, metrics) is expected to be applied by
// the caller before this runs.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	identityService core.IdentityService,
	userService core.UserService,
	catalogService core.CatalogService,
	stockService core.StockService,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized; routes cannot be secured")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, logger)
	identityMW := middleware.ResolveIdentity(identityService)

	identityHandler := NewIdentityHandler(identityService)
	userHandler := NewUserHandler(userService)
	catalogHandler := NewCatalogHandler(catalogService)
	stockHandler := NewStockHandler(stockService)
	streamHandler := NewStreamHandler(catalogService, stockService, logger)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		users := apiV1.Group("/users", authMW.VerifyToken())
		{
			// Identity resolution does not require a pre-existing profile.
			users.POST("/initialize", identityHandler.InitializeProfile)

			users.GET("/me", identityMW, identityHandler.Me)
			users.PUT("/me", identityMW, userHandler.UpdateProfile)

			adminUsers := users.Group("", identityMW, middleware.RequireAdmin())
			{
				adminUsers.GET("", userHandler.ListUsers)
				adminUsers.POST("", userHandler.CreateUser)
				adminUsers.GET("/:userId", userHandler.GetUser)
				adminUsers.DELETE("/:userId", userHandler.DeleteUser)
			}
		}

		groups := apiV1.Group("/groups", authMW.VerifyToken(), identityMW)
		{
			groups.GET("", catalogHandler.ListGroups)
			groups.GET("/:groupId/products", catalogHandler.ListProductsByGroup)
			groups.POST("", middleware.RequireAdmin(), catalogHandler.CreateGroup)
		}

		products := apiV1.Group("/products", authMW.VerifyToken(), identityMW)
		{
			products.GET("/count", catalogHandler.CountProducts)
			products.GET("/:productId", catalogHandler.GetProduct)
			products.GET("/:productId/history", stockHandler.History)

			admin := products.Group("", middleware.RequireAdmin())
			{
				admin.POST("", catalogHandler.CreateProduct)
				admin.DELETE("/:productId", catalogHandler.DeleteProduct)
				admin.PUT("/:productId/stock", stockHandler.UpdateStock)
			}
		}

		streams := apiV1.Group("/streams", authMW.VerifyToken(), identityMW)
		{
			streams.GET("/groups", streamHandler.Groups)
			streams.GET("/groups/:groupId/products", streamHandler.ProductsByGroup)
			streams.GET("/products/:productId", streamHandler.Product)
			streams.GET("/products/:productId/history", streamHandler.History)
		}
	}

	logger.Info("routes configured")
}
