package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stocktrail-backend-go/internal/config"
)

// CORSMiddleware configures CORS for the mobile/web client origin from the
// application configuration.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	if appConfig == nil || appConfig.ClientURL == "" {
		panic("ClientURL for CORS is not configured")
	}

	return cors.New(cors.Config{
		AllowOrigins:     []string{appConfig.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", KeyRequestID},
		ExposeHeaders:    []string{"Content-Length", KeyRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
