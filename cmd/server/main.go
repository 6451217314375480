package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stocktrail-backend-go/internal/api"
	"stocktrail-backend-go/internal/cache"
	"stocktrail-backend-go/internal/config"
	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/logger"
	"stocktrail-backend-go/internal/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load application configuration: %v", err)
	}

	zapLogger, cleanup := logger.New(logger.Options{
		Level: appConfig.LogLevel,
		JSON:  appConfig.LogJSON,
		Rotate: logger.FileRotate{
			Enable:     appConfig.LogFile != "",
			Filename:   appConfig.LogFile,
			MaxSizeMB:  appConfig.LogMaxSizeMB,
			MaxBackups: appConfig.LogMaxBackups,
			MaxAgeDays: appConfig.LogMaxAgeDays,
			Compress:   true,
		},
	})
	defer cleanup()
	zapLogger.Info("configuration loaded", zap.String("port", appConfig.Port))

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("failed to initialize Firebase Admin SDK", zap.Error(err))
	}

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("Firestore or Firebase Auth client is nil after initialization")
	}
	defer firestoreClient.Close()

	// Repositories.
	userRepo := db.NewFirestoreUserRepository(firestoreClient, zapLogger)
	groupRepo := db.NewFirestoreGroupRepository(firestoreClient, zapLogger)
	productRepo := db.NewFirestoreProductRepository(firestoreClient, zapLogger)
	stockRepo := db.NewFirestoreStockRepository(firestoreClient, zapLogger)
	authAccounts := db.NewFirebaseAuthAccounts(firebaseAuthClient)

	// Optional read-through cache for catalog reads.
	var catalogCache *cache.Cache
	if appConfig.RedisAddr != "" {
		catalogCache = cache.New(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
		defer catalogCache.Close()
		zapLogger.Info("catalog cache enabled", zap.String("redisAddr", appConfig.RedisAddr))
	}

	// Core services.
	identityService := core.NewIdentityService(userRepo, appConfig.BootstrapAdminEmail, zapLogger)
	userService := core.NewUserService(userRepo, authAccounts, zapLogger)
	catalogService := core.NewCatalogService(groupRepo, productRepo, catalogCache, zapLogger)
	stockService := core.NewStockService(stockRepo, zapLogger)
	bootstrapService := core.NewBootstrapService(userRepo, authAccounts,
		appConfig.BootstrapAdminEmail, appConfig.BootstrapAdminPassword, zapLogger)

	// Seed the designated administrator. Failure is logged, not fatal;
	// startup must survive a transient store error.
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 30*time.Second)
	if err := bootstrapService.EnsureInitialAdmin(bootstrapCtx); err != nil {
		zapLogger.Error("initial admin seeding failed", zap.Error(err))
	}
	cancelBootstrap()

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.Metrics())
	router.Use(middleware.RateLimit(rate.Limit(appConfig.RateLimitRPS), appConfig.RateLimitBurst))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
	} else {
		zapLogger.Warn("CORS middleware skipped: CLIENT_URL is not configured")
	}

	api.SetupRoutes(router, zapLogger, identityService, userService, catalogService, stockService)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("starting HTTP server",
			zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("server exited gracefully")
}
