package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fisa/matjip-backend/config"
	"github.com/fisa/matjip-backend/internal/app/controller"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/internal/app/service"
	"github.com/fisa/matjip-backend/internal/cache"
	"github.com/fisa/matjip-backend/internal/db"
	"github.com/fisa/matjip-backend/internal/middleware"
	"github.com/fisa/matjip-backend/internal/router"
	"github.com/fisa/matjip-backend/internal/scheduler"
	"github.com/fisa/matjip-backend/internal/sheet"
	"github.com/fisa/matjip-backend/internal/storage"
	"github.com/fisa/matjip-backend/internal/websocket"
	"github.com/fisa/matjip-backend/pkg/geo"
	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/fisa/matjip-backend/pkg/redis"
	"github.com/fisa/matjip-backend/pkg/weather"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting MATJIP Backend Server", logger.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"storage":     cfg.Storage.Backend,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (development, sql backend only)
	if err := db.Seed(cfg.Server.Environment, cfg.Storage.Backend); err != nil {
		logger.Warn("Failed to seed database", logger.Fields{
			"error": err.Error(),
		})
	}

	// Redis 는 선택 사항 (연결 실패 시 메모리 캐시로 동작)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, falling back to in-process cache", logger.Fields{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	readCache := cache.New(cfg.Cache)
	blacklist := cache.NewTokenBlacklist()

	// Initialize repositories
	gormDB := db.GetDB()
	userRepo := repository.NewUserRepository(gormDB)
	menuRepo := repository.NewMenuRepository(gormDB)
	partyRepo := repository.NewPartyRepository(gormDB)
	analysisRepo := repository.NewAnalysisRepository(gormDB)

	restaurantRepo, reviewRepo, err := contentStores(cfg)
	if err != nil {
		logger.Fatal("Failed to open content storage", err)
	}

	// 외부 API
	httpClient := &http.Client{Timeout: 30 * time.Second}
	geocoder := geo.NewGeocoder(geocodeProvider(cfg, httpClient), cfg.Geocode.Timeout)
	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timeout, httpClient)
	aiService := service.NewAIService(cfg.OpenAI, httpClient)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	revealPolicy, err := service.NewRevealPolicy(cfg.Party)
	if err != nil {
		logger.Fatal("Invalid party reveal time", err)
	}
	hostLeave, err := service.ParseHostLeavePolicy(cfg.Party.HostLeavePolicy)
	if err != nil {
		logger.Fatal("Invalid party host leave policy", err)
	}

	// Initialize services
	catalogDeps := service.CatalogDeps{
		Restaurants: restaurantRepo,
		Reviews:     reviewRepo,
		Menu:        menuRepo,
		Geocoder:    geocoder,
		Cache:       readCache,
		Events:      hub,
		DefaultLat:  cfg.Weather.DefaultLat,
		DefaultLon:  cfg.Weather.DefaultLon,
	}
	if cfg.S3.Enabled {
		catalogDeps.Photos = storage.NewS3Storage(cfg.S3)
	}

	identityService := service.NewIdentityService(userRepo, blacklist, cfg.JWT.Secret, cfg.JWT.SessionExpiry)
	catalogService := service.NewCatalogService(catalogDeps)
	reviewService := service.NewReviewService(reviewRepo, restaurantRepo, menuRepo, readCache, hub)
	partyService := service.NewPartyService(gormDB, partyRepo, restaurantRepo, service.PartyRules{
		MinPeople:        cfg.Party.MinPeople,
		MaxPeople:        cfg.Party.MaxPeople,
		DefaultMaxPeople: cfg.Party.DefaultMaxPeople,
		HostLeave:        hostLeave,
		Reveal:           revealPolicy,
	}, hub, nil)
	recommendService := service.NewRecommendService(service.RecommendDeps{
		Catalog:     catalogService,
		Reviews:     reviewRepo,
		Restaurants: restaurantRepo,
		Analyses:    analysisRepo,
		Weather:     weatherClient,
		AI:          aiService,
		DefaultLat:  cfg.Weather.DefaultLat,
		DefaultLon:  cfg.Weather.DefaultLon,
	})

	// Initialize controllers
	authController := controller.NewAuthController(identityService)
	restaurantController := controller.NewRestaurantController(catalogService, recommendService)
	reviewController := controller.NewReviewController(reviewService)
	partyController := controller.NewPartyController(partyService)
	recommendationController := controller.NewRecommendationController(recommendService)
	eventController := controller.NewEventController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist)

	// Setup router
	r := router.NewRouter(
		authController,
		restaurantController,
		reviewController,
		partyController,
		recommendationController,
		eventController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	if cfg.Scheduler.Enabled {
		partyScheduler := scheduler.NewPartyScheduler(partyService, revealPolicy)
		if err := partyScheduler.Start(); err != nil {
			logger.Fatal("Failed to start party scheduler", err)
		}
		defer partyScheduler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", logger.Fields{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}

// contentStores 맛집/리뷰 저장소 선택 (sql: DB, sheet: xlsx 파일)
func contentStores(cfg *config.Config) (repository.RestaurantRepository, repository.ReviewRepository, error) {
	switch cfg.Storage.Backend {
	case "sheet":
		wb, err := sheet.Open(cfg.Storage.SheetPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using spreadsheet storage", logger.Fields{
			"path": wb.Path(),
		})
		return sheet.NewRestaurantStore(wb), sheet.NewReviewStore(wb), nil
	case "sql", "":
		return repository.NewRestaurantRepository(db.GetDB()), repository.NewReviewRepository(db.GetDB()), nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
}

func geocodeProvider(cfg *config.Config, httpClient *http.Client) geo.Provider {
	switch cfg.Geocode.Provider {
	case "kakao":
		return geo.NewKakaoProvider(cfg.Geocode.KakaoKey, cfg.Geocode.BaseURL, httpClient)
	default:
		return geo.NewNominatimProvider(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent, httpClient)
	}
}
