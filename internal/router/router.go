package router

import (
	"net/http"

	"github.com/fisa/matjip-backend/config"
	"github.com/fisa/matjip-backend/internal/app/controller"
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController           *controller.AuthController
	restaurantController     *controller.RestaurantController
	reviewController         *controller.ReviewController
	partyController          *controller.PartyController
	recommendationController *controller.RecommendationController
	eventController          *controller.EventController
	authMiddleware           *middleware.AuthMiddleware
	config                   *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	restaurantController *controller.RestaurantController,
	reviewController *controller.ReviewController,
	partyController *controller.PartyController,
	recommendationController *controller.RecommendationController,
	eventController *controller.EventController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:           authController,
		restaurantController:     restaurantController,
		reviewController:         reviewController,
		partyController:          partyController,
		recommendationController: recommendationController,
		eventController:          eventController,
		authMiddleware:           authMiddleware,
		config:                   cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "MATJIP API is running",
		})
	})

	// 화면 갱신 이벤트 (비로그인도 구독 가능)
	router.GET("/ws", r.authMiddleware.OptionalAuthenticate(), r.eventController.Subscribe)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		v1.GET("/users", r.authController.ListUsers)

		restaurants := v1.Group("/restaurants")
		{
			restaurants.GET("", r.restaurantController.ListRestaurants)
			restaurants.GET("/map", r.restaurantController.MapMarkers)
			restaurants.GET("/trend", r.restaurantController.RatingTrend)
			restaurants.GET("/:id", r.restaurantController.GetRestaurant)
			restaurants.GET("/:id/menu", r.restaurantController.ListMenu)
			restaurants.GET("/:id/reviews", r.reviewController.Thread(model.TargetRestaurant))
			restaurants.GET("/:id/analysis", r.restaurantController.Analysis)

			restaurants.POST("", r.authMiddleware.Authenticate(), r.restaurantController.CreateRestaurant)
			restaurants.POST("/:id/menu", r.authMiddleware.Authenticate(), r.restaurantController.AddMenuItem)
			restaurants.POST("/:id/reviews", r.authMiddleware.Authenticate(), r.reviewController.Create(model.TargetRestaurant))
			restaurants.POST("/:id/photo", r.authMiddleware.Authenticate(), r.restaurantController.RequestPhotoUpload)
		}

		menuItems := v1.Group("/menu-items")
		{
			menuItems.GET("/:id/reviews", r.reviewController.Thread(model.TargetMenuItem))
			menuItems.POST("/:id/reviews", r.authMiddleware.Authenticate(), r.reviewController.Create(model.TargetMenuItem))
		}

		parties := v1.Group("/parties")
		{
			parties.GET("", r.authMiddleware.OptionalAuthenticate(), r.partyController.ListParties)
			parties.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.partyController.GetParty)

			parties.POST("", r.authMiddleware.Authenticate(), r.partyController.CreateParty)
			parties.PUT("/:id", r.authMiddleware.Authenticate(), r.partyController.UpdateParty)
			parties.DELETE("/:id", r.authMiddleware.Authenticate(), r.partyController.DeleteParty)
			parties.POST("/:id/join", r.authMiddleware.Authenticate(), r.partyController.JoinParty)
			parties.POST("/:id/leave", r.authMiddleware.Authenticate(), r.partyController.LeaveParty)
		}

		v1.GET("/recommendations", r.recommendationController.Recommend)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
