package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fisa/matjip-backend/config"
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/internal/app/service"
	"github.com/fisa/matjip-backend/internal/cache"
	"github.com/fisa/matjip-backend/internal/db"
	"github.com/fisa/matjip-backend/internal/middleware"
	ws "github.com/fisa/matjip-backend/internal/websocket"
	"github.com/fisa/matjip-backend/pkg/geo"
	"github.com/fisa/matjip-backend/pkg/weather"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, address string) (*geo.Result, error) {
	if address == "없는 주소" {
		return nil, geo.ErrNotFound
	}
	return &geo.Result{CleanedAddress: address, Latitude: 37.5665, Longitude: 126.9780}, nil
}

type downWeather struct{}

func (downWeather) Current(context.Context, float64, float64) (*weather.Current, error) {
	return nil, errors.New("weather unavailable")
}

type testEnv struct {
	router *gin.Engine
	hub    *ws.Hub
}

// setupControllerTest router 패키지와 같은 경로 구성을 sqlite 위에 올린다
func setupControllerTest(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	blacklist := cache.NewMemoryBlacklist()
	restaurantRepo := repository.NewRestaurantRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	menuRepo := repository.NewMenuRepository(testDB)

	identityService := service.NewIdentityService(repository.NewUserRepository(testDB), blacklist, testSecret, time.Hour)
	catalogService := service.NewCatalogService(service.CatalogDeps{
		Restaurants: restaurantRepo,
		Reviews:     reviewRepo,
		Menu:        menuRepo,
		Geocoder:    stubGeocoder{},
		Events:      hub,
		DefaultLat:  37.5665,
		DefaultLon:  126.9780,
	})
	reviewService := service.NewReviewService(reviewRepo, restaurantRepo, menuRepo, nil, hub)
	partyService := service.NewPartyService(testDB, repository.NewPartyRepository(testDB), restaurantRepo, service.PartyRules{
		MinPeople:        2,
		MaxPeople:        10,
		DefaultMaxPeople: 4,
		HostLeave:        service.HostLeaveForbid,
		Reveal:           service.RevealPolicy{Hour: 12, Minute: 30, Location: time.UTC},
	}, hub, nil)
	recommendService := service.NewRecommendService(service.RecommendDeps{
		Catalog:     catalogService,
		Reviews:     reviewRepo,
		Restaurants: restaurantRepo,
		Analyses:    repository.NewAnalysisRepository(testDB),
		Weather:     downWeather{},
		AI:          service.NewAIService(config.OpenAIConfig{}, nil),
		DefaultLat:  37.5665,
		DefaultLon:  126.9780,
	})

	authCtrl := NewAuthController(identityService)
	restaurantCtrl := NewRestaurantController(catalogService, recommendService)
	reviewCtrl := NewReviewController(reviewService)
	partyCtrl := NewPartyController(partyService)
	recommendCtrl := NewRecommendationController(recommendService)
	eventCtrl := NewEventController(hub, nil)
	auth := middleware.NewAuthMiddleware(testSecret, blacklist)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.GET("/ws", auth.OptionalAuthenticate(), eventCtrl.Subscribe)

	router.POST("/auth/register", authCtrl.Register)
	router.POST("/auth/login", authCtrl.Login)
	router.POST("/auth/logout", auth.Authenticate(), authCtrl.Logout)
	router.GET("/auth/me", auth.Authenticate(), authCtrl.Me)
	router.GET("/users", authCtrl.ListUsers)

	router.GET("/restaurants", restaurantCtrl.ListRestaurants)
	router.GET("/restaurants/trend", restaurantCtrl.RatingTrend)
	router.GET("/restaurants/:id", restaurantCtrl.GetRestaurant)
	router.POST("/restaurants", auth.Authenticate(), restaurantCtrl.CreateRestaurant)
	router.GET("/restaurants/:id/menu", restaurantCtrl.ListMenu)
	router.POST("/restaurants/:id/menu", auth.Authenticate(), restaurantCtrl.AddMenuItem)
	router.POST("/restaurants/:id/photo", auth.Authenticate(), restaurantCtrl.RequestPhotoUpload)
	router.GET("/restaurants/:id/reviews", reviewCtrl.Thread(model.TargetRestaurant))
	router.POST("/restaurants/:id/reviews", auth.Authenticate(), reviewCtrl.Create(model.TargetRestaurant))

	router.GET("/parties", auth.OptionalAuthenticate(), partyCtrl.ListParties)
	router.GET("/parties/:id", auth.OptionalAuthenticate(), partyCtrl.GetParty)
	router.POST("/parties", auth.Authenticate(), partyCtrl.CreateParty)
	router.PUT("/parties/:id", auth.Authenticate(), partyCtrl.UpdateParty)
	router.DELETE("/parties/:id", auth.Authenticate(), partyCtrl.DeleteParty)
	router.POST("/parties/:id/join", auth.Authenticate(), partyCtrl.JoinParty)
	router.POST("/parties/:id/leave", auth.Authenticate(), partyCtrl.LeaveParty)

	router.GET("/recommendations", recommendCtrl.Recommend)

	return &testEnv{router: router, hub: hub}
}

// do JSON 요청을 보내고 응답 본문을 map 으로 돌려준다
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w.Code, response
}

// register 가입 후 세션 토큰
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()

	code, response := e.do(t, http.MethodPost, "/auth/register", RegisterRequest{Name: name, Email: email}, "")
	require.Equal(t, http.StatusCreated, code, response)
	session := response["session"].(map[string]interface{})
	return session["token"].(string)
}

// createRestaurant 맛집을 등록하고 ID 를 돌려준다
func (e *testEnv) createRestaurant(t *testing.T, token, name, address string) uint {
	t.Helper()

	code, response := e.do(t, http.MethodPost, "/restaurants", model.CreateRestaurantRequest{
		Name:     name,
		Category: model.CategoryKorean,
		Address:  address,
	}, token)
	require.Equal(t, http.StatusCreated, code, response)
	restaurant := response["restaurant"].(map[string]interface{})
	return uint(restaurant["id"].(float64))
}
