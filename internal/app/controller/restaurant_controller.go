package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/service"
	apperrors "github.com/fisa/matjip-backend/internal/errors"
	"github.com/fisa/matjip-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type RestaurantController struct {
	catalogService   service.CatalogService
	recommendService service.RecommendService
}

func NewRestaurantController(catalogService service.CatalogService, recommendService service.RecommendService) *RestaurantController {
	return &RestaurantController{
		catalogService:   catalogService,
		recommendService: recommendService,
	}
}

type PhotoUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// ListRestaurants GET /api/v1/restaurants?category=한식
func (ctrl *RestaurantController) ListRestaurants(c *gin.Context) {
	category := model.Category(c.Query("category"))
	restaurants, err := ctrl.catalogService.ListRestaurants(c.Request.Context(), category)
	if err != nil {
		respondError(c, err, "list restaurants")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
		"count":       len(restaurants),
	})
}

// CreateRestaurant POST /api/v1/restaurants
// 이미 있는 맛집이면 409 와 함께 기존 맛집을 돌려준다 (리뷰 작성으로 이어가도록)
func (ctrl *RestaurantController) CreateRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.CreateRestaurantRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.catalogService.AddRestaurant(c.Request.Context(), actorFrom(c), service.AddRestaurantInput{
		Name:     req.Name,
		Category: req.Category,
		Address:  req.Address,
		URL:      req.URL,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if errors.Is(err, service.ErrRestaurantExists) && result != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":      apperrors.RestaurantExists,
			"message":    "이미 등록된 맛집입니다. 리뷰를 남겨주세요",
			"restaurant": result.Restaurant,
		})
		return
	}
	if err != nil {
		respondError(c, err, "create restaurant")
		return
	}

	log.Info("Restaurant created", map[string]interface{}{
		"restaurant_id": result.Restaurant.ID,
	})
	c.JSON(http.StatusCreated, result)
}

// GetRestaurant GET /api/v1/restaurants/:id
func (ctrl *RestaurantController) GetRestaurant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	restaurant, err := ctrl.catalogService.GetRestaurant(id)
	if err != nil {
		respondError(c, err, "get restaurant")
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// MapMarkers GET /api/v1/restaurants/map?category=
func (ctrl *RestaurantController) MapMarkers(c *gin.Context) {
	view, err := ctrl.catalogService.MapMarkers(c.Request.Context(), model.Category(c.Query("category")))
	if err != nil {
		respondError(c, err, "map restaurants")
		return
	}
	c.JSON(http.StatusOK, view)
}

// RatingTrend GET /api/v1/restaurants/trend?ids=1,2
func (ctrl *RestaurantController) RatingTrend(c *gin.Context) {
	var ids []uint
	if raw := c.Query("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil {
				apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID입니다")
				return
			}
			ids = append(ids, uint(id))
		}
	}

	points, err := ctrl.catalogService.RatingTrend(ids)
	if err != nil {
		respondError(c, err, "rating trend")
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

// RequestPhotoUpload POST /api/v1/restaurants/:id/photo
func (ctrl *RestaurantController) RequestPhotoUpload(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PhotoUploadRequest
	if !bindJSON(c, &req) {
		return
	}

	upload, err := ctrl.catalogService.AttachPhoto(c.Request.Context(), id, req.Filename, req.ContentType)
	if err != nil {
		respondError(c, err, "restaurant photo")
		return
	}
	c.JSON(http.StatusOK, upload)
}

// ListMenu GET /api/v1/restaurants/:id/menu
func (ctrl *RestaurantController) ListMenu(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := ctrl.catalogService.ListMenu(id)
	if err != nil {
		respondError(c, err, "list menu")
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": items})
}

// AddMenuItem POST /api/v1/restaurants/:id/menu
func (ctrl *RestaurantController) AddMenuItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req model.CreateMenuItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := ctrl.catalogService.AddMenuItem(id, req.ItemName, req.Price)
	if err != nil {
		respondError(c, err, "create menu item")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"menu_item": item})
}

// Analysis GET /api/v1/restaurants/:id/analysis
func (ctrl *RestaurantController) Analysis(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	analysis, err := ctrl.recommendService.AnalyzeReviews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "analyze reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
