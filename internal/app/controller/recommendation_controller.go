package controller

import (
	"net/http"
	"strconv"

	"github.com/fisa/matjip-backend/internal/app/service"
	apperrors "github.com/fisa/matjip-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	recommendService service.RecommendService
}

func NewRecommendationController(recommendService service.RecommendService) *RecommendationController {
	return &RecommendationController{recommendService: recommendService}
}

// Recommend GET /api/v1/recommendations?budget=10000&lat=&lon=
func (ctrl *RecommendationController) Recommend(c *gin.Context) {
	budget, err := strconv.Atoi(c.Query("budget"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "예산을 숫자로 입력해주세요")
		return
	}

	lat, okLat := queryFloat(c, "lat")
	lon, okLon := queryFloat(c, "lon")
	if !okLat || !okLon {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "좌표가 올바르지 않습니다")
		return
	}
	if (lat == nil) != (lon == nil) {
		lat, lon = nil, nil
	}

	result, err := ctrl.recommendService.Recommend(c.Request.Context(), budget, lat, lon)
	if err != nil {
		respondError(c, err, "recommend")
		return
	}
	c.JSON(http.StatusOK, result)
}

// queryFloat 값이 없으면 (nil, true), 숫자가 아니면 (nil, false)
func queryFloat(c *gin.Context, key string) (*float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
