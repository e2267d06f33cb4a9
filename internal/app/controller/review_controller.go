package controller

import (
	"net/http"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/service"
	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// Thread 리뷰 트리 조회 (맛집/메뉴 공용)
// GET /api/v1/restaurants/:id/reviews, GET /api/v1/menu-items/:id/reviews
func (ctrl *ReviewController) Thread(targetType model.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		thread, err := ctrl.reviewService.Thread(c.Request.Context(), model.Target{Type: targetType, ID: id})
		if err != nil {
			respondError(c, err, "list reviews")
			return
		}
		c.JSON(http.StatusOK, thread)
	}
}

// Create 리뷰 또는 답글 작성 (parent_id 가 있으면 답글)
// POST /api/v1/restaurants/:id/reviews, POST /api/v1/menu-items/:id/reviews
func (ctrl *ReviewController) Create(targetType model.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var req model.CreateReviewRequest
		if !bindJSON(c, &req) {
			return
		}

		target := model.Target{Type: targetType, ID: id}
		review, err := ctrl.reviewService.AddReview(c.Request.Context(), actorFrom(c), target, req.Comment, req.Rating, req.ParentID)
		if err != nil {
			respondError(c, err, "create review")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"review": review})
	}
}
