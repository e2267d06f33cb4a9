package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fisa/matjip-backend/internal/app/service"
	apperrors "github.com/fisa/matjip-backend/internal/errors"
	"github.com/fisa/matjip-backend/internal/middleware"
	"github.com/fisa/matjip-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// 서비스 에러 -> HTTP 응답
var errorMappings = []errorMapping{
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.AuthUserNotFound, "사용자를 찾을 수 없습니다"},
	{service.ErrNameTaken, http.StatusConflict, apperrors.AuthNameExists, "이미 다른 이메일로 등록된 이름입니다"},
	{service.ErrInvalidEmail, http.StatusBadRequest, apperrors.AuthInvalidEmail, "이메일 형식이 올바르지 않습니다"},
	{service.ErrNameRequired, http.StatusBadRequest, apperrors.ValidationRequired, "이름을 입력해주세요"},

	{service.ErrRestaurantNotFound, http.StatusNotFound, apperrors.RestaurantNotFound, "맛집을 찾을 수 없습니다"},
	{service.ErrRestaurantExists, http.StatusConflict, apperrors.RestaurantExists, "이미 등록된 맛집입니다"},
	{service.ErrRestaurantNameEmpty, http.StatusBadRequest, apperrors.ValidationRequired, "맛집 이름을 입력해주세요"},
	{service.ErrAddressEmpty, http.StatusBadRequest, apperrors.ValidationRequired, "주소를 입력해주세요"},
	{service.ErrInvalidCategory, http.StatusBadRequest, apperrors.RestaurantInvalidCategory, "카테고리가 올바르지 않습니다"},
	{service.ErrAddressNotFound, http.StatusUnprocessableEntity, apperrors.GeocodeNotFound, "주소를 찾을 수 없습니다. 주소를 다시 확인해주세요"},
	{service.ErrMenuItemNotFound, http.StatusNotFound, apperrors.MenuItemNotFound, "메뉴를 찾을 수 없습니다"},
	{service.ErrInvalidPrice, http.StatusBadRequest, apperrors.ValidationInvalidRange, "가격은 0원보다 커야 합니다"},
	{service.ErrPhotoStorageDisabled, http.StatusServiceUnavailable, apperrors.UploadFailed, "사진 업로드를 사용할 수 없습니다"},
	{storage.ErrUnsupportedContentType, http.StatusBadRequest, apperrors.UploadInvalidFileType, "이미지 파일만 업로드할 수 있습니다"},

	{service.ErrReviewNotFound, http.StatusNotFound, apperrors.ReviewNotFound, "리뷰를 찾을 수 없습니다"},
	{service.ErrInvalidRating, http.StatusBadRequest, apperrors.ReviewInvalidRating, "평점은 1~5 사이여야 합니다"},
	{service.ErrCommentRequired, http.StatusBadRequest, apperrors.ValidationRequired, "내용을 입력해주세요"},
	{service.ErrParentNotFound, http.StatusNotFound, apperrors.ReviewParentNotFound, "답글을 달 리뷰를 찾을 수 없습니다"},
	{service.ErrParentTargetMismatch, http.StatusBadRequest, apperrors.ReviewParentMismatch, "다른 대상의 리뷰에는 답글을 달 수 없습니다"},
	{service.ErrInvalidTarget, http.StatusBadRequest, apperrors.ValidationInvalidInput, "리뷰 대상이 올바르지 않습니다"},

	{service.ErrPartyNotFound, http.StatusNotFound, apperrors.PartyNotFound, "존재하지 않는 밥약입니다"},
	{service.ErrPartyFull, http.StatusConflict, apperrors.PartyFull, "정원이 가득 찼습니다"},
	{service.ErrAlreadyJoined, http.StatusConflict, apperrors.PartyAlreadyJoined, "이미 참여한 밥약입니다"},
	{service.ErrPartyClosed, http.StatusConflict, apperrors.PartyClosed, "마감된 밥약입니다"},
	{service.ErrNotPartyHost, http.StatusForbidden, apperrors.AuthzHostOnly, "방장만 할 수 있습니다"},
	{service.ErrHostCannotLeave, http.StatusForbidden, apperrors.PartyHostCannotLeave, "방장은 나갈 수 없습니다. 밥약을 삭제해주세요"},
	{service.ErrInvalidMaxPeople, http.StatusBadRequest, apperrors.ValidationInvalidRange, "인원은 2~10명 사이여야 합니다"},
	{service.ErrBelowCurrent, http.StatusConflict, apperrors.PartyBelowCurrent, "현재 인원보다 적게 설정할 수 없습니다"},

	{service.ErrInvalidBudget, http.StatusBadRequest, apperrors.ValidationInvalidRange, "예산은 0원보다 커야 합니다"},
}

// respondError 알려진 서비스 에러는 대응하는 상태 코드로, 나머지는 ParseAndRespond 로 처리
func respondError(c *gin.Context, err error, context string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			apperrors.RespondWithError(c, m.status, m.code, m.message)
			return
		}
	}

	middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
}

// parseIDParam 경로의 :id 를 양의 정수로
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID입니다")
		return 0, false
	}
	return uint(id), true
}

// actorFrom Authenticate 미들웨어 뒤에서만 사용
func actorFrom(c *gin.Context) service.Actor {
	s := middleware.GetSession(c)
	return service.Actor{UserID: s.UserID, UserName: s.UserName}
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return false
	}
	return true
}
