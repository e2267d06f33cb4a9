package controller

import (
	"net/http"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/service"
	"github.com/fisa/matjip-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type PartyController struct {
	partyService service.PartyService
}

func NewPartyController(partyService service.PartyService) *PartyController {
	return &PartyController{partyService: partyService}
}

// ListParties 오늘의 밥약 목록 (로그인 시 본인 기준 익명 처리)
// GET /api/v1/parties
func (ctrl *PartyController) ListParties(c *gin.Context) {
	parties, err := ctrl.partyService.ListToday(middleware.GetSession(c).UserID)
	if err != nil {
		respondError(c, err, "list parties")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"parties": parties,
		"count":   len(parties),
	})
}

// GetParty GET /api/v1/parties/:id
func (ctrl *PartyController) GetParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	party, err := ctrl.partyService.Detail(middleware.GetSession(c).UserID, id)
	if err != nil {
		respondError(c, err, "get party")
		return
	}
	c.JSON(http.StatusOK, gin.H{"party": party})
}

// CreateParty POST /api/v1/parties
func (ctrl *PartyController) CreateParty(c *gin.Context) {
	var req model.CreatePartyRequest
	if !bindJSON(c, &req) {
		return
	}
	party, err := ctrl.partyService.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err, "create party")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"party": party})
}

// UpdateParty PUT /api/v1/parties/:id
func (ctrl *PartyController) UpdateParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePartyRequest
	if !bindJSON(c, &req) {
		return
	}
	party, err := ctrl.partyService.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err, "update party")
		return
	}
	c.JSON(http.StatusOK, gin.H{"party": party})
}

// DeleteParty DELETE /api/v1/parties/:id
func (ctrl *PartyController) DeleteParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.partyService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err, "delete party")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Party deleted"})
}

// JoinParty POST /api/v1/parties/:id/join
func (ctrl *PartyController) JoinParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.partyService.Join(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err, "join party")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "참여 완료!"})
}

// LeaveParty POST /api/v1/parties/:id/leave
func (ctrl *PartyController) LeaveParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.partyService.Leave(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err, "leave party")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "나가기 완료"})
}
