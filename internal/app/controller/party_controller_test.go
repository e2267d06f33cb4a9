package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fisa/matjip-backend/internal/app/model"
	apperrors "github.com/fisa/matjip-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyController_Lifecycle(t *testing.T) {
	env := setupControllerTest(t)
	host := env.register(t, "김방장", "host@example.com")
	guest := env.register(t, "이참여", "guest@example.com")
	late := env.register(t, "박늦음", "late@example.com")
	extra := env.register(t, "최추가", "extra@example.com")
	restaurantID := env.createRestaurant(t, host, "을지로 김치찌개", "서울 중구 을지로 100")

	code, response := env.do(t, http.MethodPost, "/parties", model.CreatePartyRequest{
		RestaurantID: restaurantID,
		MaxPeople:    3,
	}, host)
	require.Equal(t, http.StatusCreated, code, response)
	party := response["party"].(map[string]interface{})
	assert.EqualValues(t, 1, party["current_people"])
	assert.Equal(t, true, party["is_host"])
	base := fmt.Sprintf("/parties/%d", uint(party["id"].(float64)))

	code, _ = env.do(t, http.MethodPost, base+"/join", nil, guest)
	require.Equal(t, http.StatusOK, code)

	// 자리가 남아 있을 때 다시 참여하면 중복
	code, response = env.do(t, http.MethodPost, base+"/join", nil, guest)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.PartyAlreadyJoined, response["error"])

	code, response = env.do(t, http.MethodPost, base+"/join", nil, late)
	require.Equal(t, http.StatusOK, code, response)

	// 정원이 찬 뒤에는 정원 검사가 먼저
	tests := []struct {
		name     string
		token    string
		wantCode int
		wantErr  string
	}{
		{"full", extra, http.StatusConflict, apperrors.PartyFull},
		{"full for member too", guest, http.StatusConflict, apperrors.PartyFull},
		{"no session", "", http.StatusUnauthorized, apperrors.AuthUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, response := env.do(t, http.MethodPost, base+"/join", nil, tt.token)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErr, response["error"])
		})
	}

	// 목록은 로그인 없이도 보인다
	code, response = env.do(t, http.MethodGet, "/parties", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, response["count"])

	code, response = env.do(t, http.MethodGet, base, nil, guest)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, response["party"].(map[string]interface{})["joined"])

	// 방장은 나갈 수 없다 (기본 정책)
	code, response = env.do(t, http.MethodPost, base+"/leave", nil, host)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperrors.PartyHostCannotLeave, response["error"])

	// 나가기는 여러 번 해도 성공
	for i := 0; i < 2; i++ {
		code, _ = env.do(t, http.MethodPost, base+"/leave", nil, guest)
		assert.Equal(t, http.StatusOK, code)
	}

	code, _ = env.do(t, http.MethodPost, base+"/join", nil, extra)
	assert.Equal(t, http.StatusOK, code)

	// 수정과 삭제는 방장만
	code, response = env.do(t, http.MethodPut, base, model.UpdatePartyRequest{RestaurantID: restaurantID, MaxPeople: 3}, late)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperrors.AuthzHostOnly, response["error"])

	code, response = env.do(t, http.MethodPut, base, model.UpdatePartyRequest{RestaurantID: restaurantID, MaxPeople: 4}, host)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 4, response["party"].(map[string]interface{})["max_people"])

	code, response = env.do(t, http.MethodDelete, base, nil, late)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperrors.AuthzHostOnly, response["error"])

	code, _ = env.do(t, http.MethodDelete, base, nil, host)
	assert.Equal(t, http.StatusOK, code)

	code, response = env.do(t, http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, apperrors.PartyNotFound, response["error"])
}

func TestPartyController_CreateValidation(t *testing.T) {
	env := setupControllerTest(t)
	host := env.register(t, "김방장", "host@example.com")

	code, response := env.do(t, http.MethodPost, "/parties", model.CreatePartyRequest{RestaurantID: 999}, host)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, apperrors.RestaurantNotFound, response["error"])

	code, response = env.do(t, http.MethodPost, "/parties", model.CreatePartyRequest{RestaurantID: 1, MaxPeople: 11}, host)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.ValidationInvalidInput, response["error"])
}
