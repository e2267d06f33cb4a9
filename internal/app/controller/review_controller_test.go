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

func TestReviewController_Thread(t *testing.T) {
	env := setupControllerTest(t)
	token := env.register(t, "김철수", "kim@example.com")
	id := env.createRestaurant(t, token, "을지로 김치찌개", "서울 중구 을지로 100")
	path := fmt.Sprintf("/restaurants/%d/reviews", id)

	code, response := env.do(t, http.MethodPost, path, model.CreateReviewRequest{Comment: "맛있어요", Rating: 5}, token)
	require.Equal(t, http.StatusCreated, code, response)
	rootID := uint(response["review"].(map[string]interface{})["id"].(float64))

	code, _ = env.do(t, http.MethodPost, path, model.CreateReviewRequest{Comment: "동의합니다", ParentID: &rootID}, token)
	require.Equal(t, http.StatusCreated, code)

	missing := uint(999)
	code, response = env.do(t, http.MethodPost, path, model.CreateReviewRequest{Comment: "고아", ParentID: &missing}, token)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, apperrors.ReviewParentNotFound, response["error"])

	code, response = env.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, response["count"])
	roots := response["roots"].([]interface{})
	require.Len(t, roots, 1)
	children := roots[0].(map[string]interface{})["children"].([]interface{})
	require.Len(t, children, 1)
	assert.EqualValues(t, 25, children[0].(map[string]interface{})["indent_px"])

	code, _ = env.do(t, http.MethodGet, "/restaurants/999/reviews", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRecommendationController_Recommend(t *testing.T) {
	env := setupControllerTest(t)

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"missing budget", "", http.StatusBadRequest},
		{"non numeric budget", "?budget=many", http.StatusBadRequest},
		{"zero budget", "?budget=0", http.StatusBadRequest},
		{"bad coordinates", "?budget=10000&lat=abc&lon=127", http.StatusBadRequest},
		{"no candidates", "?budget=10000", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := env.do(t, http.MethodGet, "/recommendations"+tt.query, nil, "")
			assert.Equal(t, tt.wantCode, code)
		})
	}

	_, response := env.do(t, http.MethodGet, "/recommendations?budget=10000", nil, "")
	assert.Contains(t, response["text"], "10000원 이하")
	assert.Nil(t, response["weather"])
}
