package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/fisa/matjip-backend/pkg/weather"
	"gorm.io/gorm"
)

var ErrInvalidBudget = errors.New("budget must be positive")

const (
	recommendCandidateLimit = 10
	reviewTextLimit         = 3000 // 분석 요청에 보내는 리뷰 글자 수 상한
	analysisAxes            = 5    // 맛, 가성비, 서비스, 위생, 분위기
	fallbackScore           = 5
)

// WeatherSource 좌표의 현재 날씨
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*weather.Current, error)
}

type RecommendService interface {
	Recommend(ctx context.Context, budget int, lat, lon *float64) (*model.Recommendation, error)
	AnalyzeReviews(ctx context.Context, restaurantID uint) (*model.ReviewAnalysis, error)
}

type recommendService struct {
	catalog        CatalogService
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	analysisRepo   repository.AnalysisRepository
	weather        WeatherSource
	ai             AIService
	defaultLat     float64
	defaultLon     float64
	now            func() time.Time
}

type RecommendDeps struct {
	Catalog     CatalogService
	Reviews     repository.ReviewRepository
	Restaurants repository.RestaurantRepository
	Analyses    repository.AnalysisRepository
	Weather     WeatherSource
	AI          AIService
	DefaultLat  float64
	DefaultLon  float64
}

func NewRecommendService(deps RecommendDeps) RecommendService {
	return &recommendService{
		catalog:        deps.Catalog,
		reviewRepo:     deps.Reviews,
		restaurantRepo: deps.Restaurants,
		analysisRepo:   deps.Analyses,
		weather:        deps.Weather,
		ai:             deps.AI,
		defaultLat:     deps.DefaultLat,
		defaultLon:     deps.DefaultLon,
		now:            time.Now,
	}
}

// Recommend 예산 이하 메뉴 상위 10개와 날씨로 추천 문구를 만든다
// 날씨 실패 시 예산만으로, AI 실패 시 첫 후보를 고르는 고정 문구로 대체
func (s *recommendService) Recommend(ctx context.Context, budget int, lat, lon *float64) (*model.Recommendation, error) {
	if budget <= 0 {
		return nil, ErrInvalidBudget
	}

	candidates, err := s.catalog.MenuWithinBudget(budget, recommendCandidateLimit, lat, lon)
	if err != nil {
		return nil, err
	}

	result := &model.Recommendation{
		Budget:     budget,
		Candidates: candidates,
		Weather:    s.currentWeather(ctx, lat, lon),
		Source:     model.RecommendSourceFallback,
	}

	if len(candidates) == 0 {
		result.Text = fmt.Sprintf("%d원 이하로 먹을 수 있는 메뉴가 아직 없어요. 예산을 조금 올려보거나 메뉴를 등록해 주세요.", budget)
		return result, nil
	}

	text, err := s.recommendText(ctx, budget, result.Weather, candidates)
	if err != nil {
		logger.Warn("AI recommendation failed, using fallback", logger.Fields{
			"budget": budget,
			"error":  err.Error(),
		})
		result.Text = fallbackRecommendation(budget, result.Weather, candidates[0])
		return result, nil
	}

	result.Text = text
	result.Source = model.RecommendSourceAI
	return result, nil
}

func (s *recommendService) currentWeather(ctx context.Context, lat, lon *float64) *model.WeatherSnapshot {
	if s.weather == nil {
		return nil
	}
	qLat, qLon := s.defaultLat, s.defaultLon
	if lat != nil && lon != nil {
		qLat, qLon = *lat, *lon
	}

	current, err := s.weather.Current(ctx, qLat, qLon)
	if err != nil {
		logger.Warn("Weather lookup failed, budget-only recommendation", logger.Fields{
			"error": err.Error(),
		})
		return nil
	}
	return &model.WeatherSnapshot{Code: current.Code, Label: current.Label, Temperature: current.Temperature}
}

func (s *recommendService) recommendText(ctx context.Context, budget int, w *model.WeatherSnapshot, candidates []model.MenuCandidate) (string, error) {
	if s.ai == nil {
		return "", ErrAIDisabled
	}

	var system strings.Builder
	system.WriteString("당신은 사용자의 예산과 날씨를 함께 고려하는 맛집 큐레이터입니다.\n")
	system.WriteString(fmt.Sprintf("사용자의 예산은 %d원입니다.\n\n", budget))
	system.WriteString("[추천 원칙]\n")
	system.WriteString("- 후보 중 예산에 가장 가까운 가격의 메뉴를 우선 고려하세요.\n")
	if w != nil {
		system.WriteString(fmt.Sprintf("- 현재 날씨(%s, %.1f도)와 음식의 온도, 식감, 분위기를 연결하세요.\n", w.Label, w.Temperature))
	}
	system.WriteString("- 카페/디저트 메뉴에는 국물, 해장 같은 표현을 쓰지 마세요.\n")
	system.WriteString("- 다정하고 전문적인 말투로 3~4줄, 이모지를 적당히 사용하세요.\n")

	var user strings.Builder
	user.WriteString(fmt.Sprintf("내 예산 %d원에 가장 잘 맞는 메뉴를 하나만 골라줘.\n\n[후보 메뉴]\n", budget))
	for i, c := range candidates {
		user.WriteString(fmt.Sprintf("%d. [%s] %s - %s (%d원)\n", i+1, c.Category, c.RestaurantName, c.ItemName, c.Price))
	}

	return s.ai.Complete(ctx, CompletionRequest{
		System:      system.String(),
		User:        user.String(),
		Temperature: 0.7,
		MaxTokens:   400,
	})
}

func fallbackRecommendation(budget int, w *model.WeatherSnapshot, top model.MenuCandidate) string {
	if w != nil {
		return fmt.Sprintf("%s %.0f도인 오늘, %d원 예산이라면 %s의 %s(%d원)을 추천해요!",
			w.Label, w.Temperature, budget, top.RestaurantName, top.ItemName, top.Price)
	}
	return fmt.Sprintf("오늘 %d원 예산이라면 %s의 %s(%d원)을 추천해요!", budget, top.RestaurantName, top.ItemName, top.Price)
}

type analysisPayload struct {
	Scores   []int    `json:"scores"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// AnalyzeReviews 최상위 리뷰 수가 바뀌었을 때만 다시 분석하고 결과를 저장
func (s *recommendService) AnalyzeReviews(ctx context.Context, restaurantID uint) (*model.ReviewAnalysis, error) {
	restaurant, err := s.restaurantRepo.FindByID(restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	rows, err := s.reviewRepo.ListByTarget(model.Target{Type: model.TargetRestaurant, ID: restaurantID})
	if err != nil {
		return nil, err
	}
	// 답글은 대화라서 분석 대상(과 재분석 기준 개수)에서 뺀다
	var comments []string
	for _, r := range rows {
		if !r.IsRoot() {
			continue
		}
		if c := strings.TrimSpace(r.Comment); c != "" {
			comments = append(comments, c)
		}
	}

	stored, err := s.analysisRepo.FindByRestaurant(restaurantID)
	switch {
	case err == nil && !stored.Fallback && stored.ReviewCount == len(comments):
		return stored, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	analysis := &model.ReviewAnalysis{
		RestaurantID: restaurantID,
		ReviewCount:  len(comments),
		AnalyzedAt:   s.now(),
	}

	if len(comments) == 0 {
		applyFallbackAnalysis(analysis, "아직 리뷰가 없어요.")
		return analysis, nil
	}

	payload, err := s.requestAnalysis(ctx, restaurant.Name, comments)
	if err != nil {
		logger.Warn("AI review analysis failed, using fallback", logger.Fields{
			"restaurant_id": restaurantID,
			"error":         err.Error(),
		})
		applyFallbackAnalysis(analysis, "분석에 실패했습니다. (AI 응답 오류)")
	} else {
		analysis.Taste = payload.Scores[0]
		analysis.Value = payload.Scores[1]
		analysis.Service = payload.Scores[2]
		analysis.Hygiene = payload.Scores[3]
		analysis.Mood = payload.Scores[4]
		analysis.Summary = payload.Summary
		analysis.Keywords = payload.Keywords
	}

	if err := s.analysisRepo.Upsert(analysis); err != nil {
		logger.Error("Failed to store review analysis", err, logger.Fields{
			"restaurant_id": restaurantID,
		})
		return nil, err
	}

	logger.Info("Review analysis stored", logger.Fields{
		"restaurant_id": restaurantID,
		"review_count":  analysis.ReviewCount,
		"fallback":      analysis.Fallback,
	})
	return analysis, nil
}

func (s *recommendService) requestAnalysis(ctx context.Context, name string, comments []string) (*analysisPayload, error) {
	if s.ai == nil {
		return nil, ErrAIDisabled
	}

	text := strings.Join(comments, "\n")
	if runes := []rune(text); len(runes) > reviewTextLimit {
		text = string(runes[:reviewTextLimit])
	}

	prompt := fmt.Sprintf(`식당 이름: %s
리뷰 데이터: "%s"

위 리뷰를 분석해서 5가지 항목(맛, 가성비, 서비스, 위생, 분위기)에 대해 1~10점 점수를 매기고,
전체 내용을 요약한 한줄평과 핵심 키워드 3개 이하를 작성해줘.

반드시 아래 JSON 형식으로만 응답해:
{"scores": [맛, 가성비, 서비스, 위생, 분위기], "summary": "한줄평", "keywords": ["키워드"]}`, name, text)

	content, err := s.ai.Complete(ctx, CompletionRequest{User: prompt, Temperature: 0.5, JSON: true})
	if err != nil {
		return nil, err
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("invalid analysis json: %w", err)
	}
	if len(payload.Scores) != analysisAxes {
		return nil, fmt.Errorf("expected %d scores, got %d", analysisAxes, len(payload.Scores))
	}
	for i, score := range payload.Scores {
		payload.Scores[i] = clampScore(score)
	}
	if payload.Keywords == nil {
		payload.Keywords = []string{}
	}
	return &payload, nil
}

func applyFallbackAnalysis(a *model.ReviewAnalysis, summary string) {
	a.Taste, a.Value, a.Service, a.Hygiene, a.Mood = fallbackScore, fallbackScore, fallbackScore, fallbackScore, fallbackScore
	a.Summary = summary
	a.Keywords = []string{}
	a.Fallback = true
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
