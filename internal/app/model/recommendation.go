package model

import (
	"time"

	"github.com/lib/pq"
)

// WeatherSnapshot 추천 시점의 날씨
type WeatherSnapshot struct {
	Code        int     `json:"code"`
	Label       string  `json:"label"`
	Temperature float64 `json:"temperature"`
}

// Recommendation 예산/날씨 기반 메뉴 추천 결과
type Recommendation struct {
	Budget     int              `json:"budget"`
	Weather    *WeatherSnapshot `json:"weather,omitempty"` // 조회 실패 시 nil
	Candidates []MenuCandidate  `json:"candidates"`
	Text       string           `json:"text"`
	Source     string           `json:"source"` // ai, fallback
}

const (
	RecommendSourceAI       = "ai"
	RecommendSourceFallback = "fallback"
)

// ReviewAnalysis AI 리뷰 분석 결과 (맛집당 1건, 재분석 시 갱신)
type ReviewAnalysis struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	RestaurantID uint           `gorm:"not null;uniqueIndex" json:"restaurant_id"`
	Taste        int            `gorm:"not null" json:"taste"`   // 맛
	Value        int            `gorm:"not null" json:"value"`   // 가성비
	Service      int            `gorm:"not null" json:"service"` // 서비스
	Hygiene      int            `gorm:"not null" json:"hygiene"` // 위생
	Mood         int            `gorm:"not null" json:"mood"`    // 분위기
	Summary      string         `gorm:"type:text" json:"summary"`
	Keywords     pq.StringArray `gorm:"type:text" json:"keywords"`
	ReviewCount  int            `json:"review_count"`
	Fallback     bool           `json:"fallback"`
	AnalyzedAt   time.Time      `json:"analyzed_at"`
}

func (ReviewAnalysis) TableName() string {
	return "review_analyses"
}
