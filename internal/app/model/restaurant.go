package model

import (
	"time"
)

type Category string // 음식 카테고리

const (
	CategoryAll     Category = "전체" // 필터 전용
	CategoryKorean  Category = "한식"
	CategoryChinese Category = "중식"
	CategoryJapan   Category = "일식"
	CategoryWestern Category = "양식"
	CategoryCafe    Category = "카페/디저트"
	CategoryEtc     Category = "기타"
)

// Categories 등록 가능한 카테고리 (전체 제외)
var Categories = []Category{
	CategoryKorean,
	CategoryChinese,
	CategoryJapan,
	CategoryWestern,
	CategoryCafe,
	CategoryEtc,
}

func (c Category) IsValid() bool {
	for _, category := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// IsAll 필터 값이 비어있거나 "전체"이면 전체 조회
func (c Category) IsAll() bool {
	return c == "" || c == CategoryAll
}

type Restaurant struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"size:100;not null;index" json:"name"` // 상호명
	Category       Category  `gorm:"type:varchar(20);not null;index" json:"category"`
	Address        string    `gorm:"size:255;not null;index" json:"address"`     // 사용자가 입력한 주소
	CleanedAddress string    `gorm:"size:255" json:"cleaned_address,omitempty"` // 지오코딩에 성공한 주소
	Latitude       *float64  `json:"lat"`
	Longitude      *float64  `json:"lon"`
	URL            string    `gorm:"size:500" json:"url,omitempty"`       // 지도 링크
	ImageURL       string    `gorm:"size:500" json:"image_url,omitempty"` // S3 사진
	AddedBy        string    `gorm:"size:8;index" json:"added_by,omitempty"`
	AddedAt        time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

// HasLocation 좌표가 모두 존재하는지
func (r *Restaurant) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// RestaurantSummary 카드 목록용 (평점 집계 포함)
type RestaurantSummary struct {
	Restaurant
	ReviewCount int64   `json:"review_count"`
	AvgRating   float64 `json:"avg_rating"`
	Stars       string  `json:"stars"`
}

// RatingStat 맛집별 루트 리뷰 집계
type RatingStat struct {
	TargetID    uint    `json:"target_id"`
	ReviewCount int64   `json:"review_count"`
	AvgRating   float64 `json:"avg_rating"`
}

// MapMarker 지도 마커
type MapMarker struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	AvgRating float64  `json:"avg_rating"`
	URL       string   `json:"url,omitempty"`
}

type MapView struct {
	CenterLat float64     `json:"center_lat"`
	CenterLon float64     `json:"center_lon"`
	Markers   []MapMarker `json:"markers"`
}

// TrendPoint 일별 평균 평점 (추이 차트)
type TrendPoint struct {
	RestaurantID   uint    `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	Date           string  `json:"date"` // YYYY-MM-DD
	AvgRating      float64 `json:"avg_rating"`
	ReviewCount    int     `json:"review_count"`
}

type CreateRestaurantRequest struct {
	Name     string   `json:"name" binding:"required,max=100"`
	Category Category `json:"category" binding:"required"`
	Address  string   `json:"address" binding:"required,max=255"`
	URL      string   `json:"url" binding:"omitempty,max=500"`
	Rating   int      `json:"rating" binding:"omitempty,min=1,max=5"` // 첫 리뷰 (선택)
	Comment  string   `json:"comment"`
}
