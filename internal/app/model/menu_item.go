package model

import "time"

// MenuItem 맛집 메뉴
type MenuItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	ItemName     string    `gorm:"column:item_name;size:100;not null" json:"item_name"`
	Price        int       `gorm:"not null" json:"price"` // 원
	AddedAt      time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

type CreateMenuItemRequest struct {
	ItemName string `json:"item_name" binding:"required,max=100"`
	Price    int    `json:"price" binding:"required,min=1"`
}

// MenuCandidate 예산 추천 후보 (메뉴 + 맛집 정보)
type MenuCandidate struct {
	MenuItemID     uint     `json:"menu_item_id"`
	ItemName       string   `json:"item_name"`
	Price          int      `json:"price"`
	RestaurantID   uint     `json:"restaurant_id"`
	RestaurantName string   `json:"restaurant_name"`
	Category       Category `json:"category"`
	Address        string   `json:"address"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
}
