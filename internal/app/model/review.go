package model

import (
	"time"
)

type TargetType string // 리뷰 대상 종류

const (
	TargetRestaurant TargetType = "restaurant"
	TargetMenuItem   TargetType = "menu_item"
)

// ReplyRating 답글은 평점 없이 0으로 저장
const ReplyRating = 0

// Review 리뷰 및 답글 (parent_id 가 nil 이면 최상위 리뷰)
type Review struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	TargetType TargetType `gorm:"type:varchar(20);not null;index:idx_reviews_target" json:"target_type"`
	TargetID   uint       `gorm:"not null;index:idx_reviews_target" json:"target_id"`
	UserID     string     `gorm:"size:8;not null;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating     int        `gorm:"not null;default:0" json:"rating"`
	Comment    string     `gorm:"type:text;not null" json:"comment"`
	ParentID   *uint      `gorm:"index" json:"parent_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) IsRoot() bool {
	return r.ParentID == nil
}

// AuthorName 작성자 이름 (이름을 모르면 ID)
func (r *Review) AuthorName() string {
	if r.User != nil && r.User.Name != "" {
		return r.User.Name
	}
	return r.UserID
}

// Target 리뷰 대상
type Target struct {
	Type TargetType `json:"type"`
	ID   uint       `json:"id"`
}

type CreateReviewRequest struct {
	Comment  string `json:"comment" binding:"required"`
	Rating   int    `json:"rating" binding:"omitempty,min=0,max=5"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// CommentNode 트리 렌더링용 노드
type CommentNode struct {
	ID        uint           `json:"id"`
	UserID    string         `json:"user_id"`
	UserName  string         `json:"user_name"`
	Rating    int            `json:"rating"`
	Stars     string         `json:"stars,omitempty"`
	Comment   string         `json:"comment"`
	ParentID  *uint          `json:"parent_id"`
	CreatedAt time.Time      `json:"created_at"`
	Depth     int            `json:"depth"`
	IndentPx  int            `json:"indent_px"`
	Children  []*CommentNode `json:"children"`
}

// ReviewThread 대상 하나의 리뷰 트리
type ReviewThread struct {
	Target    Target         `json:"target"`
	Count     int            `json:"count"`
	AvgRating float64        `json:"avg_rating"`
	Stars     string         `json:"stars"`
	Roots     []*CommentNode `json:"roots"`
	Orphans   []Review       `json:"orphans"` // 루트에서 도달할 수 없는 행
}
