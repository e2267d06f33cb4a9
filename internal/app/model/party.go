package model

import (
	"time"
)

type PartyStatus string

const (
	PartyOpen   PartyStatus = "OPEN"
	PartyClosed PartyStatus = "CLOSED"
)

// Party 밥약(점심 모임)
type Party struct {
	ID           uint               `gorm:"primarykey" json:"id"`
	RestaurantID uint               `gorm:"not null;index" json:"restaurant_id"`
	HostID       string             `gorm:"size:8;not null;index" json:"host_id"`
	Host         *User              `gorm:"foreignKey:HostID" json:"-"`
	MaxPeople    int                `gorm:"not null;default:4" json:"max_people"` // 2~10
	IsAnonymous  bool               `gorm:"not null;default:false" json:"is_anonymous"`
	Status       PartyStatus        `gorm:"type:varchar(10);not null;default:'OPEN';index" json:"status"`
	CreatedAt    time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Participants []PartyParticipant `gorm:"foreignKey:PartyID" json:"-"`
}

func (Party) TableName() string {
	return "parties"
}

// PartyParticipant 참여 기록 (party_id, user_id 유니크)
type PartyParticipant struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	PartyID  uint      `gorm:"not null;uniqueIndex:idx_party_user" json:"party_id"`
	UserID   string    `gorm:"size:8;not null;uniqueIndex:idx_party_user" json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (PartyParticipant) TableName() string {
	return "party_participants"
}

// ParticipantView 보는 사람 기준으로 표시되는 참여자
type ParticipantView struct {
	Position    int       `json:"position"`
	UserID      string    `json:"user_id,omitempty"` // 익명 처리 시 비움
	DisplayName string    `json:"display_name"`
	IsMe        bool      `json:"is_me"`
	IsHost      bool      `json:"is_host"`
	JoinedAt    time.Time `json:"joined_at"`
}

// PartyView 목록/상세 응답
type PartyView struct {
	ID             uint              `json:"id"`
	RestaurantID   uint              `json:"restaurant_id"`
	RestaurantName string            `json:"restaurant_name"`
	HostLabel      string            `json:"host_label"`
	IsHost         bool              `json:"is_host"`
	MaxPeople      int               `json:"max_people"`
	CurrentPeople  int               `json:"current_people"`
	IsAnonymous    bool              `json:"is_anonymous"`
	Revealed       bool              `json:"revealed"`
	Joined         bool              `json:"joined"`
	Status         PartyStatus       `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	Participants   []ParticipantView `json:"participants,omitempty"`
}

type CreatePartyRequest struct {
	RestaurantID uint `json:"restaurant_id" binding:"required"`
	MaxPeople    int  `json:"max_people" binding:"omitempty,min=2,max=10"`
	IsAnonymous  bool `json:"is_anonymous"`
}

type UpdatePartyRequest struct {
	RestaurantID uint `json:"restaurant_id" binding:"required"`
	MaxPeople    int  `json:"max_people" binding:"required,min=2,max=10"`
	IsAnonymous  bool `json:"is_anonymous"`
}
