package model

import (
	"time"
)

type User struct {
	ID       string    `gorm:"primaryKey;size:8" json:"id"`              // 사용자 ID (uuid 앞 8자리)
	Name     string    `gorm:"uniqueIndex;size:50;not null" json:"name"` // 이름 (식별 키)
	Email    string    `gorm:"size:100;not null" json:"email"`           // 이메일
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`          // 가입 시각
}

func (User) TableName() string {
	return "users"
}
