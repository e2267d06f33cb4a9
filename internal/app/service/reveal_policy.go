package service

import (
	"fmt"
	"time"

	"github.com/fisa/matjip-backend/config"
	"github.com/fisa/matjip-backend/internal/app/model"
)

const (
	anonymousNameFormat = "익명%d"
	anonymousHostLabel  = "익명 방장"
)

// RevealPolicy 익명 밥약의 실명 공개 규칙
// 매일 Hour:Minute(Location 기준) 이후에는 모든 이름이 공개된다
type RevealPolicy struct {
	Hour     int
	Minute   int
	Location *time.Location
}

func NewRevealPolicy(cfg config.PartyConfig) (RevealPolicy, error) {
	hour, minute, err := cfg.RevealClock()
	if err != nil {
		return RevealPolicy{}, err
	}
	return RevealPolicy{Hour: hour, Minute: minute, Location: cfg.Location()}, nil
}

func (p RevealPolicy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Threshold now 가 속한 날의 공개 시각
func (p RevealPolicy) Threshold(now time.Time) time.Time {
	local := now.In(p.location())
	return time.Date(local.Year(), local.Month(), local.Day(), p.Hour, p.Minute, 0, 0, p.location())
}

func (p RevealPolicy) Revealed(now time.Time) bool {
	return !now.Before(p.Threshold(now))
}

// StartOfDay now 가 속한 날의 0시
func (p RevealPolicy) StartOfDay(now time.Time) time.Time {
	local := now.In(p.location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.location())
}

// Apply 보는 사람 기준으로 참여자 이름과 방장 표시를 정한다
// 공개 전 익명 밥약에서는 본인 항목만 실명이고 나머지는 참여 순서대로 익명N
func (p RevealPolicy) Apply(party *model.Party, roster []model.PartyParticipant, viewerID string, now time.Time) ([]model.ParticipantView, string, bool) {
	revealed := !party.IsAnonymous || p.Revealed(now)
	viewerIsHost := viewerID != "" && viewerID == party.HostID

	hostLabel := anonymousHostLabel
	if revealed || viewerIsHost {
		hostLabel = party.HostID
		if party.Host != nil && party.Host.Name != "" {
			hostLabel = party.Host.Name
		}
	}

	views := make([]model.ParticipantView, len(roster))
	for i, member := range roster {
		isMe := viewerID != "" && member.UserID == viewerID
		view := model.ParticipantView{
			Position: i + 1,
			IsMe:     isMe,
			IsHost:   member.UserID == party.HostID,
			JoinedAt: member.JoinedAt,
		}

		if revealed || isMe {
			view.UserID = member.UserID
			view.DisplayName = member.UserID
			if member.User != nil && member.User.Name != "" {
				view.DisplayName = member.User.Name
			}
		} else {
			view.DisplayName = fmt.Sprintf(anonymousNameFormat, i+1)
		}
		views[i] = view
	}
	return views, hostLabel, revealed
}
