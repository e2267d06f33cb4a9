package service

// 실시간 갱신 이벤트 (websocket 으로 브로드캐스트)
const (
	EventRestaurantCreated = "restaurant.created"
	EventReviewCreated     = "review.created"
	EventPartyUpdated      = "party.updated"
	EventPartyRevealed     = "party.revealed"
)

// EventPublisher 화면 갱신이 필요한 변경을 알린다
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// NopPublisher 이벤트를 버린다 (테스트, 배치 작업용)
type NopPublisher struct{}

func (NopPublisher) Publish(string, interface{}) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return NopPublisher{}
	}
	return p
}
