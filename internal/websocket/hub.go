package websocket

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/fisa/matjip-backend/pkg/logger"
)

const (
	// Rate limiting: 최대 메시지 수 (1초당)
	maxMessagesPerSecond = 10

	sendBufferSize = 256
)

// Event 클라이언트로 내려가는 갱신 알림
type Event struct {
	Type    string      `json:"type"` // restaurant.created, party.updated ...
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// ClientMessage 클라이언트로부터 받은 메시지
type ClientMessage struct {
	Type   string   `json:"type"`   // subscribe, unsubscribe
	Topics []string `json:"topics"` // restaurant, review, party
}

// Client WebSocket 클라이언트 (UserID 가 비어 있으면 비로그인)
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        string
	Send          chan []byte
	topics        map[string]bool // 비어 있으면 전체 구독
	mu            sync.RWMutex
	MessageCount  int       // 최근 1초간 받은 메시지 수
	LastResetTime time.Time // 마지막 카운터 리셋 시간
	RateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, userID string) *Client {
	return &Client{
		Hub:           hub,
		Conn:          conn,
		UserID:        userID,
		Send:          make(chan []byte, sendBufferSize),
		topics:        make(map[string]bool),
		LastResetTime: time.Now(),
	}
}

// Wants 이벤트 종류의 앞부분(topic)으로 구독 여부 판단
func (c *Client) Wants(eventType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.topics) == 0 {
		return true
	}
	topic := eventType
	if i := strings.IndexByte(eventType, '.'); i >= 0 {
		topic = eventType[:i]
	}
	return c.topics[topic]
}

type broadcastMessage struct {
	eventType string
	data      []byte
}

// Hub WebSocket 연결 관리자
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *broadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run Hub 실행 (Stop 까지)
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if !client.Wants(message.eventType) {
					continue
				}
				select {
				case client.Send <- message.data:
				default:
					// Send 채널이 막혀있음 - 비동기로 정리
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop 모든 연결을 닫고 Run 을 끝낸다
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish 모든 구독자에게 이벤트 전송 (버퍼가 차면 버린다)
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now()})
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": eventType,
		})
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{eventType: eventType, data: data}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
}

// Register 클라이언트 등록
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount 현재 연결 수
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage 구독 토픽 변경 처리
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	switch msg.Type {
	case "subscribe":
		for _, t := range msg.Topics {
			client.topics[t] = true
		}
	case "unsubscribe":
		for _, t := range msg.Topics {
			delete(client.topics, t)
		}
	}
}
