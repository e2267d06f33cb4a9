package controller

import (
	"net/http"

	"github.com/fisa/matjip-backend/internal/middleware"
	ws "github.com/fisa/matjip-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type EventController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewEventController allowedOrigins 가 비어 있으면 모든 Origin 허용
func NewEventController(hub *ws.Hub, allowedOrigins []string) *EventController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &EventController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
	}
}

// Subscribe 화면 갱신 이벤트 스트림
// GET /ws (?token= 이 있으면 로그인 사용자로 기록)
func (ctrl *EventController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	userID := middleware.GetSession(c).UserID
	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
