package controller

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fisa/matjip-backend/internal/app/service"
	ws "github.com/fisa/matjip-backend/internal/websocket"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventController_Subscribe(t *testing.T) {
	env := setupControllerTest(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return env.hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	env.hub.Publish(service.EventPartyUpdated, map[string]interface{}{"party_id": 1})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event ws.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, service.EventPartyUpdated, event.Type)
}
