package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/pkg/contracts/events"
)

func dialHub(t *testing.T, srv *testServer, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	httpSrv := httptest.NewServer(srv.router)
	t.Cleanup(httpSrv.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
	return websocket.DefaultDialer.Dial(url, header)
}

func readMessage(t *testing.T, conn *websocket.Conn) events.WebSocketMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebSocketHandler_ConnectAndReload(t *testing.T) {
	srv := cleanServer(t, nil)
	srv.hub.Start()
	t.Cleanup(srv.hub.Stop)

	conn, _, err := dialHub(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, events.MessageTypeConnect, readMessage(t, conn).Type)
	assert.Eventually(t, func() bool { return srv.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = srv.dataset.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events.MessageTypeDatasetReloaded, readMessage(t, conn).Type)
}

func TestWebSocketHandler_RejectsForeignOrigin(t *testing.T) {
	srv := cleanServer(t, nil)
	srv.hub.Start()
	t.Cleanup(srv.hub.Stop)

	_, resp, err := dialHub(t, srv, "https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
