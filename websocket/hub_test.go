package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withUID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if uid := c.QueryParam("uid"); uid != "" {
			c.Set("userId", uid)
		}
		return next(c)
	}
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", Handler(hub, nil), withUID)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url, uid string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?uid="+uid, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Notification {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var n Notification
	require.NoError(t, conn.ReadJSON(&n))
	return n
}

func TestHub_NotifiesEveryConnectionOfAUser(t *testing.T) {
	hub, url := startHub(t)

	tab1 := dial(t, url, "u1")
	tab2 := dial(t, url, "u1")
	other := dial(t, url, "u2")
	for _, conn := range []*websocket.Conn{tab1, tab2, other} {
		assert.Equal(t, NotificationTypeConnected, read(t, conn).Type)
	}
	assert.Equal(t, 2, hub.Connected("u1"))

	hub.NotifyDashboardChanged("u1", "u1", "nobody")

	for _, conn := range []*websocket.Conn{tab1, tab2} {
		n := read(t, conn)
		assert.Equal(t, NotificationTypeDashboardChanged, n.Type)
		assert.Equal(t, "u1", n.UserID)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var n Notification
	assert.Error(t, other.ReadJSON(&n), "u2 was not notified")
}

func TestHub_UnregistersClosedConnections(t *testing.T) {
	hub, url := startHub(t)

	conn := dial(t, url, "u1")
	read(t, conn)
	require.Equal(t, 1, hub.Connected("u1"))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connected("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Error(t, hub.SendToUser("u1", Notification{Type: NotificationTypeDashboardChanged}))
}

func TestHandler_RequiresUser(t *testing.T) {
	_, url := startHub(t)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
