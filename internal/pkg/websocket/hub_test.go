package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/live", NewHandler(hub, zerolog.Nop()).ServeNotices)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live" + query
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNotification(t *testing.T, conn *gorilla.Conn) (*Notification, error) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var n Notification
	require.NoError(t, json.Unmarshal(data, &n))
	return &n, nil
}

func TestHubRoutesNoticesByCampus(t *testing.T) {
	hub, srv := startHub(t)

	campusOne := dial(t, srv, "?campusId=1")
	campusTwo := dial(t, srv, "?campusId=2")
	everyone := dial(t, srv, "")

	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 10*time.Millisecond)

	hub.Publish(&Notification{NoticeID: 10, CampusID: 1, Title: "Exams", Audience: "ALL"})

	n, err := readNotification(t, campusOne)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n.NoticeID)
	assert.Equal(t, "notice.published", n.Type)

	n, err = readNotification(t, everyone)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n.NoticeID)

	_, err = readNotification(t, campusTwo)
	assert.Error(t, err, "campus 2 must not receive campus 1 notices")
}

func TestHubDeliversGlobalNoticesToEveryone(t *testing.T) {
	hub, srv := startHub(t)

	a := dial(t, srv, "?campusId=4")
	b := dial(t, srv, "?campusId=5&audience=staff")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Publish(&Notification{NoticeID: 1, Title: "Holiday", Audience: "ALL"})

	for _, conn := range []*gorilla.Conn{a, b} {
		n, err := readNotification(t, conn)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n.NoticeID)
	}
}

func TestHubFiltersByAudience(t *testing.T) {
	hub, srv := startHub(t)

	staff := dial(t, srv, "?audience=STAFF")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(&Notification{NoticeID: 2, Audience: "STUDENTS"})
	_, err := readNotification(t, staff)
	assert.Error(t, err)
}

func TestHandlerRejectsBadCampusID(t *testing.T) {
	_, srv := startHub(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live?campusId=abc"
	_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
