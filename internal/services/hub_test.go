package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"infogrid-backend-go/internal/board"
	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNews(t *testing.T, repos repository.Repositories, n int, published bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, repos.News.Create(context.Background(), models.News{
			ID:          strings.Repeat("n", i+1),
			Title:       "T",
			Description: "D",
			IsPublished: published,
			CreatedAt:   time.Now(),
		}))
	}
}

func TestBoardHubRecountUsesVisibleItems(t *testing.T) {
	repos := repository.NewMemory()
	seedNews(t, repos, 3, true)
	require.NoError(t, repos.News.Create(context.Background(), models.News{ID: "draft", Title: "T", Description: "D"}))

	hub := NewBoardHub(repos, BoardIntervals{NewsSeconds: 60, EventSeconds: 60}, nil)
	hub.Recount(context.Background())

	snapshot := hub.Rotator().Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, board.Slide{Section: board.SectionNews, Index: 0, Count: 3}, snapshot[0])
	assert.Equal(t, board.Slide{Section: board.SectionEvents, Index: 0, Count: 0}, snapshot[1])
}

func readMessage(t *testing.T, conn *websocket.Conn) BoardMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg BoardMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBoardHubServesSlidesAndJumps(t *testing.T) {
	repos := repository.NewMemory()
	seedNews(t, repos, 3, true)
	hub := NewBoardHub(repos, BoardIntervals{NewsSeconds: 3600, EventSeconds: 3600}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()
	require.Eventually(t, func() bool {
		return hub.Rotator().Snapshot()[0].Count == 3
	}, 2*time.Second, 10*time.Millisecond)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, BoardMessage{Type: "slide", Section: board.SectionNews, Index: 0, Count: 3}, first)
	second := readMessage(t, conn)
	assert.Equal(t, board.SectionEvents, second.Section)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(BoardMessage{Type: "jump", Section: board.SectionNews, Index: 2}))
	jumped := readMessage(t, conn)
	assert.Equal(t, BoardMessage{Type: "slide", Section: board.SectionNews, Index: 2, Count: 3}, jumped)

	hub.ContentChanged(KindNews)
	refresh := readMessage(t, conn)
	assert.Equal(t, "refresh", refresh.Type)
	assert.Equal(t, KindNews, refresh.Kind)
}

func TestBoardHubDropsStalledDisplay(t *testing.T) {
	hub := NewBoardHub(repository.NewMemory(), BoardIntervals{}, nil)

	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
	}))
	defer srv.Close()

	dial := func() (*websocket.Conn, *websocket.Conn) {
		client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		select {
		case conn := <-accepted:
			return client, conn
		case <-time.After(3 * time.Second):
			t.Fatal("upgrade did not complete")
			return nil, nil
		}
	}

	stalledClient, stalledConn := dial()
	hub.add(stalledConn)
	healthyClient, healthyConn := dial()
	go hub.add(healthyConn).writeLoop()
	defer hub.closeAll()

	for i := 0; i <= boardSendBuffer; i++ {
		hub.fanout(BoardMessage{Type: "slide", Section: board.SectionNews, Index: i})
		assert.Equal(t, i, readMessage(t, healthyClient).Index)
	}

	assert.Equal(t, 1, hub.Clients())
	require.NoError(t, stalledClient.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := stalledClient.ReadMessage()
	require.Error(t, err)
	var netErr net.Error
	assert.False(t, errors.As(err, &netErr) && netErr.Timeout(), "stalled display was not disconnected")
}

func TestDashboardSnapshot(t *testing.T) {
	repos := repository.NewMemory()
	seedNews(t, repos, 2, false)
	svc := NewDashboardService(repos, nil, t.TempDir())
	svc.capture = func(context.Context, string) HostStats { return HostStats{DiskTotalBytes: 42} }

	got, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ContentCounts{News: 2}, got.Counts)
	assert.Equal(t, int64(42), got.Host.DiskTotalBytes)
}

func TestCaptureHostFallsBackToRoot(t *testing.T) {
	stats := CaptureHost(context.Background(), "/definitely/not/here")
	assert.False(t, stats.CapturedAt.IsZero())
}
