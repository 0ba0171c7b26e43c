package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"infogrid-backend-go/internal/board"
	"infogrid-backend-go/internal/metrics"
	"infogrid-backend-go/internal/repository"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	boardWriteTimeout = 5 * time.Second
	boardSendBuffer   = 16
)

// BoardMessage travels both ways on /ws/board.
// Server to display: "slide" and "refresh". Display to server: "jump".
type BoardMessage struct {
	Type    string `json:"type"`
	Section string `json:"section,omitempty"`
	Index   int    `json:"index"`
	Count   int    `json:"count,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// boardClient owns one display connection. Only writeLoop writes to conn.
type boardClient struct {
	conn *websocket.Conn
	out  chan BoardMessage
	done chan struct{}
	once sync.Once
}

func newBoardClient(conn *websocket.Conn) *boardClient {
	return &boardClient{
		conn: conn,
		out:  make(chan BoardMessage, boardSendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue reports false when the display is not keeping up.
func (c *boardClient) enqueue(msg BoardMessage) bool {
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

func (c *boardClient) writeLoop() {
	for {
		select {
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(boardWriteTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *boardClient) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// BoardHub keeps connected displays in step with the server-side carousel.
type BoardHub struct {
	mu      sync.Mutex
	clients map[*boardClient]struct{}
	ch      chan BoardMessage
	changed chan string
	rotator *board.Rotator
	repos   repository.Repositories
	log     *zap.Logger
}

func NewBoardHub(repos repository.Repositories, intervals BoardIntervals, log *zap.Logger) *BoardHub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &BoardHub{
		clients: map[*boardClient]struct{}{},
		ch:      make(chan BoardMessage, 64),
		changed: make(chan string, 16),
		repos:   repos,
		log:     log,
	}
	h.rotator = board.NewRotator(h.onSlide,
		board.Section{Name: board.SectionNews, Interval: intervals.News()},
		board.Section{Name: board.SectionEvents, Interval: intervals.Events()},
	)
	return h
}

func (h *BoardHub) Rotator() *board.Rotator {
	return h.rotator
}

// Run drives the rotator and fans messages out until ctx is done.
func (h *BoardHub) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.rotator.Run(ctx)
	}()
	h.Recount(ctx)
	for {
		select {
		case msg := <-h.ch:
			h.fanout(msg)
		case kind := <-h.changed:
			h.Recount(ctx)
			h.fanout(BoardMessage{Type: "refresh", Kind: kind})
		case <-ctx.Done():
			<-done
			h.closeAll()
			return
		}
	}
}

func (h *BoardHub) onSlide(s board.Slide) {
	h.Broadcast(BoardMessage{Type: "slide", Section: s.Section, Index: s.Index, Count: s.Count})
}

func (h *BoardHub) Broadcast(msg BoardMessage) {
	select {
	case h.ch <- msg:
	default:
	}
}

// ContentChanged implements ChangeNotifier.
func (h *BoardHub) ContentChanged(kind string) {
	select {
	case h.changed <- kind:
	default:
	}
}

// Recount resizes each carousel to the number of items a display would show.
func (h *BoardHub) Recount(ctx context.Context) {
	visible := repository.ListOptions{OnlyVisible: true}
	if news, err := h.repos.News.List(ctx, visible); err == nil {
		h.rotator.SetCount(board.SectionNews, len(news))
	} else {
		h.log.Warn("board recount failed", zap.String("section", board.SectionNews), zap.Error(err))
	}
	if events, err := h.repos.Events.List(ctx, visible); err == nil {
		h.rotator.SetCount(board.SectionEvents, len(events))
	} else {
		h.log.Warn("board recount failed", zap.String("section", board.SectionEvents), zap.Error(err))
	}
}

// fanout never blocks on a display; one whose queue is full is dropped.
func (h *BoardHub) fanout(msg BoardMessage) {
	h.mu.Lock()
	clients := make([]*boardClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		if !c.enqueue(msg) {
			h.log.Warn("dropping slow board display", zap.String("remote", c.conn.RemoteAddr().String()))
			h.remove(c)
			c.close()
		}
	}
}

func (h *BoardHub) add(conn *websocket.Conn) *boardClient {
	c := newBoardClient(conn)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.SetBoardClients(count)
	return c
}

func (h *BoardHub) remove(c *boardClient) {
	h.mu.Lock()
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	metrics.SetBoardClients(count)
}

func (h *BoardHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *BoardHub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = map[*boardClient]struct{}{}
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
	metrics.SetBoardClients(0)
}

// Serve registers conn, sends the current slides and handles jump requests
// until the display disconnects.
func (h *BoardHub) Serve(conn *websocket.Conn) {
	client := h.add(conn)
	defer func() {
		h.remove(client)
		client.close()
	}()
	go client.writeLoop()
	for _, slide := range h.rotator.Snapshot() {
		client.enqueue(BoardMessage{Type: "slide", Section: slide.Section, Index: slide.Index, Count: slide.Count})
	}
	conn.SetReadLimit(4096)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg BoardMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "jump" {
			continue
		}
		h.rotator.Jump(msg.Section, msg.Index)
	}
}
