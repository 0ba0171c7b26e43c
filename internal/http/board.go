package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func (s *Server) BoardData(w http.ResponseWriter, r *http.Request) {
	payload, err := s.Board.Load(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	payload.News = nonNil(payload.News)
	payload.Events = nonNil(payload.Events)
	payload.Posters = nonNil(payload.Posters)
	payload.QRCodes = nonNil(payload.QRCodes)
	WriteData(w, http.StatusOK, payload)
}

func (s *Server) BoardSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: s.allowedOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Debug("board upgrade failed", zap.Error(err))
		return
	}
	s.Hub.Serve(conn)
}

// allowedOrigin accepts same-host pages and the configured CORS origins.
func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err == nil && strings.EqualFold(parsed.Host, r.Host) {
		return true
	}
	for _, allowed := range s.Config.CorsOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return true
		}
	}
	return false
}
