package httpapi

import (
	"encoding/json"
	"net/http"

	"infogrid-backend-go/internal/services"

	"go.uber.org/zap"
)

type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: true, Message: message})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// writeServiceError reports a ServiceError as-is and hides anything else behind a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if serr, ok := services.AsServiceError(err); ok {
		if serr.Status >= http.StatusInternalServerError {
			s.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Int("status", serr.Status), zap.String("message", serr.Message))
		}
		WriteError(w, serr.Status, serr.Message)
		return
	}
	s.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
