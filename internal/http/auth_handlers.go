package httpapi

import (
	"encoding/json"
	"net/http"

	"infogrid-backend-go/internal/services"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	admin, err := s.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	value, expires, err := s.Sessions.Seal(services.Session{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.setSessionCookie(w, value, expires)
	WriteData(w, http.StatusOK, LoginResponse{Username: admin.Username, Role: admin.Role})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	WriteMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) SessionInfo(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	WriteData(w, http.StatusOK, session)
}

func (s *Server) Seed(w http.ResponseWriter, r *http.Request) {
	result, err := s.Auth.Seed(r.Context(), s.Config.AdminSeedUsername, s.Config.AdminSeedPassword)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !result.Created {
		WriteError(w, http.StatusOK, result.Message)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: result.Message, Data: result})
}
