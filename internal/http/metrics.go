package httpapi

import (
	"net/http"
)

func (s *Server) DashboardStats(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.Dashboard.Snapshot(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, dashboard)
}
