package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"infogrid-backend-go/internal/newsapi"
	"infogrid-backend-go/internal/services"
)

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (s *Server) FetchNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := s.Feed.Search(r.Context(), newsapi.Query{
		Q:        query.Get("q"),
		Page:     parseInt(query.Get("page"), 1),
		PageSize: parseInt(query.Get("pageSize"), newsapi.DefaultPageSize),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	result.Articles = nonNil(result.Articles)
	WriteData(w, http.StatusOK, result)
}

func (s *Server) ImportNews(w http.ResponseWriter, r *http.Request) {
	var req services.ImportInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	item, err := s.Feed.Import(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}
