package httpapi

import (
	"net/http"

	"infogrid-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

// anonymous callers only see published or active records.
func onlyVisible(r *http.Request) bool {
	_, ok := CurrentSession(r)
	return !ok
}

func newsInput(form formValues) (services.NewsInput, error) {
	published, err := form.boolean("isPublished")
	if err != nil {
		return services.NewsInput{}, err
	}
	priority, err := form.integer("priority")
	if err != nil {
		return services.NewsInput{}, err
	}
	return services.NewsInput{
		Title:       form.str("title"),
		Description: form.str("description"),
		SourceURL:   form.str("sourceUrl"),
		Category:    form.str("category"),
		IsPublished: published,
		Priority:    priority,
	}, nil
}

func (s *Server) ListNews(w http.ResponseWriter, r *http.Request) {
	items, err := s.News.List(r.Context(), onlyVisible(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, nonNil(items))
}

func (s *Server) GetNews(w http.ResponseWriter, r *http.Request) {
	item, err := s.News.Get(r.Context(), chi.URLParam(r, "id"), onlyVisible(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) CreateNews(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	input, err := newsInput(form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.News.Create(r.Context(), input, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}

func (s *Server) UpdateNews(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	input, err := newsInput(form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.News.Update(r.Context(), chi.URLParam(r, "id"), input, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) DeleteNews(w http.ResponseWriter, r *http.Request) {
	if err := s.News.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Deleted successfully")
}

func eventInput(form formValues) services.EventInput {
	return services.EventInput{
		Title:       form.str("title"),
		Description: form.str("description"),
		EventDate:   form.str("eventDate"),
		EventTime:   form.str("eventTime"),
		EventURL:    form.str("eventUrl"),
	}
}

func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	items, err := s.Events.List(r.Context(), onlyVisible(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, nonNil(items))
}

func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	item, err := s.Events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.Events.Create(r.Context(), eventInput(form), image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}

func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.Events.Update(r.Context(), chi.URLParam(r, "id"), eventInput(form), image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.Events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Deleted successfully")
}

func posterInput(form formValues) (services.PosterInput, error) {
	published, err := form.boolean("isPublished")
	if err != nil {
		return services.PosterInput{}, err
	}
	return services.PosterInput{Title: form.str("title"), IsPublished: published}, nil
}

func (s *Server) ListPosters(w http.ResponseWriter, r *http.Request) {
	items, err := s.Posters.List(r.Context(), onlyVisible(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, nonNil(items))
}

func (s *Server) GetPoster(w http.ResponseWriter, r *http.Request) {
	item, err := s.Posters.Get(r.Context(), chi.URLParam(r, "id"), onlyVisible(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) CreatePoster(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	input, err := posterInput(form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.Posters.Create(r.Context(), input, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}

func (s *Server) UpdatePoster(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	input, err := posterInput(form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.Posters.Update(r.Context(), chi.URLParam(r, "id"), input, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) DeletePoster(w http.ResponseWriter, r *http.Request) {
	if err := s.Posters.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Deleted successfully")
}

func qrCodeInput(form formValues) (services.QRCodeInput, error) {
	active, err := form.boolean("isActive")
	if err != nil {
		return services.QRCodeInput{}, err
	}
	return services.QRCodeInput{Title: form.str("title"), RedirectURL: form.str("redirectUrl"), IsActive: active}, nil
}

func (s *Server) ListQRCodes(w http.ResponseWriter, r *http.Request) {
	items, err := s.QRCodes.List(r.Context(), onlyVisible(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, nonNil(items))
}

func (s *Server) GetQRCode(w http.ResponseWriter, r *http.Request) {
	item, err := s.QRCodes.Get(r.Context(), chi.URLParam(r, "id"), onlyVisible(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) CreateQRCode(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	input, err := qrCodeInput(form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.QRCodes.Create(r.Context(), input, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}

func (s *Server) UpdateQRCode(w http.ResponseWriter, r *http.Request) {
	form, image, err := s.parseForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	input, err := qrCodeInput(form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.QRCodes.Update(r.Context(), chi.URLParam(r, "id"), input, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) DeleteQRCode(w http.ResponseWriter, r *http.Request) {
	if err := s.QRCodes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Deleted successfully")
}
