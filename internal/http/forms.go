package httpapi

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"infogrid-backend-go/internal/services"
)

const (
	imageField      = "image"
	formMemoryBytes = 8 << 20
	formFieldSlack  = 1 << 20
)

// formValues reads optional fields. A missing key is nil so updates keep the stored value.
type formValues url.Values

func (f formValues) str(key string) *string {
	values, ok := f[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

func (f formValues) boolean(key string) (*bool, error) {
	raw := f.str(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "on", "yes":
		v := true
		return &v, nil
	case "off", "no":
		v := false
		return &v, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(*raw))
	if err != nil {
		return nil, services.ErrBadRequest(key + " must be true or false")
	}
	return &v, nil
}

func (f formValues) integer(key string) (*int, error) {
	raw := f.str(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, services.ErrBadRequest(key + " must be a whole number")
	}
	return &v, nil
}

// parseForm reads a multipart or urlencoded body and the optional image file.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (formValues, *services.Upload, error) {
	limit := s.Config.UploadMaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+formFieldSlack)

	err := r.ParseMultipartForm(formMemoryBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, services.ServiceError{Status: http.StatusRequestEntityTooLarge, Message: "Upload is too large"}
		}
		return nil, nil, services.ErrBadRequest("Invalid form data")
	}
	// Handlers see a shallow copy of the server's request, so net/http never
	// cleans up the parts this copy spooled to disk.
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	values := formValues(r.PostForm)
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return values, nil, nil
	}
	if err != nil {
		return nil, nil, services.ErrBadRequest("Invalid image upload")
	}
	defer file.Close()
	if header.Size > limit {
		return nil, nil, services.ServiceError{Status: http.StatusRequestEntityTooLarge, Message: "Upload is too large"}
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, nil, services.ErrBadRequest("Invalid image upload")
	}
	if int64(len(data)) > limit {
		return nil, nil, services.ServiceError{Status: http.StatusRequestEntityTooLarge, Message: "Upload is too large"}
	}
	return values, &services.Upload{Filename: header.Filename, Data: data}, nil
}
