package httpapi

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Title    string
	Username string
	Role     string
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.Log.Error("render page", zap.String("page", name), zap.Error(err))
	}
}

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentSession(r); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	s.render(w, "login.html", pageData{Title: "Admin login"})
}

func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	session, _ := CurrentSession(r)
	s.render(w, "admin.html", pageData{Title: "Admin", Username: session.Username, Role: session.Role})
}

func (s *Server) BoardPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "board.html", pageData{Title: "Board"})
}

// MediaHandler serves stored objects from disk without directory listings.
func MediaHandler(basePath string) http.Handler {
	return http.FileServer(noListingFS{http.Dir(basePath)})
}

type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
