package httpapi

import (
	"net/http"
	"strings"
	"time"

	"infogrid-backend-go/internal/config"
	"infogrid-backend-go/internal/newsapi"
	"infogrid-backend-go/internal/repository"
	"infogrid-backend-go/internal/services"
	"infogrid-backend-go/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	Config    config.Config
	Log       *zap.Logger
	Sessions  *services.SessionCodec
	Auth      *services.AuthService
	News      *services.NewsService
	Events    *services.EventService
	Posters   *services.PosterService
	QRCodes   *services.QRCodeService
	Feed      *services.NewsFeed
	Board     services.BoardFeed
	Hub       *services.BoardHub
	Dashboard *services.DashboardService
	Store     storage.ObjectStore
}

func NewServer(cfg config.Config, repos repository.Repositories, store storage.ObjectStore, hub *services.BoardHub, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	codec, err := services.NewSessionCodec(cfg.SessionSecret, time.Duration(cfg.SessionTTLSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	intervals := services.BoardIntervals{
		NewsSeconds:         cfg.NewsSlideSeconds,
		EventSeconds:        cfg.EventSlideSeconds,
		PosterScrollSeconds: cfg.PosterScrollSeconds,
	}
	if hub == nil {
		hub = services.NewBoardHub(repos, intervals, log)
	}
	deps := services.ContentDeps{
		Store:    store,
		Images:   services.ImageProcessor{MaxDim: cfg.ImageMaxDim},
		Log:      log,
		Notifier: hub,
	}
	news := services.NewNewsService(repos.News, deps)
	return &Server{
		Config:    cfg,
		Log:       log,
		Sessions:  codec,
		Auth:      services.NewAuthService(repos.Admins, log),
		News:      news,
		Events:    services.NewEventService(repos.Events, deps),
		Posters:   services.NewPosterService(repos.Posters, deps),
		QRCodes:   services.NewQRCodeService(repos.QRCodes, deps),
		Feed:      services.NewNewsFeed(newsapi.New(cfg.NewsAPIBaseURL, cfg.NewsAPIKey), news, cfg.UploadMaxBytes, log),
		Board:     services.BoardFeed{Repos: repos, Intervals: intervals},
		Hub:       hub,
		Dashboard: services.NewDashboardService(repos, hub, cfg.MediaStoragePath),
		Store:     store,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.Log))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(WithSession(s.Sessions, s.Config.SessionCookieName))

	r.Route("/api", func(api chi.Router) {
		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/login", s.Login)
			admin.Post("/logout", s.Logout)
			admin.Get("/seed", s.Seed)
			admin.Post("/seed", s.Seed)

			admin.Group(func(private chi.Router) {
				private.Use(RequireSession)
				private.Get("/session", s.SessionInfo)
				private.Get("/fetch-news", s.FetchNews)
				private.Post("/fetch-news/import", s.ImportNews)
				private.Get("/dashboard", s.DashboardStats)
			})
		})

		api.Route("/news", func(news chi.Router) {
			news.Get("/", s.ListNews)
			news.Get("/{id}", s.GetNews)
			news.With(RequireSession).Post("/", s.CreateNews)
			news.With(RequireSession).Put("/{id}", s.UpdateNews)
			news.With(RequireSession).Delete("/{id}", s.DeleteNews)
		})
		api.Route("/events", func(events chi.Router) {
			events.Get("/", s.ListEvents)
			events.Get("/{id}", s.GetEvent)
			events.With(RequireSession).Post("/", s.CreateEvent)
			events.With(RequireSession).Put("/{id}", s.UpdateEvent)
			events.With(RequireSession).Delete("/{id}", s.DeleteEvent)
		})
		api.Route("/posters", func(posters chi.Router) {
			posters.Get("/", s.ListPosters)
			posters.Get("/{id}", s.GetPoster)
			posters.With(RequireSession).Post("/", s.CreatePoster)
			posters.With(RequireSession).Put("/{id}", s.UpdatePoster)
			posters.With(RequireSession).Delete("/{id}", s.DeletePoster)
		})
		api.Route("/qrcodes", func(codes chi.Router) {
			codes.Get("/", s.ListQRCodes)
			codes.Get("/{id}", s.GetQRCode)
			codes.With(RequireSession).Post("/", s.CreateQRCode)
			codes.With(RequireSession).Put("/{id}", s.UpdateQRCode)
			codes.With(RequireSession).Delete("/{id}", s.DeleteQRCode)
		})

		api.Get("/board", s.BoardData)
	})

	r.Get("/ws/board", s.BoardSocket)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/board", http.StatusFound)
	})
	r.Get("/board", s.BoardPage)
	r.Get("/admin/login", s.LoginPage)
	r.Group(func(pages chi.Router) {
		pages.Use(RequirePageSession)
		pages.Get("/admin", s.AdminPage)
		pages.Get("/admin/*", s.AdminPage)
	})

	if local, ok := s.Store.(*storage.LocalStore); ok && strings.HasPrefix(s.Config.MediaPublicURL, "/") {
		prefix := strings.TrimRight(s.Config.MediaPublicURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, MediaHandler(local.BasePath)))
	}

	r.Handle("/metrics", promhttp.Handler())
	return r
}
