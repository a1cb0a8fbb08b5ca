package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veritext/veritext/internal/api"
	"github.com/veritext/veritext/internal/api/handlers"
	"github.com/veritext/veritext/internal/api/middleware"
)

type RouterConfig struct {
	APIToken       string
	AllowedOrigins []string
	ContentHandler *handlers.ContentHandler
	SearchHandler  *handlers.SearchHandler
	TopicsHandler  *handlers.TopicsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Route("/content", func(r chi.Router) {
			r.Post("/", cfg.ContentHandler.Create)
			r.Get("/", cfg.ContentHandler.List)
			r.Get("/{id}", cfg.ContentHandler.Get)
			r.Delete("/{id}", cfg.ContentHandler.Delete)
		})

		r.Post("/search", cfg.SearchHandler.Search)
		r.Get("/topics", cfg.TopicsHandler.List)
	})

	return r
}
