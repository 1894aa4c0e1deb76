package router

import (
	"net/http"

	"naskahpad/config"
	docHandler "naskahpad/internal/document"
	"naskahpad/internal/document/service"
	"naskahpad/middleware"
	"naskahpad/socket"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func Setup(cfg config.Config, docService *service.DocumentService, hub *socket.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyMiddleware(cfg.JWTSecret))

		// Realtime row subscriptions
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			socket.ServeWs(hub, w, r)
		})

		h := docHandler.NewDocumentHandler(docService)
		r.Route("/api/documents", func(r chi.Router) {
			r.Post("/", h.CreateDocument)
			r.Get("/{id}", h.GetDocument)
			r.Patch("/{id}/content", h.UpdateContent)
			r.Patch("/{id}/title", h.UpdateTitle)
		})
	})

	return r
}
