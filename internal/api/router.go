package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oddrun/ansuz/internal/noteservice"
)

// NewRouter mounts all API routes. authEnabled controls Bearer token
// enforcement; sseHandler, if non-nil, is mounted at GET /events inside
// the auth group; vaultRoot locates the assets directory.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc)
	assets := NewAssetHandler(vaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Queries.
	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)
	r.Get("/backlinks/{id}", h.Backlinks)

	// Context pack.
	r.Post("/pack", h.Pack)

	// Assets.
	r.Post("/assets", assets.Upload)
	r.Get("/assets/{filename}", assets.ServeFile)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
