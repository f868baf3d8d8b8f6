package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/gamestore/internal/result"
	"github.com/jbweber/homelab/gamestore/internal/service"
)

// CatalogService defines the genre and platform operations the handlers need
type CatalogService[D any] interface {
	GetAll(ctx context.Context) result.Result[[]D]
	GetByID(ctx context.Context, id int64) result.Result[D]
	Create(ctx context.Context, req service.CreateCatalogEntryRequest) result.Result[D]
	Delete(ctx context.Context, id int64) result.Status
}

// Catalog serves one reference collection such as /genres.
type Catalog[D any] struct {
	collection string
	svc        CatalogService[D]
	idOf       func(D) int64
}

func NewGenres(svc CatalogService[service.GenreDto]) *Catalog[service.GenreDto] {
	return &Catalog[service.GenreDto]{collection: "genres", svc: svc, idOf: func(d service.GenreDto) int64 { return d.ID }}
}

func NewPlatforms(svc CatalogService[service.PlatformDto]) *Catalog[service.PlatformDto] {
	return &Catalog[service.PlatformDto]{collection: "platforms", svc: svc, idOf: func(d service.PlatformDto) int64 { return d.ID }}
}

// RegisterCatalogRoutes mounts the collection on r.
func RegisterCatalogRoutes[D any](r chi.Router, c *Catalog[D]) {
	r.Route("/"+c.collection, func(r chi.Router) {
		r.Get("/", c.ListHandler)
		r.Post("/", c.CreateHandler)
		r.Get("/{id}", c.GetHandler)
		r.Delete("/{id}", c.DeleteHandler)
	})
}

func (c *Catalog[D]) ListHandler(w http.ResponseWriter, r *http.Request) {
	writeResult(w, c.svc.GetAll(r.Context()), http.StatusOK)
}

func (c *Catalog[D]) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeResult(w, c.svc.GetByID(r.Context(), id), http.StatusOK)
}

func (c *Catalog[D]) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCatalogEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeCreated(w, c.svc.Create(r.Context(), req), func(d D) string {
		return resourcePath(c.collection, c.idOf(d))
	})
}

func (c *Catalog[D]) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeStatus(w, c.svc.Delete(r.Context(), id))
}
