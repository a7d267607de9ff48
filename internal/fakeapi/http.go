package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/catalog"
)

// Server serves the catalog REST endpoints from Store.
type Server struct {
	Store *MemStore
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/categories", s.categories)
		r.Get("/category/{category}", s.listByCategory)
		r.Get("/{id}", s.get)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.remove)
	})

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, products)
}

func (s *Server) listByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}

	products, err := s.Store.ListByCategory(r.Context(), category)
	if err != nil {
		s.serverError(w, r, "list category failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, products)
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	names, err := s.Store.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, "list categories failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, names)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	p, err := s.Store.Get(r.Context(), id)
	if s.storeError(w, r, id, err) {
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}
	created, err := s.Store.Create(r.Context(), p)
	if err != nil {
		s.serverError(w, r, "create product failed", err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}
	updated, err := s.Store.Update(r.Context(), id, p)
	if s.storeError(w, r, id, err) {
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	removed, err := s.Store.Delete(r.Context(), id)
	if s.storeError(w, r, id, err) {
		return
	}
	WriteJSON(w, http.StatusOK, removed)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (catalog.ID, bool) {
	id, err := catalog.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid id", nil)
		return "", false
	}
	return id, true
}

func (s *Server) decodeProduct(w http.ResponseWriter, r *http.Request) (catalog.Product, bool) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid json", map[string]any{"reason": err.Error()})
		return catalog.Product{}, false
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		WriteError(w, r, http.StatusBadRequest, "title is required", nil)
		return catalog.Product{}, false
	}
	if p.Price < 0 {
		WriteError(w, r, http.StatusBadRequest, "price must not be negative", nil)
		return catalog.Product{}, false
	}
	return p, true
}

// storeError writes the response for a failed store call and reports whether
// it did so.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, id catalog.ID, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id.String()})
	default:
		s.serverError(w, r, "store call failed", err)
	}
	return true
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger().Error(msg, zap.Error(err))
	WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
