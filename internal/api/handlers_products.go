package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slmn-lf/east-stress-store/internal/catalog"
	"github.com/slmn-lf/east-stress-store/internal/models"
)

// listPublicProducts only shows products that take orders.
func (s *Server) listPublicProducts(w http.ResponseWriter, r *http.Request) {
	s.listProducts(w, r, models.StatusActive)
}

func (s *Server) listAdminProducts(w http.ResponseWriter, r *http.Request) {
	s.listProducts(w, r, r.URL.Query().Get("status"))
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request, status string) {
	res, err := s.catalog.List(r.Context(), catalog.ListFilter{
		Status: status,
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  intParam(r, "limit", catalog.DefaultLimit, 1, catalog.MaxLimit),
	})
	if err != nil {
		fail(w, r, err, "product")
		return
	}
	count := len(res.Items)
	respond(w, r, http.StatusOK, res.Items, &APIMeta{Count: &count, NextCursor: res.NextCursor, Cached: res.Cached})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err, "product")
		return
	}
	respond(w, r, http.StatusOK, p, nil)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateProductInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	p, err := s.catalog.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err, "product")
		return
	}
	respond(w, r, http.StatusCreated, p, nil)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.UpdateProductInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	p, err := s.catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, err, "product")
		return
	}
	respond(w, r, http.StatusOK, p, nil)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setProductStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeOrFail(w, r, &req) {
		return
	}
	p, err := s.catalog.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		fail(w, r, err, "product")
		return
	}
	respond(w, r, http.StatusOK, p, nil)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.catalog.Delete(r.Context(), id); err != nil {
		fail(w, r, err, "product")
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"id": id}, nil)
}

func (s *Server) explainProducts(w http.ResponseWriter, r *http.Request) {
	plan, err := s.catalog.Explain(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		fail(w, r, err, "product")
		return
	}
	respond(w, r, http.StatusOK, map[string]any{"plan": plan}, nil)
}
