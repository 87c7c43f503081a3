package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slmn-lf/east-stress-store/internal/preorder"
)

func (s *Server) submitPreOrder(w http.ResponseWriter, r *http.Request) {
	var in preorder.SubmitInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	res, err := s.preorders.Submit(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, err, "product")
		return
	}
	respond(w, r, http.StatusCreated, res, nil)
}

func (s *Server) listPreOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.preorders.List(r.Context(), preorder.ListFilter{
		ProductID: q.Get("product_id"),
		Cursor:    q.Get("cursor"),
		Limit:     intParam(r, "limit", preorder.DefaultLimit, 1, preorder.MaxLimit),
	})
	if err != nil {
		fail(w, r, err, "pre-order")
		return
	}
	count := len(res.Items)
	respond(w, r, http.StatusOK, res.Items, &APIMeta{Count: &count, NextCursor: res.NextCursor})
}

func (s *Server) getPreOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.preorders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err, "pre-order")
		return
	}
	respond(w, r, http.StatusOK, o, nil)
}

func (s *Server) deletePreOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.preorders.Delete(r.Context(), id); err != nil {
		fail(w, r, err, "pre-order")
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"id": id}, nil)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.preorders.Stats(r.Context())
	if err != nil {
		fail(w, r, err, "stats")
		return
	}
	respond(w, r, http.StatusOK, st, nil)
}
