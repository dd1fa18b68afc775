package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/librarylab/library-backend/internal/api/httpx"
	"github.com/librarylab/library-backend/internal/api/validate"
	"github.com/librarylab/library-backend/internal/models"
	"github.com/librarylab/library-backend/internal/services"
)

type BooksHandler struct {
	svc *services.BookService
}

func NewBooksHandler(svc *services.BookService) *BooksHandler {
	return &BooksHandler{svc: svc}
}

type bookCreateReq struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	TotalCopies int    `json:"total_copies"`
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookCreateReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Length("title", req.Title, 2, 200),
		validate.Length("author", req.Author, 2, 100),
		validate.Length("isbn", req.ISBN, 10, 17),
		validate.MinInt("total_copies", int64(req.TotalCopies), 1),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	b, err := h.svc.Create(r.Context(), req.Title, req.Author, req.ISBN, req.TotalCopies)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd models.BookUpdate
	if err := httpx.Decode(r, &upd); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	var checks []*validate.ErrField
	if upd.Title != nil {
		checks = append(checks, validate.Length("title", *upd.Title, 2, 200))
	}
	if upd.Author != nil {
		checks = append(checks, validate.Length("author", *upd.Author, 2, 100))
	}
	if upd.ISBN != nil {
		checks = append(checks, validate.Length("isbn", *upd.ISBN, 10, 17))
	}
	if upd.TotalCopies != nil {
		checks = append(checks, validate.MinInt("total_copies", int64(*upd.TotalCopies), 1))
	}
	if errs := validate.Collect(checks...); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	b, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
