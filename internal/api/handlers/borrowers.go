package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/librarylab/library-backend/internal/api/httpx"
	"github.com/librarylab/library-backend/internal/api/validate"
	"github.com/librarylab/library-backend/internal/models"
	"github.com/librarylab/library-backend/internal/services"
)

type BorrowersHandler struct {
	svc *services.BorrowerService
}

func NewBorrowersHandler(svc *services.BorrowerService) *BorrowersHandler {
	return &BorrowersHandler{svc: svc}
}

type borrowerCreateReq struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

func (h *BorrowersHandler) List(w http.ResponseWriter, r *http.Request) {
	borrowers, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if borrowers == nil {
		borrowers = []models.Borrower{}
	}
	httpx.WriteJSON(w, http.StatusOK, borrowers)
}

func (h *BorrowersHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BorrowersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req borrowerCreateReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Length("name", req.Name, 2, 100),
		validate.Email("email", req.Email),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	b, err := h.svc.Create(r.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *BorrowersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd models.BorrowerUpdate
	if err := httpx.Decode(r, &upd); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	var checks []*validate.ErrField
	if upd.Name != nil {
		checks = append(checks, validate.Length("name", *upd.Name, 2, 100))
	}
	if upd.Email != nil {
		checks = append(checks, validate.Email("email", *upd.Email))
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

func (h *BorrowersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
