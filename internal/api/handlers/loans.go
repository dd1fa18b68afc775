package handlers

import (
	"net/http"

	"github.com/librarylab/library-backend/internal/api/httpx"
	"github.com/librarylab/library-backend/internal/api/validate"
	"github.com/librarylab/library-backend/internal/models"
	"github.com/librarylab/library-backend/internal/services"
)

type LoansHandler struct {
	svc *services.LoanService
}

func NewLoansHandler(svc *services.LoanService) *LoansHandler {
	return &LoansHandler{svc: svc}
}

type issueLoanReq struct {
	BookID     string `json:"book_id"`
	BorrowerID string `json:"borrower_id"`
}

type returnLoanReq struct {
	LoanID string `json:"loan_id"`
}

func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if loans == nil {
		loans = []models.LoanDetail{}
	}
	httpx.WriteJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListOverdue(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if loans == nil {
		loans = []models.LoanDetail{}
	}
	httpx.WriteJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueLoanReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("book_id", req.BookID),
		validate.Required("borrower_id", req.BorrowerID),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	d, err := h.svc.Issue(r.Context(), req.BookID, req.BorrowerID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

func (h *LoansHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req returnLoanReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Collect(validate.Required("loan_id", req.LoanID)); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	if err := h.svc.Return(r.Context(), req.LoanID); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
