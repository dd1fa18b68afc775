package handlers

import (
	"net/http"

	"github.com/librarylab/library-backend/internal/api/httpx"
	"github.com/librarylab/library-backend/internal/api/validate"
	"github.com/librarylab/library-backend/internal/services"
)

type AuthHandler struct {
	svc *services.UserService
}

func NewAuthHandler(svc *services.UserService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResp struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Length("username", req.Username, 3, 50),
		validate.Length("password", req.Password, 6, 100),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	u, token, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResp{Username: u.Username, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("username", req.Username),
		validate.Required("password", req.Password),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	u, token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResp{Username: u.Username, Token: token})
}
