package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/persona-fest/server-go/internal/audit"
	apperrors "github.com/persona-fest/server-go/internal/errors"
	"github.com/persona-fest/server-go/internal/middleware"
	"github.com/persona-fest/server-go/internal/model"
	"github.com/persona-fest/server-go/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid request body"))
		return
	}

	account, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventAccountCreate,
		AccountID: account.ID.Hex(),
		Email:     account.Email,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "registration successful",
		"user":    account.Public(),
	})
}

// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("invalid request body"))
		return
	}

	account, tok, err := h.auth.Login(r.Context(), req)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:  audit.EventLoginFailure,
			Email: req.Email,
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventLoginSuccess,
		AccountID: account.ID.Hex(),
		Email:     account.Email,
		Details:   map[string]interface{}{"remember": req.Remember},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   tok,
		"user":    account.Public(),
	})
}

// GET /api/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthorized("missing authentication token"))
		return
	}

	account, err := h.auth.GetAccount(r.Context(), claims.AccountID())
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeNotFound {
			writeError(w, apperrors.Unauthorized("account no longer exists"))
			return
		}
		log.Error().Err(err).Str("accountId", claims.AccountID()).Msg("failed to load profile")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    account.Public(),
	})
}

// GET /api/users (admin)
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.auth.ListAccounts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list accounts")
		writeError(w, err)
		return
	}

	if claims := middleware.GetClaims(r.Context()); claims != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:      audit.EventAdminAccess,
			AccountID: claims.AccountID(),
			Email:     claims.Email,
			Details:   map[string]interface{}{"resource": "users"},
		})
	}

	if accounts == nil {
		accounts = []model.Account{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    accounts,
	})
}
