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

type RegistrationHandler struct {
	registrations *service.RegistrationService
	auth          *service.AuthService
}

func NewRegistrationHandler(registrations *service.RegistrationService, auth *service.AuthService) *RegistrationHandler {
	return &RegistrationHandler{
		registrations: registrations,
		auth:          auth,
	}
}

// POST /api/register-event
func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var params model.SubmitRegistrationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, apperrors.ValidationError("invalid request body"))
		return
	}

	reg, err := h.registrations.Submit(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:  audit.EventRegistrationSubmit,
		Email: reg.PersonalInfo.Email,
		Details: map[string]interface{}{
			"registrationId": reg.ID.Hex(),
			"event":          reg.Event,
		},
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"registration": reg,
	})
}

// GET /api/registrations (admin)
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list registrations")
		writeError(w, err)
		return
	}

	if claims := middleware.GetClaims(r.Context()); claims != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:      audit.EventAdminAccess,
			AccountID: claims.AccountID(),
			Email:     claims.Email,
			Details:   map[string]interface{}{"resource": "registrations"},
		})
	}

	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    regs,
	})
}

// GET /api/stats (admin)
func (h *RegistrationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	registrations, err := h.registrations.Count(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count registrations")
		writeError(w, apperrors.Database(err))
		return
	}

	accounts, err := h.auth.CountAccounts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count accounts")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]int{
			"accounts":      accounts,
			"registrations": registrations,
		},
	})
}
