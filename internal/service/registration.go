package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperrors "github.com/persona-fest/server-go/internal/errors"
	"github.com/persona-fest/server-go/internal/model"
	"github.com/persona-fest/server-go/internal/repository"
)

type RegistrationService struct {
	registrations repository.RegistrationRepository
	validate      *validator.Validate
}

func NewRegistrationService(registrations repository.RegistrationRepository) *RegistrationService {
	return &RegistrationService{
		registrations: registrations,
		validate:      validator.New(),
	}
}

// Submit validates and persists one event signup. The payload is stored
// verbatim plus a server-assigned timestamp and the pending status. Nothing
// is written when validation fails. Resubmission by the same person for the
// same event is accepted; there is no dedup.
func (s *RegistrationService) Submit(ctx context.Context, params model.SubmitRegistrationParams) (*model.Registration, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, validationError(err)
	}

	reg := &model.Registration{
		PersonalInfo:  params.PersonalInfo,
		EventCategory: params.EventCategory,
		Event:         params.Event,
		Team:          params.Team,
		Status:        model.RegistrationStatusPending,
		Timestamp:     time.Now(),
	}

	reg, err := s.registrations.Insert(ctx, reg)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("registrationId", reg.ID.Hex()).
		Str("event", reg.Event).
		Str("email", reg.PersonalInfo.Email).
		Msg("event registration submitted")

	return reg, nil
}

// Count reports the number of stored registrations.
func (s *RegistrationService) Count(ctx context.Context) (int, error) {
	return s.registrations.Count(ctx)
}

// List returns all registrations, newest first.
func (s *RegistrationService) List(ctx context.Context) ([]model.Registration, error) {
	regs, err := s.registrations.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return regs, nil
}

// validationError converts validator output into the client-facing error,
// naming the first offending field in payload terms (json path, not Go name).
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.ValidationError("invalid registration payload")
	}

	field := fieldPath(verrs[0])
	if verrs[0].Tag() == "required" {
		return apperrors.MissingRequired(field)
	}
	return apperrors.InvalidInput(field, verrs[0].Tag())
}

func fieldPath(fe validator.FieldError) string {
	// Namespace looks like "SubmitRegistrationParams.PersonalInfo.Email";
	// drop the struct name and lower-case the first letter of each segment
	// to match the JSON field names clients sent.
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}
