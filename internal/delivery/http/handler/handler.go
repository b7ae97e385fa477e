package handler

import (
	"errors"
	"net/http"

	"go-clinic-management/internal/delivery/http/middleware"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/service"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"

	"github.com/goccy/go-json"
)

// bind decodes the JSON body into req and validates it, writing the 400 itself
func bind(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func sessionFrom(w http.ResponseWriter, r *http.Request) (*entity.Session, bool) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return nil, false
	}
	return session, true
}

// writeError maps usecase, service and store error kinds to HTTP statuses
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid user id or password")
	case errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden),
		errors.Is(err, usecase.ErrPasswordChangeRequired):
		response.Forbidden(w, err.Error())

	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrAuditLogNotFound),
		errors.Is(err, service.ErrUnknownParty),
		errors.Is(err, service.ErrUnknownMedication):
		response.NotFound(w, err.Error())

	case errors.Is(err, usecase.ErrUserAlreadyExists),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrMedicationExists),
		errors.Is(err, service.ErrInvalidSlot),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrNoPendingRequest),
		errors.Is(err, repository.ErrVersionConflict):
		response.Conflict(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrSamePassword),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(w, err.Error())

	case errors.Is(err, repository.ErrIOFailure):
		response.ServiceUnavailable(w, "Storage is unavailable, try again later")

	default:
		response.InternalServerError(w, fallback)
	}
}
