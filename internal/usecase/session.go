package usecase

import (
	"errors"

	"go-clinic-management/internal/domain/entity"
)

var (
	ErrForbidden              = errors.New("you don't have permission to perform this action")
	ErrPasswordChangeRequired = errors.New("password must be changed before continuing")
	ErrInvalidStatus          = errors.New("invalid appointment status")
)

// authorize admits a session of one of the roles. Until the first-login password
// change is done every role action is refused.
func authorize(session *entity.Session, roles ...entity.Role) error {
	if session == nil || session.UserID == "" {
		return ErrInvalidToken
	}
	if session.MustChangePassword {
		return ErrPasswordChangeRequired
	}
	for _, role := range roles {
		if session.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// parseStatus accepts an empty filter
func parseStatus(s string) (entity.AppointmentStatus, error) {
	if s == "" {
		return "", nil
	}
	status, ok := entity.ParseAppointmentStatus(s)
	if !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}
