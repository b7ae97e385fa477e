package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// timeNow is the clock used for every recorded timestamp
var timeNow = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// activity describes a committed transition: its audit entry and its domain event
type activity struct {
	actorID  string
	action   string
	event    string
	kind     entity.Kind
	entityID string
	oldValue interface{}
	newValue interface{}
	data     map[string]interface{}
}

// activityRecorder writes the audit trail and publishes events. Failures are
// logged and never undo the already saved transition.
type activityRecorder struct {
	log    *logrus.Logger
	audit  AuditService
	events EventPublisher
}

func (r *activityRecorder) record(ctx context.Context, a activity) {
	// audit errors are already logged by auditService.write
	switch {
	case a.oldValue == nil:
		_ = r.audit.LogCreate(ctx, a.actorID, a.action, a.kind, a.entityID, a.newValue)
	case a.newValue == nil:
		_ = r.audit.LogDelete(ctx, a.actorID, a.action, a.kind, a.entityID, a.oldValue)
	default:
		_ = r.audit.LogUpdate(ctx, a.actorID, a.action, a.kind, a.entityID, a.oldValue, a.newValue)
	}

	if a.event == "" {
		return
	}
	event := entity.DomainEvent{
		Type:       a.event,
		EntityKind: a.kind,
		EntityID:   a.entityID,
		ActorID:    a.actorID,
		OccurredAt: timeNow(),
		Data:       a.data,
	}
	if err := r.events.Publish(ctx, event); err != nil {
		r.log.Warnf("Failed to publish event %s for %s: %+v", a.event, a.entityID, err)
	}
}

// loadUser resolves an identifier to a user of the given role
func loadUser(ctx context.Context, store repository.Store, id string, role entity.Role) (*entity.User, error) {
	var user entity.User
	if err := store.Load(ctx, entity.KindUser, id, &user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s %q", ErrUnknownParty, role, id)
		}
		return nil, err
	}

	switch role {
	case entity.RoleDoctor:
		if !user.IsDoctor() {
			return nil, fmt.Errorf("%w: %q is not a doctor", ErrUnknownParty, id)
		}
	case entity.RolePatient:
		if !user.IsPatient() {
			return nil, fmt.Errorf("%w: %q is not a patient", ErrUnknownParty, id)
		}
	default:
		if user.Role != role {
			return nil, fmt.Errorf("%w: %q is not a %s", ErrUnknownParty, id, role)
		}
	}
	return &user, nil
}

func loadAppointment(ctx context.Context, store repository.Store, id string) (*entity.Appointment, error) {
	var appt entity.Appointment
	if err := store.Load(ctx, entity.KindAppointment, id, &appt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrAppointmentNotFound, id)
		}
		return nil, err
	}
	return &appt, nil
}

func loadInventoryItem(ctx context.Context, store repository.Store, medicationName string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	if err := store.Load(ctx, entity.KindInventoryItem, entity.MedicationKey(medicationName), &item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMedication, medicationName)
		}
		return nil, err
	}
	return &item, nil
}
