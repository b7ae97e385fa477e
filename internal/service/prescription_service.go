package service

import (
	"context"
	"errors"
	"fmt"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// PrescriptionView is a prescription with the appointment that owns it
type PrescriptionView struct {
	entity.Prescription
	AppointmentID string
	PatientID     string
	DoctorID      string
	DoctorName    string
}

// DispenseResult carries the saved state of both entities touched by a dispense
type DispenseResult struct {
	Prescription entity.Prescription
	Appointment  *entity.Appointment
	Item         *entity.InventoryItem
}

// PrescriptionService moves prescriptions from Pending to Dispensed against stock
type PrescriptionService interface {
	Dispense(ctx context.Context, actorID, prescriptionID string) (*DispenseResult, error)
	Get(ctx context.Context, prescriptionID string) (*PrescriptionView, error)
	List(ctx context.Context, pendingOnly bool) ([]PrescriptionView, error)
}

type prescriptionService struct {
	store    repository.Store
	locker   *KeyLocker
	log      *logrus.Logger
	recorder *activityRecorder
}

func NewPrescriptionService(
	store repository.Store,
	locker *KeyLocker,
	log *logrus.Logger,
	audit AuditService,
	events EventPublisher,
) PrescriptionService {
	return &prescriptionService{
		store:    store,
		locker:   locker,
		log:      log,
		recorder: &activityRecorder{log: log, audit: audit, events: events},
	}
}

// Dispense debits stock exactly once. The appointment and the inventory item are
// saved together, so a failed or conflicting save leaves both untouched.
func (s *prescriptionService) Dispense(ctx context.Context, actorID, prescriptionID string) (*DispenseResult, error) {
	peek, err := s.Get(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	unlock := s.locker.Lock(
		lockKey("appointment", peek.AppointmentID),
		lockKey("inventory", entity.MedicationKey(peek.MedicationName)),
	)
	defer unlock()

	appt, err := loadAppointment(ctx, s.store, peek.AppointmentID)
	if err != nil {
		return nil, err
	}
	prescription := appt.FindPrescription(prescriptionID)
	if prescription == nil {
		return nil, fmt.Errorf("%w: %q", ErrPrescriptionNotFound, prescriptionID)
	}
	if !prescription.IsPending() {
		return nil, fmt.Errorf("%w: prescription %s is %s", ErrInvalidState, prescriptionID, prescription.Status)
	}

	item, err := loadInventoryItem(ctx, s.store, prescription.MedicationName)
	if err != nil {
		return nil, err
	}
	if item.StockLevel < prescription.Quantity {
		return nil, fmt.Errorf("%w: %s has %d, %d requested", ErrInsufficientStock, item.MedicationName, item.StockLevel, prescription.Quantity)
	}

	oldStock := item.StockLevel
	now := timeNow()
	item.StockLevel -= prescription.Quantity
	item.UpdatedAt = now
	prescription.Status = entity.PrescriptionStatusDispensed
	prescription.DispensedBy = actorID
	prescription.DispensedAt = &now
	appt.UpdatedAt = now

	if err := s.store.Save(ctx, appt, item); err != nil {
		s.log.Warnf("Failed to save dispense of %s: %+v", prescriptionID, err)
		return nil, err
	}

	s.log.Infof("Prescription dispensed: id=%s, medication=%s, quantity=%d, stock=%d", prescriptionID, item.MedicationName, prescription.Quantity, item.StockLevel)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionPrescriptionDispense,
		event:    entity.EventPrescriptionDispensed,
		kind:     entity.KindAppointment,
		entityID: prescriptionID,
		oldValue: map[string]interface{}{"status": entity.PrescriptionStatusPending, "stock_level": oldStock},
		newValue: map[string]interface{}{"status": prescription.Status, "stock_level": item.StockLevel},
		data: map[string]interface{}{
			"appointment_id":  appt.ID,
			"medication_name": item.MedicationName,
			"quantity":        prescription.Quantity,
		},
	})

	if item.IsLowStock() {
		s.publishLowStock(ctx, actorID, item)
	}

	return &DispenseResult{Prescription: *prescription, Appointment: appt, Item: item}, nil
}

// publishLowStock is advisory only, no replenishment request is created
func (s *prescriptionService) publishLowStock(ctx context.Context, actorID string, item *entity.InventoryItem) {
	event := entity.DomainEvent{
		Type:       entity.EventInventoryLowStock,
		EntityKind: entity.KindInventoryItem,
		EntityID:   item.EntityID(),
		ActorID:    actorID,
		OccurredAt: timeNow(),
		Data: map[string]interface{}{
			"medication_name":       item.MedicationName,
			"stock_level":           item.StockLevel,
			"low_stock_alert_level": item.LowStockAlertLevel,
		},
	}
	if err := s.recorder.events.Publish(ctx, event); err != nil {
		s.log.Warnf("Failed to publish low stock event for %s: %+v", item.MedicationName, err)
	}
}

func (s *prescriptionService) Get(ctx context.Context, prescriptionID string) (*PrescriptionView, error) {
	appointmentID, ok := entity.AppointmentIDFromPrescription(prescriptionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPrescriptionNotFound, prescriptionID)
	}
	appt, err := loadAppointment(ctx, s.store, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPrescriptionNotFound, prescriptionID)
		}
		return nil, err
	}
	prescription := appt.FindPrescription(prescriptionID)
	if prescription == nil {
		return nil, fmt.Errorf("%w: %q", ErrPrescriptionNotFound, prescriptionID)
	}

	view := newPrescriptionView(appt, *prescription)
	return &view, nil
}

// List walks completed appointments in slot order
func (s *prescriptionService) List(ctx context.Context, pendingOnly bool) ([]PrescriptionView, error) {
	appts, err := repository.LoadAll[entity.Appointment](ctx, s.store, entity.KindAppointment)
	if err != nil {
		s.log.Warnf("Failed to list prescriptions: %+v", err)
		return nil, err
	}
	sortBySlot(appts)

	var out []PrescriptionView
	for _, appt := range appts {
		if appt.Outcome == nil {
			continue
		}
		for _, p := range appt.Outcome.Prescriptions {
			if pendingOnly && !p.IsPending() {
				continue
			}
			out = append(out, newPrescriptionView(appt, p))
		}
	}
	return out, nil
}

func newPrescriptionView(appt *entity.Appointment, p entity.Prescription) PrescriptionView {
	return PrescriptionView{
		Prescription:  p,
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		DoctorName:    appt.DoctorName,
	}
}
