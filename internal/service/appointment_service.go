package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PrescriptionInput is one medication line of a completion outcome
type PrescriptionInput struct {
	MedicationName string
	Quantity       int
}

// OutcomeInput is what the doctor records when completing an appointment
type OutcomeInput struct {
	ServiceType       string
	ConsultationNotes string
	Prescriptions     []PrescriptionInput
}

// AppointmentService owns the appointment lifecycle:
// Requested -> Confirmed | Rejected, Confirmed -> Completed | Cancelled.
// It does not check who is calling; role orchestrators authorize first.
type AppointmentService interface {
	Request(ctx context.Context, patientID, doctorID, slot string) (*entity.Appointment, error)
	Decide(ctx context.Context, actorID, appointmentID string, accept bool) (*entity.Appointment, error)
	Cancel(ctx context.Context, actorID, appointmentID string) (*entity.Appointment, error)
	Complete(ctx context.Context, actorID, appointmentID string, outcome OutcomeInput) (*entity.Appointment, error)
	Reschedule(ctx context.Context, appointmentID, doctorID, slot string) (*entity.Appointment, error)
	Get(ctx context.Context, appointmentID string) (*entity.Appointment, error)
	List(ctx context.Context, filter entity.AppointmentFilter) ([]*entity.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID string, status entity.AppointmentStatus) ([]*entity.Appointment, error)
	ListForPatient(ctx context.Context, patientID string, status entity.AppointmentStatus) ([]*entity.Appointment, error)
}

type appointmentService struct {
	store    repository.Store
	locker   *KeyLocker
	log      *logrus.Logger
	recorder *activityRecorder
}

func NewAppointmentService(
	store repository.Store,
	locker *KeyLocker,
	log *logrus.Logger,
	audit AuditService,
	events EventPublisher,
) AppointmentService {
	return &appointmentService{
		store:    store,
		locker:   locker,
		log:      log,
		recorder: &activityRecorder{log: log, audit: audit, events: events},
	}
}

func (s *appointmentService) Request(ctx context.Context, patientID, doctorID, slot string) (*entity.Appointment, error) {
	unlock := s.locker.Lock(lockKey("user", patientID), lockKey("user", doctorID))
	defer unlock()

	patient, err := loadUser(ctx, s.store, patientID, entity.RolePatient)
	if err != nil {
		return nil, err
	}
	doctor, err := loadUser(ctx, s.store, doctorID, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	appt, err := s.book(ctx, patient, doctor, slot, "")
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, appt, doctor, patient); err != nil {
		s.log.Warnf("Failed to save appointment request: %+v", err)
		return nil, err
	}

	s.log.Infof("Appointment requested: id=%s, patient=%s, doctor=%s, slot=%s", appt.ID, patientID, doctorID, slot)
	s.recorder.record(ctx, activity{
		actorID:  patientID,
		action:   entity.AuditActionAppointmentRequest,
		event:    entity.EventAppointmentRequested,
		kind:     entity.KindAppointment,
		entityID: appt.ID,
		newValue: appointmentSnapshot(appt),
		data:     appointmentSnapshot(appt),
	})
	return appt, nil
}

// book validates the slot and mutates the loaded patient and doctor. Nothing is
// saved; excludeID names an appointment being replaced by this booking.
func (s *appointmentService) book(ctx context.Context, patient, doctor *entity.User, slot, excludeID string) (*entity.Appointment, error) {
	scheduledAt, err := entity.ParseSlot(slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	schedule := &doctor.Doctor.Schedule
	if !schedule.IsAvailable(slot) {
		return nil, fmt.Errorf("%w: %s with %s", ErrInvalidSlot, slot, doctor.ID)
	}

	// a patient can only be in one place at a time
	for _, id := range patient.Patient.AppointmentIDs {
		if id == excludeID {
			continue
		}
		existing, err := loadAppointment(ctx, s.store, id)
		if err != nil {
			return nil, err
		}
		if existing.IsActive() && existing.ScheduledAt.Equal(scheduledAt) {
			return nil, fmt.Errorf("%w: patient already has appointment %s at %s", ErrInvalidSlot, existing.ID, slot)
		}
	}

	now := timeNow()
	appt := &entity.Appointment{
		ID:          "APT-" + uuid.NewString(),
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		Slot:        slot,
		ScheduledAt: scheduledAt,
		Status:      entity.AppointmentStatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	schedule.Book(slot)
	schedule.AddAppointment(appt.ID)
	doctor.Doctor.AddPatient(patient.ID)
	doctor.UpdatedAt = now
	patient.Patient.AddAppointment(appt.ID)
	patient.UpdatedAt = now

	return appt, nil
}

func (s *appointmentService) Decide(ctx context.Context, actorID, appointmentID string, accept bool) (*entity.Appointment, error) {
	appt, unlock, err := s.lockAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	oldStatus := appt.Status
	if !appt.IsRequested() {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidState, appt.ID, appt.Status)
	}

	action, event := entity.AuditActionAppointmentConfirm, entity.EventAppointmentConfirmed
	toSave := []entity.Entity{appt}
	if accept {
		appt.Confirm()
	} else {
		doctor, err := loadUser(ctx, s.store, appt.DoctorID, entity.RoleDoctor)
		if err != nil {
			return nil, err
		}
		appt.Reject()
		s.releaseSlot(doctor, appt.Slot)
		toSave = append(toSave, doctor)
		action, event = entity.AuditActionAppointmentReject, entity.EventAppointmentRejected
	}
	appt.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, toSave...); err != nil {
		s.log.Warnf("Failed to save appointment decision: %+v", err)
		return nil, err
	}

	s.log.Infof("Appointment %s: id=%s, doctor=%s", appt.Status, appt.ID, appt.DoctorID)
	s.recordStatusChange(ctx, actorID, action, event, appt, oldStatus)
	return appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, actorID, appointmentID string) (*entity.Appointment, error) {
	appt, unlock, err := s.lockAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	oldStatus := appt.Status
	if !appt.IsActive() {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidState, appt.ID, appt.Status)
	}

	doctor, err := loadUser(ctx, s.store, appt.DoctorID, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}
	appt.Cancel()
	appt.UpdatedAt = timeNow()
	s.releaseSlot(doctor, appt.Slot)

	if err := s.store.Save(ctx, appt, doctor); err != nil {
		s.log.Warnf("Failed to save appointment cancellation: %+v", err)
		return nil, err
	}

	s.log.Infof("Appointment cancelled: id=%s, by=%s", appt.ID, actorID)
	s.recordStatusChange(ctx, actorID, entity.AuditActionAppointmentCancel, entity.EventAppointmentCancelled, appt, oldStatus)
	return appt, nil
}

func (s *appointmentService) Complete(ctx context.Context, actorID, appointmentID string, input OutcomeInput) (*entity.Appointment, error) {
	appt, unlock, err := s.lockAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	oldStatus := appt.Status
	if !appt.IsConfirmed() {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidState, appt.ID, appt.Status)
	}

	prescriptions := make([]entity.Prescription, 0, len(input.Prescriptions))
	for i, p := range input.Prescriptions {
		name := strings.TrimSpace(p.MedicationName)
		if name == "" {
			return nil, fmt.Errorf("%w: prescription %d has no medication", ErrUnknownMedication, i+1)
		}
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("%w: prescription %d quantity %d", ErrInvalidAmount, i+1, p.Quantity)
		}
		prescriptions = append(prescriptions, entity.Prescription{
			ID:             entity.PrescriptionID(appt.ID, i+1),
			MedicationName: name,
			Quantity:       p.Quantity,
			Status:         entity.PrescriptionStatusPending,
		})
	}

	now := timeNow()
	appt.Complete(&entity.AppointmentOutcome{
		AppointmentTime:   appt.ScheduledAt,
		ServiceType:       input.ServiceType,
		ConsultationNotes: input.ConsultationNotes,
		Prescriptions:     prescriptions,
		RecordedAt:        now,
	})
	appt.UpdatedAt = now

	if err := s.store.Save(ctx, appt); err != nil {
		s.log.Warnf("Failed to save appointment outcome: %+v", err)
		return nil, err
	}

	s.log.Infof("Appointment completed: id=%s, doctor=%s, prescriptions=%d", appt.ID, appt.DoctorID, len(prescriptions))
	s.recordStatusChange(ctx, actorID, entity.AuditActionAppointmentComplete, entity.EventAppointmentCompleted, appt, oldStatus)
	return appt, nil
}

// Reschedule cancels an active appointment and requests a new one in a single save.
// An empty doctorID keeps the current doctor.
func (s *appointmentService) Reschedule(ctx context.Context, appointmentID, doctorID, slot string) (*entity.Appointment, error) {
	current, err := loadAppointment(ctx, s.store, appointmentID)
	if err != nil {
		return nil, err
	}
	if doctorID == "" {
		doctorID = current.DoctorID
	}
	unlock := s.locker.Lock(
		lockKey("appointment", appointmentID),
		lockKey("user", current.PatientID),
		lockKey("user", current.DoctorID),
		lockKey("user", doctorID),
	)
	defer unlock()

	// reload under the lock
	old, err := loadAppointment(ctx, s.store, appointmentID)
	if err != nil {
		return nil, err
	}
	oldStatus := old.Status
	if !old.IsActive() {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidState, old.ID, old.Status)
	}

	patient, err := loadUser(ctx, s.store, old.PatientID, entity.RolePatient)
	if err != nil {
		return nil, err
	}
	oldDoctor, err := loadUser(ctx, s.store, old.DoctorID, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}
	newDoctor := oldDoctor
	if doctorID != old.DoctorID {
		if newDoctor, err = loadUser(ctx, s.store, doctorID, entity.RoleDoctor); err != nil {
			return nil, err
		}
	}

	old.Cancel()
	old.UpdatedAt = timeNow()
	s.releaseSlot(oldDoctor, old.Slot)

	appt, err := s.book(ctx, patient, newDoctor, slot, old.ID)
	if err != nil {
		return nil, err
	}

	toSave := []entity.Entity{old, appt, patient, oldDoctor}
	if newDoctor != oldDoctor {
		toSave = append(toSave, newDoctor)
	}
	if err := s.store.Save(ctx, toSave...); err != nil {
		s.log.Warnf("Failed to save reschedule: %+v", err)
		return nil, err
	}

	s.log.Infof("Appointment rescheduled: old=%s, new=%s, slot=%s", old.ID, appt.ID, slot)
	s.recordStatusChange(ctx, old.PatientID, entity.AuditActionAppointmentCancel, entity.EventAppointmentCancelled, old, oldStatus)
	s.recorder.record(ctx, activity{
		actorID:  old.PatientID,
		action:   entity.AuditActionAppointmentReschedule,
		event:    entity.EventAppointmentRequested,
		kind:     entity.KindAppointment,
		entityID: appt.ID,
		newValue: appointmentSnapshot(appt),
		data:     map[string]interface{}{"rescheduled_from": old.ID, "slot": appt.Slot, "doctor_id": appt.DoctorID},
	})
	return appt, nil
}

func (s *appointmentService) Get(ctx context.Context, appointmentID string) (*entity.Appointment, error) {
	return loadAppointment(ctx, s.store, appointmentID)
}

func (s *appointmentService) List(ctx context.Context, filter entity.AppointmentFilter) ([]*entity.Appointment, error) {
	all, err := repository.LoadAll[entity.Appointment](ctx, s.store, entity.KindAppointment)
	if err != nil {
		s.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	out := make([]*entity.Appointment, 0, len(all))
	for _, appt := range all {
		if filter.Matches(appt) {
			out = append(out, appt)
		}
	}
	sortBySlot(out)
	return out, nil
}

// ListForDoctor follows the doctor's appointment back-references
func (s *appointmentService) ListForDoctor(ctx context.Context, doctorID string, status entity.AppointmentStatus) ([]*entity.Appointment, error) {
	doctor, err := loadUser(ctx, s.store, doctorID, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}
	return s.loadByIDs(ctx, doctor.Doctor.Schedule.AppointmentIDs, status)
}

func (s *appointmentService) ListForPatient(ctx context.Context, patientID string, status entity.AppointmentStatus) ([]*entity.Appointment, error) {
	patient, err := loadUser(ctx, s.store, patientID, entity.RolePatient)
	if err != nil {
		return nil, err
	}
	return s.loadByIDs(ctx, patient.Patient.AppointmentIDs, status)
}

func (s *appointmentService) loadByIDs(ctx context.Context, ids []string, status entity.AppointmentStatus) ([]*entity.Appointment, error) {
	out := make([]*entity.Appointment, 0, len(ids))
	for _, id := range ids {
		appt, err := loadAppointment(ctx, s.store, id)
		if err != nil {
			s.log.Warnf("Failed to load appointment %s: %+v", id, err)
			return nil, err
		}
		if status == "" || appt.Status == status {
			out = append(out, appt)
		}
	}
	sortBySlot(out)
	return out, nil
}

// lockAppointment locks the appointment and its doctor, then loads the
// appointment under the lock
func (s *appointmentService) lockAppointment(ctx context.Context, appointmentID string) (*entity.Appointment, func(), error) {
	peek, err := loadAppointment(ctx, s.store, appointmentID)
	if err != nil {
		return nil, nil, err
	}
	unlock := s.locker.Lock(lockKey("appointment", appointmentID), lockKey("user", peek.DoctorID))

	appt, err := loadAppointment(ctx, s.store, appointmentID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return appt, unlock, nil
}

// releaseSlot returns a booked slot to availability exactly once
func (s *appointmentService) releaseSlot(doctor *entity.User, slot string) {
	if !doctor.Doctor.Schedule.Release(slot) {
		s.log.Warnf("Slot %s was not booked on the schedule of %s", slot, doctor.ID)
		return
	}
	doctor.UpdatedAt = timeNow()
}

func (s *appointmentService) recordStatusChange(ctx context.Context, actorID, action, event string, appt *entity.Appointment, oldStatus entity.AppointmentStatus) {
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   action,
		event:    event,
		kind:     entity.KindAppointment,
		entityID: appt.ID,
		oldValue: map[string]interface{}{"status": oldStatus},
		newValue: appointmentSnapshot(appt),
		data:     appointmentSnapshot(appt),
	})
}

func appointmentSnapshot(appt *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"status":     appt.Status,
		"patient_id": appt.PatientID,
		"doctor_id":  appt.DoctorID,
		"slot":       appt.Slot,
	}
}

func sortBySlot(appts []*entity.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Slot != appts[j].Slot {
			return appts[i].Slot < appts[j].Slot
		}
		return appts[i].CreatedAt.Before(appts[j].CreatedAt)
	})
}
