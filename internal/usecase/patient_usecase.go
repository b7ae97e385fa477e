package usecase

import (
	"context"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/service"

	"github.com/sirupsen/logrus"
)

// PatientUsecase is the patient's capability set. Appointments are only reachable
// by the patient that owns them.
type PatientUsecase interface {
	GetMedicalRecord(ctx context.Context, session *entity.Session) (*dto.MedicalRecordResponse, error)
	UpdateContact(ctx context.Context, session *entity.Session, req *dto.UpdateContactRequest) (*dto.UserResponse, error)
	ListAvailableSlots(ctx context.Context, session *entity.Session) (*dto.DoctorSlotsListResponse, error)
	ListAppointments(ctx context.Context, session *entity.Session, status string) (*dto.AppointmentListResponse, error)
	RequestAppointment(ctx context.Context, session *entity.Session, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, session *entity.Session, appointmentID string) (*dto.AppointmentResponse, error)
	RescheduleAppointment(ctx context.Context, session *entity.Session, appointmentID string, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	ListOutcomes(ctx context.Context, session *entity.Session) (*dto.AppointmentListResponse, error)
}

type patientUsecase struct {
	log          *logrus.Logger
	users        service.UserService
	records      service.MedicalRecordService
	schedules    service.ScheduleService
	appointments service.AppointmentService
}

func NewPatientUsecase(
	log *logrus.Logger,
	users service.UserService,
	records service.MedicalRecordService,
	schedules service.ScheduleService,
	appointments service.AppointmentService,
) PatientUsecase {
	return &patientUsecase{
		log:          log,
		users:        users,
		records:      records,
		schedules:    schedules,
		appointments: appointments,
	}
}

func (u *patientUsecase) GetMedicalRecord(ctx context.Context, session *entity.Session) (*dto.MedicalRecordResponse, error) {
	if err := authorize(session, entity.RolePatient); err != nil {
		return nil, err
	}

	record, err := u.records.Get(ctx, session.UserID)
	if err != nil {
		u.log.Warnf("Failed to get medical record of %s: %+v", session.UserID, err)
		return nil, err
	}
	return converter.MedicalRecordToResponse(record), nil
}

func (u *patientUsecase) UpdateContact(ctx context.Context, session *entity.Session, req *dto.UpdateContactRequest) (*dto.UserResponse, error) {
	if err := authorize(session, entity.RolePatient); err != nil {
		return nil, err
	}

	user, err := u.users.UpdateContact(ctx, session.UserID, req.Email, req.ContactNumber)
	if err != nil {
		u.log.Warnf("Failed to update contact of %s: %+v", session.UserID, err)
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

func (u *patientUsecase) ListAvailableSlots(ctx context.Context, session *entity.Session) (*dto.DoctorSlotsListResponse, error) {
	if err := authorize(session, entity.RolePatient); err != nil {
		return nil, err
	}

	availability, err := u.schedules.ListAvailability(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DoctorSlotsListResponse{
		Doctors: converter.AvailabilityToResponses(availability),
		Total:   len(availability),
	}, nil
}

func (u *patientUsecase) ListAppointments(ctx context.Context, session *entity.Session, status string) (*dto.AppointmentListResponse, error) {
	if err := authorize(session, entity.RolePatient); err != nil {
		return nil, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	appts, err := u.appointments.ListForPatient(ctx, session.UserID, st)
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

func (u *patientUsecase) RequestAppointment(ctx context.Context, session *entity.Session, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := authorize(session, entity.RolePatient); err != nil {
		return nil, err
	}

	appt, err := u.appointments.Request(ctx, session.UserID, req.DoctorID, req.Slot)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appt), nil
}

func (u *patientUsecase) CancelAppointment(ctx context.Context, session *entity.Session, appointmentID string) (*dto.AppointmentResponse, error) {
	if err := u.ownAppointment(ctx, session, appointmentID); err != nil {
		return nil, err
	}

	appt, err := u.appointments.Cancel(ctx, session.UserID, appointmentID)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appt), nil
}

// RescheduleAppointment keeps the current doctor when none is given
func (u *patientUsecase) RescheduleAppointment(ctx context.Context, session *entity.Session, appointmentID string, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := u.ownAppointment(ctx, session, appointmentID); err != nil {
		return nil, err
	}

	appt, err := u.appointments.Reschedule(ctx, appointmentID, req.DoctorID, req.Slot)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appt), nil
}

// ListOutcomes returns the completed appointments with their clinical summary
func (u *patientUsecase) ListOutcomes(ctx context.Context, session *entity.Session) (*dto.AppointmentListResponse, error) {
	return u.ListAppointments(ctx, session, string(entity.AppointmentStatusCompleted))
}

func (u *patientUsecase) ownAppointment(ctx context.Context, session *entity.Session, appointmentID string) error {
	if err := authorize(session, entity.RolePatient); err != nil {
		return err
	}

	appt, err := u.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.PatientID != session.UserID {
		return ErrForbidden
	}
	return nil
}
