package usecase

import (
	"context"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/service"

	"github.com/sirupsen/logrus"
)

// DoctorUsecase is the doctor's capability set. Decisions, completion and
// cancellation are limited to the doctor's own appointments, medical records to
// patients who have booked with the doctor.
type DoctorUsecase interface {
	GetSchedule(ctx context.Context, session *entity.Session) (*dto.ScheduleResponse, error)
	AddSlot(ctx context.Context, session *entity.Session, req *dto.SlotRequest) (*dto.ScheduleResponse, error)
	RemoveSlot(ctx context.Context, session *entity.Session, req *dto.SlotRequest) (*dto.ScheduleResponse, error)
	ListAppointments(ctx context.Context, session *entity.Session, status string) (*dto.AppointmentListResponse, error)
	DecideAppointment(ctx context.Context, session *entity.Session, appointmentID string, req *dto.AppointmentDecisionRequest) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, session *entity.Session, appointmentID string, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, session *entity.Session, appointmentID string) (*dto.AppointmentResponse, error)
	GetPatientRecord(ctx context.Context, session *entity.Session, patientID string) (*dto.MedicalRecordResponse, error)
	AppendPatientRecord(ctx context.Context, session *entity.Session, patientID string, req *dto.AppendMedicalRecordRequest) (*dto.MedicalRecordResponse, error)
}

type doctorUsecase struct {
	log          *logrus.Logger
	users        service.UserService
	records      service.MedicalRecordService
	schedules    service.ScheduleService
	appointments service.AppointmentService
}

func NewDoctorUsecase(
	log *logrus.Logger,
	users service.UserService,
	records service.MedicalRecordService,
	schedules service.ScheduleService,
	appointments service.AppointmentService,
) DoctorUsecase {
	return &doctorUsecase{
		log:          log,
		users:        users,
		records:      records,
		schedules:    schedules,
		appointments: appointments,
	}
}

func (u *doctorUsecase) GetSchedule(ctx context.Context, session *entity.Session) (*dto.ScheduleResponse, error) {
	if err := authorize(session, entity.RoleDoctor); err != nil {
		return nil, err
	}

	schedule, err := u.schedules.GetSchedule(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return converter.ScheduleToResponse(session.UserID, schedule), nil
}

func (u *doctorUsecase) AddSlot(ctx context.Context, session *entity.Session, req *dto.SlotRequest) (*dto.ScheduleResponse, error) {
	if err := authorize(session, entity.RoleDoctor); err != nil {
		return nil, err
	}

	schedule, err := u.schedules.AddSlot(ctx, session.UserID, session.UserID, req.Slot)
	if err != nil {
		return nil, err
	}
	return converter.ScheduleToResponse(session.UserID, schedule), nil
}

func (u *doctorUsecase) RemoveSlot(ctx context.Context, session *entity.Session, req *dto.SlotRequest) (*dto.ScheduleResponse, error) {
	if err := authorize(session, entity.RoleDoctor); err != nil {
		return nil, err
	}

	schedule, err := u.schedules.RemoveSlot(ctx, session.UserID, session.UserID, req.Slot)
	if err != nil {
		return nil, err
	}
	return converter.ScheduleToResponse(session.UserID, schedule), nil
}

// ListAppointments covers pending requests (status=requested) and upcoming visits (status=confirmed)
func (u *doctorUsecase) ListAppointments(ctx context.Context, session *entity.Session, status string) (*dto.AppointmentListResponse, error) {
	if err := authorize(session, entity.RoleDoctor); err != nil {
		return nil, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	appts, err := u.appointments.ListForDoctor(ctx, session.UserID, st)
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

func (u *doctorUsecase) DecideAppointment(ctx context.Context, session *entity.Session, appointmentID string, req *dto.AppointmentDecisionRequest) (*dto.AppointmentResponse, error) {
	if err := u.ownAppointment(ctx, session, appointmentID); err != nil {
		return nil, err
	}

	appt, err := u.appointments.Decide(ctx, session.UserID, appointmentID, *req.Accept)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appt), nil
}

func (u *doctorUsecase) CompleteAppointment(ctx context.Context, session *entity.Session, appointmentID string, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := u.ownAppointment(ctx, session, appointmentID); err != nil {
		return nil, err
	}

	input := service.OutcomeInput{
		ServiceType:       req.ServiceType,
		ConsultationNotes: req.ConsultationNotes,
		Prescriptions:     make([]service.PrescriptionInput, len(req.Prescriptions)),
	}
	for i, p := range req.Prescriptions {
		input.Prescriptions[i] = service.PrescriptionInput{MedicationName: p.MedicationName, Quantity: p.Quantity}
	}

	appt, err := u.appointments.Complete(ctx, session.UserID, appointmentID, input)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appt), nil
}

func (u *doctorUsecase) CancelAppointment(ctx context.Context, session *entity.Session, appointmentID string) (*dto.AppointmentResponse, error) {
	if err := u.ownAppointment(ctx, session, appointmentID); err != nil {
		return nil, err
	}

	appt, err := u.appointments.Cancel(ctx, session.UserID, appointmentID)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appt), nil
}

func (u *doctorUsecase) GetPatientRecord(ctx context.Context, session *entity.Session, patientID string) (*dto.MedicalRecordResponse, error) {
	if err := u.ownPatient(ctx, session, patientID); err != nil {
		return nil, err
	}

	record, err := u.records.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return converter.MedicalRecordToResponse(record), nil
}

func (u *doctorUsecase) AppendPatientRecord(ctx context.Context, session *entity.Session, patientID string, req *dto.AppendMedicalRecordRequest) (*dto.MedicalRecordResponse, error) {
	if err := u.ownPatient(ctx, session, patientID); err != nil {
		return nil, err
	}

	record, err := u.records.Append(ctx, session.UserID, patientID, req.Diagnosis, req.Treatment)
	if err != nil {
		return nil, err
	}
	return converter.MedicalRecordToResponse(record), nil
}

func (u *doctorUsecase) ownAppointment(ctx context.Context, session *entity.Session, appointmentID string) error {
	if err := authorize(session, entity.RoleDoctor); err != nil {
		return err
	}

	appt, err := u.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.DoctorID != session.UserID {
		return ErrForbidden
	}
	return nil
}

func (u *doctorUsecase) ownPatient(ctx context.Context, session *entity.Session, patientID string) error {
	if err := authorize(session, entity.RoleDoctor); err != nil {
		return err
	}

	doctor, err := u.users.Get(ctx, session.UserID)
	if err != nil {
		return err
	}
	if !doctor.IsDoctor() || !doctor.Doctor.HasPatient(patientID) {
		return ErrForbidden
	}
	return nil
}
