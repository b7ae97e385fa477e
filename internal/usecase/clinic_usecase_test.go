package usecase

import (
	"testing"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicUsecases_VisitToDispense(t *testing.T) {
	env := newTestEnv(t)

	slots, err := env.patient.ListAvailableSlots(env.ctx, patient1Session)
	require.NoError(t, err)
	require.Equal(t, 1, slots.Total)
	assert.Equal(t, "doc1", slots.Doctors[0].DoctorID)
	assert.Equal(t, []string{testSlot, testSlot2}, slots.Doctors[0].Slots)

	appt, err := env.patient.RequestAppointment(env.ctx, patient1Session, &dto.CreateAppointmentRequest{DoctorID: "doc1", Slot: testSlot})
	require.NoError(t, err)
	assert.Equal(t, "requested", appt.Status)

	pending, err := env.doctor.ListAppointments(env.ctx, doc1Session, "requested")
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Total)

	_, err = env.doctor.DecideAppointment(env.ctx, doc2Session, appt.ID, &dto.AppointmentDecisionRequest{Accept: boolPtr(true)})
	assert.ErrorIs(t, err, ErrForbidden)

	appt, err = env.doctor.DecideAppointment(env.ctx, doc1Session, appt.ID, &dto.AppointmentDecisionRequest{Accept: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", appt.Status)

	appt, err = env.doctor.CompleteAppointment(env.ctx, doc1Session, appt.ID, &dto.CompleteAppointmentRequest{
		ServiceType:       "Consultation",
		ConsultationNotes: "Mild fever",
		Prescriptions:     []dto.PrescriptionRequest{{MedicationName: "Paracetamol", Quantity: 5}},
	})
	require.NoError(t, err)
	require.NotNil(t, appt.Outcome)
	require.Len(t, appt.Outcome.Prescriptions, 1)
	rxID := appt.Outcome.Prescriptions[0].ID

	outcomes, err := env.patient.ListOutcomes(env.ctx, patient1Session)
	require.NoError(t, err)
	require.Equal(t, 1, outcomes.Total)
	assert.Equal(t, "Consultation", outcomes.Appointments[0].Outcome.ServiceType)

	queue, err := env.pharmacist.ListPrescriptions(env.ctx, pharm1Session, true)
	require.NoError(t, err)
	require.Equal(t, 1, queue.Total)
	assert.Equal(t, "patient1", queue.Prescriptions[0].PatientID)

	dispensed, err := env.pharmacist.DispensePrescription(env.ctx, pharm1Session, rxID)
	require.NoError(t, err)
	assert.Equal(t, "dispensed", dispensed.Prescription.Status)
	assert.Equal(t, 25, dispensed.Inventory.StockLevel)

	queue, err = env.pharmacist.ListPrescriptions(env.ctx, pharm1Session, true)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Total)
}

func TestPatientUsecase_Ownership(t *testing.T) {
	env := newTestEnv(t)

	appt, err := env.patient.RequestAppointment(env.ctx, patient1Session, &dto.CreateAppointmentRequest{DoctorID: "doc1", Slot: testSlot})
	require.NoError(t, err)

	_, err = env.patient.CancelAppointment(env.ctx, patient2Session, appt.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.patient.RescheduleAppointment(env.ctx, patient2Session, appt.ID, &dto.RescheduleAppointmentRequest{Slot: testSlot2})
	assert.ErrorIs(t, err, ErrForbidden)

	moved, err := env.patient.RescheduleAppointment(env.ctx, patient1Session, appt.ID, &dto.RescheduleAppointmentRequest{Slot: testSlot2})
	require.NoError(t, err)
	assert.Equal(t, "doc1", moved.DoctorID)
	assert.Equal(t, testSlot2, moved.Slot)

	cancelled, err := env.patient.CancelAppointment(env.ctx, patient1Session, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = env.patient.ListAppointments(env.ctx, patient1Session, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.patient.RequestAppointment(env.ctx, doc1Session, &dto.CreateAppointmentRequest{DoctorID: "doc1", Slot: testSlot})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.patient.CancelAppointment(env.ctx, patient1Session, "APT-missing")
	assert.ErrorIs(t, err, service.ErrUnknownParty)
}

func TestPatientUsecase_Contact(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.patient.UpdateContact(env.ctx, patient1Session, &dto.UpdateContactRequest{Email: "jane@example.com", ContactNumber: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)

	record, err := env.patient.GetMedicalRecord(env.ctx, patient1Session)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", record.Email)
	assert.Equal(t, "555-0100", record.ContactNumber)
}

func TestDoctorUsecase_PatientRecords(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.doctor.GetPatientRecord(env.ctx, doc1Session, "patient1")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.patient.RequestAppointment(env.ctx, patient1Session, &dto.CreateAppointmentRequest{DoctorID: "doc1", Slot: testSlot})
	require.NoError(t, err)

	record, err := env.doctor.AppendPatientRecord(env.ctx, doc1Session, "patient1", &dto.AppendMedicalRecordRequest{Diagnosis: "Flu", Treatment: "Rest"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Flu"}, record.PastDiagnoses)
	assert.Equal(t, []string{"Rest"}, record.PastTreatments)

	_, err = env.doctor.AppendPatientRecord(env.ctx, doc2Session, "patient1", &dto.AppendMedicalRecordRequest{Diagnosis: "Cold"})
	assert.ErrorIs(t, err, ErrForbidden)

	record, err = env.doctor.GetPatientRecord(env.ctx, doc1Session, "patient1")
	require.NoError(t, err)
	assert.Len(t, record.PastDiagnoses, 1)
}

func TestDoctorUsecase_Schedule(t *testing.T) {
	env := newTestEnv(t)

	schedule, err := env.doctor.AddSlot(env.ctx, doc2Session, &dto.SlotRequest{Slot: testSlot})
	require.NoError(t, err)
	assert.Equal(t, []string{testSlot}, schedule.Available)

	_, err = env.doctor.AddSlot(env.ctx, doc2Session, &dto.SlotRequest{Slot: testSlot})
	assert.ErrorIs(t, err, service.ErrInvalidSlot)

	schedule, err = env.doctor.RemoveSlot(env.ctx, doc2Session, &dto.SlotRequest{Slot: testSlot})
	require.NoError(t, err)
	assert.Empty(t, schedule.Available)

	_, err = env.doctor.GetSchedule(env.ctx, pharm1Session)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPharmacistUsecase_Replenishment(t *testing.T) {
	env := newTestEnv(t)

	item, err := env.pharmacist.RequestReplenishment(env.ctx, pharm1Session, "Paracetamol", &dto.ReplenishmentRequest{Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, item.ReplenishmentPending)
	assert.Equal(t, 30, item.StockLevel)

	_, err = env.pharmacist.RequestReplenishment(env.ctx, adminSession, "Paracetamol", &dto.ReplenishmentRequest{Amount: 50})
	assert.ErrorIs(t, err, ErrForbidden)

	pending, err := env.admin.ListReplenishments(env.ctx, adminSession)
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Total)

	item, err = env.admin.ResolveReplenishment(env.ctx, adminSession, "Paracetamol", &dto.ReplenishmentDecisionRequest{Approve: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 80, item.StockLevel)
	assert.Zero(t, item.ReplenishmentPending)
}
