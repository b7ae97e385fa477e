package service

import (
	"testing"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentService_RequestBooksSlot(t *testing.T) {
	env := newTestEnv(t)

	appt, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)

	assert.Equal(t, entity.AppointmentStatusRequested, appt.Status)
	assert.Equal(t, "Dr. Smith", appt.DoctorName)
	assert.Nil(t, appt.Outcome)

	schedule := env.schedule(t, "doc1")
	assert.NotContains(t, schedule.Available, testSlot)
	assert.Contains(t, schedule.Booked, testSlot)
	assert.Equal(t, []string{appt.ID}, schedule.AppointmentIDs)

	stored := env.appointment(t, appt.ID)
	assert.Equal(t, entity.AppointmentStatusRequested, stored.Status)

	doctor, err := env.users.Get(env.ctx, "doc1")
	require.NoError(t, err)
	assert.True(t, doctor.Doctor.HasPatient("patient1"))

	assert.Equal(t, []string{entity.EventAppointmentRequested}, env.events.types())
}

func TestAppointmentService_RequestUnknownParty(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		patientID string
		doctorID  string
	}{
		{"unknown patient", "ghost", "doc1"},
		{"unknown doctor", "patient1", "ghost"},
		{"doctor is not a patient", "doc2", "doc1"},
		{"patient is not a doctor", "patient1", "patient2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.appointments.Request(env.ctx, tt.patientID, tt.doctorID, testSlot)
			assert.ErrorIs(t, err, ErrUnknownParty)
		})
	}
	assert.Contains(t, env.schedule(t, "doc1").Available, testSlot)
}

func TestAppointmentService_RequestInvalidSlot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.appointments.Request(env.ctx, "patient1", "doc1", "2024-01-11T09:00")
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)

	_, err = env.appointments.Request(env.ctx, "patient2", "doc1", testSlot)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestAppointmentService_PatientCannotDoubleBookSameTime(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)

	_, err = env.appointments.Request(env.ctx, "patient1", "doc2", testSlot)
	assert.ErrorIs(t, err, ErrInvalidSlot)
	assert.Contains(t, env.schedule(t, "doc2").Available, testSlot)
}

func TestAppointmentService_Decide(t *testing.T) {
	env := newTestEnv(t)

	t.Run("accept keeps slot consumed", func(t *testing.T) {
		appt, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
		require.NoError(t, err)

		appt, err = env.appointments.Decide(env.ctx, "doc1", appt.ID, true)
		require.NoError(t, err)
		assert.Equal(t, entity.AppointmentStatusConfirmed, appt.Status)
		assert.NotContains(t, env.schedule(t, "doc1").Available, testSlot)

		_, err = env.appointments.Decide(env.ctx, "doc1", appt.ID, false)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("reject restores slot once", func(t *testing.T) {
		appt, err := env.appointments.Request(env.ctx, "patient2", "doc1", testSlot2)
		require.NoError(t, err)

		appt, err = env.appointments.Decide(env.ctx, "doc1", appt.ID, false)
		require.NoError(t, err)
		assert.Equal(t, entity.AppointmentStatusRejected, appt.Status)

		schedule := env.schedule(t, "doc1")
		assert.Equal(t, 1, countOf(schedule.Available, testSlot2))
		assert.NotContains(t, schedule.Booked, testSlot2)

		_, err = env.appointments.Decide(env.ctx, "doc1", appt.ID, true)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, 1, countOf(env.schedule(t, "doc1").Available, testSlot2))
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := env.appointments.Decide(env.ctx, "doc1", "APT-missing", true)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
		assert.ErrorIs(t, err, ErrUnknownParty)
	})
}

func TestAppointmentService_Cancel(t *testing.T) {
	env := newTestEnv(t)

	requested, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)
	confirmed, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot2)
	require.NoError(t, err)
	_, err = env.appointments.Decide(env.ctx, "doc1", confirmed.ID, true)
	require.NoError(t, err)

	for _, id := range []string{requested.ID, confirmed.ID} {
		appt, err := env.appointments.Cancel(env.ctx, "patient1", id)
		require.NoError(t, err)
		assert.Equal(t, entity.AppointmentStatusCancelled, appt.Status)
	}

	schedule := env.schedule(t, "doc1")
	assert.Equal(t, 1, countOf(schedule.Available, testSlot))
	assert.Equal(t, 1, countOf(schedule.Available, testSlot2))
	assert.Empty(t, schedule.Booked)

	_, err = env.appointments.Cancel(env.ctx, "patient1", requested.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, countOf(env.schedule(t, "doc1").Available, testSlot))
}

func TestAppointmentService_CompleteOnlyFromConfirmed(t *testing.T) {
	env := newTestEnv(t)
	outcome := OutcomeInput{
		ServiceType:   "Consultation",
		Prescriptions: []PrescriptionInput{{MedicationName: "Paracetamol", Quantity: 20}},
	}

	requested, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)
	rejected, err := env.appointments.Request(env.ctx, "patient2", "doc1", testSlot2)
	require.NoError(t, err)
	_, err = env.appointments.Decide(env.ctx, "doc1", rejected.ID, false)
	require.NoError(t, err)
	cancelled, err := env.appointments.Request(env.ctx, "patient2", "doc2", testSlot)
	require.NoError(t, err)
	_, err = env.appointments.Cancel(env.ctx, "patient2", cancelled.ID)
	require.NoError(t, err)

	for _, id := range []string{requested.ID, rejected.ID, cancelled.ID} {
		_, err := env.appointments.Complete(env.ctx, "doc1", id, outcome)
		assert.ErrorIs(t, err, ErrInvalidState)

		stored := env.appointment(t, id)
		assert.Nil(t, stored.Outcome)
		assert.NotEqual(t, entity.AppointmentStatusCompleted, stored.Status)
	}

	prescriptions, err := env.prescriptions.List(env.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, prescriptions)
}

func TestAppointmentService_Complete(t *testing.T) {
	env := newTestEnv(t)
	appt := env.confirmed(t)

	t.Run("invalid quantity leaves appointment confirmed", func(t *testing.T) {
		_, err := env.appointments.Complete(env.ctx, "doc1", appt.ID, OutcomeInput{
			Prescriptions: []PrescriptionInput{{MedicationName: "Aspirin", Quantity: 0}},
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, entity.AppointmentStatusConfirmed, env.appointment(t, appt.ID).Status)
	})

	t.Run("attaches outcome with pending prescriptions", func(t *testing.T) {
		done, err := env.appointments.Complete(env.ctx, "doc1", appt.ID, OutcomeInput{
			ServiceType:       "Consultation",
			ConsultationNotes: "Rest and fluids",
			Prescriptions: []PrescriptionInput{
				{MedicationName: "Paracetamol", Quantity: 20},
				{MedicationName: " Ibuprofen ", Quantity: 5},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, entity.AppointmentStatusCompleted, done.Status)
		require.NotNil(t, done.Outcome)
		assert.Equal(t, done.ScheduledAt, done.Outcome.AppointmentTime)
		require.Len(t, done.Outcome.Prescriptions, 2)
		assert.Equal(t, appt.ID+"-RX1", done.Outcome.Prescriptions[0].ID)
		assert.Equal(t, "Ibuprofen", done.Outcome.Prescriptions[1].MedicationName)
		for _, p := range done.Outcome.Prescriptions {
			assert.Equal(t, entity.PrescriptionStatusPending, p.Status)
		}

		schedule := env.schedule(t, "doc1")
		assert.Contains(t, schedule.Booked, testSlot)
		assert.NotContains(t, schedule.Available, testSlot)
	})

	t.Run("outcome is set once", func(t *testing.T) {
		_, err := env.appointments.Complete(env.ctx, "doc1", appt.ID, OutcomeInput{ServiceType: "Again"})
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, "Consultation", env.appointment(t, appt.ID).Outcome.ServiceType)
	})
}

func TestAppointmentService_Reschedule(t *testing.T) {
	env := newTestEnv(t)
	appt := env.confirmed(t)

	t.Run("unavailable slot changes nothing", func(t *testing.T) {
		_, err := env.appointments.Reschedule(env.ctx, appt.ID, "doc2", "2030-01-01T09:00")
		assert.ErrorIs(t, err, ErrInvalidSlot)

		assert.Equal(t, entity.AppointmentStatusConfirmed, env.appointment(t, appt.ID).Status)
		assert.Contains(t, env.schedule(t, "doc1").Booked, testSlot)
	})

	t.Run("moves to another doctor", func(t *testing.T) {
		moved, err := env.appointments.Reschedule(env.ctx, appt.ID, "doc2", testSlot2)
		require.NoError(t, err)

		assert.Equal(t, entity.AppointmentStatusRequested, moved.Status)
		assert.Equal(t, "doc2", moved.DoctorID)
		assert.Equal(t, entity.AppointmentStatusCancelled, env.appointment(t, appt.ID).Status)
		assert.Equal(t, 1, countOf(env.schedule(t, "doc1").Available, testSlot))
		assert.Contains(t, env.schedule(t, "doc2").Booked, testSlot2)

		mine, err := env.appointments.ListForPatient(env.ctx, "patient1", "")
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})

	t.Run("terminal appointment", func(t *testing.T) {
		_, err := env.appointments.Reschedule(env.ctx, appt.ID, "doc1", testSlot)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestAppointmentService_RescheduleSameDoctor(t *testing.T) {
	env := newTestEnv(t)
	appt, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)

	moved, err := env.appointments.Reschedule(env.ctx, appt.ID, "doc1", testSlot2)
	require.NoError(t, err)

	schedule := env.schedule(t, "doc1")
	assert.Equal(t, []string{testSlot}, schedule.Available)
	assert.Equal(t, []string{testSlot2}, schedule.Booked)
	assert.Equal(t, []string{appt.ID, moved.ID}, schedule.AppointmentIDs)
}

func TestAppointmentService_Listing(t *testing.T) {
	env := newTestEnv(t)
	a1, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot2)
	require.NoError(t, err)
	a2, err := env.appointments.Request(env.ctx, "patient2", "doc1", testSlot)
	require.NoError(t, err)
	_, err = env.appointments.Decide(env.ctx, "doc1", a2.ID, true)
	require.NoError(t, err)

	all, err := env.appointments.ListForDoctor(env.ctx, "doc1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a2.ID, all[0].ID, "ordered by slot")

	pending, err := env.appointments.ListForDoctor(env.ctx, "doc1", entity.AppointmentStatusRequested)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a1.ID, pending[0].ID)

	filtered, err := env.appointments.List(env.ctx, entity.AppointmentFilter{PatientID: "patient2"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a2.ID, filtered[0].ID)
}

func TestAppointmentService_SaveFailureLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)

	env.store.failSave = true
	_, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	assert.ErrorIs(t, err, domainRepo.ErrIOFailure)
	env.store.failSave = false

	schedule := env.schedule(t, "doc1")
	assert.Contains(t, schedule.Available, testSlot)
	assert.Empty(t, schedule.AppointmentIDs)
	assert.Empty(t, env.events.types())

	appt, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)

	env.store.failSave = true
	_, err = env.appointments.Decide(env.ctx, "doc1", appt.ID, false)
	assert.ErrorIs(t, err, domainRepo.ErrIOFailure)
	env.store.failSave = false

	assert.Equal(t, entity.AppointmentStatusRequested, env.appointment(t, appt.ID).Status)
	assert.Contains(t, env.schedule(t, "doc1").Booked, testSlot)
}

func TestAppointmentService_LoadFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failLoad = true

	_, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	assert.ErrorIs(t, err, domainRepo.ErrIOFailure)
	assert.NotErrorIs(t, err, ErrUnknownParty)
}
