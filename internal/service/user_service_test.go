package service

import (
	"testing"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)

	t.Run("patient gets a medical record", func(t *testing.T) {
		user, err := env.users.Create(env.ctx, "admin", NewUserInput{
			ID:          "patient3",
			Name:        "Ann Lee",
			Role:        entity.RolePatient,
			Email:       "ann@example.com",
			Password:    "secret",
			DateOfBirth: "1999-02-03",
			BloodType:   "B+",
		})
		require.NoError(t, err)
		require.NotNil(t, user.Patient)
		assert.Nil(t, user.Doctor)
		assert.NotEqual(t, "secret", user.PasswordHash)

		record, err := env.records.Get(env.ctx, "patient3")
		require.NoError(t, err)
		assert.Equal(t, "Ann Lee", record.Name)
		assert.Equal(t, "B+", record.BloodType)
		assert.Equal(t, "ann@example.com", record.Email)
	})

	t.Run("doctor gets an empty schedule", func(t *testing.T) {
		user, err := env.users.Create(env.ctx, "admin", NewUserInput{
			ID: "doc3", Name: "Dr. Who", Role: entity.RoleDoctor, Password: "secret", Specialization: "Pediatrics",
		})
		require.NoError(t, err)
		require.NotNil(t, user.Doctor)
		assert.Equal(t, "Pediatrics", user.Doctor.Specialization)
		assert.Empty(t, user.Doctor.Schedule.Available)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := env.users.Create(env.ctx, "admin", NewUserInput{ID: "doc1", Name: "Someone", Role: entity.RoleAdmin, Password: "x"})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("invalid input", func(t *testing.T) {
		cases := []NewUserInput{
			{ID: " ", Name: "No Id", Role: entity.RoleAdmin, Password: "x"},
			{ID: "noname", Role: entity.RoleAdmin, Password: "x"},
			{ID: "nopass", Name: "No Pass", Role: entity.RoleAdmin},
			{ID: "norole", Name: "No Role", Role: entity.Role("janitor"), Password: "x"},
		}
		for _, input := range cases {
			_, err := env.users.Create(env.ctx, "admin", input)
			assert.ErrorIs(t, err, ErrInvalidInput, input.ID)
		}
	})

	logs, err := env.auditRepo.FindAll(env.ctx, entity.AuditLogFilter{Action: entity.AuditActionUserRegister})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)

	doctors, err := env.users.List(env.ctx, entity.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, "doc1", doctors[0].ID)
	assert.Equal(t, "doc2", doctors[1].ID)

	everyone, err := env.users.List(env.ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 6)

	_, err = env.users.Get(env.ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnknownParty)
}

func TestUserService_Remove(t *testing.T) {
	env := newTestEnv(t)
	appt, err := env.appointments.Request(env.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)

	err = env.users.Remove(env.ctx, "admin", "doc1")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.appointments.Cancel(env.ctx, "patient1", appt.ID)
	require.NoError(t, err)
	require.NoError(t, env.users.Remove(env.ctx, "admin", "doc1"))
	_, err = env.users.Get(env.ctx, "doc1")
	assert.ErrorIs(t, err, ErrUnknownParty)

	require.NoError(t, env.users.Remove(env.ctx, "admin", "patient2"))
	_, err = env.records.Get(env.ctx, "patient2")
	assert.ErrorIs(t, err, ErrUnknownParty)

	assert.ErrorIs(t, env.users.Remove(env.ctx, "admin", "patient2"), ErrUnknownParty)
}

func TestUserService_RemoveConflictsWithConcurrentBooking(t *testing.T) {
	env := newTestEnv(t)

	// another process books doc1 between the active-appointment check and the delete
	env.store.beforeDelete = func() {
		var doctor entity.User
		require.NoError(t, env.store.Store.Load(env.ctx, entity.KindUser, "doc1", &doctor))
		require.True(t, doctor.Doctor.Schedule.Book(testSlot))
		doctor.Doctor.Schedule.AddAppointment("APT-elsewhere")
		require.NoError(t, env.store.Store.Save(env.ctx, &doctor))
	}

	err := env.users.Remove(env.ctx, "admin", "doc1")
	assert.ErrorIs(t, err, domainRepo.ErrVersionConflict)

	env.store.beforeDelete = nil
	doctor, err := env.users.Get(env.ctx, "doc1")
	require.NoError(t, err)
	assert.Contains(t, doctor.Doctor.Schedule.AppointmentIDs, "APT-elsewhere")
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.Create(env.ctx, "admin", NewUserInput{
		ID: "pharm2", Name: "New Hire", Role: entity.RolePharmacist, Password: "password", FirstLogin: true,
	})
	require.NoError(t, err)

	user, err := env.users.ChangePassword(env.ctx, "pharm2", "n3w-secret")
	require.NoError(t, err)
	assert.False(t, user.FirstLogin)

	stored, err := env.users.Get(env.ctx, "pharm2")
	require.NoError(t, err)
	assert.False(t, stored.FirstLogin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("n3w-secret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password")))
}

func TestUserService_UpdateContact(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.UpdateContact(env.ctx, "patient1", "jane@example.org", "")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", user.Email)

	user, err = env.users.UpdateContact(env.ctx, "patient1", "", "555-0199")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", user.Email)
	assert.Equal(t, "555-0199", user.ContactNumber)

	record, err := env.records.Get(env.ctx, "patient1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", record.Email)
	assert.Equal(t, "555-0199", record.ContactNumber)

	_, err = env.users.UpdateContact(env.ctx, "doc1", "x@example.org", "")
	assert.ErrorIs(t, err, ErrUnknownParty)
}

func TestUserService_Update(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Update(env.ctx, "admin", "doc1", UpdateUserInput{Name: "Dr. Alice Smith", Specialization: "Pediatrics"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Alice Smith", user.Name)
	assert.Equal(t, "Pediatrics", user.Doctor.Specialization)

	stored, err := env.users.Get(env.ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Alice Smith", stored.Name)
	assert.Equal(t, []string{testSlot, testSlot2}, stored.Doctor.Schedule.Available)

	user, err = env.users.Update(env.ctx, "admin", "pharm1", UpdateUserInput{ContactNumber: "555-0100", Specialization: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", user.ContactNumber)
	assert.Nil(t, user.Doctor)

	_, err = env.users.Update(env.ctx, "admin", "ghost", UpdateUserInput{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrUnknownParty)

	logs, err := env.auditRepo.FindAll(env.ctx, entity.AuditLogFilter{Action: entity.AuditActionStaffUpdate})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
