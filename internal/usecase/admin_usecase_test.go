package usecase

import (
	"testing"
	"time"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUsecase_CreateStaff(t *testing.T) {
	env := newTestEnv(t)

	t.Run("doctor gets default schedule", func(t *testing.T) {
		user, err := env.admin.CreateStaff(env.ctx, adminSession, &dto.CreateStaffRequest{
			ID:             "doc3",
			Name:           "Dr. Brown",
			Role:           "doctor",
			Password:       "password",
			Specialization: "Cardiology",
		})
		require.NoError(t, err)
		assert.True(t, user.FirstLogin)
		require.NotNil(t, user.Doctor)
		assert.Equal(t, 2, user.Doctor.AvailableSlots)

		slots, err := env.schedules.AvailableSlots(env.ctx, "doc3")
		require.NoError(t, err)
		today := time.Now().UTC().Format("2006-01-02")
		assert.Equal(t, []string{today + "T09:00", today + "T10:00"}, slots)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := env.admin.CreateStaff(env.ctx, adminSession, &dto.CreateStaffRequest{ID: "doc1", Name: "Again", Role: "doctor", Password: "password"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("patients are not staff", func(t *testing.T) {
		_, err := env.admin.CreateStaff(env.ctx, adminSession, &dto.CreateStaffRequest{ID: "p9", Name: "P", Role: "patient", Password: "password"})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("admin only", func(t *testing.T) {
		_, err := env.admin.CreateStaff(env.ctx, doc1Session, &dto.CreateStaffRequest{ID: "x", Name: "X", Role: "admin", Password: "password"})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAdminUsecase_ListStaff(t *testing.T) {
	env := newTestEnv(t)

	all, err := env.admin.ListStaff(env.ctx, adminSession, "")
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)
	for _, u := range all.Users {
		assert.NotEqual(t, "patient", u.Role)
	}

	doctors, err := env.admin.ListStaff(env.ctx, adminSession, "doctor")
	require.NoError(t, err)
	assert.Equal(t, 2, doctors.Total)

	_, err = env.admin.ListStaff(env.ctx, adminSession, "patient")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAdminUsecase_RemoveStaff(t *testing.T) {
	env := newTestEnv(t)

	tokens, err := env.auth.Login(env.ctx, &dto.LoginRequest{UserID: "pharm1", Password: "secret"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.admin.RemoveStaff(env.ctx, adminSession, "admin"), ErrForbidden)
	assert.ErrorIs(t, env.admin.RemoveStaff(env.ctx, adminSession, "patient1"), ErrInvalidRole)
	assert.ErrorIs(t, env.admin.RemoveStaff(env.ctx, adminSession, "ghost"), ErrUserNotFound)

	require.NoError(t, env.admin.RemoveStaff(env.ctx, adminSession, "pharm1"))

	_, err = env.users.Get(env.ctx, "pharm1")
	assert.ErrorIs(t, err, service.ErrUnknownParty)

	_, err = env.auth.Authenticate(env.ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	exists, err := env.tokenRepo.Exists(env.ctx, string(jwt.RefreshToken), "pharm1", "any")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAdminUsecase_Inventory(t *testing.T) {
	env := newTestEnv(t)

	item, err := env.admin.AddInventoryItem(env.ctx, adminSession, &dto.CreateInventoryItemRequest{
		MedicationName:     "Ibuprofen",
		StockLevel:         4,
		LowStockAlertLevel: 5,
		UnitPrice:          decimal.RequireFromString("1.25"),
	})
	require.NoError(t, err)
	assert.True(t, item.LowStock)
	assert.True(t, decimal.RequireFromString("5").Equal(item.StockValue))

	_, err = env.admin.AddInventoryItem(env.ctx, adminSession, &dto.CreateInventoryItemRequest{MedicationName: "Ibuprofen"})
	assert.ErrorIs(t, err, service.ErrMedicationExists)

	alert := 2
	item, err = env.admin.UpdateInventoryItem(env.ctx, adminSession, "Ibuprofen", &dto.UpdateInventoryItemRequest{LowStockAlertLevel: &alert})
	require.NoError(t, err)
	assert.False(t, item.LowStock)

	list, err := env.admin.ListInventory(env.ctx, adminSession)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	// Paracetamol 30 x 2 + Ibuprofen 4 x 1.25
	assert.True(t, decimal.NewFromInt(65).Equal(list.TotalValue))

	require.NoError(t, env.admin.RemoveInventoryItem(env.ctx, adminSession, "Ibuprofen"))
	assert.ErrorIs(t, env.admin.RemoveInventoryItem(env.ctx, adminSession, "Ibuprofen"), service.ErrUnknownMedication)

	_, err = env.admin.ResolveReplenishment(env.ctx, adminSession, "Paracetamol", &dto.ReplenishmentDecisionRequest{Approve: boolPtr(true)})
	assert.ErrorIs(t, err, service.ErrNoPendingRequest)

	_, err = env.admin.ListInventory(env.ctx, pharm1Session)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminUsecase_ListAppointments(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.patient.RequestAppointment(env.ctx, patient1Session, &dto.CreateAppointmentRequest{DoctorID: "doc1", Slot: testSlot})
	require.NoError(t, err)
	_, err = env.patient.RequestAppointment(env.ctx, patient2Session, &dto.CreateAppointmentRequest{DoctorID: "doc1", Slot: testSlot2})
	require.NoError(t, err)

	all, err := env.admin.ListAppointments(env.ctx, adminSession, "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	confirmed, err := env.admin.ListAppointments(env.ctx, adminSession, string(entity.AppointmentStatusConfirmed))
	require.NoError(t, err)
	assert.Zero(t, confirmed.Total)

	_, err = env.admin.ListAppointments(env.ctx, adminSession, "later")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAdminUsecase_UpdateStaff(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.admin.UpdateStaff(env.ctx, adminSession, "doc1", &dto.UpdateStaffRequest{
		Name:           "Dr. Alice Smith",
		Email:          "alice@clinic.example",
		Specialization: "Pediatrics",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Alice Smith", user.Name)
	assert.Equal(t, "alice@clinic.example", user.Email)
	require.NotNil(t, user.Doctor)
	assert.Equal(t, "Pediatrics", user.Doctor.Specialization)
	assert.Equal(t, 2, user.Doctor.AvailableSlots)

	user, err = env.admin.UpdateStaff(env.ctx, adminSession, "pharm1", &dto.UpdateStaffRequest{ContactNumber: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", user.ContactNumber)

	_, err = env.admin.UpdateStaff(env.ctx, adminSession, "pharm1", &dto.UpdateStaffRequest{Specialization: "Surgery"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = env.admin.UpdateStaff(env.ctx, adminSession, "patient1", &dto.UpdateStaffRequest{Name: "Jane"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = env.admin.UpdateStaff(env.ctx, adminSession, "ghost", &dto.UpdateStaffRequest{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.admin.UpdateStaff(env.ctx, doc1Session, "doc1", &dto.UpdateStaffRequest{Name: "Me"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminUsecase_DoctorSchedules(t *testing.T) {
	env := newTestEnv(t)

	appt, err := env.patient.RequestAppointment(env.ctx, patient1Session, &dto.CreateAppointmentRequest{DoctorID: "doc1", Slot: testSlot})
	require.NoError(t, err)

	all, err := env.admin.ListDoctorSchedules(env.ctx, adminSession)
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
	assert.Equal(t, "doc1", all.Doctors[0].DoctorID)
	assert.Equal(t, "Dr. Smith", all.Doctors[0].DoctorName)
	assert.Equal(t, []string{testSlot2}, all.Doctors[0].Available)
	assert.Equal(t, []string{testSlot}, all.Doctors[0].Booked)
	assert.Equal(t, []string{appt.ID}, all.Doctors[0].AppointmentIDs)
	assert.Equal(t, "doc2", all.Doctors[1].DoctorID)
	assert.Empty(t, all.Doctors[1].Booked)

	one, err := env.admin.GetDoctorSchedule(env.ctx, adminSession, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "doc1", one.DoctorID)
	assert.Equal(t, []string{testSlot}, one.Booked)

	_, err = env.admin.GetDoctorSchedule(env.ctx, adminSession, "patient1")
	assert.ErrorIs(t, err, service.ErrUnknownParty)

	_, err = env.admin.ListDoctorSchedules(env.ctx, pharm1Session)
	assert.ErrorIs(t, err, ErrForbidden)
}
