package usecase

import (
	"testing"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthUsecase_Login(t *testing.T) {
	env := newTestEnv(t)

	t.Run("success", func(t *testing.T) {
		tokens, err := env.auth.Login(env.ctx, &dto.LoginRequest{UserID: "doc1", Password: "secret"})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.False(t, tokens.MustChangePassword)

		s, err := env.auth.Authenticate(env.ctx, tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "doc1", s.UserID)
		assert.Equal(t, entity.RoleDoctor, s.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(env.ctx, &dto.LoginRequest{UserID: "doc1", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.auth.Login(env.ctx, &dto.LoginRequest{UserID: "ghost", Password: "secret"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	logs, err := env.auditRepo.FindAll(env.ctx, entity.AuditLogFilter{Action: entity.AuditActionUserLogin})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestAuthUsecase_Tokens(t *testing.T) {
	env := newTestEnv(t)

	tokens, err := env.auth.Login(env.ctx, &dto.LoginRequest{UserID: "patient1", Password: "secret"})
	require.NoError(t, err)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := env.auth.Authenticate(env.ctx, tokens.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.auth.Authenticate(env.ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh rotates", func(t *testing.T) {
		rotated, err := env.auth.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
		require.NoError(t, err)
		assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

		_, err = env.auth.RefreshToken(env.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("logout revokes access token", func(t *testing.T) {
		s, err := env.auth.Authenticate(env.ctx, tokens.AccessToken)
		require.NoError(t, err)

		require.NoError(t, env.auth.Logout(env.ctx, s, ""))
		_, err = env.auth.Authenticate(env.ctx, tokens.AccessToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})
}

func TestAuthUsecase_RegisterPatient(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.RegisterPatient(env.ctx, &dto.RegisterPatientRequest{
		ID:        "patient3",
		Name:      "Alex Roe",
		Password:  "secret",
		BloodType: "O+",
	})
	require.NoError(t, err)
	assert.Equal(t, "patient", user.Role)
	require.NotNil(t, user.Patient)
	assert.Equal(t, "patient3", user.Patient.MedicalRecordID)

	_, err = env.auth.RegisterPatient(env.ctx, &dto.RegisterPatientRequest{ID: "patient3", Name: "Dup", Password: "secret"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	record, err := env.patient.GetMedicalRecord(env.ctx, session("patient3", entity.RolePatient))
	require.NoError(t, err)
	assert.Equal(t, "O+", record.BloodType)
}

func TestAuthUsecase_FirstLoginPasswordChange(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.admin.CreateStaff(env.ctx, adminSession, &dto.CreateStaffRequest{
		ID:       "pharm2",
		Name:     "Pharmacist Two",
		Role:     "pharmacist",
		Password: "password",
	})
	require.NoError(t, err)

	tokens, err := env.auth.Login(env.ctx, &dto.LoginRequest{UserID: "pharm2", Password: "password"})
	require.NoError(t, err)
	assert.True(t, tokens.MustChangePassword)

	s, err := env.auth.Authenticate(env.ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.True(t, s.MustChangePassword)

	_, err = env.pharmacist.ListInventory(env.ctx, s)
	assert.ErrorIs(t, err, ErrPasswordChangeRequired)

	_, err = env.auth.ChangePassword(env.ctx, s, &dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "better-one"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.ChangePassword(env.ctx, s, &dto.ChangePasswordRequest{OldPassword: "password", NewPassword: "password"})
	assert.ErrorIs(t, err, ErrSamePassword)

	fresh, err := env.auth.ChangePassword(env.ctx, s, &dto.ChangePasswordRequest{OldPassword: "password", NewPassword: "better-one"})
	require.NoError(t, err)
	assert.False(t, fresh.MustChangePassword)

	_, err = env.auth.Authenticate(env.ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	s, err = env.auth.Authenticate(env.ctx, fresh.AccessToken)
	require.NoError(t, err)
	inventory, err := env.pharmacist.ListInventory(env.ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1, inventory.Total)

	me, err := env.auth.GetCurrentUser(env.ctx, s)
	require.NoError(t, err)
	assert.False(t, me.FirstLogin)
}

func TestAuthorize(t *testing.T) {
	assert.ErrorIs(t, authorize(nil, entity.RoleAdmin), ErrInvalidToken)
	assert.ErrorIs(t, authorize(&entity.Session{Role: entity.RoleAdmin}, entity.RoleAdmin), ErrInvalidToken)
	assert.ErrorIs(t, authorize(pharm1Session, entity.RoleAdmin, entity.RoleDoctor), ErrForbidden)
	assert.NoError(t, authorize(doc1Session, entity.RoleAdmin, entity.RoleDoctor))

	blocked := session("admin", entity.RoleAdmin)
	blocked.MustChangePassword = true
	assert.ErrorIs(t, authorize(blocked, entity.RoleAdmin), ErrPasswordChangeRequired)
}
