package usecase

import (
	"context"
	"testing"
	"time"

	"go-clinic-management/config"
	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/repository"
	"go-clinic-management/internal/service"
	"go-clinic-management/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const (
	testSlot  = "2024-01-10T09:00"
	testSlot2 = "2024-01-10T10:00"
)

type testEnv struct {
	ctx        context.Context
	tokenRepo  domainRepo.TokenRepository
	auditRepo  domainRepo.AuditLogRepository
	users      service.UserService
	schedules  service.ScheduleService
	inventory  service.InventoryService
	auth       AuthUsecase
	patient    PatientUsecase
	doctor     DoctorUsecase
	pharmacist PharmacistUsecase
	admin      AdminUsecase
	auditLogs  AuditLogUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, _ := test.NewNullLogger()
	store := repository.NewMemoryStore()
	auditRepo := repository.NewMemoryAuditLogRepository()
	tokenRepo := repository.NewMemoryTokenRepository()
	audit := service.NewAuditService(log, auditRepo)
	events := service.NewLogEventPublisher(log)
	locker := service.NewKeyLocker(log)
	t.Cleanup(locker.Stop)

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})

	users := service.NewUserService(store, locker, log, audit, events)
	records := service.NewMedicalRecordService(store, locker, log, audit, events)
	schedules := service.NewScheduleService(store, locker, log, audit, events, service.ScheduleTemplate{
		Days:      1,
		SlotTimes: []string{"09:00", "10:00"},
	})
	appointments := service.NewAppointmentService(store, locker, log, audit, events)
	prescriptions := service.NewPrescriptionService(store, locker, log, audit, events)
	inventory := service.NewInventoryService(store, locker, log, audit, events)

	env := &testEnv{
		ctx:        context.Background(),
		tokenRepo:  tokenRepo,
		auditRepo:  auditRepo,
		users:      users,
		schedules:  schedules,
		inventory:  inventory,
		auth:       NewAuthUsecase(log, users, tokenRepo, jwtService, audit),
		patient:    NewPatientUsecase(log, users, records, schedules, appointments),
		doctor:     NewDoctorUsecase(log, users, records, schedules, appointments),
		pharmacist: NewPharmacistUsecase(log, prescriptions, inventory),
		admin:      NewAdminUsecase(log, users, schedules, appointments, inventory, tokenRepo),
		auditLogs:  NewAuditLogUsecase(log, auditRepo),
	}

	for _, u := range []service.NewUserInput{
		{ID: "admin", Name: "Administrator", Role: entity.RoleAdmin},
		{ID: "doc1", Name: "Dr. Smith", Role: entity.RoleDoctor},
		{ID: "doc2", Name: "Dr. Johnson", Role: entity.RoleDoctor},
		{ID: "patient1", Name: "Jane Doe", Role: entity.RolePatient},
		{ID: "patient2", Name: "John Smith", Role: entity.RolePatient},
		{ID: "pharm1", Name: "Pharmacist One", Role: entity.RolePharmacist},
	} {
		u.Password = "secret"
		_, err := users.Create(env.ctx, "admin", u)
		require.NoError(t, err)
	}
	for _, slot := range []string{testSlot, testSlot2} {
		_, err := schedules.AddSlot(env.ctx, "doc1", "doc1", slot)
		require.NoError(t, err)
	}
	_, err := inventory.AddItem(env.ctx, "admin", service.NewItemInput{
		MedicationName:     "Paracetamol",
		StockLevel:         30,
		LowStockAlertLevel: 10,
		UnitPrice:          decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	return env
}

func session(userID string, role entity.Role) *entity.Session {
	return &entity.Session{UserID: userID, Role: role, TokenID: "test"}
}

var (
	adminSession    = session("admin", entity.RoleAdmin)
	doc1Session     = session("doc1", entity.RoleDoctor)
	doc2Session     = session("doc2", entity.RoleDoctor)
	patient1Session = session("patient1", entity.RolePatient)
	patient2Session = session("patient2", entity.RolePatient)
	pharm1Session   = session("pharm1", entity.RolePharmacist)
)

func boolPtr(b bool) *bool { return &b }
