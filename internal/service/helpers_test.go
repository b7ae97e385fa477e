package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// failingStore wraps a store and fails the chosen operations with ErrIOFailure.
// beforeDelete, when set, runs ahead of every Delete to simulate another writer.
type failingStore struct {
	domainRepo.Store
	failSave     bool
	failLoad     bool
	beforeDelete func()
}

func (s *failingStore) Load(ctx context.Context, kind entity.Kind, id string, dst entity.Entity) error {
	if s.failLoad {
		return fmt.Errorf("%w: disk unplugged", domainRepo.ErrIOFailure)
	}
	return s.Store.Load(ctx, kind, id, dst)
}

func (s *failingStore) Save(ctx context.Context, entities ...entity.Entity) error {
	if s.failSave {
		return fmt.Errorf("%w: disk full", domainRepo.ErrIOFailure)
	}
	return s.Store.Save(ctx, entities...)
}

func (s *failingStore) Delete(ctx context.Context, entities ...entity.Entity) error {
	if s.beforeDelete != nil {
		s.beforeDelete()
	}
	return s.Store.Delete(ctx, entities...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event entity.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	ctx           context.Context
	store         *failingStore
	auditRepo     domainRepo.AuditLogRepository
	events        *recordingPublisher
	appointments  AppointmentService
	prescriptions PrescriptionService
	inventory     InventoryService
	schedules     ScheduleService
	users         UserService
	records       MedicalRecordService
}

const (
	testSlot  = "2024-01-10T09:00"
	testSlot2 = "2024-01-10T10:00"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	passwordCost = bcrypt.MinCost

	log, _ := test.NewNullLogger()
	store := &failingStore{Store: repository.NewMemoryStore()}
	auditRepo := repository.NewMemoryAuditLogRepository()
	audit := NewAuditService(log, auditRepo)
	events := &recordingPublisher{}
	locker := NewKeyLocker(log)
	t.Cleanup(locker.Stop)

	env := &testEnv{
		ctx:           context.Background(),
		store:         store,
		auditRepo:     auditRepo,
		events:        events,
		appointments:  NewAppointmentService(store, locker, log, audit, events),
		prescriptions: NewPrescriptionService(store, locker, log, audit, events),
		inventory:     NewInventoryService(store, locker, log, audit, events),
		schedules: NewScheduleService(store, locker, log, audit, events, ScheduleTemplate{
			Days:      2,
			SlotTimes: []string{"09:00", "10:00"},
		}),
		users:   NewUserService(store, locker, log, audit, events),
		records: NewMedicalRecordService(store, locker, log, audit, events),
	}

	env.createUser(t, "doc1", "Dr. Smith", entity.RoleDoctor)
	env.createUser(t, "doc2", "Dr. Johnson", entity.RoleDoctor)
	env.createUser(t, "patient1", "Jane Doe", entity.RolePatient)
	env.createUser(t, "patient2", "John Smith", entity.RolePatient)
	env.createUser(t, "pharm1", "Pharmacist One", entity.RolePharmacist)
	env.createUser(t, "admin", "Administrator", entity.RoleAdmin)

	for _, slot := range []string{testSlot, testSlot2} {
		_, err := env.schedules.AddSlot(env.ctx, "doc1", "doc1", slot)
		require.NoError(t, err)
		_, err = env.schedules.AddSlot(env.ctx, "doc2", "doc2", slot)
		require.NoError(t, err)
	}
	return env
}

func (e *testEnv) createUser(t *testing.T, id, name string, role entity.Role) {
	t.Helper()
	_, err := e.users.Create(e.ctx, "admin", NewUserInput{ID: id, Name: name, Role: role, Password: "secret"})
	require.NoError(t, err)
}

func (e *testEnv) addItem(t *testing.T, name string, stock, alert int) {
	t.Helper()
	_, err := e.inventory.AddItem(e.ctx, "admin", NewItemInput{
		MedicationName:     name,
		StockLevel:         stock,
		LowStockAlertLevel: alert,
		UnitPrice:          decimal.NewFromInt(1),
	})
	require.NoError(t, err)
}

func (e *testEnv) schedule(t *testing.T, doctorID string) *entity.Schedule {
	t.Helper()
	s, err := e.schedules.GetSchedule(e.ctx, doctorID)
	require.NoError(t, err)
	return s
}

func (e *testEnv) appointment(t *testing.T, id string) *entity.Appointment {
	t.Helper()
	a, err := e.appointments.Get(e.ctx, id)
	require.NoError(t, err)
	return a
}

func (e *testEnv) item(t *testing.T, name string) *entity.InventoryItem {
	t.Helper()
	i, err := e.inventory.Get(e.ctx, name)
	require.NoError(t, err)
	return i
}

// confirmed books testSlot with doc1 for patient1 and confirms it
func (e *testEnv) confirmed(t *testing.T) *entity.Appointment {
	t.Helper()
	appt, err := e.appointments.Request(e.ctx, "patient1", "doc1", testSlot)
	require.NoError(t, err)
	appt, err = e.appointments.Decide(e.ctx, "doc1", appt.ID, true)
	require.NoError(t, err)
	return appt
}

func countOf(list []string, v string) int {
	n := 0
	for _, item := range list {
		if item == v {
			n++
		}
	}
	return n
}
