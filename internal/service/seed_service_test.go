package service

import (
	"context"
	"testing"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/repository"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedService_Seed(t *testing.T) {
	passwordCost = bcrypt.MinCost
	log, _ := test.NewNullLogger()
	store := repository.NewMemoryStore()
	audit := NewAuditService(log, repository.NewMemoryAuditLogRepository())
	events := &recordingPublisher{}
	locker := NewKeyLocker(log)
	t.Cleanup(locker.Stop)

	users := NewUserService(store, locker, log, audit, events)
	inventory := NewInventoryService(store, locker, log, audit, events)
	schedules := NewScheduleService(store, locker, log, audit, events, ScheduleTemplate{Days: 3, SlotTimes: []string{"09:00", "11:00"}})
	seed := NewSeedService(log, users, inventory, schedules)
	ctx := context.Background()

	require.NoError(t, seed.Seed(ctx))

	all, err := users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 6)
	for _, u := range all {
		assert.True(t, u.FirstLogin, u.ID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(DefaultPassword)), u.ID)
	}

	slots, err := schedules.AvailableSlots(ctx, "doc1")
	require.NoError(t, err)
	assert.Len(t, slots, 6)

	items, err := inventory.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	paracetamol, err := inventory.Get(ctx, "paracetamol")
	require.NoError(t, err)
	assert.Equal(t, 150, paracetamol.StockLevel)
	assert.Equal(t, 30, paracetamol.LowStockAlertLevel)

	_, err = users.ChangePassword(ctx, "patient1", "changed")
	require.NoError(t, err)
	_, err = inventory.RequestReplenishment(ctx, "pharm1", "Aspirin", 10)
	require.NoError(t, err)

	require.NoError(t, seed.Seed(ctx))

	patient, err := users.Get(ctx, "patient1")
	require.NoError(t, err)
	assert.False(t, patient.FirstLogin)
	aspirin, err := inventory.Get(ctx, "Aspirin")
	require.NoError(t, err)
	assert.Equal(t, 10, aspirin.ReplenishmentPending)

	ids, err := store.IDs(ctx, entity.KindMedicalRecord)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"patient1", "patient2"}, ids)
}
