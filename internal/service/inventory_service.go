package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// NewItemInput describes a medication added to inventory
type NewItemInput struct {
	MedicationName     string
	StockLevel         int
	LowStockAlertLevel int
	UnitPrice          decimal.Decimal
}

// UpdateItemInput changes item settings; nil fields are left alone. Stock is
// never set directly.
type UpdateItemInput struct {
	LowStockAlertLevel *int
	UnitPrice          *decimal.Decimal
}

// InventoryService owns stock levels and the replenishment request/approval cycle.
// Approving a replenishment is the only path by which stock increases.
type InventoryService interface {
	RequestReplenishment(ctx context.Context, actorID, medicationName string, amount int) (*entity.InventoryItem, error)
	ResolveReplenishment(ctx context.Context, actorID, medicationName string, approve bool) (*entity.InventoryItem, error)
	AddItem(ctx context.Context, actorID string, input NewItemInput) (*entity.InventoryItem, error)
	UpdateItem(ctx context.Context, actorID, medicationName string, input UpdateItemInput) (*entity.InventoryItem, error)
	RemoveItem(ctx context.Context, actorID, medicationName string) error
	Get(ctx context.Context, medicationName string) (*entity.InventoryItem, error)
	List(ctx context.Context) ([]*entity.InventoryItem, error)
	LowStock(ctx context.Context) ([]*entity.InventoryItem, error)
	PendingRequests(ctx context.Context) ([]*entity.InventoryItem, error)
}

type inventoryService struct {
	store    repository.Store
	locker   *KeyLocker
	log      *logrus.Logger
	recorder *activityRecorder
}

func NewInventoryService(
	store repository.Store,
	locker *KeyLocker,
	log *logrus.Logger,
	audit AuditService,
	events EventPublisher,
) InventoryService {
	return &inventoryService{
		store:    store,
		locker:   locker,
		log:      log,
		recorder: &activityRecorder{log: log, audit: audit, events: events},
	}
}

// RequestReplenishment overwrites any outstanding request for the item
func (s *inventoryService) RequestReplenishment(ctx context.Context, actorID, medicationName string, amount int) (*entity.InventoryItem, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	unlock := s.locker.Lock(lockKey("inventory", entity.MedicationKey(medicationName)))
	defer unlock()

	item, err := loadInventoryItem(ctx, s.store, medicationName)
	if err != nil {
		return nil, err
	}
	if !item.IsLowStock() {
		s.log.Infof("Replenishment requested for %s above its alert level: stock=%d, alert=%d", item.MedicationName, item.StockLevel, item.LowStockAlertLevel)
	}

	oldPending := item.ReplenishmentPending
	now := timeNow()
	item.ReplenishmentPending = amount
	item.RequestedBy = actorID
	item.RequestedAt = &now
	item.UpdatedAt = now

	if err := s.store.Save(ctx, item); err != nil {
		s.log.Warnf("Failed to save replenishment request: %+v", err)
		return nil, err
	}

	s.log.Infof("Replenishment requested: medication=%s, amount=%d, by=%s", item.MedicationName, amount, actorID)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionReplenishmentRequest,
		event:    entity.EventReplenishmentRequested,
		kind:     entity.KindInventoryItem,
		entityID: item.EntityID(),
		oldValue: map[string]interface{}{"replenishment_pending": oldPending},
		newValue: map[string]interface{}{"replenishment_pending": amount},
		data:     map[string]interface{}{"medication_name": item.MedicationName, "amount": amount},
	})
	return item, nil
}

func (s *inventoryService) ResolveReplenishment(ctx context.Context, actorID, medicationName string, approve bool) (*entity.InventoryItem, error) {
	unlock := s.locker.Lock(lockKey("inventory", entity.MedicationKey(medicationName)))
	defer unlock()

	item, err := loadInventoryItem(ctx, s.store, medicationName)
	if err != nil {
		return nil, err
	}
	if !item.HasPendingRequest() {
		return nil, fmt.Errorf("%w: %s", ErrNoPendingRequest, item.MedicationName)
	}

	oldStock, pending := item.StockLevel, item.ReplenishmentPending
	if approve {
		item.StockLevel += pending
	}
	item.ReplenishmentPending = 0
	item.RequestedBy = ""
	item.RequestedAt = nil
	item.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, item); err != nil {
		s.log.Warnf("Failed to save replenishment decision: %+v", err)
		return nil, err
	}

	action, event := entity.AuditActionReplenishmentApprove, entity.EventReplenishmentApproved
	if !approve {
		action, event = entity.AuditActionReplenishmentReject, entity.EventReplenishmentRejected
	}
	s.log.Infof("Replenishment resolved: medication=%s, approved=%t, amount=%d, stock=%d", item.MedicationName, approve, pending, item.StockLevel)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   action,
		event:    event,
		kind:     entity.KindInventoryItem,
		entityID: item.EntityID(),
		oldValue: map[string]interface{}{"stock_level": oldStock, "replenishment_pending": pending},
		newValue: map[string]interface{}{"stock_level": item.StockLevel, "replenishment_pending": 0},
		data:     map[string]interface{}{"medication_name": item.MedicationName, "amount": pending},
	})
	return item, nil
}

func (s *inventoryService) AddItem(ctx context.Context, actorID string, input NewItemInput) (*entity.InventoryItem, error) {
	name := strings.TrimSpace(input.MedicationName)
	if name == "" {
		return nil, fmt.Errorf("%w: medication name is empty", ErrUnknownMedication)
	}
	if input.StockLevel < 0 || input.LowStockAlertLevel < 0 || input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: stock, alert level and price must not be negative", ErrInvalidAmount)
	}

	unlock := s.locker.Lock(lockKey("inventory", entity.MedicationKey(name)))
	defer unlock()

	item := &entity.InventoryItem{
		MedicationName:     name,
		StockLevel:         input.StockLevel,
		LowStockAlertLevel: input.LowStockAlertLevel,
		UnitPrice:          input.UnitPrice,
		UpdatedAt:          timeNow(),
	}
	if err := s.store.Save(ctx, item); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: %s", ErrMedicationExists, name)
		}
		s.log.Warnf("Failed to save inventory item: %+v", err)
		return nil, err
	}

	s.log.Infof("Inventory item added: medication=%s, stock=%d", name, item.StockLevel)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionInventoryCreate,
		kind:     entity.KindInventoryItem,
		entityID: item.EntityID(),
		newValue: map[string]interface{}{"stock_level": item.StockLevel, "low_stock_alert_level": item.LowStockAlertLevel, "unit_price": item.UnitPrice.String()},
	})
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, actorID, medicationName string, input UpdateItemInput) (*entity.InventoryItem, error) {
	if input.LowStockAlertLevel != nil && *input.LowStockAlertLevel < 0 {
		return nil, fmt.Errorf("%w: alert level %d", ErrInvalidAmount, *input.LowStockAlertLevel)
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price %s", ErrInvalidAmount, input.UnitPrice)
	}

	unlock := s.locker.Lock(lockKey("inventory", entity.MedicationKey(medicationName)))
	defer unlock()

	item, err := loadInventoryItem(ctx, s.store, medicationName)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"low_stock_alert_level": item.LowStockAlertLevel, "unit_price": item.UnitPrice.String()}
	if input.LowStockAlertLevel != nil {
		item.LowStockAlertLevel = *input.LowStockAlertLevel
	}
	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	}
	item.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, item); err != nil {
		s.log.Warnf("Failed to save inventory item: %+v", err)
		return nil, err
	}

	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionInventoryUpdate,
		kind:     entity.KindInventoryItem,
		entityID: item.EntityID(),
		oldValue: old,
		newValue: map[string]interface{}{"low_stock_alert_level": item.LowStockAlertLevel, "unit_price": item.UnitPrice.String()},
	})
	return item, nil
}

func (s *inventoryService) RemoveItem(ctx context.Context, actorID, medicationName string) error {
	unlock := s.locker.Lock(lockKey("inventory", entity.MedicationKey(medicationName)))
	defer unlock()

	item, err := loadInventoryItem(ctx, s.store, medicationName)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, item); err != nil {
		s.log.Warnf("Failed to delete inventory item: %+v", err)
		return err
	}

	s.log.Infof("Inventory item removed: medication=%s", item.MedicationName)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionInventoryDelete,
		kind:     entity.KindInventoryItem,
		entityID: item.EntityID(),
		oldValue: map[string]interface{}{"medication_name": item.MedicationName, "stock_level": item.StockLevel},
	})
	return nil
}

func (s *inventoryService) Get(ctx context.Context, medicationName string) (*entity.InventoryItem, error) {
	return loadInventoryItem(ctx, s.store, medicationName)
}

func (s *inventoryService) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	items, err := repository.LoadAll[entity.InventoryItem](ctx, s.store, entity.KindInventoryItem)
	if err != nil {
		s.log.Warnf("Failed to list inventory: %+v", err)
		return nil, err
	}
	return items, nil
}

// LowStock is a pure query: items whose stock is at or below the alert level
func (s *inventoryService) LowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	return s.filter(ctx, (*entity.InventoryItem).IsLowStock)
}

func (s *inventoryService) PendingRequests(ctx context.Context) ([]*entity.InventoryItem, error) {
	return s.filter(ctx, (*entity.InventoryItem).HasPendingRequest)
}

func (s *inventoryService) filter(ctx context.Context, keep func(*entity.InventoryItem) bool) ([]*entity.InventoryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.InventoryItem, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}
