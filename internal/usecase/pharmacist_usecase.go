package usecase

import (
	"context"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/service"

	"github.com/sirupsen/logrus"
)

type PharmacistUsecase interface {
	ListPrescriptions(ctx context.Context, session *entity.Session, pendingOnly bool) (*dto.PrescriptionListResponse, error)
	DispensePrescription(ctx context.Context, session *entity.Session, prescriptionID string) (*dto.DispenseResponse, error)
	ListInventory(ctx context.Context, session *entity.Session) (*dto.InventoryListResponse, error)
	RequestReplenishment(ctx context.Context, session *entity.Session, medicationName string, req *dto.ReplenishmentRequest) (*dto.InventoryItemResponse, error)
}

type pharmacistUsecase struct {
	log           *logrus.Logger
	prescriptions service.PrescriptionService
	inventory     service.InventoryService
}

func NewPharmacistUsecase(
	log *logrus.Logger,
	prescriptions service.PrescriptionService,
	inventory service.InventoryService,
) PharmacistUsecase {
	return &pharmacistUsecase{
		log:           log,
		prescriptions: prescriptions,
		inventory:     inventory,
	}
}

func (u *pharmacistUsecase) ListPrescriptions(ctx context.Context, session *entity.Session, pendingOnly bool) (*dto.PrescriptionListResponse, error) {
	if err := authorize(session, entity.RolePharmacist); err != nil {
		return nil, err
	}

	views, err := u.prescriptions.List(ctx, pendingOnly)
	if err != nil {
		return nil, err
	}
	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionViewsToResponses(views),
		Total:         len(views),
	}, nil
}

func (u *pharmacistUsecase) DispensePrescription(ctx context.Context, session *entity.Session, prescriptionID string) (*dto.DispenseResponse, error) {
	if err := authorize(session, entity.RolePharmacist); err != nil {
		return nil, err
	}

	result, err := u.prescriptions.Dispense(ctx, session.UserID, prescriptionID)
	if err != nil {
		return nil, err
	}
	return converter.DispenseResultToResponse(result), nil
}

func (u *pharmacistUsecase) ListInventory(ctx context.Context, session *entity.Session) (*dto.InventoryListResponse, error) {
	if err := authorize(session, entity.RolePharmacist); err != nil {
		return nil, err
	}

	items, err := u.inventory.List(ctx)
	if err != nil {
		return nil, err
	}
	return converter.InventoryItemsToListResponse(items), nil
}

func (u *pharmacistUsecase) RequestReplenishment(ctx context.Context, session *entity.Session, medicationName string, req *dto.ReplenishmentRequest) (*dto.InventoryItemResponse, error) {
	if err := authorize(session, entity.RolePharmacist); err != nil {
		return nil, err
	}

	item, err := u.inventory.RequestReplenishment(ctx, session.UserID, medicationName, req.Amount)
	if err != nil {
		return nil, err
	}
	return converter.InventoryItemToResponse(item), nil
}
