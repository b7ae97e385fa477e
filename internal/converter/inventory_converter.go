package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// InventoryItemToResponse converts an InventoryItem entity to InventoryItemResponse DTO
func InventoryItemToResponse(item *entity.InventoryItem) *dto.InventoryItemResponse {
	if item == nil {
		return nil
	}

	return &dto.InventoryItemResponse{
		MedicationName:       item.MedicationName,
		StockLevel:           item.StockLevel,
		LowStockAlertLevel:   item.LowStockAlertLevel,
		LowStock:             item.IsLowStock(),
		ReplenishmentPending: item.ReplenishmentPending,
		RequestedBy:          item.RequestedBy,
		RequestedAt:          item.RequestedAt,
		UnitPrice:            item.UnitPrice,
		StockValue:           item.StockValue(),
		UpdatedAt:            item.UpdatedAt,
	}
}

// InventoryItemsToListResponse converts items and sums their stock value
func InventoryItemsToListResponse(items []*entity.InventoryItem) *dto.InventoryListResponse {
	responses := make([]dto.InventoryItemResponse, len(items))
	total := decimal.Zero
	for i, item := range items {
		responses[i] = *InventoryItemToResponse(item)
		total = total.Add(item.StockValue())
	}

	return &dto.InventoryListResponse{
		Items:      responses,
		Total:      len(items),
		TotalValue: total,
	}
}
