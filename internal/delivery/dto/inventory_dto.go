package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateInventoryItemRequest struct {
	MedicationName     string          `json:"medication_name" validate:"required,min=2"`
	StockLevel         int             `json:"stock_level" validate:"gte=0"`
	LowStockAlertLevel int             `json:"low_stock_alert_level" validate:"gte=0"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
}

type UpdateInventoryItemRequest struct {
	LowStockAlertLevel *int             `json:"low_stock_alert_level" validate:"omitempty,gte=0"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
}

type ReplenishmentRequest struct {
	Amount int `json:"amount" validate:"gt=0"`
}

type ReplenishmentDecisionRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

// Response DTOs

type InventoryItemResponse struct {
	MedicationName       string          `json:"medication_name"`
	StockLevel           int             `json:"stock_level"`
	LowStockAlertLevel   int             `json:"low_stock_alert_level"`
	LowStock             bool            `json:"low_stock"`
	ReplenishmentPending int             `json:"replenishment_pending"`
	RequestedBy          string          `json:"requested_by,omitempty"`
	RequestedAt          *time.Time      `json:"requested_at,omitempty"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	StockValue           decimal.Decimal `json:"stock_value"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type InventoryListResponse struct {
	Items      []InventoryItemResponse `json:"items"`
	Total      int                     `json:"total"`
	TotalValue decimal.Decimal         `json:"total_value"`
}
