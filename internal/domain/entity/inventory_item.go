package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is the stock of one medication. MedicationName is the unique key,
// compared case-insensitively.
type InventoryItem struct {
	Versioned
	MedicationName       string          `json:"medication_name"`
	StockLevel           int             `json:"stock_level"`
	LowStockAlertLevel   int             `json:"low_stock_alert_level"`
	ReplenishmentPending int             `json:"replenishment_pending"`
	RequestedBy          string          `json:"requested_by,omitempty"`
	RequestedAt          *time.Time      `json:"requested_at,omitempty"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (i *InventoryItem) EntityKind() Kind { return KindInventoryItem }
func (i *InventoryItem) EntityID() string { return MedicationKey(i.MedicationName) }

// MedicationKey normalizes a medication name into its store identifier
func MedicationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsLowStock is advisory only: stock at or below the alert level
func (i *InventoryItem) IsLowStock() bool {
	return i.StockLevel <= i.LowStockAlertLevel
}

// HasPendingRequest reports whether a replenishment request is outstanding
func (i *InventoryItem) HasPendingRequest() bool {
	return i.ReplenishmentPending > 0
}

// StockValue is the unit price times the current stock level
func (i *InventoryItem) StockValue() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.StockLevel)))
}
