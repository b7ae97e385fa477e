package entity

import "time"

// Domain event types published after successful transitions
const (
	EventAppointmentRequested   = "appointment.requested"
	EventAppointmentConfirmed   = "appointment.confirmed"
	EventAppointmentRejected    = "appointment.rejected"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentCompleted   = "appointment.completed"
	EventPrescriptionDispensed  = "prescription.dispensed"
	EventInventoryLowStock      = "inventory.low_stock"
	EventReplenishmentRequested = "replenishment.requested"
	EventReplenishmentApproved  = "replenishment.approved"
	EventReplenishmentRejected  = "replenishment.rejected"
)

// DomainEvent is a notification about a committed state change
type DomainEvent struct {
	Type       string                 `json:"type"`
	EntityKind Kind                   `json:"entity_kind"`
	EntityID   string                 `json:"entity_id"`
	ActorID    string                 `json:"actor_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}
