package dto

import (
	"time"

	"go-clinic-management/internal/domain/entity"
)

// Request DTOs

type AuditLogQuery struct {
	UserID     string `json:"user_id" validate:"omitempty,max=64"`
	Action     string `json:"action" validate:"omitempty,max=100"`
	EntityKind string `json:"entity_kind" validate:"omitempty,oneof=user medical_record appointment inventory_item"`
	Limit      int    `json:"limit" validate:"gte=0,lte=1000"`
}

// Response DTOs

type AuditLogResponse struct {
	ID         int64       `json:"id"`
	UserID     string      `json:"user_id,omitempty"`
	Action     string      `json:"action"`
	EntityKind string      `json:"entity_kind"`
	EntityID   string      `json:"entity_id"`
	Metadata   entity.JSON `json:"metadata"`
	CreatedAt  time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
