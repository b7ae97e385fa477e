package entity

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityKind Kind      `gorm:"type:varchar(32);index" json:"entity_kind"`
	EntityID   string    `gorm:"type:varchar(255)" json:"entity_id"`
	Metadata   JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows an audit log listing. Zero values match everything.
type AuditLogFilter struct {
	UserID     string
	Action     string
	EntityKind Kind
	Limit      int
}

func (f AuditLogFilter) Matches(l *AuditLog) bool {
	if f.UserID != "" && l.UserID != f.UserID {
		return false
	}
	if f.Action != "" && l.Action != f.Action {
		return false
	}
	if f.EntityKind != "" && l.EntityKind != f.EntityKind {
		return false
	}
	return true
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit actions
const (
	AuditActionUserLogin             = "user.login"
	AuditActionUserLogout            = "user.logout"
	AuditActionUserRegister          = "user.register"
	AuditActionPasswordChange        = "user.password_change"
	AuditActionContactUpdate         = "user.contact_update"
	AuditActionStaffCreate           = "staff.create"
	AuditActionStaffUpdate           = "staff.update"
	AuditActionStaffDelete           = "staff.delete"
	AuditActionAppointmentRequest    = "appointment.request"
	AuditActionAppointmentConfirm    = "appointment.confirm"
	AuditActionAppointmentReject     = "appointment.reject"
	AuditActionAppointmentCancel     = "appointment.cancel"
	AuditActionAppointmentComplete   = "appointment.complete"
	AuditActionAppointmentReschedule = "appointment.reschedule"
	AuditActionScheduleInitialize    = "schedule.initialize"
	AuditActionScheduleSlotAdd       = "schedule.slot_add"
	AuditActionScheduleSlotRemove    = "schedule.slot_remove"
	AuditActionMedicalRecordUpdate   = "medical_record.update"
	AuditActionPrescriptionDispense  = "prescription.dispense"
	AuditActionReplenishmentRequest  = "replenishment.request"
	AuditActionReplenishmentApprove  = "replenishment.approve"
	AuditActionReplenishmentReject   = "replenishment.reject"
	AuditActionInventoryCreate       = "inventory.create"
	AuditActionInventoryUpdate       = "inventory.update"
	AuditActionInventoryDelete       = "inventory.delete"
)
