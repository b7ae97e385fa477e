package service

import (
	"context"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type AuditService interface {
	LogCreate(ctx context.Context, actorID string, action string, kind entity.Kind, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, actorID string, action string, kind entity.Kind, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, actorID string, action string, kind entity.Kind, entityID string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, actorID string, action string, kind entity.Kind, entityID string, newValue interface{}) error {
	return s.write(ctx, actorID, action, kind, entityID, nil, newValue)
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, actorID string, action string, kind entity.Kind, entityID string, oldValue, newValue interface{}) error {
	return s.write(ctx, actorID, action, kind, entityID, oldValue, newValue)
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, actorID string, action string, kind entity.Kind, entityID string, oldValue interface{}) error {
	return s.write(ctx, actorID, action, kind, entityID, oldValue, nil)
}

func (s *auditService) write(ctx context.Context, actorID string, action string, kind entity.Kind, entityID string, oldValue, newValue interface{}) error {
	auditLog := &entity.AuditLog{
		UserID:     actorID,
		Action:     action,
		EntityKind: kind,
		EntityID:   entityID,
		Metadata: entity.JSON{
			"old_value": oldValue,
			"new_value": newValue,
		},
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
