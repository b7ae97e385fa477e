package service

import (
	"context"

	"go-clinic-management/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// EventPublisher delivers domain events after a transition has been saved
type EventPublisher interface {
	Publish(ctx context.Context, event entity.DomainEvent) error
}

type logEventPublisher struct {
	log *logrus.Logger
}

// NewLogEventPublisher is used when no message broker is configured
func NewLogEventPublisher(log *logrus.Logger) EventPublisher {
	return &logEventPublisher{log: log}
}

func (p *logEventPublisher) Publish(ctx context.Context, event entity.DomainEvent) error {
	p.log.WithFields(logrus.Fields{
		"event":     event.Type,
		"entity":    event.EntityKind,
		"entity_id": event.EntityID,
		"actor":     event.ActorID,
	}).Info("Domain event")
	return nil
}
