package interfaces

import (
	"context"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
)

type EventPublisher interface {
	PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error
	PublishNotification(ctx context.Context, companyId string, entityId string, entityType enum.EntityType, details *dto.EventCompletedDetails)
	Close() error
}
