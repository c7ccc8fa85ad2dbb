package events

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

// NoopPublisher is used when no RabbitMQ URL is configured. Events are only logged.
type NoopPublisher struct {
	logger logger.Logger
}

func NewNoopPublisher(logger logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "NoopPublisher.PublishFanoutEvent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	event := newEvent(ctx, span, entityId, entityType, message)
	p.logger.Debugf("Event %s for %s %s not published, events are disabled", event.Event.EventType, entityType, entityId)
	return nil
}

func (p *NoopPublisher) PublishNotification(ctx context.Context, companyId string, entityId string, entityType enum.EntityType, details *dto.EventCompletedDetails) {
	p.logger.Debugf("Notification for %s %s of company %s not published, events are disabled", entityType, entityId, companyId)
}

func (p *NoopPublisher) Close() error {
	return nil
}
