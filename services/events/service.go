package events

import (
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/logger"
)

type EventsService struct {
	Publisher interfaces.EventPublisher
}

// NewEventsService connects to RabbitMQ, or falls back to a logging publisher when rabbitmqURL is empty.
func NewEventsService(rabbitmqURL string, log logger.Logger, publisherConfig *PublisherConfig) (*EventsService, error) {
	if rabbitmqURL == "" {
		log.Warn("RABBITMQ_URL not set, domain events will not be published")
		return &EventsService{
			Publisher: NewNoopPublisher(log),
		}, nil
	}

	publisher, err := NewRabbitMQPublisher(rabbitmqURL, log, publisherConfig)
	if err != nil {
		return nil, err
	}

	return &EventsService{
		Publisher: publisher,
	}, nil
}

func (s *EventsService) Close() error {
	if s.Publisher == nil {
		return nil
	}
	return s.Publisher.Close()
}
