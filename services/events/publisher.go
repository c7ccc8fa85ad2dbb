package events

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
)

const (
	// Exchange names
	ExchangeCalcBuilder   = "calcbuilder"
	ExchangeNotifications = "notifications"
	ExchangeDeadLetter    = "dead-letter"

	// queues
	QueueNotifications = "notifications"
	QueueAdminEvents   = "events-adminstack"
	DLQNotifications   = QueueNotifications + "-dlq"
	DLQAdminEvents     = QueueAdminEvents + "-dlq"

	// routing keys
	RoutingKeyDeadLetter = "dead-letter"

	// Default configurations
	DefaultMessageTTL          = 240 * time.Hour // after TTL message moves to DLQ
	DefaultMaxRetries          = 3
	DefaultPublishTimeout      = 5 * time.Second
	DefaultReconnectBackoff    = time.Second
	DefaultMaxReconnectBackoff = 30 * time.Second
)

type PublisherConfig struct {
	MessageTTL          time.Duration
	MaxRetries          int
	PublishTimeout      time.Duration
	ReconnectBackoff    time.Duration
	MaxReconnectBackoff time.Duration
}

func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		MessageTTL:          DefaultMessageTTL,
		MaxRetries:          DefaultMaxRetries,
		PublishTimeout:      DefaultPublishTimeout,
		ReconnectBackoff:    DefaultReconnectBackoff,
		MaxReconnectBackoff: DefaultMaxReconnectBackoff,
	}
}

type exchangeDeclaration struct {
	name string
	kind string
}

var exchanges = []exchangeDeclaration{
	{name: ExchangeDeadLetter, kind: amqp091.ExchangeDirect},
	{name: ExchangeNotifications, kind: amqp091.ExchangeFanout},
	{name: ExchangeCalcBuilder, kind: amqp091.ExchangeFanout},
}

type queueBinding struct {
	queue    string
	dlq      string
	exchange string
}

var queueBindings = []queueBinding{
	{queue: QueueNotifications, dlq: DLQNotifications, exchange: ExchangeNotifications},
	{queue: QueueAdminEvents, dlq: DLQAdminEvents, exchange: ExchangeCalcBuilder},
}

type RabbitMQPublisher struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	publishChannel  *amqp091.Channel
	publishMutex    sync.Mutex
	url             string
	logger          logger.Logger
	confirms        chan amqp091.Confirmation
	config          PublisherConfig
}

func NewRabbitMQPublisher(rabbitmqURL string, logger logger.Logger, config *PublisherConfig) (*RabbitMQPublisher, error) {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	publisher := &RabbitMQPublisher{
		url:    rabbitmqURL,
		logger: logger,
		config: *config,
	}

	err := publisher.connect()
	if err != nil {
		return nil, err
	}

	return publisher, nil
}

// PublishFanoutEvent wraps message in the event envelope and publishes it to every subscriber.
func (r *RabbitMQPublisher) PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	err := utils.ValidateCompany(ctx)
	if err != nil {
		return err
	}
	return r.publishEventOnExchange(ctx, entityId, entityType, message, ExchangeCalcBuilder)
}

func (r *RabbitMQPublisher) PublishNotification(ctx context.Context, companyId string, entityId string, entityType enum.EntityType, details *dto.EventCompletedDetails) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishNotification")
	defer span.Finish()
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, entityId)
	span.LogKV("entityType", entityType)

	event := dto.EventCompleted{
		CompanyId:  companyId,
		EntityType: entityType,
		EntityIds:  []string{entityId},
	}
	if details != nil {
		event.Create = details.Create
		event.Update = details.Update
		event.Delete = details.Delete
	}

	err := r.publishMessageOnExchange(ctx, event, ExchangeNotifications)
	if err != nil {
		tracing.TraceErr(span, err)
		r.logger.Errorf("Failed to publish event completed notification: %v", err)
		return
	}
	span.LogKV("result.published", true)
}

func (r *RabbitMQPublisher) setupPublishChannel() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open publish channel")
	}

	// Enable publisher confirms
	err = channel.Confirm(false)
	if err != nil {
		channel.Close()
		return errors.Wrap(err, "Failed to enable publisher confirms")
	}

	r.confirms = channel.NotifyPublish(make(chan amqp091.Confirmation, 1))
	r.publishChannel = channel
	return nil
}

func (r *RabbitMQPublisher) handleReconnection(connection *amqp091.Connection) {
	closed := <-connection.NotifyClose(make(chan *amqp091.Error, 1))
	if closed == nil {
		// closed on purpose
		return
	}
	r.logger.Warnf("RabbitMQ connection closed: %v, attempting to reconnect", closed)

	backoff := r.config.ReconnectBackoff
	for {
		err := r.connect()
		if err == nil {
			r.logger.Info("Successfully reconnected to RabbitMQ")
			return
		}

		r.logger.Errorf("Failed to reconnect: %v, retrying in %v", err, backoff)
		time.Sleep(backoff)

		backoff *= 2
		if backoff > r.config.MaxReconnectBackoff {
			backoff = r.config.MaxReconnectBackoff
		}
	}
}

func (r *RabbitMQPublisher) setupTopology() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open channel for exchange/queue setup")
	}
	defer channel.Close()

	for _, exchange := range exchanges {
		err = channel.ExchangeDeclare(
			exchange.name,
			exchange.kind,
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return errors.Wrapf(err, "Failed to declare exchange %s", exchange.name)
		}
	}

	for _, binding := range queueBindings {
		if err = r.declareQueueWithDLQ(channel, binding.queue, binding.dlq); err != nil {
			return err
		}
		err = channel.QueueBind(binding.queue, "", binding.exchange, false, nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to bind queue %s to exchange %s", binding.queue, binding.exchange)
		}
	}

	return nil
}

func (r *RabbitMQPublisher) declareQueueWithDLQ(channel *amqp091.Channel, queueName string, dlqName string) error {
	_, err := channel.QueueDeclare(dlqName, true, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare DLQ %s", dlqName)
	}

	err = channel.QueueBind(dlqName, RoutingKeyDeadLetter, ExchangeDeadLetter, false, nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to bind DLQ %s to exchange", dlqName)
	}

	args := amqp091.Table{
		"x-dead-letter-exchange":    ExchangeDeadLetter,
		"x-dead-letter-routing-key": RoutingKeyDeadLetter,
		"x-message-ttl":             r.config.MessageTTL.Milliseconds(),
	}
	_, err = channel.QueueDeclare(queueName, true, false, false, false, args)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare queue %s", queueName)
	}

	return nil
}

func (r *RabbitMQPublisher) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	connection, err := amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "Failed to connect to RabbitMQ")
	}
	r.connection = connection

	err = r.setupTopology()
	if err != nil {
		return errors.Wrap(err, "Failed to setup exchanges and queues")
	}

	err = r.setupPublishChannel()
	if err != nil {
		return errors.Wrap(err, "Failed to setup publish channel")
	}

	go r.handleReconnection(connection)

	return nil
}

func (r *RabbitMQPublisher) ensureConnectionAndChannel() error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.connect(); err != nil {
			return errors.Wrap(err, "Failed to establish connection")
		}
	}

	if r.publishChannel == nil || r.publishChannel.IsClosed() {
		if err := r.setupPublishChannel(); err != nil {
			return errors.Wrap(err, "Failed to establish channel")
		}
	}

	return nil
}

func (r *RabbitMQPublisher) publishEventOnExchange(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}, exchange string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishEventOnExchange")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	return r.publishMessageOnExchange(ctx, newEvent(ctx, span, entityId, entityType, message), exchange)
}

func newEvent(ctx context.Context, span opentracing.Span, entityId string, entityType enum.EntityType, message interface{}) dto.Event {
	tracingData := tracing.ExtractTextMapCarrier(span.Context())

	messageType := reflect.TypeOf(message)
	if messageType.Kind() == reflect.Ptr {
		messageType = messageType.Elem()
	}

	return dto.Event{
		Event: dto.EventDetails{
			Id:         utils.GenerateNanoIDWithPrefix("event", 21),
			EntityId:   entityId,
			EntityType: entityType,
			CompanyId:  utils.GetCompanyIdFromContext(ctx),
			EventType:  messageType.Name(),
			Data:       message,
		},
		Metadata: dto.EventMetadata{
			UberTraceId: tracingData["uber-trace-id"],
			AppSource:   utils.GetAppSourceFromContext(ctx),
			UserId:      utils.GetUserIdFromContext(ctx),
			UserEmail:   utils.GetUserEmailFromContext(ctx),
			Timestamp:   utils.Now().Format(time.RFC3339),
		},
	}
}

func (r *RabbitMQPublisher) publishMessageOnExchange(ctx context.Context, message interface{}, exchange string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishMessageOnExchange")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	tracing.LogObjectAsJson(span, "message", message)

	for attempt := 0; attempt < r.config.MaxRetries; attempt++ {
		err := r.publishWithConfirm(ctx, message, exchange)
		if err == nil {
			return nil
		}

		r.logger.Warnf("Publish attempt %d failed: %v", attempt+1, err)
		if attempt < r.config.MaxRetries-1 {
			time.Sleep(time.Millisecond * 100 * time.Duration(attempt+1))
		}
	}

	return errors.New("Failed to publish message after all retries")
}

func (r *RabbitMQPublisher) publishWithConfirm(ctx context.Context, message interface{}, exchange string) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := r.ensureConnectionAndChannel(); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal message")
	}

	// fanout exchanges ignore the routing key
	err = r.publishChannel.PublishWithContext(
		ctx,
		exchange,
		"",
		true,  // mandatory
		false, // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Body:         jsonBody,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "Failed to publish message")
	}

	select {
	case confirm := <-r.confirms:
		if !confirm.Ack {
			return errors.New("Message was not confirmed by server")
		}
	case <-time.After(r.config.PublishTimeout):
		return errors.New("Publish confirmation timeout")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Close gracefully shuts down the publisher
func (r *RabbitMQPublisher) Close() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	if r.publishChannel != nil {
		err = r.publishChannel.Close()
		if err != nil {
			r.logger.Errorf("Error closing publish channel: %v", err)
		}
	}

	if r.connection != nil {
		if closeErr := r.connection.Close(); closeErr != nil {
			r.logger.Errorf("Error closing connection: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}

	return err
}
