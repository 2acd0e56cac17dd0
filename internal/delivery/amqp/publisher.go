package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqplib "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository"
)

const (
	exchangeName = "datalake.events"
	exchangeType = "topic"

	routingKeyPrefix = "run."

	publishTimeout = 5 * time.Second
)

// channel is the subset of *amqplib.Channel used by the publisher.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqplib.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqplib.Publishing) error
	NotifyPublish(confirm chan amqplib.Confirmation) chan amqplib.Confirmation
	Close() error
}

// Publisher announces finished runs on a topic exchange. Each report is
// published with routing key "run.<workflow>" and waits for a broker confirm.
type Publisher struct {
	conn     *amqplib.Connection
	ch       channel
	confirms chan amqplib.Confirmation
	logger   *zap.Logger

	mu sync.Mutex
}

var _ repository.EventPublisher = (*Publisher)(nil)

// NewPublisher dials the broker, enables publisher confirms and declares the exchange.
func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqplib.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp: channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp: enable confirms: %w", err)
	}

	p, err := newPublisher(ch, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, logger *zap.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchangeName, exchangeType, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("amqp: declare exchange: %w", err)
	}

	logger.Info("RabbitMQ publisher initialized", zap.String("exchange", exchangeName))

	return &Publisher{
		ch:       ch,
		confirms: ch.NotifyPublish(make(chan amqplib.Confirmation, 1)),
		logger:   logger,
	}, nil
}

// PublishRun publishes the report as JSON.
func (p *Publisher) PublishRun(ctx context.Context, report *domain.RunReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("amqp: marshal report: %w", err)
	}

	// Confirms arrive in publish order on a single channel.
	p.mu.Lock()
	defer p.mu.Unlock()

	p.drainConfirms()

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := routingKeyPrefix + report.Workflow
	err = p.ch.PublishWithContext(publishCtx,
		exchangeName,
		key,
		false, // mandatory
		false, // immediate
		amqplib.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqplib.Persistent,
			MessageId:    report.RunID.String(),
			Timestamp:    time.Now(),
			Type:         report.Status(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp: publish: %w", err)
	}

	select {
	case ack, ok := <-p.confirms:
		if !ok {
			return fmt.Errorf("amqp: channel closed before confirm (run_id=%s)", report.RunID)
		}
		if !ack.Ack {
			return fmt.Errorf("amqp: broker nacked message (run_id=%s)", report.RunID)
		}
	case <-publishCtx.Done():
		return fmt.Errorf("amqp: publish confirmation timeout (run_id=%s)", report.RunID)
	}

	p.logger.Debug("Published run report",
		zap.String("run_id", report.RunID.String()),
		zap.String("routing_key", key),
		zap.Int("body_size", len(body)),
	)
	return nil
}

// drainConfirms discards confirms left over from a publish that timed out, so
// they are not mistaken for the confirm of the next message.
func (p *Publisher) drainConfirms() {
	for {
		select {
		case stale, ok := <-p.confirms:
			if !ok {
				return
			}
			p.logger.Debug("Discarded late publish confirm", zap.Uint64("delivery_tag", stale.DeliveryTag))
		default:
			return
		}
	}
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
