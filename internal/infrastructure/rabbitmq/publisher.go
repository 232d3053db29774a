package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
)

// Publisher pushes engagement events onto a durable queue for downstream
// notification workers. The connection is established lazily and re-dialed
// after a broker outage, so a dead broker at boot or mid-flight only pauses
// delivery.
type Publisher struct {
	url       string
	queueName string
	logger    *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher prepares a publisher for the queue. The first dial happens
// here but a failure is not fatal; Connect retries on the next use.
func NewPublisher(url, queueName string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueName == "" {
		queueName = "engagement_events"
	}

	p := &Publisher{
		url:       url,
		queueName: queueName,
		logger:    logger,
	}
	if err := p.Connect(); err != nil {
		logger.Warn("rabbitmq unreachable, will retry", zap.Error(err))
	}
	return p
}

// Connect ensures a live connection, channel and queue, dialing anew when
// the previous connection died. Safe to call repeatedly.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureLocked()
}

func (p *Publisher) ensureLocked() error {
	if p.conn != nil && !p.conn.IsClosed() && p.channel != nil {
		return nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if _, err := channel.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return err
	}

	p.conn = conn
	p.channel = channel
	p.logger.Info("rabbitmq connected", zap.String("queue", p.queueName))
	return nil
}

// PublishEvent delivers one event. Messages are persistent so a broker
// restart does not drop them.
func (p *Publisher) PublishEvent(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLocked(); err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return err
	}

	p.logger.Debug("event published",
		zap.String("type", string(event.Type)),
		zap.String("profile_id", event.ProfileID))
	return nil
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
