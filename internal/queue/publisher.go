package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// dialTimeout bounds how long a checkout can wait on an unreachable broker.
const dialTimeout = 2 * time.Second

// Publisher sends TicketBookedEvents to QueueName. It dials per publish.
type Publisher struct {
	url string
	log *logrus.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *logrus.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// PublishTicketBooked publishes ev as a persistent JSON message. An empty
// EventID is filled with a random UUID. Errors are logged and returned so
// the caller can choose to ignore them.
func (p *Publisher) PublishTicketBooked(ctx context.Context, ev TicketBookedEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	fields := logrus.Fields{"ticket_id": ev.TicketID, "event_id": ev.EventID}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		p.log.WithFields(fields).WithError(err).Warn("rabbitmq: dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithFields(fields).WithError(err).Warn("rabbitmq: channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		p.log.WithFields(fields).WithError(err).Warn("rabbitmq: queue declare failed")
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
		p.log.WithFields(fields).WithError(err).Warn("rabbitmq: publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	p.log.WithFields(fields).Debug("ticket event published")
	return nil
}
