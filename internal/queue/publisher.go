package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends booking events to a durable RabbitMQ queue through the
// default exchange.  Each Publish dials its own connection, so a Publisher
// is safe for concurrent use and holds no broker state between calls.
type Publisher struct {
	URL   string
	Queue string
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queue string) *Publisher {
	return &Publisher{URL: url, Queue: queue}
}

// Publish marshals ev and publishes it as a persistent message.  Errors
// are logged and returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, p.Queue); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		MessageId:    ev.BookingID + ":" + ev.Type + ":" + ev.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// declare ensures the durable queue exists (idempotent).
func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}
