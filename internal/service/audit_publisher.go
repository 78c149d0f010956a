// Package service publishes audit events to RabbitMQ. Failures are logged
// and never reach the request that triggered the event.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/appregistry/internal/config"
	"github.com/iliyamo/appregistry/internal/queue"
)

// Publisher accepts audit events. Publish must not block the caller on
// the broker.
type Publisher interface {
	Publish(ev queue.AuditEvent)
}

// Nop drops every event; it is used when auditing is disabled.
type Nop struct{}

func (Nop) Publish(queue.AuditEvent) {}

// NewPublisher returns a broker-backed publisher when cfg enables
// auditing and a Nop otherwise.
func NewPublisher(cfg config.AuditConfig) Publisher {
	if !cfg.Enabled {
		return Nop{}
	}
	return &RabbitPublisher{URL: cfg.URL, Queue: cfg.Queue, Timeout: 5 * time.Second}
}

// RabbitPublisher dials per event and publishes a persistent JSON message
// to the durable queue.
type RabbitPublisher struct {
	URL     string
	Queue   string
	Timeout time.Duration
}

// Publish sends ev in the background.
func (p *RabbitPublisher) Publish(ev queue.AuditEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		_ = p.Send(ctx, ev)
	}()
}

// Send publishes ev synchronously. Errors are logged and returned.
func (p *RabbitPublisher) Send(ctx context.Context, ev queue.AuditEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.Timeout)})
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

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
