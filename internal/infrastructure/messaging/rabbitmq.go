// Package messaging delivers appointment announcements.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

const (
	DefaultQueue       = "hospital.appointments"
	contentTypeJSON    = "application/json"
	defaultDialTimeout = 10 * time.Second
)

// RabbitMQPublisher publishes appointment events as persistent JSON messages
// on a durable queue and waits for the broker to confirm each one.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	publish publishFunc
}

// confirmation is the broker's pending answer for one published message.
// *amqp.DeferredConfirmation satisfies it.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, msg amqp.Publishing) (confirmation, error)

// DialRabbitMQ connects to url, declares queue and enables publisher
// confirms. An empty queue selects DefaultQueue.
func DialRabbitMQ(url, queue string) (*RabbitMQPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(defaultDialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq declare %s: %w", queue, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq confirm mode: %w", err)
	}

	return &RabbitMQPublisher{
		conn:    conn,
		ch:      ch,
		queue:   queue,
		publish: deferredConfirmPublish(ch, queue),
	}, nil
}

// deferredConfirmPublish ties each confirm to the message it answers, so a
// confirm arriving after its caller gave up is never read by the next one.
func deferredConfirmPublish(ch *amqp.Channel, queue string) publishFunc {
	return func(ctx context.Context, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, msg)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, errors.New("channel is not in confirm mode")
		}
		return dc, nil
	}
}

// Notify publishes the event and blocks until it is confirmed or ctx ends.
func (p *RabbitMQPublisher) Notify(ctx context.Context, event domain.AppointmentEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	pending, err := p.publish(ctx, msg)
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", p.queue, err)
	}

	acked, err := pending.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", p.queue, err)
	}
	if !acked {
		return fmt.Errorf("rabbitmq publish %s: message not confirmed", p.queue)
	}
	return nil
}

// Ping reports whether the broker connection is still open.
func (p *RabbitMQPublisher) Ping(context.Context) error {
	if p.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}

func newPublishing(event domain.AppointmentEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode appointment event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         event.Type,
		Timestamp:    event.CreatedAt,
		Body:         body,
	}, nil
}
