package queue

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher publishes checkout messages to the service bus queue
type Publisher interface {
	// Publish sends the message body to the configured queue
	Publish(ctx context.Context, body []byte) error
}

// amqpPublisher AMQP publisher implementation. Each publish dials a fresh
// connection and closes it when done, matching the short-lived sender model
// of the service bus client it replaces.
type amqpPublisher struct {
	url       string
	queueName string
}

// NewPublisher creates an AMQP publisher
func NewPublisher(url, queueName string) Publisher {
	return &amqpPublisher{
		url:       url,
		queueName: queueName,
	}
}

// Publish sends one persistent message to the queue
func (p *amqpPublisher) Publish(ctx context.Context, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to queue broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err = ch.Publish(
		"",
		q.Name,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}
